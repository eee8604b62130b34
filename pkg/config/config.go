package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Store     StoreConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Uploads   UploadsConfig
	Regions   RegionsConfig
	RateLimit RateLimitConfig
	Exports   ExportsConfig
}

// StoreConfig locates the backend record store and bounds its query surface.
type StoreConfig struct {
	BaseURL        string
	TokenFile      string
	Timeout        time.Duration
	ListPageSize   int
	DetailPageSize int
	BatchCeiling   int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// UploadsConfig bounds mosque image attachments.
type UploadsConfig struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// RegionsConfig optionally overrides the built-in administrative region set.
type RegionsConfig struct {
	Override []string
}

// RateLimitConfig throttles public submission creation.
type RateLimitConfig struct {
	Enabled           bool
	SubmissionsPerMin int
}

// ExportsConfig governs generated audit exports and their download tokens.
type ExportsConfig struct {
	Dir       string
	URLSecret string
	URLTTL    time.Duration
	FileTTL   time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Store = StoreConfig{
		BaseURL:        v.GetString("STORE_BASE_URL"),
		TokenFile:      v.GetString("STORE_TOKEN_FILE"),
		Timeout:        parseDuration(v.GetString("STORE_TIMEOUT"), 15*time.Second),
		ListPageSize:   v.GetInt("STORE_LIST_PAGE_SIZE"),
		DetailPageSize: v.GetInt("STORE_DETAIL_PAGE_SIZE"),
		BatchCeiling:   v.GetInt("STORE_BATCH_CEILING"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxUploadSize := v.GetInt64("UPLOADS_MAX_FILE_SIZE")
	if maxUploadSize <= 0 {
		maxUploadSize = 5 * 1024 * 1024
	}
	cfg.Uploads = UploadsConfig{
		MaxFileSizeBytes: maxUploadSize,
		AllowedMIMEs:     splitAndTrim(v.GetString("UPLOADS_ALLOWED_MIMES")),
	}

	cfg.Regions = RegionsConfig{Override: splitAndTrim(v.GetString("REGIONS_OVERRIDE"))}

	cfg.RateLimit = RateLimitConfig{
		Enabled:           v.GetBool("RATE_LIMIT_ENABLED"),
		SubmissionsPerMin: v.GetInt("RATE_LIMIT_SUBMISSIONS_PER_MIN"),
	}

	cfg.Exports = ExportsConfig{
		Dir:       v.GetString("EXPORTS_DIR"),
		URLSecret: v.GetString("EXPORTS_URL_SECRET"),
		URLTTL:    parseDuration(v.GetString("EXPORTS_URL_TTL"), time.Hour),
		FileTTL:   parseDuration(v.GetString("EXPORTS_FILE_TTL"), 7*24*time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("STORE_BASE_URL", "http://127.0.0.1:8090")
	v.SetDefault("STORE_TOKEN_FILE", ".store-token")
	v.SetDefault("STORE_LIST_PAGE_SIZE", 50)
	v.SetDefault("STORE_DETAIL_PAGE_SIZE", 100)
	v.SetDefault("STORE_BATCH_CEILING", 100)
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_SUBMISSIONS_PER_MIN", 5)
	v.SetDefault("EXPORTS_DIR", "./data/exports")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
