package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lepakmasjid/directory-api/internal/models"
	"github.com/lepakmasjid/directory-api/internal/service"
)

// Audit records an audit trail entry after each successful administrative
// request. The recorder itself reports append failures; nothing here blocks
// the response.
func Audit(recorder *service.AuditRecorder, action, entityType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if recorder == nil || c.Writer.Status() >= 400 {
			return
		}

		var actorID string
		if raw, ok := c.Get(ContextUserKey); ok {
			if claims, ok := raw.(*models.JWTClaims); ok {
				actorID = claims.UserID
			}
		}

		after, _ := json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		// The request context is about to be cancelled; the append must
		// outlive it.
		recorder.RecordAsync(context.Background(), &models.AuditLog{
			ActorID:    actorID,
			Action:     action,
			EntityType: entityType,
			EntityID:   c.Param("id"),
			After:      after,
			IPAddress:  c.ClientIP(),
			UserAgent:  c.GetHeader("User-Agent"),
		})
	}
}
