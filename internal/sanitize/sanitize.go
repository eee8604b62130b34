// Package sanitize validates and escapes user-controlled values before they
// reach query construction or storage. Every literal interpolated into the
// store's textual filter language must pass through here first.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"

	appErrors "github.com/lepakmasjid/directory-api/pkg/errors"
)

// defaultRegions is the fixed set of Malaysian states and federal
// territories accepted as a region filter.
var defaultRegions = []string{
	"Johor",
	"Kedah",
	"Kelantan",
	"Melaka",
	"Negeri Sembilan",
	"Pahang",
	"Perak",
	"Perlis",
	"Pulau Pinang",
	"Sabah",
	"Sarawak",
	"Selangor",
	"Terengganu",
	"Kuala Lumpur",
	"Labuan",
	"Putrajaya",
}

// Store record identifiers are fixed-length lowercase alphanumerics.
var identifierPattern = regexp.MustCompile(`^[a-z0-9]{15}$`)

// filterMeta strips every character with syntactic meaning in the store's
// filter language.
var filterMeta = strings.NewReplacer(
	`"`, "", `'`, "", "`", "", `\`, "",
	"(", "", ")", "", "&", "", "|", "",
	"~", "", "=", "", "<", "", ">", "", "!", "",
)

// Sanitizer validates user input against a configured region set and upload
// policy.
type Sanitizer struct {
	regions      map[string]string
	maxImageSize int64
	allowedMIMEs map[string]struct{}
}

// Config tunes the sanitizer. Zero values fall back to the built-in region
// set, a 5 MiB image cap, and the png/jpeg/webp allow-list.
type Config struct {
	Regions           []string
	MaxImageSize      int64
	AllowedImageMIMEs []string
}

// New constructs a Sanitizer.
func New(cfg Config) *Sanitizer {
	regions := cfg.Regions
	if len(regions) == 0 {
		regions = defaultRegions
	}
	regionSet := make(map[string]string, len(regions))
	for _, region := range regions {
		regionSet[strings.ToLower(region)] = region
	}

	maxSize := cfg.MaxImageSize
	if maxSize <= 0 {
		maxSize = 5 * 1024 * 1024
	}

	mimes := cfg.AllowedImageMIMEs
	if len(mimes) == 0 {
		mimes = []string{"image/png", "image/jpeg", "image/webp"}
	}
	mimeSet := make(map[string]struct{}, len(mimes))
	for _, mt := range mimes {
		mimeSet[strings.ToLower(strings.TrimSpace(mt))] = struct{}{}
	}

	return &Sanitizer{
		regions:      regionSet,
		maxImageSize: maxSize,
		allowedMIMEs: mimeSet,
	}
}

// Region resolves a region code to its canonical spelling. ok is false when
// the code is not a member of the configured set.
func (s *Sanitizer) Region(code string) (string, bool) {
	canonical, ok := s.regions[strings.ToLower(strings.TrimSpace(code))]
	return canonical, ok
}

// ValidRegion reports membership in the fixed region set.
func (s *Sanitizer) ValidRegion(code string) bool {
	_, ok := s.Region(code)
	return ok
}

// SearchTerm strips filter-language metacharacters, trims whitespace and
// lower-cases the term for case-insensitive matching. ok is false when the
// cleaned term is empty; callers must then omit the search predicate
// entirely, never substitute an empty-string predicate.
func (s *Sanitizer) SearchTerm(raw string) (string, bool) {
	cleaned := filterMeta.Replace(raw)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	cleaned = strings.ToLower(cleaned)
	if cleaned == "" {
		return "", false
	}
	return cleaned, true
}

// ValidIdentifier reports whether id matches the store's record identifier
// shape. Run this before interpolating an identifier into any predicate.
func (s *Sanitizer) ValidIdentifier(id string) bool {
	return identifierPattern.MatchString(id)
}

// ValidateImage enforces the upload size cap and MIME allow-list. It returns
// nil on success and a ValidationError with a human-readable reason
// otherwise. Pure: no side effects.
func (s *Sanitizer) ValidateImage(name string, size int64, mimeType string) error {
	if size <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "image file is empty")
	}
	if size > s.maxImageSize {
		return appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("image %q exceeds the maximum size of %d bytes", name, s.maxImageSize))
	}
	if _, ok := s.allowedMIMEs[strings.ToLower(strings.TrimSpace(mimeType))]; !ok {
		return appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("image type %q is not allowed", mimeType))
	}
	return nil
}
