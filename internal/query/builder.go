// Package query compiles structured filter requests into the store's textual
// predicate language. It is a small compiler over validated literals: tagged
// fragments joined by a fixed logical operator, never raw concatenation of
// user input.
package query

import (
	"fmt"
	"strings"

	"github.com/lepakmasjid/directory-api/internal/models"
	"github.com/lepakmasjid/directory-api/internal/sanitize"
	appErrors "github.com/lepakmasjid/directory-api/pkg/errors"
)

// Query is a store-native predicate plus sort string.
type Query struct {
	Filter string
	Sort   string
}

// Builder assembles mosque listing queries. Every interpolated literal has
// passed the Sanitizer; there is no code path that emits unsanitized input.
type Builder struct {
	sanitizer *sanitize.Sanitizer
}

// NewBuilder constructs a Builder around the given sanitizer.
func NewBuilder(s *sanitize.Sanitizer) *Builder {
	return &Builder{sanitizer: s}
}

// Build compiles filters into a predicate and sort string. An invalid region
// is an error; a search term that reduces to empty drops the search fragment
// without failing. idSet, when non-empty, constrains results to the given
// pre-validated mosque identifiers (used for amenity-based filtering).
func (b *Builder) Build(f models.MosqueFilters, idSet []string) (Query, error) {
	fragments := []string{`status = "approved"`}

	if f.State != "" && f.State != "all" {
		canonical, ok := b.sanitizer.Region(f.State)
		if !ok {
			return Query{}, appErrors.Clone(appErrors.ErrValidation, "unknown state filter")
		}
		fragments = append(fragments, fmt.Sprintf(`state = "%s"`, canonical))
	}

	if f.Search != "" {
		if term, ok := b.sanitizer.SearchTerm(f.Search); ok {
			fragments = append(fragments, fmt.Sprintf(
				`(name ~ "%s" || address ~ "%s" || state ~ "%s")`, term, term, term))
		}
	}

	if len(idSet) > 0 {
		idFragments := make([]string, 0, len(idSet))
		for _, id := range idSet {
			if !b.sanitizer.ValidIdentifier(id) {
				return Query{}, appErrors.Clone(appErrors.ErrValidation, "invalid mosque identifier")
			}
			idFragments = append(idFragments, fmt.Sprintf(`id = "%s"`, id))
		}
		fragments = append(fragments, "("+strings.Join(idFragments, " || ")+")")
	}

	return Query{
		Filter: strings.Join(fragments, " && "),
		Sort:   SortString(f.Sort),
	}, nil
}

// SortString maps a sort key to the store's sort syntax. most_amenities and
// nearest need aggregation or geospatial math the store cannot do, so they
// fall back to recency here and the read service reorders client-side.
func SortString(key models.SortKey) string {
	switch key {
	case models.SortAlphabetical:
		return "name"
	case models.SortMostAmenities, models.SortNearest:
		return "-created"
	default:
		return "-created"
	}
}

// NativeSort reports whether the store's sort string already satisfies the
// requested order, or the read service must reorder the page itself.
func NativeSort(key models.SortKey) bool {
	switch key {
	case models.SortMostAmenities, models.SortNearest:
		return false
	default:
		return true
	}
}

// IdentifierFragment builds a single equality predicate for a validated
// identifier field. It is shared by repositories that filter link and child
// collections by owning mosque.
func (b *Builder) IdentifierFragment(field, id string) (string, error) {
	if !b.sanitizer.ValidIdentifier(id) {
		return "", appErrors.Clone(appErrors.ErrValidation, "invalid identifier")
	}
	return fmt.Sprintf(`%s = "%s"`, field, id), nil
}

// IDSetFragment builds a disjunction matching any of the given identifiers,
// each validated first. Errors on an empty set: an empty disjunction would
// silently match everything.
func (b *Builder) IDSetFragment(field string, ids []string) (string, error) {
	if len(ids) == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "identifier set is empty")
	}
	fragments := make([]string, 0, len(ids))
	for _, id := range ids {
		fragment, err := b.IdentifierFragment(field, id)
		if err != nil {
			return "", err
		}
		fragments = append(fragments, fragment)
	}
	return "(" + strings.Join(fragments, " || ") + ")", nil
}
