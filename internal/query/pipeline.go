// Package query composes the in-memory list filters: free text search,
// exact field matches, expiry and location.
package query

import (
	"strings"
	"time"

	"countyconnect/internal/location"
	"countyconnect/pkg/types"
)

// Criteria describes one pass over a collection. Zero values disable a
// stage: an empty Search matches everything, a nil Expires skips the expiry
// check, a nil TownOf skips the location filter.
type Criteria[T any] struct {
	Search string
	Text   func(item T) []string

	// Fields holds exact-match filters keyed by field name; empty values
	// are ignored.
	Fields map[string]string
	Field  func(item T, name string) string

	Expires func(item T) *time.Time
	Now     time.Time

	TownOf   location.Accessor[T]
	Location types.LocationFilterState
	UserTown *types.Town
}

// Run returns the items passing every stage, in input order. items is
// never modified.
func Run[T any](items []T, c Criteria[T]) []T {
	needle := strings.ToLower(strings.TrimSpace(c.Search))
	fields := activeFields(c.Fields)

	out := make([]T, 0, len(items))
	for _, item := range items {
		if needle != "" && !matchesText(c.Text, item, needle) {
			continue
		}
		if !matchesFields(c.Field, item, fields) {
			continue
		}
		if c.Expires != nil && expired(c.Expires(item), c.Now) {
			continue
		}
		if c.TownOf != nil && !location.Visible(item, c.TownOf, c.Location, c.UserTown) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func activeFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if strings.TrimSpace(v) != "" {
			out[k] = v
		}
	}
	return out
}

func matchesText[T any](text func(T) []string, item T, needle string) bool {
	if text == nil {
		return true
	}
	for _, s := range text(item) {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

func matchesFields[T any](field func(T, string) string, item T, fields map[string]string) bool {
	if len(fields) == 0 || field == nil {
		return true
	}
	for name, want := range fields {
		if field(item, name) != want {
			return false
		}
	}
	return true
}

func expired(at *time.Time, now time.Time) bool {
	return at != nil && now.After(*at)
}

// ListingText is the search accessor for listings: title, description,
// category and town name.
func ListingText(l *types.Listing) []string {
	out := []string{l.Title}
	for _, p := range []*string{l.Description, l.Category, l.Subcategory, l.Town} {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

// ListingField is the exact-match accessor for listings.
func ListingField(l *types.Listing, name string) string {
	switch name {
	case "category":
		return deref(l.Category)
	case "subcategory":
		return deref(l.Subcategory)
	case "status":
		return string(l.Status)
	case "kind":
		return string(l.Kind)
	}
	if v, ok := l.Attributes[name].(string); ok {
		return v
	}
	return ""
}

func ListingExpires(l *types.Listing) *time.Time {
	return l.ExpiresAt
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
