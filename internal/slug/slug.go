// Package slug turns free text into URL path segments.
package slug

import (
	"regexp"
	"strings"

	"countyconnect/pkg/types"
)

var (
	disallowed  = regexp.MustCompile(`[^\w\s-]`)
	separators  = regexp.MustCompile(`[\s_]+`)
	hyphenRuns  = regexp.MustCompile(`-+`)
	wellFormed  = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	maxSlugSize = 120
)

// Generate lowercases and trims text, drops every character that is not a
// word character, space or hyphen, and joins what is left with single
// hyphens. Underscores separate words like spaces do.
//
// The result is either empty or matches ^[a-z0-9]+(-[a-z0-9]+)*$. An empty
// result means the input had nothing usable; callers treat it as invalid.
//
//	Generate("Free Furniture!!  Swap/Give") // "free-furniture-swapgive"
func Generate(text string) string {
	s := strings.TrimSpace(strings.ToLower(text))
	s = disallowed.ReplaceAllString(s, "")
	s = separators.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Validate checks a user chosen slug. It does not check uniqueness.
func Validate(s string) error {
	if s == "" {
		return types.FieldError("slug", "slug must contain at least one letter or digit")
	}
	if len(s) > maxSlugSize {
		return types.FieldError("slug", "slug is too long")
	}
	if !wellFormed.MatchString(s) {
		return types.FieldError("slug", "slug may only contain lowercase letters, digits and single hyphens")
	}
	return nil
}

// FromInput returns the slug to store for a create request: the caller's
// own slug when given, otherwise one derived from the title. Derived slugs
// are shortened to fit; chosen ones are rejected when too long.
func FromInput(chosen *string, title string) (string, error) {
	if chosen != nil && strings.TrimSpace(*chosen) != "" {
		s := strings.TrimSpace(*chosen)
		if err := Validate(s); err != nil {
			return "", err
		}
		return s, nil
	}

	s := Truncate(Generate(title), maxSlugSize)
	if err := Validate(s); err != nil {
		return "", err
	}
	return s, nil
}

// Truncate shortens a generated slug to at most n bytes, cutting at the
// last word boundary when there is one.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if s[n] == '-' {
		return strings.TrimRight(s[:n], "-")
	}
	cut := s[:n]
	if i := strings.LastIndexByte(cut, '-'); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, "-")
}
