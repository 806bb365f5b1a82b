package simplepublishing

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugWhitespace   = regexp.MustCompile(`\s+`)
	slugHyphenRuns   = regexp.MustCompile(`-+`)
	slugPattern      = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// GenerateSlug derives a URL-safe identifier from a title: Unicode NFD
// normalization (so accented letters reduce to their base form), lowercase,
// non-word characters stripped, whitespace collapsed to single hyphens, edge
// hyphens trimmed. Empty or whitespace-only titles yield "", which callers
// must treat as invalid input.
func GenerateSlug(title string) string {
	if strings.TrimSpace(title) == "" {
		return ""
	}

	slug := norm.NFD.String(title)
	slug = strings.ToLower(slug)
	slug = slugInvalidChars.ReplaceAllString(slug, "")
	slug = slugWhitespace.ReplaceAllString(slug, "-")
	slug = slugHyphenRuns.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// SlugExistsFunc is an existence check against the persistence collaborator.
type SlugExistsFunc func(ctx context.Context, slug string) (bool, error)

// ResolveUniqueSlug appends -1, -2, ... to baseSlug until exists reports the
// candidate free. The returned slug is guaranteed unused at time of return.
func ResolveUniqueSlug(ctx context.Context, baseSlug string, exists SlugExistsFunc) (string, error) {
	slug := baseSlug
	for counter := 1; ; counter++ {
		taken, err := exists(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("slug existence check: %w", err)
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", baseSlug, counter)
	}
}

// IsValidSlug reports whether s is a well-formed slug.
func IsValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}
