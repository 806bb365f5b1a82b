package simplepublishing

import (
	"context"
	"strings"
	"time"
)

// Tag usage tracking and tag-based discovery.

// DefaultAutocompleteLimit bounds the autocomplete result size.
const DefaultAutocompleteLimit = 10

// recordTagUsage bumps the usage counter for every tag on a save. Counts are
// incremented on every save of an article carrying the tag, not diffed against
// the previous tag set, so they measure save activity rather than distinct
// articles.
func (s *service) recordTagUsage(ctx context.Context, tags []string, usedAt time.Time) error {
	for _, name := range tags {
		if err := s.repository.UpsertTagUsage(ctx, name, usedAt); err != nil {
			return err
		}
	}
	return nil
}

// GetTag resolves one tag's usage record. The name is normalized the same way
// tags are normalized on save, so lookups are case-insensitive.
func (s *service) GetTag(ctx context.Context, name string) (*Tag, error) {
	normalized := NormalizeTags([]string{name})
	if len(normalized) == 0 {
		return nil, ErrTagNotFound
	}
	return s.repository.GetTag(ctx, normalized[0])
}

func (s *service) AutocompleteTags(ctx context.Context, prefix string) ([]*Tag, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil, nil
	}
	return s.repository.SearchTagsByPrefix(ctx, prefix, DefaultAutocompleteLimit)
}

func (s *service) TrendingTags(ctx context.Context, limit int) ([]*Tag, error) {
	if limit <= 0 {
		limit = DefaultAutocompleteLimit
	}
	return s.repository.ListTrendingTags(ctx, limit)
}

func (s *service) ArticlesByTag(ctx context.Context, tag string, page PageRequest) (*ArticlePage, error) {
	normalized := NormalizeTags([]string{tag})
	if len(normalized) == 0 {
		return s.repository.ListPublished(ctx, page.Normalize())
	}
	return s.repository.ListArticlesByTags(ctx, normalized, page.Normalize())
}
