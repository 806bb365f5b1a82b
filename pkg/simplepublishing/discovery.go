package simplepublishing

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Discovery operations: trending, recent, search, and the personalized feed.

func (s *service) TrendingArticles(ctx context.Context, page PageRequest) (*ArticlePage, error) {
	return s.repository.ListTrending(ctx, page.Normalize())
}

func (s *service) RecentArticles(ctx context.Context, page PageRequest) (*ArticlePage, error) {
	return s.repository.ListPublished(ctx, page.Normalize())
}

func (s *service) SearchArticles(ctx context.Context, keywords string, page PageRequest) (*ArticlePage, error) {
	filters := SearchFilters{
		Keywords:      strings.TrimSpace(keywords),
		PublishedOnly: true,
	}
	return s.repository.SearchArticles(ctx, filters, page.Normalize())
}

func (s *service) AdvancedSearch(ctx context.Context, req AdvancedSearchRequest) (*ArticlePage, error) {
	filters := SearchFilters{
		Keywords:       strings.TrimSpace(req.Keywords),
		AuthorUsername: strings.TrimSpace(req.AuthorUsername),
		FromDate:       req.FromDate,
		ToDate:         req.ToDate,
		PublishedOnly:  req.PublishedOnly,
	}
	page := PageRequest{Page: req.Page, Size: req.Size}.Normalize()
	return s.repository.SearchArticles(ctx, filters, page)
}

func (s *service) SearchByTags(ctx context.Context, tags []string, page PageRequest) (*ArticlePage, error) {
	normalized := NormalizeTags(tags)
	if len(normalized) == 0 {
		return s.repository.ListPublished(ctx, page.Normalize())
	}
	return s.repository.ListArticlesByTags(ctx, normalized, page.Normalize())
}

// PersonalizedFeed merges up to three candidate sources (followed authors,
// followed tags, trending), deduplicates by article id, orders by publishedAt
// descending, and returns the requested page window. Each source is fetched
// with a window of (page+1)*size items so every article that could fall inside
// the requested window is present before the merge.
func (s *service) PersonalizedFeed(ctx context.Context, req PersonalizedFeedRequest) (*ArticlePage, error) {
	user, err := s.identity.ResolveByEmail(ctx, req.UserEmail)
	if err != nil {
		return nil, err
	}

	page := PageRequest{Page: req.Page, Size: req.Size}.Normalize()
	window := PageRequest{Page: 0, Size: (page.Page + 1) * page.Size}

	var candidates []*Article

	if req.IncludeFollowedAuthors {
		followed, err := s.identity.ListFollowing(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if len(followed) > 0 {
			usernames := make([]string, 0, len(followed))
			for _, f := range followed {
				usernames = append(usernames, f.Username)
			}
			byAuthors, err := s.repository.ListArticlesByAuthors(ctx, usernames, window)
			if err != nil {
				return nil, err
			}
			candidates = append(candidates, byAuthors.Items...)
		}
	}

	if req.IncludeFollowedTags {
		// Tag-follow relationships are not modeled yet; this source draws from
		// the general published stream.
		recent, err := s.repository.ListPublished(ctx, window)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, recent.Items...)
	}

	if req.IncludeTrending {
		trending, err := s.repository.ListTrending(ctx, window)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, trending.Items...)
	}

	merged := dedupeArticles(candidates)
	sortByPublishedAtDesc(merged)

	total := int64(len(merged))
	start := page.Offset()
	if start > len(merged) {
		start = len(merged)
	}
	end := start + page.Size
	if end > len(merged) {
		end = len(merged)
	}

	return &ArticlePage{
		Items:      merged[start:end],
		TotalCount: total,
		Page:       page.Page,
		Size:       page.Size,
	}, nil
}

// dedupeArticles keeps the first occurrence of each article id.
func dedupeArticles(articles []*Article) []*Article {
	seen := make(map[uuid.UUID]struct{}, len(articles))
	out := make([]*Article, 0, len(articles))
	for _, a := range articles {
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		out = append(out, a)
	}
	return out
}

// sortByPublishedAtDesc orders newest published first; articles without a
// publish timestamp sort last.
func sortByPublishedAtDesc(articles []*Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		pi, pj := articles[i].PublishedAt, articles[j].PublishedAt
		switch {
		case pi == nil:
			return false
		case pj == nil:
			return true
		default:
			return pi.After(*pj)
		}
	})
}
