package simplepublishing

import (
	"context"

	"github.com/google/uuid"
)

// Recommendation generation. Candidates are drawn from followed authors
// first, then backfilled from trending articles.

// DefaultRecommendationLimit bounds a generated recommendation set.
const DefaultRecommendationLimit = 10

func (s *service) RecommendedArticleIDs(ctx context.Context, userEmail string, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}

	user, err := s.identity.ResolveByEmail(ctx, userEmail)
	if err != nil {
		return nil, err
	}

	window := PageRequest{Page: 0, Size: limit}
	seen := make(map[uuid.UUID]struct{}, limit)
	ids := make([]uuid.UUID, 0, limit)

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
		for _, a := range byAuthors.Items {
			if len(ids) == limit {
				return ids, nil
			}
			seen[a.ID] = struct{}{}
			ids = append(ids, a.ID)
		}
	}

	trending, err := s.repository.ListTrending(ctx, window)
	if err != nil {
		return nil, err
	}
	for _, a := range trending.Items {
		if len(ids) == limit {
			break
		}
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		ids = append(ids, a.ID)
	}
	return ids, nil
}

func (s *service) GenerateRecommendationsForUser(ctx context.Context, userEmail string) error {
	user, err := s.identity.ResolveByEmail(ctx, userEmail)
	if err != nil {
		return err
	}

	ids, err := s.RecommendedArticleIDs(ctx, userEmail, DefaultRecommendationLimit)
	if err != nil {
		return err
	}

	s.fireEvent(ctx, "recommendation ready", func() error {
		return s.events.RecommendationReady(ctx, user.ID, ids)
	})
	return nil
}

// GenerateRecommendationsForAllUsers runs the per-user generation over every
// active user. A failure for one user is logged and does not stop the batch.
func (s *service) GenerateRecommendationsForAllUsers(ctx context.Context) error {
	users, err := s.identity.ListActiveUsers(ctx)
	if err != nil {
		return err
	}

	for _, user := range users {
		if err := s.GenerateRecommendationsForUser(ctx, user.Email); err != nil {
			s.logger.ErrorContext(ctx, "recommendation generation failed",
				"user_id", user.ID, "error", err)
			continue
		}
	}
	return nil
}
