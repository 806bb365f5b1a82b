package simplepublishing

import (
	"context"

	"github.com/google/uuid"
)

// Engagement operations.

func (s *service) RecordEngagement(ctx context.Context, userEmail string, articleID uuid.UUID, typeLabel string) error {
	engagementType, err := ParseEngagementType(typeLabel)
	if err != nil {
		return err
	}

	user, err := s.identity.ResolveByEmail(ctx, userEmail)
	if err != nil {
		return err
	}
	article, err := s.repository.GetArticle(ctx, articleID)
	if err != nil {
		return err
	}

	if engagementType.Repeatable() {
		if _, err := s.repository.RecordClap(ctx, article.ID, user.ID, MaxClapsPerUser); err != nil {
			return &ArticleError{ArticleID: article.ID, Op: "record_clap", Err: err}
		}
	} else {
		if err := s.repository.TouchEngagement(ctx, article.ID, user.ID, engagementType); err != nil {
			return &ArticleError{ArticleID: article.ID, Op: "record_engagement", Err: err}
		}
	}

	// A view engagement also bumps the article's display counter.
	if engagementType == EngagementView {
		if err := s.repository.IncrementViewCount(ctx, article.ID); err != nil {
			return &ArticleError{ArticleID: article.ID, Op: "count_view", Err: err}
		}
	}

	s.fireEvent(ctx, "engagement recorded", func() error {
		return s.events.EngagementRecorded(ctx, article.ID, user.ID, engagementType)
	})
	return nil
}

// EngagementStats returns per-type distinct-user counts for an article. For
// claps this is the number of clapping users, not the clap sum.
func (s *service) EngagementStats(ctx context.Context, articleID uuid.UUID) (map[EngagementType]int64, error) {
	if _, err := s.repository.GetArticle(ctx, articleID); err != nil {
		return nil, err
	}

	stats := make(map[EngagementType]int64, len(EngagementTypes))
	for _, engagementType := range EngagementTypes {
		count, err := s.repository.CountEngagements(ctx, articleID, engagementType)
		if err != nil {
			return nil, &ArticleError{ArticleID: articleID, Op: "count_engagements", Err: err}
		}
		stats[engagementType] = count
	}
	return stats, nil
}

func (s *service) TotalClaps(ctx context.Context, articleID uuid.UUID) (int64, error) {
	if _, err := s.repository.GetArticle(ctx, articleID); err != nil {
		return 0, err
	}
	return s.repository.SumClaps(ctx, articleID)
}

// ArticleStats assembles the derived display read model for one article,
// combining stored counters with the pure content-analysis functions.
func (s *service) ArticleStats(ctx context.Context, slug string) (*ArticleStats, error) {
	article, err := s.repository.GetArticleBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	engagement, err := s.EngagementStats(ctx, article.ID)
	if err != nil {
		return nil, err
	}
	claps, err := s.repository.SumClaps(ctx, article.ID)
	if err != nil {
		return nil, &ArticleError{ArticleID: article.ID, Op: "sum_claps", Err: err}
	}

	// Comments are not modeled as an engagement type, so the comments term
	// is always zero. Bookmarks are tracked but never enter the rate.
	rate := EngagementRate(
		article.ViewCount,
		int(engagement[EngagementLike]),
		0,
		int(engagement[EngagementShare]),
	)

	return &ArticleStats{
		ViewCount:          article.ViewCount,
		FormattedViewCount: FormatViewCount(article.ViewCount),
		ReadTime:           article.ReadTime,
		Engagement:         engagement,
		TotalClaps:         claps,
		EngagementRate:     rate,
		QualityScore:       QualityScore(article.Content),
		ReadingLevel:       ReadingLevel(article.Content),
	}, nil
}
