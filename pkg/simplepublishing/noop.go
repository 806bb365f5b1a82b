package simplepublishing

import (
	"context"

	"github.com/google/uuid"
)

// NoopEventSink is a no-op implementation of EventSink
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-op event sink
func NewNoopEventSink() *NoopEventSink {
	return &NoopEventSink{}
}

func (s *NoopEventSink) ArticleCreated(ctx context.Context, article *Article) error { return nil }

func (s *NoopEventSink) ArticleUpdated(ctx context.Context, article *Article) error { return nil }

func (s *NoopEventSink) ArticlePublished(ctx context.Context, article *Article) error { return nil }

func (s *NoopEventSink) ArticleUnpublished(ctx context.Context, article *Article) error { return nil }

func (s *NoopEventSink) ArticleDeleted(ctx context.Context, articleID uuid.UUID) error { return nil }

func (s *NoopEventSink) EngagementRecorded(ctx context.Context, articleID, userID uuid.UUID, engagementType EngagementType) error {
	return nil
}

func (s *NoopEventSink) RecommendationReady(ctx context.Context, userID uuid.UUID, articleIDs []uuid.UUID) error {
	return nil
}
