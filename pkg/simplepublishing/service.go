package simplepublishing

import (
	"context"

	"github.com/google/uuid"
)

// Service is the main interface for the publishing core: article lifecycle,
// version history, engagement, discovery, and tag tracking. All operations
// execute synchronously inside the caller's unit of work.
type Service interface {
	// Article lifecycle
	CreateArticle(ctx context.Context, req CreateArticleRequest) (*Article, error)
	UpdateArticle(ctx context.Context, req UpdateArticleRequest) (*Article, error)
	GetArticle(ctx context.Context, id uuid.UUID) (*Article, error)
	// GetArticleBySlug returns a published article and counts the read as a
	// view. Unpublished articles are reported as not found.
	GetArticleBySlug(ctx context.Context, slug string) (*Article, error)
	DeleteArticle(ctx context.Context, authorEmail string, id uuid.UUID) error
	PublishArticle(ctx context.Context, authorEmail string, id uuid.UUID) (*Article, error)
	UnpublishArticle(ctx context.Context, authorEmail string, id uuid.UUID) (*Article, error)
	ListArticlesByAuthor(ctx context.Context, username string, page PageRequest) (*ArticlePage, error)
	ListPublishedArticles(ctx context.Context, page PageRequest) (*ArticlePage, error)

	// Drafts
	AutoSaveDraft(ctx context.Context, req AutoSaveDraftRequest) (*Article, error)
	GetDraft(ctx context.Context, authorEmail string, draftID uuid.UUID) (*Article, error)
	ListDrafts(ctx context.Context, authorEmail string) ([]*Article, error)
	DeleteDraft(ctx context.Context, authorEmail string, draftID uuid.UUID) error
	PublishDraft(ctx context.Context, authorEmail string, draftID uuid.UUID) (*Article, error)

	// Version history
	ListVersions(ctx context.Context, articleID uuid.UUID) ([]*ArticleVersion, error)
	GetVersion(ctx context.Context, articleID uuid.UUID, versionNumber int) (*ArticleVersion, error)
	RestoreVersion(ctx context.Context, editorEmail string, articleID uuid.UUID, versionNumber int) (*Article, error)
	DeleteVersion(ctx context.Context, editorEmail string, articleID uuid.UUID, versionNumber int) error

	// Engagement
	RecordEngagement(ctx context.Context, userEmail string, articleID uuid.UUID, typeLabel string) error
	EngagementStats(ctx context.Context, articleID uuid.UUID) (map[EngagementType]int64, error)
	TotalClaps(ctx context.Context, articleID uuid.UUID) (int64, error)
	ArticleStats(ctx context.Context, slug string) (*ArticleStats, error)

	// Discovery
	TrendingArticles(ctx context.Context, page PageRequest) (*ArticlePage, error)
	RecentArticles(ctx context.Context, page PageRequest) (*ArticlePage, error)
	SearchArticles(ctx context.Context, keywords string, page PageRequest) (*ArticlePage, error)
	AdvancedSearch(ctx context.Context, req AdvancedSearchRequest) (*ArticlePage, error)
	SearchByTags(ctx context.Context, tags []string, page PageRequest) (*ArticlePage, error)
	PersonalizedFeed(ctx context.Context, req PersonalizedFeedRequest) (*ArticlePage, error)

	// Tags
	// GetTag returns the usage record for one tag name.
	GetTag(ctx context.Context, name string) (*Tag, error)
	AutocompleteTags(ctx context.Context, prefix string) ([]*Tag, error)
	TrendingTags(ctx context.Context, limit int) ([]*Tag, error)
	ArticlesByTag(ctx context.Context, tag string, page PageRequest) (*ArticlePage, error)

	// Recommendations
	RecommendedArticleIDs(ctx context.Context, userEmail string, limit int) ([]uuid.UUID, error)
	GenerateRecommendationsForUser(ctx context.Context, userEmail string) error
	GenerateRecommendationsForAllUsers(ctx context.Context) error
}
