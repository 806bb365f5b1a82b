package simplepublishing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for article, version, engagement and tag
// persistence. Implementations own all cross-request state; the service never
// caches between calls. The three counter operations (CreateVersion,
// RecordClap, IncrementViewCount) must be atomic with respect to concurrent
// writers on the same key.
type Repository interface {
	// Article operations
	CreateArticle(ctx context.Context, article *Article) error
	GetArticle(ctx context.Context, id uuid.UUID) (*Article, error)
	GetArticleBySlug(ctx context.Context, slug string) (*Article, error)
	UpdateArticle(ctx context.Context, article *Article) error
	// DeleteArticle removes the article and cascades to its versions and
	// engagement rows.
	DeleteArticle(ctx context.Context, id uuid.UUID) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	// IncrementViewCount atomically bumps the article's view counter by one.
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
	ListArticlesByAuthor(ctx context.Context, username string, page PageRequest) (*ArticlePage, error)
	// ListArticlesByAuthors returns published articles by any of the given
	// authors, newest published first.
	ListArticlesByAuthors(ctx context.Context, usernames []string, page PageRequest) (*ArticlePage, error)
	// ListPublished returns published articles ordered by publishedAt descending.
	ListPublished(ctx context.Context, page PageRequest) (*ArticlePage, error)
	// ListTrending returns published articles ordered by viewCount descending,
	// ties broken by publishedAt descending.
	ListTrending(ctx context.Context, page PageRequest) (*ArticlePage, error)
	SearchArticles(ctx context.Context, filters SearchFilters, page PageRequest) (*ArticlePage, error)
	// ListArticlesByTags returns published articles whose tag set contains
	// every queried tag, newest published first.
	ListArticlesByTags(ctx context.Context, tags []string, page PageRequest) (*ArticlePage, error)
	ListDraftsByAuthor(ctx context.Context, authorID uuid.UUID) ([]*Article, error)

	// Version operations. CreateVersion assigns the next version number for
	// the article atomically (max existing + 1) and returns it; the caller
	// must not pre-compute the number.
	CreateVersion(ctx context.Context, version *ArticleVersion) (int, error)
	ListVersions(ctx context.Context, articleID uuid.UUID) ([]*ArticleVersion, error)
	GetVersion(ctx context.Context, articleID uuid.UUID, versionNumber int) (*ArticleVersion, error)
	// DeleteVersion removes one snapshot without renumbering the rest.
	DeleteVersion(ctx context.Context, articleID uuid.UUID, versionNumber int) error

	// Engagement operations. TouchEngagement creates the (article, user, type)
	// row if absent, otherwise refreshes its timestamp. RecordClap atomically
	// increments the per-user clap count up to max and returns the resulting
	// count; at the cap it leaves the row untouched.
	TouchEngagement(ctx context.Context, articleID, userID uuid.UUID, engagementType EngagementType) error
	RecordClap(ctx context.Context, articleID, userID uuid.UUID, max int) (int, error)
	// CountEngagements counts distinct engaging rows of the given type (for
	// claps, the number of distinct users, not the clap sum).
	CountEngagements(ctx context.Context, articleID uuid.UUID, engagementType EngagementType) (int64, error)
	SumClaps(ctx context.Context, articleID uuid.UUID) (int64, error)

	// Tag operations. UpsertTagUsage creates the tag with usage 1 on first
	// use, otherwise increments the counter and refreshes lastUsedAt.
	UpsertTagUsage(ctx context.Context, name string, usedAt time.Time) error
	GetTag(ctx context.Context, name string) (*Tag, error)
	// SearchTagsByPrefix returns up to limit tags with the given
	// case-insensitive name prefix, most used first.
	SearchTagsByPrefix(ctx context.Context, prefix string, limit int) ([]*Tag, error)
	// ListTrendingTags returns the top tags by usage count, ties broken by
	// most recent use.
	ListTrendingTags(ctx context.Context, limit int) ([]*Tag, error)
}

// IdentityResolver is the identity-lookup collaborator. The core never stores
// users; it resolves opaque caller identities to user records on demand.
type IdentityResolver interface {
	ResolveByEmail(ctx context.Context, email string) (*User, error)
	ResolveByUsername(ctx context.Context, username string) (*User, error)
	// ListFollowing resolves the users the given user follows.
	ListFollowing(ctx context.Context, userID uuid.UUID) ([]*User, error)
	// ListActiveUsers returns all active users, used by batch loops.
	ListActiveUsers(ctx context.Context) ([]*User, error)
}

// EventSink defines the interface for lifecycle event handling. Sink failures
// are logged by the service and never fail the triggering operation.
type EventSink interface {
	// ArticleCreated is fired when an article is created
	ArticleCreated(ctx context.Context, article *Article) error

	// ArticleUpdated is fired when an article's content is updated or restored
	ArticleUpdated(ctx context.Context, article *Article) error

	// ArticlePublished is fired when an article transitions to published
	ArticlePublished(ctx context.Context, article *Article) error

	// ArticleUnpublished is fired when an article transitions to unpublished
	ArticleUnpublished(ctx context.Context, article *Article) error

	// ArticleDeleted is fired when an article is deleted
	ArticleDeleted(ctx context.Context, articleID uuid.UUID) error

	// EngagementRecorded is fired after an engagement row is written
	EngagementRecorded(ctx context.Context, articleID, userID uuid.UUID, engagementType EngagementType) error

	// RecommendationReady is fired when a user's recommendations are computed
	RecommendationReady(ctx context.Context, userID uuid.UUID, articleIDs []uuid.UUID) error
}
