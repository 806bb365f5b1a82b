package simplepublishing

import (
	"time"

	"github.com/google/uuid"
)

// Request/Response DTOs

// CreateArticleRequest contains parameters for creating a new article.
// AuthorEmail identifies an already-authenticated author; authentication
// itself is the caller's concern.
type CreateArticleRequest struct {
	AuthorEmail   string
	Title         string
	Content       string
	Summary       string
	Tags          []string
	CoverImageURL string
	Published     bool
}

// UpdateArticleRequest contains parameters for updating an article. A version
// snapshot is taken before any field is overwritten; ChangeDescription labels
// that snapshot and defaults to "Article updated".
type UpdateArticleRequest struct {
	EditorEmail       string
	ArticleID         uuid.UUID
	Title             string
	Content           string
	Summary           string
	Tags              []string
	CoverImageURL     string
	Published         bool
	ChangeDescription string
}

// AutoSaveDraftRequest contains parameters for draft autosave. DraftID nil
// creates a new draft; otherwise the identified draft is overwritten and its
// LastSavedAt marker refreshed. Autosave never snapshots a version.
type AutoSaveDraftRequest struct {
	AuthorEmail   string
	DraftID       *uuid.UUID
	Title         string
	Content       string
	Summary       string
	Tags          []string
	CoverImageURL string
}

// AdvancedSearchRequest is the conjunctive multi-filter search. Zero-valued
// fields are wildcards.
type AdvancedSearchRequest struct {
	Keywords       string
	AuthorUsername string
	FromDate       *time.Time
	ToDate         *time.Time
	PublishedOnly  bool
	Page           int
	Size           int
}

// PersonalizedFeedRequest selects candidate sources for a user's merged feed.
// The followed-tags source is currently a placeholder drawing from generally
// published articles, since tag-follow relationships are not modeled.
type PersonalizedFeedRequest struct {
	UserEmail              string
	IncludeFollowedAuthors bool
	IncludeFollowedTags    bool
	IncludeTrending        bool
	Page                   int
	Size                   int
}

// ArticleStats is the derived display read model for one article.
type ArticleStats struct {
	ViewCount          int                      `json:"view_count"`
	FormattedViewCount string                   `json:"formatted_view_count"`
	ReadTime           int                      `json:"read_time"`
	Engagement         map[EngagementType]int64 `json:"engagement"`
	TotalClaps         int64                    `json:"total_claps"`
	EngagementRate     float64                  `json:"engagement_rate"`
	QualityScore       float64                  `json:"quality_score"`
	ReadingLevel       string                   `json:"reading_level"`
}
