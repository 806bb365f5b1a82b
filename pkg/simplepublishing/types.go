package simplepublishing

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EngagementType is the domain type for reader interactions with an article.
type EngagementType string

// Engagement type constants (typed).
const (
	EngagementView     EngagementType = "view"
	EngagementLike     EngagementType = "like"
	EngagementBookmark EngagementType = "bookmark"
	EngagementShare    EngagementType = "share"
	EngagementClap     EngagementType = "clap"
)

// EngagementTypes lists all known engagement types, used for stats aggregation.
var EngagementTypes = []EngagementType{
	EngagementView,
	EngagementLike,
	EngagementBookmark,
	EngagementShare,
	EngagementClap,
}

// MaxClapsPerUser caps the clap count a single user can accumulate on one
// article. Reaching the cap is a no-op, not an error.
const MaxClapsPerUser = 50

// ParseEngagementType resolves a case-insensitive label ("VIEW", "clap", ...)
// to a typed engagement type. Unknown labels return ErrInvalidEngagementType.
func ParseEngagementType(label string) (EngagementType, error) {
	t := EngagementType(strings.ToLower(strings.TrimSpace(label)))
	for _, known := range EngagementTypes {
		if t == known {
			return t, nil
		}
	}
	return "", ErrInvalidEngagementType
}

// Repeatable reports whether the engagement type accumulates a per-user count
// (claps) rather than one row per (article, user, type).
func (t EngagementType) Repeatable() bool {
	return t == EngagementClap
}

// Article is the central content entity. ReadTime and ViewCount are derived
// fields owned by the service; everything else is authored state.
type Article struct {
	ID             uuid.UUID  `json:"id"`
	AuthorID       uuid.UUID  `json:"author_id"`
	AuthorUsername string     `json:"author_username"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	Summary        string     `json:"summary,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	CoverImageURL  string     `json:"cover_image_url,omitempty"`
	Slug           string     `json:"slug"`
	Published      bool       `json:"published"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	ReadTime       int        `json:"read_time"`
	ViewCount      int        `json:"view_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastSavedAt    *time.Time `json:"last_saved_at,omitempty"`
}

// ArticleVersion is an immutable snapshot of an article's content fields,
// taken before every content-changing operation. VersionNumber is 1-based and
// unique per article; gaps may appear after explicit version deletion.
type ArticleVersion struct {
	ID                uuid.UUID `json:"id"`
	ArticleID         uuid.UUID `json:"article_id"`
	VersionNumber     int       `json:"version_number"`
	Title             string    `json:"title"`
	Content           string    `json:"content"`
	Summary           string    `json:"summary,omitempty"`
	Tags              []string  `json:"tags,omitempty"`
	CoverImageURL     string    `json:"cover_image_url,omitempty"`
	Slug              string    `json:"slug"`
	ChangeDescription string    `json:"change_description"`
	EditorEmail       string    `json:"editor_email"`
	CreatedAt         time.Time `json:"created_at"`
}

// Engagement is one recorded interaction row. For non-repeatable types there
// is at most one row per (article, user, type); for claps the single row
// carries the accumulated Count in [1, MaxClapsPerUser].
type Engagement struct {
	ID        uuid.UUID      `json:"id"`
	ArticleID uuid.UUID      `json:"article_id"`
	UserID    uuid.UUID      `json:"user_id"`
	Type      EngagementType `json:"type"`
	Count     int            `json:"count,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Tag is a lazily created usage counter behind autocomplete and trending tag
// lists. UsageCount is monotonic non-decreasing.
type Tag struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	UsageCount int64     `json:"usage_count"`
	LastUsedAt time.Time `json:"last_used_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// User is the read model the identity collaborator exposes to the core.
// Following holds the ids of users this user follows.
type User struct {
	ID        uuid.UUID   `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Following []uuid.UUID `json:"following,omitempty"`
	Active    bool        `json:"active"`
}

// PageRequest is a 0-based page window.
type PageRequest struct {
	Page int
	Size int
}

// DefaultPageSize is applied when a page request carries no size.
const DefaultPageSize = 20

// Normalize clamps a page request to sane bounds.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	return p
}

// Offset returns the item offset of the window start.
func (p PageRequest) Offset() int { return p.Page * p.Size }

// ArticlePage is a paginated article result set.
type ArticlePage struct {
	Items      []*Article `json:"items"`
	TotalCount int64      `json:"total_count"`
	Page       int        `json:"page"`
	Size       int        `json:"size"`
}

// SearchFilters describes the conjunctive advanced-search filter. Zero-valued
// fields are wildcards; all present filters are AND-combined.
type SearchFilters struct {
	Keywords       string     // case-insensitive substring against title OR content
	AuthorUsername string     // exact match
	FromDate       *time.Time // publishedAt lower bound (inclusive)
	ToDate         *time.Time // publishedAt upper bound (inclusive)
	PublishedOnly  bool
}

// NormalizeTags lowercases, trims, and deduplicates a tag set, preserving
// first-seen order. Empty entries are dropped.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		name := strings.ToLower(strings.TrimSpace(t))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
