// Package postgres implements the publishing repository on PostgreSQL via
// pgx. Expected schema:
//
//	CREATE TABLE articles (
//	    id              UUID PRIMARY KEY,
//	    author_id       UUID NOT NULL,
//	    author_username TEXT NOT NULL,
//	    title           TEXT NOT NULL,
//	    content         TEXT NOT NULL DEFAULT '',
//	    summary         TEXT NOT NULL DEFAULT '',
//	    tags            TEXT[] NOT NULL DEFAULT '{}',
//	    cover_image_url TEXT NOT NULL DEFAULT '',
//	    slug            TEXT NOT NULL DEFAULT '',
//	    published       BOOLEAN NOT NULL DEFAULT FALSE,
//	    published_at    TIMESTAMPTZ,
//	    read_time       INT NOT NULL DEFAULT 0,
//	    view_count      INT NOT NULL DEFAULT 0,
//	    created_at      TIMESTAMPTZ NOT NULL,
//	    updated_at      TIMESTAMPTZ NOT NULL,
//	    last_saved_at   TIMESTAMPTZ
//	);
//	CREATE UNIQUE INDEX articles_slug_idx ON articles (slug) WHERE slug <> '';
//
//	CREATE TABLE article_versions (
//	    id                 UUID PRIMARY KEY,
//	    article_id         UUID NOT NULL REFERENCES articles (id) ON DELETE CASCADE,
//	    version_number     INT NOT NULL,
//	    title              TEXT NOT NULL,
//	    content            TEXT NOT NULL DEFAULT '',
//	    summary            TEXT NOT NULL DEFAULT '',
//	    tags               TEXT[] NOT NULL DEFAULT '{}',
//	    cover_image_url    TEXT NOT NULL DEFAULT '',
//	    slug               TEXT NOT NULL DEFAULT '',
//	    change_description TEXT NOT NULL DEFAULT '',
//	    editor_email       TEXT NOT NULL DEFAULT '',
//	    created_at         TIMESTAMPTZ NOT NULL,
//	    UNIQUE (article_id, version_number)
//	);
//
//	CREATE TABLE engagements (
//	    id         UUID PRIMARY KEY,
//	    article_id UUID NOT NULL REFERENCES articles (id) ON DELETE CASCADE,
//	    user_id    UUID NOT NULL,
//	    type       TEXT NOT NULL,
//	    count      INT NOT NULL DEFAULT 0,
//	    created_at TIMESTAMPTZ NOT NULL,
//	    UNIQUE (article_id, user_id, type)
//	);
//
//	CREATE TABLE tags (
//	    id           UUID PRIMARY KEY,
//	    name         TEXT NOT NULL UNIQUE,
//	    usage_count  BIGINT NOT NULL DEFAULT 0,
//	    last_used_at TIMESTAMPTZ NOT NULL,
//	    created_at   TIMESTAMPTZ NOT NULL
//	);
//
//	CREATE TABLE users (
//	    id       UUID PRIMARY KEY,
//	    username TEXT NOT NULL UNIQUE,
//	    email    TEXT NOT NULL UNIQUE,
//	    active   BOOLEAN NOT NULL DEFAULT TRUE
//	);
//	CREATE TABLE user_follows (
//	    follower_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
//	    followed_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
//	    PRIMARY KEY (follower_id, followed_id)
//	);
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-publishing/pkg/simplepublishing"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements simplepublishing.Repository and
// simplepublishing.IdentityResolver using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "slug") {
				return fmt.Errorf("slug already exists")
			}
			if strings.Contains(pgErr.ConstraintName, "version") {
				return fmt.Errorf("version number already exists")
			}
			return fmt.Errorf("duplicate entry")
		case "23503": // foreign_key_violation
			return simplepublishing.ErrArticleNotFound
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

const articleColumns = `id, author_id, author_username, title, content, summary,
       tags, cover_image_url, slug, published, published_at,
       read_time, view_count, created_at, updated_at, last_saved_at`

func scanArticle(row pgx.Row) (*simplepublishing.Article, error) {
	var a simplepublishing.Article
	err := row.Scan(
		&a.ID, &a.AuthorID, &a.AuthorUsername, &a.Title, &a.Content, &a.Summary,
		&a.Tags, &a.CoverImageURL, &a.Slug, &a.Published, &a.PublishedAt,
		&a.ReadTime, &a.ViewCount, &a.CreatedAt, &a.UpdatedAt, &a.LastSavedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Article operations

func (r *Repository) CreateArticle(ctx context.Context, article *simplepublishing.Article) error {
	query := `
		INSERT INTO articles (
			id, author_id, author_username, title, content, summary,
			tags, cover_image_url, slug, published, published_at,
			read_time, view_count, created_at, updated_at, last_saved_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.db.Exec(ctx, query,
		article.ID, article.AuthorID, article.AuthorUsername, article.Title,
		article.Content, article.Summary, article.Tags, article.CoverImageURL,
		article.Slug, article.Published, article.PublishedAt,
		article.ReadTime, article.ViewCount, article.CreatedAt, article.UpdatedAt,
		article.LastSavedAt)
	if err != nil {
		return r.handlePostgresError("create article", err)
	}
	return nil
}

func (r *Repository) GetArticle(ctx context.Context, id uuid.UUID) (*simplepublishing.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`

	article, err := scanArticle(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplepublishing.ErrArticleNotFound
		}
		return nil, r.handlePostgresError("get article", err)
	}
	return article, nil
}

func (r *Repository) GetArticleBySlug(ctx context.Context, slug string) (*simplepublishing.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE slug = $1`

	article, err := scanArticle(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplepublishing.ErrArticleNotFound
		}
		return nil, r.handlePostgresError("get article by slug", err)
	}
	return article, nil
}

func (r *Repository) UpdateArticle(ctx context.Context, article *simplepublishing.Article) error {
	// view_count is deliberately not written here; IncrementViewCount owns it.
	query := `
		UPDATE articles SET
			title = $2, content = $3, summary = $4, tags = $5,
			cover_image_url = $6, slug = $7, published = $8, published_at = $9,
			read_time = $10, updated_at = $11, last_saved_at = $12
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		article.ID, article.Title, article.Content, article.Summary, article.Tags,
		article.CoverImageURL, article.Slug, article.Published, article.PublishedAt,
		article.ReadTime, article.UpdatedAt, article.LastSavedAt)
	if err != nil {
		return r.handlePostgresError("update article", err)
	}
	if tag.RowsAffected() == 0 {
		return simplepublishing.ErrArticleNotFound
	}
	return nil
}

func (r *Repository) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	// Versions and engagements cascade via foreign keys.
	tag, err := r.db.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete article", err)
	}
	if tag.RowsAffected() == 0 {
		return simplepublishing.ErrArticleNotFound
	}
	return nil
}

func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM articles WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, r.handlePostgresError("slug exists", err)
	}
	return exists, nil
}

func (r *Repository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE articles SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("increment view count", err)
	}
	if tag.RowsAffected() == 0 {
		return simplepublishing.ErrArticleNotFound
	}
	return nil
}

func (r *Repository) ListArticlesByAuthor(ctx context.Context, username string, page simplepublishing.PageRequest) (*simplepublishing.ArticlePage, error) {
	return r.listArticles(ctx, page,
		`author_username = $1 AND published`, username)
}

func (r *Repository) ListArticlesByAuthors(ctx context.Context, usernames []string, page simplepublishing.PageRequest) (*simplepublishing.ArticlePage, error) {
	return r.listArticles(ctx, page,
		`author_username = ANY($1) AND published`, usernames)
}

func (r *Repository) ListPublished(ctx context.Context, page simplepublishing.PageRequest) (*simplepublishing.ArticlePage, error) {
	return r.listArticles(ctx, page, `published`)
}

func (r *Repository) ListTrending(ctx context.Context, page simplepublishing.PageRequest) (*simplepublishing.ArticlePage, error) {
	page = page.Normalize()

	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM articles WHERE published`).Scan(&total); err != nil {
		return nil, r.handlePostgresError("count trending", err)
	}

	query := `SELECT ` + articleColumns + `
		FROM articles WHERE published
		ORDER BY view_count DESC, published_at DESC NULLS LAST
		LIMIT $1 OFFSET $2`

	items, err := r.queryArticles(ctx, query, page.Size, page.Offset())
	if err != nil {
		return nil, r.handlePostgresError("list trending", err)
	}
	return &simplepublishing.ArticlePage{Items: items, TotalCount: total, Page: page.Page, Size: page.Size}, nil
}

func (r *Repository) SearchArticles(ctx context.Context, filters simplepublishing.SearchFilters, page simplepublishing.PageRequest) (*simplepublishing.ArticlePage, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}

	if filters.PublishedOnly {
		conditions = append(conditions, "published")
	}
	if filters.Keywords != "" {
		args = append(args, "%"+filters.Keywords+"%")
		n := len(args)
		conditions = append(conditions,
			fmt.Sprintf("(title ILIKE $%d OR content ILIKE $%d)", n, n))
	}
	if filters.AuthorUsername != "" {
		args = append(args, filters.AuthorUsername)
		conditions = append(conditions, fmt.Sprintf("author_username = $%d", len(args)))
	}
	if filters.FromDate != nil {
		args = append(args, *filters.FromDate)
		conditions = append(conditions, fmt.Sprintf("published_at >= $%d", len(args)))
	}
	if filters.ToDate != nil {
		args = append(args, *filters.ToDate)
		conditions = append(conditions, fmt.Sprintf("published_at <= $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")
	return r.listArticles(ctx, page, where, args...)
}

func (r *Repository) ListArticlesByTags(ctx context.Context, tags []string, page simplepublishing.PageRequest) (*simplepublishing.ArticlePage, error) {
	// @> is array containment: the article's tag set must be a superset.
	return r.listArticles(ctx, page, `published AND tags @> $1`, tags)
}

func (r *Repository) ListDraftsByAuthor(ctx context.Context, authorID uuid.UUID) ([]*simplepublishing.Article, error) {
	query := `SELECT ` + articleColumns + `
		FROM articles
		WHERE author_id = $1 AND NOT published
		ORDER BY updated_at DESC`

	items, err := r.queryArticles(ctx, query, authorID)
	if err != nil {
		return nil, r.handlePostgresError("list drafts", err)
	}
	return items, nil
}

// listArticles runs the shared count + page query pair for a WHERE clause
// whose placeholders start at $1. Results are ordered newest published first.
func (r *Repository) listArticles(ctx context.Context, page simplepublishing.PageRequest, where string, args ...interface{}) (*simplepublishing.ArticlePage, error) {
	page = page.Normalize()

	var total int64
	countQuery := `SELECT COUNT(*) FROM articles WHERE ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, r.handlePostgresError("count articles", err)
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM articles WHERE %s
		ORDER BY published_at DESC NULLS LAST
		LIMIT $%d OFFSET $%d`, articleColumns, where, n+1, n+2)
	args = append(args, page.Size, page.Offset())

	items, err := r.queryArticles(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list articles", err)
	}
	return &simplepublishing.ArticlePage{Items: items, TotalCount: total, Page: page.Page, Size: page.Size}, nil
}

func (r *Repository) queryArticles(ctx context.Context, query string, args ...interface{}) ([]*simplepublishing.Article, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*simplepublishing.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, article)
	}
	return result, rows.Err()
}

// Version operations

func (r *Repository) CreateVersion(ctx context.Context, version *simplepublishing.ArticleVersion) (int, error) {
	// The version number is assigned inside the INSERT so concurrent
	// snapshots of the same article never collide; the unique
	// (article_id, version_number) index backstops the race.
	query := `
		INSERT INTO article_versions (
			id, article_id, version_number, title, content, summary,
			tags, cover_image_url, slug, change_description, editor_email, created_at
		)
		SELECT $1, $2,
		       COALESCE(MAX(version_number), 0) + 1,
		       $3, $4, $5, $6, $7, $8, $9, $10, $11
		FROM article_versions WHERE article_id = $2
		RETURNING version_number`

	var number int
	err := r.db.QueryRow(ctx, query,
		version.ID, version.ArticleID, version.Title, version.Content,
		version.Summary, version.Tags, version.CoverImageURL, version.Slug,
		version.ChangeDescription, version.EditorEmail, version.CreatedAt).Scan(&number)
	if err != nil {
		return 0, r.handlePostgresError("create version", err)
	}
	version.VersionNumber = number
	return number, nil
}

const versionColumns = `id, article_id, version_number, title, content, summary,
       tags, cover_image_url, slug, change_description, editor_email, created_at`

func scanVersion(row pgx.Row) (*simplepublishing.ArticleVersion, error) {
	var v simplepublishing.ArticleVersion
	err := row.Scan(
		&v.ID, &v.ArticleID, &v.VersionNumber, &v.Title, &v.Content, &v.Summary,
		&v.Tags, &v.CoverImageURL, &v.Slug, &v.ChangeDescription, &v.EditorEmail,
		&v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Repository) ListVersions(ctx context.Context, articleID uuid.UUID) ([]*simplepublishing.ArticleVersion, error) {
	query := `SELECT ` + versionColumns + `
		FROM article_versions WHERE article_id = $1
		ORDER BY version_number DESC`

	rows, err := r.db.Query(ctx, query, articleID)
	if err != nil {
		return nil, r.handlePostgresError("list versions", err)
	}
	defer rows.Close()

	var result []*simplepublishing.ArticleVersion
	for rows.Next() {
		version, err := scanVersion(rows)
		if err != nil {
			return nil, r.handlePostgresError("list versions", err)
		}
		result = append(result, version)
	}
	return result, rows.Err()
}

func (r *Repository) GetVersion(ctx context.Context, articleID uuid.UUID, versionNumber int) (*simplepublishing.ArticleVersion, error) {
	query := `SELECT ` + versionColumns + `
		FROM article_versions WHERE article_id = $1 AND version_number = $2`

	version, err := scanVersion(r.db.QueryRow(ctx, query, articleID, versionNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplepublishing.ErrVersionNotFound
		}
		return nil, r.handlePostgresError("get version", err)
	}
	return version, nil
}

func (r *Repository) DeleteVersion(ctx context.Context, articleID uuid.UUID, versionNumber int) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM article_versions WHERE article_id = $1 AND version_number = $2`,
		articleID, versionNumber)
	if err != nil {
		return r.handlePostgresError("delete version", err)
	}
	if tag.RowsAffected() == 0 {
		return simplepublishing.ErrVersionNotFound
	}
	return nil
}

// Engagement operations

func (r *Repository) TouchEngagement(ctx context.Context, articleID, userID uuid.UUID, engagementType simplepublishing.EngagementType) error {
	query := `
		INSERT INTO engagements (id, article_id, user_id, type, count, created_at)
		VALUES ($1, $2, $3, $4, 0, $5)
		ON CONFLICT (article_id, user_id, type)
		DO UPDATE SET created_at = EXCLUDED.created_at`

	_, err := r.db.Exec(ctx, query,
		uuid.New(), articleID, userID, engagementType, time.Now().UTC())
	if err != nil {
		return r.handlePostgresError("touch engagement", err)
	}
	return nil
}

func (r *Repository) RecordClap(ctx context.Context, articleID, userID uuid.UUID, max int) (int, error) {
	// LEAST clamps at the cap, so clapping past it is a silent no-op.
	query := `
		INSERT INTO engagements (id, article_id, user_id, type, count, created_at)
		VALUES ($1, $2, $3, $4, 1, $5)
		ON CONFLICT (article_id, user_id, type)
		DO UPDATE SET count = LEAST(engagements.count + 1, $6),
		              created_at = CASE WHEN engagements.count < $6 THEN EXCLUDED.created_at ELSE engagements.created_at END
		RETURNING count`

	var count int
	err := r.db.QueryRow(ctx, query,
		uuid.New(), articleID, userID, simplepublishing.EngagementClap,
		time.Now().UTC(), max).Scan(&count)
	if err != nil {
		return 0, r.handlePostgresError("record clap", err)
	}
	return count, nil
}

func (r *Repository) CountEngagements(ctx context.Context, articleID uuid.UUID, engagementType simplepublishing.EngagementType) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM engagements WHERE article_id = $1 AND type = $2`,
		articleID, engagementType).Scan(&count)
	if err != nil {
		return 0, r.handlePostgresError("count engagements", err)
	}
	return count, nil
}

func (r *Repository) SumClaps(ctx context.Context, articleID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(count), 0) FROM engagements WHERE article_id = $1 AND type = $2`,
		articleID, simplepublishing.EngagementClap).Scan(&sum)
	if err != nil {
		return 0, r.handlePostgresError("sum claps", err)
	}
	return sum, nil
}

// Tag operations

func (r *Repository) UpsertTagUsage(ctx context.Context, name string, usedAt time.Time) error {
	query := `
		INSERT INTO tags (id, name, usage_count, last_used_at, created_at)
		VALUES ($1, $2, 1, $3, $3)
		ON CONFLICT (name)
		DO UPDATE SET usage_count = tags.usage_count + 1, last_used_at = EXCLUDED.last_used_at`

	_, err := r.db.Exec(ctx, query, uuid.New(), name, usedAt)
	if err != nil {
		return r.handlePostgresError("upsert tag usage", err)
	}
	return nil
}

func (r *Repository) GetTag(ctx context.Context, name string) (*simplepublishing.Tag, error) {
	var t simplepublishing.Tag
	err := r.db.QueryRow(ctx,
		`SELECT id, name, usage_count, last_used_at, created_at FROM tags WHERE name = $1`,
		name).Scan(&t.ID, &t.Name, &t.UsageCount, &t.LastUsedAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplepublishing.ErrTagNotFound
		}
		return nil, r.handlePostgresError("get tag", err)
	}
	return &t, nil
}

// likePatternEscaper quotes the LIKE metacharacters so a caller-supplied
// prefix matches literally instead of as a pattern.
var likePatternEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLikePattern(s string) string {
	return likePatternEscaper.Replace(s)
}

func (r *Repository) SearchTagsByPrefix(ctx context.Context, prefix string, limit int) ([]*simplepublishing.Tag, error) {
	query := `
		SELECT id, name, usage_count, last_used_at, created_at
		FROM tags
		WHERE name ILIKE $1 || '%'
		ORDER BY usage_count DESC, last_used_at DESC
		LIMIT $2`

	return r.queryTags(ctx, "search tags", query, escapeLikePattern(prefix), limit)
}

func (r *Repository) ListTrendingTags(ctx context.Context, limit int) ([]*simplepublishing.Tag, error) {
	query := `
		SELECT id, name, usage_count, last_used_at, created_at
		FROM tags
		ORDER BY usage_count DESC, last_used_at DESC
		LIMIT $1`

	return r.queryTags(ctx, "list trending tags", query, limit)
}

func (r *Repository) queryTags(ctx context.Context, operation, query string, args ...interface{}) ([]*simplepublishing.Tag, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError(operation, err)
	}
	defer rows.Close()

	var result []*simplepublishing.Tag
	for rows.Next() {
		var t simplepublishing.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.UsageCount, &t.LastUsedAt, &t.CreatedAt); err != nil {
			return nil, r.handlePostgresError(operation, err)
		}
		result = append(result, &t)
	}
	return result, rows.Err()
}

// Identity operations

func (r *Repository) ResolveByEmail(ctx context.Context, email string) (*simplepublishing.User, error) {
	return r.resolveUser(ctx, `LOWER(email) = LOWER($1)`, email)
}

func (r *Repository) ResolveByUsername(ctx context.Context, username string) (*simplepublishing.User, error) {
	return r.resolveUser(ctx, `username = $1`, username)
}

func (r *Repository) resolveUser(ctx context.Context, where string, arg interface{}) (*simplepublishing.User, error) {
	var u simplepublishing.User
	query := `SELECT id, username, email, active FROM users WHERE ` + where
	err := r.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Email, &u.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplepublishing.ErrUserNotFound
		}
		return nil, r.handlePostgresError("resolve user", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT followed_id FROM user_follows WHERE follower_id = $1`, u.ID)
	if err != nil {
		return nil, r.handlePostgresError("resolve user", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, r.handlePostgresError("resolve user", err)
		}
		u.Following = append(u.Following, id)
	}
	return &u, rows.Err()
}

func (r *Repository) ListFollowing(ctx context.Context, userID uuid.UUID) ([]*simplepublishing.User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.active
		FROM users u
		JOIN user_follows f ON f.followed_id = u.id
		WHERE f.follower_id = $1`

	return r.queryUsers(ctx, "list following", query, userID)
}

func (r *Repository) ListActiveUsers(ctx context.Context) ([]*simplepublishing.User, error) {
	query := `SELECT id, username, email, active FROM users WHERE active ORDER BY username`
	return r.queryUsers(ctx, "list active users", query)
}

func (r *Repository) queryUsers(ctx context.Context, operation, query string, args ...interface{}) ([]*simplepublishing.User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError(operation, err)
	}
	defer rows.Close()

	var result []*simplepublishing.User
	for rows.Next() {
		var u simplepublishing.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Active); err != nil {
			return nil, r.handlePostgresError(operation, err)
		}
		result = append(result, &u)
	}
	return result, rows.Err()
}
