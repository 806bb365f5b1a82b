package simplepublishing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repository Repository
	identity   IdentityResolver
	events     EventSink
	logger     *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the persistence collaborator for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithIdentityResolver sets the identity-lookup collaborator
func WithIdentityResolver(resolver IdentityResolver) Option {
	return func(s *service) {
		s.identity = resolver
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.events = sink
	}
}

// WithLogger sets the logger used by batch loops and event-sink failures
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.identity == nil {
		return nil, fmt.Errorf("identity resolver is required")
	}
	if s.events == nil {
		s.events = NewNoopEventSink()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s, nil
}

// Article lifecycle

func (s *service) CreateArticle(ctx context.Context, req CreateArticleRequest) (*Article, error) {
	author, err := s.identity.ResolveByEmail(ctx, req.AuthorEmail)
	if err != nil {
		return nil, err
	}

	baseSlug := GenerateSlug(req.Title)
	if baseSlug == "" {
		return nil, ErrInvalidTitle
	}
	slug, err := ResolveUniqueSlug(ctx, baseSlug, s.repository.SlugExists)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	article := &Article{
		ID:             uuid.New(),
		AuthorID:       author.ID,
		AuthorUsername: author.Username,
		Title:          req.Title,
		Content:        req.Content,
		Summary:        req.Summary,
		Tags:           NormalizeTags(req.Tags),
		CoverImageURL:  req.CoverImageURL,
		Slug:           slug,
		Published:      req.Published,
		ReadTime:       ReadTime(req.Content),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.Published {
		article.PublishedAt = &now
	}

	if err := s.repository.CreateArticle(ctx, article); err != nil {
		return nil, &ArticleError{ArticleID: article.ID, Op: "create", Err: err}
	}

	if _, err := s.snapshot(ctx, article, req.AuthorEmail, "Initial version"); err != nil {
		return nil, err
	}

	if err := s.recordTagUsage(ctx, article.Tags, now); err != nil {
		return nil, err
	}

	s.fireEvent(ctx, "article created", func() error { return s.events.ArticleCreated(ctx, article) })
	return article, nil
}

func (s *service) UpdateArticle(ctx context.Context, req UpdateArticleRequest) (*Article, error) {
	article, _, err := s.authorizedArticle(ctx, req.EditorEmail, req.ArticleID)
	if err != nil {
		return nil, err
	}

	changeDescription := req.ChangeDescription
	if changeDescription == "" {
		changeDescription = "Article updated"
	}
	// Snapshot before any field is overwritten; history would be lost otherwise.
	if _, err := s.snapshot(ctx, article, req.EditorEmail, changeDescription); err != nil {
		return nil, err
	}

	article.Title = req.Title
	article.Content = req.Content
	article.Summary = req.Summary
	article.Tags = NormalizeTags(req.Tags)
	article.CoverImageURL = req.CoverImageURL
	article.ReadTime = ReadTime(req.Content)

	// Re-derive the slug only when the title changed it.
	newSlug := GenerateSlug(req.Title)
	if newSlug == "" {
		return nil, ErrInvalidTitle
	}
	if newSlug != article.Slug {
		unique, err := ResolveUniqueSlug(ctx, newSlug, s.repository.SlugExists)
		if err != nil {
			return nil, err
		}
		article.Slug = unique
	}

	now := time.Now().UTC()
	published, unpublished := false, false
	if req.Published && !article.Published {
		article.Published = true
		article.PublishedAt = &now
		published = true
	} else if !req.Published && article.Published {
		article.Published = false
		article.PublishedAt = nil
		unpublished = true
	}
	article.UpdatedAt = now

	if err := s.repository.UpdateArticle(ctx, article); err != nil {
		return nil, &ArticleError{ArticleID: article.ID, Op: "update", Err: err}
	}

	if err := s.recordTagUsage(ctx, article.Tags, now); err != nil {
		return nil, err
	}

	s.fireEvent(ctx, "article updated", func() error { return s.events.ArticleUpdated(ctx, article) })
	if published {
		s.fireEvent(ctx, "article published", func() error { return s.events.ArticlePublished(ctx, article) })
	}
	if unpublished {
		s.fireEvent(ctx, "article unpublished", func() error { return s.events.ArticleUnpublished(ctx, article) })
	}
	return article, nil
}

func (s *service) GetArticle(ctx context.Context, id uuid.UUID) (*Article, error) {
	return s.repository.GetArticle(ctx, id)
}

func (s *service) GetArticleBySlug(ctx context.Context, slug string) (*Article, error) {
	article, err := s.repository.GetArticleBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !article.Published {
		// Drafts are invisible on the public read path.
		return nil, ErrArticleNotFound
	}

	if err := s.repository.IncrementViewCount(ctx, article.ID); err != nil {
		return nil, &ArticleError{ArticleID: article.ID, Op: "count_view", Err: err}
	}
	article.ViewCount++
	return article, nil
}

func (s *service) DeleteArticle(ctx context.Context, authorEmail string, id uuid.UUID) error {
	article, _, err := s.authorizedArticle(ctx, authorEmail, id)
	if err != nil {
		return err
	}

	if err := s.repository.DeleteArticle(ctx, article.ID); err != nil {
		return &ArticleError{ArticleID: article.ID, Op: "delete", Err: err}
	}

	s.fireEvent(ctx, "article deleted", func() error { return s.events.ArticleDeleted(ctx, article.ID) })
	return nil
}

func (s *service) PublishArticle(ctx context.Context, authorEmail string, id uuid.UUID) (*Article, error) {
	article, _, err := s.authorizedArticle(ctx, authorEmail, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	article.Published = true
	article.PublishedAt = &now
	article.UpdatedAt = now
	if err := s.repository.UpdateArticle(ctx, article); err != nil {
		return nil, &ArticleError{ArticleID: article.ID, Op: "publish", Err: err}
	}

	s.fireEvent(ctx, "article published", func() error { return s.events.ArticlePublished(ctx, article) })
	return article, nil
}

func (s *service) UnpublishArticle(ctx context.Context, authorEmail string, id uuid.UUID) (*Article, error) {
	article, _, err := s.authorizedArticle(ctx, authorEmail, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	article.Published = false
	article.PublishedAt = nil
	article.UpdatedAt = now
	if err := s.repository.UpdateArticle(ctx, article); err != nil {
		return nil, &ArticleError{ArticleID: article.ID, Op: "unpublish", Err: err}
	}

	s.fireEvent(ctx, "article unpublished", func() error { return s.events.ArticleUnpublished(ctx, article) })
	return article, nil
}

func (s *service) ListArticlesByAuthor(ctx context.Context, username string, page PageRequest) (*ArticlePage, error) {
	return s.repository.ListArticlesByAuthor(ctx, username, page.Normalize())
}

func (s *service) ListPublishedArticles(ctx context.Context, page PageRequest) (*ArticlePage, error) {
	return s.repository.ListPublished(ctx, page.Normalize())
}

// Drafts

func (s *service) AutoSaveDraft(ctx context.Context, req AutoSaveDraftRequest) (*Article, error) {
	author, err := s.identity.ResolveByEmail(ctx, req.AuthorEmail)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var draft *Article
	if req.DraftID != nil {
		draft, err = s.repository.GetArticle(ctx, *req.DraftID)
		if err != nil {
			return nil, err
		}
		if draft.AuthorID != author.ID {
			return nil, ErrNotArticleAuthor
		}
		if draft.Published {
			return nil, ErrNotDraft
		}
	} else {
		draft = &Article{
			ID:             uuid.New(),
			AuthorID:       author.ID,
			AuthorUsername: author.Username,
			CreatedAt:      now,
		}
	}

	draft.Title = req.Title
	draft.Content = req.Content
	draft.Summary = req.Summary
	draft.Tags = NormalizeTags(req.Tags)
	draft.CoverImageURL = req.CoverImageURL
	// Read time stays 0 until the draft is published.
	draft.ReadTime = 0
	draft.UpdatedAt = now
	draft.LastSavedAt = &now

	if req.DraftID != nil {
		if err := s.repository.UpdateArticle(ctx, draft); err != nil {
			return nil, &ArticleError{ArticleID: draft.ID, Op: "autosave", Err: err}
		}
	} else {
		if err := s.repository.CreateArticle(ctx, draft); err != nil {
			return nil, &ArticleError{ArticleID: draft.ID, Op: "autosave", Err: err}
		}
	}
	return draft, nil
}

func (s *service) GetDraft(ctx context.Context, authorEmail string, draftID uuid.UUID) (*Article, error) {
	draft, _, err := s.authorizedArticle(ctx, authorEmail, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Published {
		return nil, ErrNotDraft
	}
	return draft, nil
}

func (s *service) ListDrafts(ctx context.Context, authorEmail string) ([]*Article, error) {
	author, err := s.identity.ResolveByEmail(ctx, authorEmail)
	if err != nil {
		return nil, err
	}
	return s.repository.ListDraftsByAuthor(ctx, author.ID)
}

func (s *service) DeleteDraft(ctx context.Context, authorEmail string, draftID uuid.UUID) error {
	draft, _, err := s.authorizedArticle(ctx, authorEmail, draftID)
	if err != nil {
		return err
	}
	if draft.Published {
		return ErrNotDraft
	}
	if err := s.repository.DeleteArticle(ctx, draft.ID); err != nil {
		return &ArticleError{ArticleID: draft.ID, Op: "delete_draft", Err: err}
	}
	return nil
}

func (s *service) PublishDraft(ctx context.Context, authorEmail string, draftID uuid.UUID) (*Article, error) {
	draft, _, err := s.authorizedArticle(ctx, authorEmail, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Published {
		return nil, ErrNotDraft
	}

	// The draft gets its slug and derived fields on first publish.
	if draft.Slug == "" {
		baseSlug := GenerateSlug(draft.Title)
		if baseSlug == "" {
			return nil, ErrInvalidTitle
		}
		slug, err := ResolveUniqueSlug(ctx, baseSlug, s.repository.SlugExists)
		if err != nil {
			return nil, err
		}
		draft.Slug = slug
	}

	now := time.Now().UTC()
	draft.Published = true
	draft.PublishedAt = &now
	draft.ReadTime = ReadTime(draft.Content)
	draft.UpdatedAt = now

	if err := s.repository.UpdateArticle(ctx, draft); err != nil {
		return nil, &ArticleError{ArticleID: draft.ID, Op: "publish_draft", Err: err}
	}

	if _, err := s.snapshot(ctx, draft, authorEmail, "Initial version"); err != nil {
		return nil, err
	}
	if err := s.recordTagUsage(ctx, draft.Tags, now); err != nil {
		return nil, err
	}

	s.fireEvent(ctx, "article published", func() error { return s.events.ArticlePublished(ctx, draft) })
	return draft, nil
}

// Helpers

// authorizedArticle loads an article and verifies the acting user owns it.
func (s *service) authorizedArticle(ctx context.Context, actorEmail string, articleID uuid.UUID) (*Article, *User, error) {
	article, err := s.repository.GetArticle(ctx, articleID)
	if err != nil {
		return nil, nil, err
	}
	actor, err := s.identity.ResolveByEmail(ctx, actorEmail)
	if err != nil {
		return nil, nil, err
	}
	if article.AuthorID != actor.ID {
		return nil, nil, ErrNotArticleAuthor
	}
	return article, actor, nil
}

// fireEvent invokes an event-sink callback; sink failures are logged and
// never fail the triggering operation.
func (s *service) fireEvent(ctx context.Context, name string, fire func() error) {
	if err := fire(); err != nil {
		s.logger.WarnContext(ctx, "event sink failed", "event", name, "error", err)
	}
}
