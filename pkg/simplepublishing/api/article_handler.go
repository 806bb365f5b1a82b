// Package api exposes the publishing service over HTTP using chi. The acting
// user is taken from the X-User-Email header; authenticating that identity is
// an upstream concern.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-publishing/pkg/simplepublishing"
)

// UserEmailHeader carries the acting user's identity.
const UserEmailHeader = "X-User-Email"

// ArticleHandler handles HTTP requests for articles using pkg/simplepublishing
type ArticleHandler struct {
	service simplepublishing.Service
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(service simplepublishing.Service) *ArticleHandler {
	return &ArticleHandler{service: service}
}

// Routes returns the routes for articles
func (h *ArticleHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateArticle)
	r.Get("/{id}", h.GetArticle)
	r.Put("/{id}", h.UpdateArticle)
	r.Delete("/{id}", h.DeleteArticle)
	r.Post("/{id}/publish", h.PublishArticle)
	r.Post("/{id}/unpublish", h.UnpublishArticle)

	r.Get("/slug/{slug}", h.GetArticleBySlug)
	r.Get("/slug/{slug}/stats", h.GetArticleStats)

	r.Get("/{id}/versions", h.ListVersions)
	r.Get("/{id}/versions/{number}", h.GetVersion)
	r.Post("/{id}/versions/{number}/restore", h.RestoreVersion)
	r.Delete("/{id}/versions/{number}", h.DeleteVersion)

	r.Post("/{id}/engagements", h.RecordEngagement)
	r.Get("/{id}/engagements", h.GetEngagementStats)

	return r
}

// CreateArticleRequest is the request body for creating an article
type CreateArticleRequest struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Summary       string   `json:"summary,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	CoverImageURL string   `json:"cover_image_url,omitempty"`
	Published     bool     `json:"published"`
}

// UpdateArticleRequest is the request body for updating an article
type UpdateArticleRequest struct {
	Title             string   `json:"title"`
	Content           string   `json:"content"`
	Summary           string   `json:"summary,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	CoverImageURL     string   `json:"cover_image_url,omitempty"`
	Published         bool     `json:"published"`
	ChangeDescription string   `json:"change_description,omitempty"`
}

// RecordEngagementRequest is the request body for recording an engagement
type RecordEngagementRequest struct {
	Type string `json:"type"`
}

// ArticleResponse is the response body for an article
type ArticleResponse struct {
	ID             string     `json:"id"`
	AuthorUsername string     `json:"author_username"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	ContentHTML    string     `json:"content_html,omitempty"`
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
}

func toArticleResponse(a *simplepublishing.Article, withHTML bool) ArticleResponse {
	resp := ArticleResponse{
		ID:             a.ID.String(),
		AuthorUsername: a.AuthorUsername,
		Title:          a.Title,
		Content:        a.Content,
		Summary:        a.Summary,
		Tags:           a.Tags,
		CoverImageURL:  a.CoverImageURL,
		Slug:           a.Slug,
		Published:      a.Published,
		PublishedAt:    a.PublishedAt,
		ReadTime:       a.ReadTime,
		ViewCount:      a.ViewCount,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
	if withHTML {
		resp.ContentHTML = simplepublishing.RenderHTML(a.Content)
	}
	return resp
}

// CreateArticle creates a new article
func (h *ArticleHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	email := r.Header.Get(UserEmailHeader)
	if email == "" {
		http.Error(w, "missing "+UserEmailHeader+" header", http.StatusUnauthorized)
		return
	}

	var req CreateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	article, err := h.service.CreateArticle(r.Context(), simplepublishing.CreateArticleRequest{
		AuthorEmail:   email,
		Title:         req.Title,
		Content:       req.Content,
		Summary:       req.Summary,
		Tags:          req.Tags,
		CoverImageURL: req.CoverImageURL,
		Published:     req.Published,
	})
	if err != nil {
		respondError(w, "create article", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toArticleResponse(article, false))
}

// GetArticle returns an article by id
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	article, err := h.service.GetArticle(r.Context(), id)
	if err != nil {
		respondError(w, "get article", err)
		return
	}
	render.JSON(w, r, toArticleResponse(article, false))
}

// GetArticleBySlug returns a published article by slug and counts a view
func (h *ArticleHandler) GetArticleBySlug(w http.ResponseWriter, r *http.Request) {
	article, err := h.service.GetArticleBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, "get article by slug", err)
		return
	}
	render.JSON(w, r, toArticleResponse(article, true))
}

// UpdateArticle updates an article's content fields
func (h *ArticleHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	email := r.Header.Get(UserEmailHeader)
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req UpdateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	article, err := h.service.UpdateArticle(r.Context(), simplepublishing.UpdateArticleRequest{
		EditorEmail:       email,
		ArticleID:         id,
		Title:             req.Title,
		Content:           req.Content,
		Summary:           req.Summary,
		Tags:              req.Tags,
		CoverImageURL:     req.CoverImageURL,
		Published:         req.Published,
		ChangeDescription: req.ChangeDescription,
	})
	if err != nil {
		respondError(w, "update article", err)
		return
	}
	render.JSON(w, r, toArticleResponse(article, false))
}

// DeleteArticle deletes an article and its versions and engagements
func (h *ArticleHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteArticle(r.Context(), r.Header.Get(UserEmailHeader), id); err != nil {
		respondError(w, "delete article", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PublishArticle transitions an article to published
func (h *ArticleHandler) PublishArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	article, err := h.service.PublishArticle(r.Context(), r.Header.Get(UserEmailHeader), id)
	if err != nil {
		respondError(w, "publish article", err)
		return
	}
	render.JSON(w, r, toArticleResponse(article, false))
}

// UnpublishArticle transitions an article back to draft
func (h *ArticleHandler) UnpublishArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	article, err := h.service.UnpublishArticle(r.Context(), r.Header.Get(UserEmailHeader), id)
	if err != nil {
		respondError(w, "unpublish article", err)
		return
	}
	render.JSON(w, r, toArticleResponse(article, false))
}

// GetArticleStats returns the derived stats read model for an article
func (h *ArticleHandler) GetArticleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.ArticleStats(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, "get article stats", err)
		return
	}
	render.JSON(w, r, stats)
}

// Version handlers

// ListVersions returns all versions of an article, newest first
func (h *ArticleHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	versions, err := h.service.ListVersions(r.Context(), id)
	if err != nil {
		respondError(w, "list versions", err)
		return
	}
	render.JSON(w, r, versions)
}

// GetVersion returns one version snapshot
func (h *ArticleHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	number, ok := parseVersionNumber(w, r)
	if !ok {
		return
	}

	version, err := h.service.GetVersion(r.Context(), id, number)
	if err != nil {
		respondError(w, "get version", err)
		return
	}
	render.JSON(w, r, version)
}

// RestoreVersion restores an article to a previous version's content
func (h *ArticleHandler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	number, ok := parseVersionNumber(w, r)
	if !ok {
		return
	}

	article, err := h.service.RestoreVersion(r.Context(), r.Header.Get(UserEmailHeader), id, number)
	if err != nil {
		respondError(w, "restore version", err)
		return
	}
	render.JSON(w, r, toArticleResponse(article, false))
}

// DeleteVersion removes one version snapshot
func (h *ArticleHandler) DeleteVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	number, ok := parseVersionNumber(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteVersion(r.Context(), r.Header.Get(UserEmailHeader), id, number); err != nil {
		respondError(w, "delete version", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Engagement handlers

// RecordEngagement records one engagement of the given type
func (h *ArticleHandler) RecordEngagement(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req RecordEngagementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.RecordEngagement(r.Context(), r.Header.Get(UserEmailHeader), id, req.Type); err != nil {
		respondError(w, "record engagement", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetEngagementStats returns per-type engagement counts plus the clap total
func (h *ArticleHandler) GetEngagementStats(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	stats, err := h.service.EngagementStats(r.Context(), id)
	if err != nil {
		respondError(w, "get engagement stats", err)
		return
	}
	claps, err := h.service.TotalClaps(r.Context(), id)
	if err != nil {
		respondError(w, "get engagement stats", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"engagement":  stats,
		"total_claps": claps,
	})
}

// Helpers shared by the handlers in this package.

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid article ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func parseVersionNumber(w http.ResponseWriter, r *http.Request) (int, bool) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number < 1 {
		http.Error(w, "invalid version number", http.StatusBadRequest)
		return 0, false
	}
	return number, true
}

func respondError(w http.ResponseWriter, operation string, err error) {
	switch {
	case errors.Is(err, simplepublishing.ErrArticleNotFound),
		errors.Is(err, simplepublishing.ErrVersionNotFound),
		errors.Is(err, simplepublishing.ErrTagNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, simplepublishing.ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, simplepublishing.ErrNotArticleAuthor):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, simplepublishing.ErrInvalidTitle),
		errors.Is(err, simplepublishing.ErrInvalidEngagementType),
		errors.Is(err, simplepublishing.ErrNotDraft):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("request failed", "operation", operation, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
