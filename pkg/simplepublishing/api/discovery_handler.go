package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-publishing/pkg/simplepublishing"
)

// DiscoveryHandler handles feed, search, tag and recommendation requests
type DiscoveryHandler struct {
	service simplepublishing.Service
}

// NewDiscoveryHandler creates a new discovery handler
func NewDiscoveryHandler(service simplepublishing.Service) *DiscoveryHandler {
	return &DiscoveryHandler{service: service}
}

// Routes returns the discovery routes
func (h *DiscoveryHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/trending", h.Trending)
	r.Get("/recent", h.Recent)
	r.Get("/search", h.Search)
	r.Post("/search/advanced", h.AdvancedSearch)
	r.Get("/feed", h.PersonalizedFeed)

	r.Get("/tags/autocomplete", h.AutocompleteTags)
	r.Get("/tags/trending", h.TrendingTags)
	r.Get("/tags/{tag}", h.TagDetail)
	r.Get("/tags/{tag}/articles", h.ArticlesByTag)

	r.Get("/recommendations", h.Recommendations)

	return r
}

// AdvancedSearchRequest is the request body for multi-filter search
type AdvancedSearchRequest struct {
	Keywords       string     `json:"keywords,omitempty"`
	AuthorUsername string     `json:"author_username,omitempty"`
	FromDate       *time.Time `json:"from_date,omitempty"`
	ToDate         *time.Time `json:"to_date,omitempty"`
	PublishedOnly  bool       `json:"published_only"`
	Page           int        `json:"page"`
	Size           int        `json:"size"`
}

// Trending returns published articles ordered by view count
func (h *DiscoveryHandler) Trending(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.TrendingArticles(r.Context(), pageFromQuery(r))
	if err != nil {
		respondError(w, "trending articles", err)
		return
	}
	render.JSON(w, r, page)
}

// Recent returns published articles, newest first
func (h *DiscoveryHandler) Recent(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.RecentArticles(r.Context(), pageFromQuery(r))
	if err != nil {
		respondError(w, "recent articles", err)
		return
	}
	render.JSON(w, r, page)
}

// Search runs a keyword search over published articles. The q parameter
// matches title or content; tags searches by tag superset instead.
func (h *DiscoveryHandler) Search(w http.ResponseWriter, r *http.Request) {
	if tags, ok := r.URL.Query()["tags"]; ok {
		page, err := h.service.SearchByTags(r.Context(), tags, pageFromQuery(r))
		if err != nil {
			respondError(w, "search by tags", err)
			return
		}
		render.JSON(w, r, page)
		return
	}

	page, err := h.service.SearchArticles(r.Context(), r.URL.Query().Get("q"), pageFromQuery(r))
	if err != nil {
		respondError(w, "search articles", err)
		return
	}
	render.JSON(w, r, page)
}

// AdvancedSearch runs the conjunctive multi-filter search
func (h *DiscoveryHandler) AdvancedSearch(w http.ResponseWriter, r *http.Request) {
	var req AdvancedSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := h.service.AdvancedSearch(r.Context(), simplepublishing.AdvancedSearchRequest{
		Keywords:       req.Keywords,
		AuthorUsername: req.AuthorUsername,
		FromDate:       req.FromDate,
		ToDate:         req.ToDate,
		PublishedOnly:  req.PublishedOnly,
		Page:           req.Page,
		Size:           req.Size,
	})
	if err != nil {
		respondError(w, "advanced search", err)
		return
	}
	render.JSON(w, r, page)
}

// PersonalizedFeed returns the merged feed for the acting user. Source
// selection defaults to all three; sources=authors,tags,trending narrows it.
func (h *DiscoveryHandler) PersonalizedFeed(w http.ResponseWriter, r *http.Request) {
	email := r.Header.Get(UserEmailHeader)
	if email == "" {
		http.Error(w, "missing "+UserEmailHeader+" header", http.StatusUnauthorized)
		return
	}

	pageReq := pageFromQuery(r)
	req := simplepublishing.PersonalizedFeedRequest{
		UserEmail:              email,
		IncludeFollowedAuthors: true,
		IncludeFollowedTags:    true,
		IncludeTrending:        true,
		Page:                   pageReq.Page,
		Size:                   pageReq.Size,
	}
	if sources, ok := r.URL.Query()["sources"]; ok {
		req.IncludeFollowedAuthors = false
		req.IncludeFollowedTags = false
		req.IncludeTrending = false
		for _, s := range sources {
			switch s {
			case "authors":
				req.IncludeFollowedAuthors = true
			case "tags":
				req.IncludeFollowedTags = true
			case "trending":
				req.IncludeTrending = true
			}
		}
	}

	page, err := h.service.PersonalizedFeed(r.Context(), req)
	if err != nil {
		respondError(w, "personalized feed", err)
		return
	}
	render.JSON(w, r, page)
}

// AutocompleteTags returns tags matching the q prefix, most used first
func (h *DiscoveryHandler) AutocompleteTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.AutocompleteTags(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, "autocomplete tags", err)
		return
	}
	render.JSON(w, r, tags)
}

// TrendingTags returns the most used tags
func (h *DiscoveryHandler) TrendingTags(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	tags, err := h.service.TrendingTags(r.Context(), limit)
	if err != nil {
		respondError(w, "trending tags", err)
		return
	}
	render.JSON(w, r, tags)
}

// TagDetail returns the usage record for one tag
func (h *DiscoveryHandler) TagDetail(w http.ResponseWriter, r *http.Request) {
	tag, err := h.service.GetTag(r.Context(), chi.URLParam(r, "tag"))
	if err != nil {
		respondError(w, "get tag", err)
		return
	}
	render.JSON(w, r, tag)
}

// ArticlesByTag returns published articles carrying the tag
func (h *DiscoveryHandler) ArticlesByTag(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ArticlesByTag(r.Context(), chi.URLParam(r, "tag"), pageFromQuery(r))
	if err != nil {
		respondError(w, "articles by tag", err)
		return
	}
	render.JSON(w, r, page)
}

// Recommendations returns recommended article ids for the acting user
func (h *DiscoveryHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	email := r.Header.Get(UserEmailHeader)
	if email == "" {
		http.Error(w, "missing "+UserEmailHeader+" header", http.StatusUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	ids, err := h.service.RecommendedArticleIDs(r.Context(), email, limit)
	if err != nil {
		respondError(w, "recommendations", err)
		return
	}
	render.JSON(w, r, map[string][]uuid.UUID{"article_ids": ids})
}

func pageFromQuery(r *http.Request) simplepublishing.PageRequest {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	return simplepublishing.PageRequest{Page: page, Size: size}
}
