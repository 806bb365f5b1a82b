package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-publishing/pkg/simplepublishing"
)

// DraftHandler handles draft autosave and the draft-to-published transition
type DraftHandler struct {
	service simplepublishing.Service
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(service simplepublishing.Service) *DraftHandler {
	return &DraftHandler{service: service}
}

// Routes returns the draft routes
func (h *DraftHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.AutoSave)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/publish", h.Publish)

	return r
}

// AutoSaveRequest is the request body for draft autosave. An empty draft_id
// creates a new draft.
type AutoSaveRequest struct {
	DraftID       string   `json:"draft_id,omitempty"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Summary       string   `json:"summary,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	CoverImageURL string   `json:"cover_image_url,omitempty"`
}

// AutoSave creates or overwrites a draft without snapshotting a version
func (h *DraftHandler) AutoSave(w http.ResponseWriter, r *http.Request) {
	email := r.Header.Get(UserEmailHeader)
	if email == "" {
		http.Error(w, "missing "+UserEmailHeader+" header", http.StatusUnauthorized)
		return
	}

	var req AutoSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	saveReq := simplepublishing.AutoSaveDraftRequest{
		AuthorEmail:   email,
		Title:         req.Title,
		Content:       req.Content,
		Summary:       req.Summary,
		Tags:          req.Tags,
		CoverImageURL: req.CoverImageURL,
	}
	if req.DraftID != "" {
		draftID, err := uuid.Parse(req.DraftID)
		if err != nil {
			http.Error(w, "invalid draft ID", http.StatusBadRequest)
			return
		}
		saveReq.DraftID = &draftID
	}

	draft, err := h.service.AutoSaveDraft(r.Context(), saveReq)
	if err != nil {
		respondError(w, "autosave draft", err)
		return
	}

	if saveReq.DraftID == nil {
		render.Status(r, http.StatusCreated)
	}
	render.JSON(w, r, toArticleResponse(draft, false))
}

// List returns the acting user's drafts, most recently saved first
func (h *DraftHandler) List(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.service.ListDrafts(r.Context(), r.Header.Get(UserEmailHeader))
	if err != nil {
		respondError(w, "list drafts", err)
		return
	}

	resp := make([]ArticleResponse, 0, len(drafts))
	for _, d := range drafts {
		resp = append(resp, toArticleResponse(d, false))
	}
	render.JSON(w, r, resp)
}

// Get returns one of the acting user's drafts
func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	draft, err := h.service.GetDraft(r.Context(), r.Header.Get(UserEmailHeader), id)
	if err != nil {
		respondError(w, "get draft", err)
		return
	}
	render.JSON(w, r, toArticleResponse(draft, false))
}

// Delete removes a draft
func (h *DraftHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteDraft(r.Context(), r.Header.Get(UserEmailHeader), id); err != nil {
		respondError(w, "delete draft", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Publish transitions a draft to a published article
func (h *DraftHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	article, err := h.service.PublishDraft(r.Context(), r.Header.Get(UserEmailHeader), id)
	if err != nil {
		respondError(w, "publish draft", err)
		return
	}
	render.JSON(w, r, toArticleResponse(article, false))
}
