package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-publishing/pkg/simplepublishing"
	"github.com/tendant/simple-publishing/pkg/simplepublishing/repo/memory"
)

// setupHandlerTest creates handlers backed by an in-memory service with one
// registered author.
func setupHandlerTest(t *testing.T) (http.Handler, *simplepublishing.User) {
	t.Helper()

	author := &simplepublishing.User{
		ID:       uuid.New(),
		Username: "author",
		Email:    "author@example.com",
		Active:   true,
	}
	repo := memory.New()
	repo.AddUser(author)

	service, err := simplepublishing.New(
		simplepublishing.WithRepository(repo),
		simplepublishing.WithIdentityResolver(repo),
		simplepublishing.WithEventSink(simplepublishing.NewNoopEventSink()),
	)
	require.NoError(t, err)

	return NewArticleHandler(service).Routes(), author
}

func postJSON(t *testing.T, router http.Handler, path, email string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if email != "" {
		req.Header.Set(UserEmailHeader, email)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestArticleHandler_CreateArticle_Success(t *testing.T) {
	router, author := setupHandlerTest(t)

	w := postJSON(t, router, "/", author.Email, CreateArticleRequest{
		Title:     "Testing Handlers",
		Content:   "body text",
		Tags:      []string{"Go"},
		Published: true,
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp ArticleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "testing-handlers", resp.Slug)
	assert.Equal(t, []string{"go"}, resp.Tags)
	assert.True(t, resp.Published)
}

func TestArticleHandler_CreateArticle_MissingIdentity(t *testing.T) {
	router, _ := setupHandlerTest(t)

	w := postJSON(t, router, "/", "", CreateArticleRequest{Title: "No Identity"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestArticleHandler_CreateArticle_UnknownAuthor(t *testing.T) {
	router, _ := setupHandlerTest(t)

	w := postJSON(t, router, "/", "stranger@example.com", CreateArticleRequest{Title: "Stranger Danger"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestArticleHandler_GetBySlug_RendersHTML(t *testing.T) {
	router, author := setupHandlerTest(t)

	w := postJSON(t, router, "/", author.Email, CreateArticleRequest{
		Title:     "Rendered Article",
		Content:   "# Heading\n\nSome **bold** text.",
		Published: true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/slug/rendered-article", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ArticleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.ContentHTML, "<strong>bold</strong>")
	assert.Equal(t, 1, resp.ViewCount)
}

func TestArticleHandler_GetArticle_NotFound(t *testing.T) {
	router, _ := setupHandlerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestArticleHandler_UpdateArticle_WrongAuthor(t *testing.T) {
	router, author := setupHandlerTest(t)

	w := postJSON(t, router, "/", author.Email, CreateArticleRequest{
		Title:     "Owned Article",
		Content:   "content",
		Published: true,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created ArticleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	payload, err := json.Marshal(UpdateArticleRequest{Title: "Hijacked", Content: "x"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, "/"+created.ID, bytes.NewReader(payload))
	req.Header.Set(UserEmailHeader, "stranger@example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// The stranger is not a registered user at all.
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestArticleHandler_RecordEngagement_InvalidType(t *testing.T) {
	router, author := setupHandlerTest(t)

	w := postJSON(t, router, "/", author.Email, CreateArticleRequest{
		Title:     "Engageable Article",
		Content:   "content",
		Published: true,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created ArticleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	rec := postJSON(t, router, "/"+created.ID+"/engagements", author.Email,
		RecordEngagementRequest{Type: "applaud"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestArticleHandler_VersionRoundTrip(t *testing.T) {
	router, author := setupHandlerTest(t)

	w := postJSON(t, router, "/", author.Email, CreateArticleRequest{
		Title:     "Versioned Over HTTP",
		Content:   "v1",
		Published: true,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created ArticleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	req := httptest.NewRequest(http.MethodGet, "/"+created.ID+"/versions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var versions []simplepublishing.ArticleVersion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &versions))
	require.Len(t, versions, 1)
	assert.Equal(t, "Initial version", versions[0].ChangeDescription)
}
