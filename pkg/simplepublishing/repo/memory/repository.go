package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-publishing/pkg/simplepublishing"
)

// engagementKey identifies one (article, user, type) engagement row.
type engagementKey struct {
	articleID uuid.UUID
	userID    uuid.UUID
	kind      simplepublishing.EngagementType
}

// Repository implements simplepublishing.Repository and
// simplepublishing.IdentityResolver using in-memory storage
type Repository struct {
	mu              sync.RWMutex
	articles        map[uuid.UUID]*simplepublishing.Article
	articlesBySlug  map[string]uuid.UUID
	versions        map[uuid.UUID][]*simplepublishing.ArticleVersion
	engagements     map[engagementKey]*simplepublishing.Engagement
	tags            map[string]*simplepublishing.Tag
	users           map[uuid.UUID]*simplepublishing.User
	usersByEmail    map[string]uuid.UUID
	usersByUsername map[string]uuid.UUID
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		articles:        make(map[uuid.UUID]*simplepublishing.Article),
		articlesBySlug:  make(map[string]uuid.UUID),
		versions:        make(map[uuid.UUID][]*simplepublishing.ArticleVersion),
		engagements:     make(map[engagementKey]*simplepublishing.Engagement),
		tags:            make(map[string]*simplepublishing.Tag),
		users:           make(map[uuid.UUID]*simplepublishing.User),
		usersByEmail:    make(map[string]uuid.UUID),
		usersByUsername: make(map[string]uuid.UUID),
	}
}

// AddUser registers a user for identity resolution. Test and example helper.
func (r *Repository) AddUser(user *simplepublishing.User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userCopy := copyUser(user)
	r.users[user.ID] = userCopy
	r.usersByEmail[strings.ToLower(user.Email)] = user.ID
	r.usersByUsername[user.Username] = user.ID
}

// Article operations

func (r *Repository) CreateArticle(ctx context.Context, article *simplepublishing.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to avoid external modifications
	articleCopy := copyArticle(article)
	r.articles[article.ID] = articleCopy
	if article.Slug != "" {
		r.articlesBySlug[article.Slug] = article.ID
	}
	return nil
}

func (r *Repository) GetArticle(ctx context.Context, id uuid.UUID) (*simplepublishing.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	article, exists := r.articles[id]
	if !exists {
		return nil, simplepublishing.ErrArticleNotFound
	}
	return copyArticle(article), nil
}

func (r *Repository) GetArticleBySlug(ctx context.Context, slug string) (*simplepublishing.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.articlesBySlug[slug]
	if !exists {
		return nil, simplepublishing.ErrArticleNotFound
	}
	return copyArticle(r.articles[id]), nil
}

func (r *Repository) UpdateArticle(ctx context.Context, article *simplepublishing.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.articles[article.ID]
	if !exists {
		return simplepublishing.ErrArticleNotFound
	}
	if existing.Slug != article.Slug {
		delete(r.articlesBySlug, existing.Slug)
		if article.Slug != "" {
			r.articlesBySlug[article.Slug] = article.ID
		}
	}
	// Keep the repository-owned view counter.
	articleCopy := copyArticle(article)
	articleCopy.ViewCount = existing.ViewCount
	r.articles[article.ID] = articleCopy
	return nil
}

func (r *Repository) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	article, exists := r.articles[id]
	if !exists {
		return simplepublishing.ErrArticleNotFound
	}

	delete(r.articles, id)
	delete(r.articlesBySlug, article.Slug)
	delete(r.versions, id)
	for key := range r.engagements {
		if key.articleID == id {
			delete(r.engagements, key)
		}
	}
	return nil
}

func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.articlesBySlug[slug]
	return exists, nil
}

func (r *Repository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	article, exists := r.articles[id]
	if !exists {
		return simplepublishing.ErrArticleNotFound
	}
	article.ViewCount++
	return nil
}

func (r *Repository) ListArticlesByAuthor(ctx context.Context, username string, page simplepublishing.PageRequest) (*simplepublishing.ArticlePage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.collect(func(a *simplepublishing.Article) bool {
		return a.AuthorUsername == username && a.Published
	})
	sortPublishedAtDesc(matched)
	return paginate(matched, page), nil
}

func (r *Repository) ListArticlesByAuthors(ctx context.Context, usernames []string, page simplepublishing.PageRequest) (*simplepublishing.ArticlePage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	authors := make(map[string]struct{}, len(usernames))
	for _, u := range usernames {
		authors[u] = struct{}{}
	}
	matched := r.collect(func(a *simplepublishing.Article) bool {
		_, ok := authors[a.AuthorUsername]
		return ok && a.Published
	})
	sortPublishedAtDesc(matched)
	return paginate(matched, page), nil
}

func (r *Repository) ListPublished(ctx context.Context, page simplepublishing.PageRequest) (*simplepublishing.ArticlePage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.collect(func(a *simplepublishing.Article) bool { return a.Published })
	sortPublishedAtDesc(matched)
	return paginate(matched, page), nil
}

func (r *Repository) ListTrending(ctx context.Context, page simplepublishing.PageRequest) (*simplepublishing.ArticlePage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.collect(func(a *simplepublishing.Article) bool { return a.Published })
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].ViewCount != matched[j].ViewCount {
			return matched[i].ViewCount > matched[j].ViewCount
		}
		return publishedAfter(matched[i], matched[j])
	})
	return paginate(matched, page), nil
}

func (r *Repository) SearchArticles(ctx context.Context, filters simplepublishing.SearchFilters, page simplepublishing.PageRequest) (*simplepublishing.ArticlePage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keywords := strings.ToLower(filters.Keywords)
	matched := r.collect(func(a *simplepublishing.Article) bool {
		if filters.PublishedOnly && !a.Published {
			return false
		}
		if keywords != "" &&
			!strings.Contains(strings.ToLower(a.Title), keywords) &&
			!strings.Contains(strings.ToLower(a.Content), keywords) {
			return false
		}
		if filters.AuthorUsername != "" && a.AuthorUsername != filters.AuthorUsername {
			return false
		}
		if filters.FromDate != nil && (a.PublishedAt == nil || a.PublishedAt.Before(*filters.FromDate)) {
			return false
		}
		if filters.ToDate != nil && (a.PublishedAt == nil || a.PublishedAt.After(*filters.ToDate)) {
			return false
		}
		return true
	})
	sortPublishedAtDesc(matched)
	return paginate(matched, page), nil
}

func (r *Repository) ListArticlesByTags(ctx context.Context, tags []string, page simplepublishing.PageRequest) (*simplepublishing.ArticlePage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.collect(func(a *simplepublishing.Article) bool {
		if !a.Published {
			return false
		}
		have := make(map[string]struct{}, len(a.Tags))
		for _, t := range a.Tags {
			have[t] = struct{}{}
		}
		for _, want := range tags {
			if _, ok := have[want]; !ok {
				return false
			}
		}
		return true
	})
	sortPublishedAtDesc(matched)
	return paginate(matched, page), nil
}

func (r *Repository) ListDraftsByAuthor(ctx context.Context, authorID uuid.UUID) ([]*simplepublishing.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	drafts := r.collect(func(a *simplepublishing.Article) bool {
		return a.AuthorID == authorID && !a.Published
	})
	sort.Slice(drafts, func(i, j int) bool {
		return drafts[i].UpdatedAt.After(drafts[j].UpdatedAt)
	})
	return drafts, nil
}

// Version operations

func (r *Repository) CreateVersion(ctx context.Context, version *simplepublishing.ArticleVersion) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.articles[version.ArticleID]; !exists {
		return 0, simplepublishing.ErrArticleNotFound
	}

	// Next number is max existing + 1 so deletion gaps never cause reuse.
	max := 0
	for _, v := range r.versions[version.ArticleID] {
		if v.VersionNumber > max {
			max = v.VersionNumber
		}
	}

	versionCopy := copyVersion(version)
	versionCopy.VersionNumber = max + 1
	r.versions[version.ArticleID] = append(r.versions[version.ArticleID], versionCopy)
	version.VersionNumber = versionCopy.VersionNumber
	return versionCopy.VersionNumber, nil
}

func (r *Repository) ListVersions(ctx context.Context, articleID uuid.UUID) ([]*simplepublishing.ArticleVersion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.versions[articleID]
	result := make([]*simplepublishing.ArticleVersion, 0, len(stored))
	for _, v := range stored {
		result = append(result, copyVersion(v))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].VersionNumber > result[j].VersionNumber
	})
	return result, nil
}

func (r *Repository) GetVersion(ctx context.Context, articleID uuid.UUID, versionNumber int) (*simplepublishing.ArticleVersion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, v := range r.versions[articleID] {
		if v.VersionNumber == versionNumber {
			return copyVersion(v), nil
		}
	}
	return nil, simplepublishing.ErrVersionNotFound
}

func (r *Repository) DeleteVersion(ctx context.Context, articleID uuid.UUID, versionNumber int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.versions[articleID]
	for i, v := range stored {
		if v.VersionNumber == versionNumber {
			r.versions[articleID] = append(stored[:i], stored[i+1:]...)
			return nil
		}
	}
	return simplepublishing.ErrVersionNotFound
}

// Engagement operations

func (r *Repository) TouchEngagement(ctx context.Context, articleID, userID uuid.UUID, engagementType simplepublishing.EngagementType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.articles[articleID]; !exists {
		return simplepublishing.ErrArticleNotFound
	}

	key := engagementKey{articleID: articleID, userID: userID, kind: engagementType}
	now := time.Now().UTC()
	if existing, ok := r.engagements[key]; ok {
		existing.CreatedAt = now
		return nil
	}
	r.engagements[key] = &simplepublishing.Engagement{
		ID:        uuid.New(),
		ArticleID: articleID,
		UserID:    userID,
		Type:      engagementType,
		CreatedAt: now,
	}
	return nil
}

func (r *Repository) RecordClap(ctx context.Context, articleID, userID uuid.UUID, max int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.articles[articleID]; !exists {
		return 0, simplepublishing.ErrArticleNotFound
	}

	key := engagementKey{articleID: articleID, userID: userID, kind: simplepublishing.EngagementClap}
	existing, ok := r.engagements[key]
	if !ok {
		r.engagements[key] = &simplepublishing.Engagement{
			ID:        uuid.New(),
			ArticleID: articleID,
			UserID:    userID,
			Type:      simplepublishing.EngagementClap,
			Count:     1,
			CreatedAt: time.Now().UTC(),
		}
		return 1, nil
	}
	if existing.Count < max {
		existing.Count++
		existing.CreatedAt = time.Now().UTC()
	}
	return existing.Count, nil
}

func (r *Repository) CountEngagements(ctx context.Context, articleID uuid.UUID, engagementType simplepublishing.EngagementType) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for key := range r.engagements {
		if key.articleID == articleID && key.kind == engagementType {
			count++
		}
	}
	return count, nil
}

func (r *Repository) SumClaps(ctx context.Context, articleID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sum int64
	for key, e := range r.engagements {
		if key.articleID == articleID && key.kind == simplepublishing.EngagementClap {
			sum += int64(e.Count)
		}
	}
	return sum, nil
}

// Tag operations

func (r *Repository) UpsertTagUsage(ctx context.Context, name string, usedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tag, ok := r.tags[name]; ok {
		tag.UsageCount++
		tag.LastUsedAt = usedAt
		return nil
	}
	r.tags[name] = &simplepublishing.Tag{
		ID:         uuid.New(),
		Name:       name,
		UsageCount: 1,
		LastUsedAt: usedAt,
		CreatedAt:  usedAt,
	}
	return nil
}

func (r *Repository) GetTag(ctx context.Context, name string) (*simplepublishing.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tag, ok := r.tags[name]
	if !ok {
		return nil, simplepublishing.ErrTagNotFound
	}
	tagCopy := *tag
	return &tagCopy, nil
}

func (r *Repository) SearchTagsByPrefix(ctx context.Context, prefix string, limit int) ([]*simplepublishing.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prefix = strings.ToLower(prefix)
	var result []*simplepublishing.Tag
	for _, tag := range r.tags {
		if strings.HasPrefix(strings.ToLower(tag.Name), prefix) {
			tagCopy := *tag
			result = append(result, &tagCopy)
		}
	}
	sortTagsByUsage(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *Repository) ListTrendingTags(ctx context.Context, limit int) ([]*simplepublishing.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*simplepublishing.Tag, 0, len(r.tags))
	for _, tag := range r.tags {
		tagCopy := *tag
		result = append(result, &tagCopy)
	}
	sortTagsByUsage(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Identity operations

func (r *Repository) ResolveByEmail(ctx context.Context, email string) (*simplepublishing.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, simplepublishing.ErrUserNotFound
	}
	return copyUser(r.users[id]), nil
}

func (r *Repository) ResolveByUsername(ctx context.Context, username string) (*simplepublishing.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.usersByUsername[username]
	if !ok {
		return nil, simplepublishing.ErrUserNotFound
	}
	return copyUser(r.users[id]), nil
}

func (r *Repository) ListFollowing(ctx context.Context, userID uuid.UUID) ([]*simplepublishing.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return nil, simplepublishing.ErrUserNotFound
	}

	result := make([]*simplepublishing.User, 0, len(user.Following))
	for _, followedID := range user.Following {
		if followed, ok := r.users[followedID]; ok {
			result = append(result, copyUser(followed))
		}
	}
	return result, nil
}

func (r *Repository) ListActiveUsers(ctx context.Context) ([]*simplepublishing.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*simplepublishing.User
	for _, user := range r.users {
		if user.Active {
			result = append(result, copyUser(user))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}

// Helpers

// collect returns copies of all articles matching the predicate. Callers must
// hold at least a read lock.
func (r *Repository) collect(match func(*simplepublishing.Article) bool) []*simplepublishing.Article {
	var result []*simplepublishing.Article
	for _, article := range r.articles {
		if match(article) {
			result = append(result, copyArticle(article))
		}
	}
	return result
}

func paginate(articles []*simplepublishing.Article, page simplepublishing.PageRequest) *simplepublishing.ArticlePage {
	page = page.Normalize()
	total := int64(len(articles))
	start := page.Offset()
	if start > len(articles) {
		start = len(articles)
	}
	end := start + page.Size
	if end > len(articles) {
		end = len(articles)
	}
	return &simplepublishing.ArticlePage{
		Items:      articles[start:end],
		TotalCount: total,
		Page:       page.Page,
		Size:       page.Size,
	}
}

func sortPublishedAtDesc(articles []*simplepublishing.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return publishedAfter(articles[i], articles[j])
	})
}

func publishedAfter(a, b *simplepublishing.Article) bool {
	switch {
	case a.PublishedAt == nil:
		return false
	case b.PublishedAt == nil:
		return true
	default:
		return a.PublishedAt.After(*b.PublishedAt)
	}
}

func sortTagsByUsage(tags []*simplepublishing.Tag) {
	sort.SliceStable(tags, func(i, j int) bool {
		if tags[i].UsageCount != tags[j].UsageCount {
			return tags[i].UsageCount > tags[j].UsageCount
		}
		return tags[i].LastUsedAt.After(tags[j].LastUsedAt)
	})
}

func copyArticle(a *simplepublishing.Article) *simplepublishing.Article {
	articleCopy := *a
	articleCopy.Tags = append([]string(nil), a.Tags...)
	if a.PublishedAt != nil {
		t := *a.PublishedAt
		articleCopy.PublishedAt = &t
	}
	if a.LastSavedAt != nil {
		t := *a.LastSavedAt
		articleCopy.LastSavedAt = &t
	}
	return &articleCopy
}

func copyVersion(v *simplepublishing.ArticleVersion) *simplepublishing.ArticleVersion {
	versionCopy := *v
	versionCopy.Tags = append([]string(nil), v.Tags...)
	return &versionCopy
}

func copyUser(u *simplepublishing.User) *simplepublishing.User {
	userCopy := *u
	userCopy.Following = append([]uuid.UUID(nil), u.Following...)
	return &userCopy
}
