package simplepublishing_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-publishing/pkg/simplepublishing"
	"github.com/tendant/simple-publishing/pkg/simplepublishing/repo/memory"
)

var (
	alice = &simplepublishing.User{
		ID:       uuid.New(),
		Username: "alice",
		Email:    "alice@example.com",
		Active:   true,
	}
	bob = &simplepublishing.User{
		ID:       uuid.New(),
		Username: "bob",
		Email:    "bob@example.com",
		Active:   true,
	}
	carol = &simplepublishing.User{
		ID:        uuid.New(),
		Username:  "carol",
		Email:     "carol@example.com",
		Following: []uuid.UUID{alice.ID},
		Active:    true,
	}
)

func newTestService(t *testing.T) simplepublishing.Service {
	t.Helper()

	repo := memory.New()
	repo.AddUser(alice)
	repo.AddUser(bob)
	repo.AddUser(carol)

	svc, err := simplepublishing.New(
		simplepublishing.WithRepository(repo),
		simplepublishing.WithIdentityResolver(repo),
	)
	require.NoError(t, err)
	return svc
}

func createPublished(t *testing.T, svc simplepublishing.Service, email, title, content string, tags ...string) *simplepublishing.Article {
	t.Helper()

	article, err := svc.CreateArticle(context.Background(), simplepublishing.CreateArticleRequest{
		AuthorEmail: email,
		Title:       title,
		Content:     content,
		Tags:        tags,
		Published:   true,
	})
	require.NoError(t, err)
	return article
}

func TestServiceCreation(t *testing.T) {
	repo := memory.New()

	tests := []struct {
		name        string
		options     []simplepublishing.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []simplepublishing.Option{},
			expectError: true,
		},
		{
			name: "repository without identity should fail",
			options: []simplepublishing.Option{
				simplepublishing.WithRepository(repo),
			},
			expectError: true,
		},
		{
			name: "repository and identity should succeed",
			options: []simplepublishing.Option{
				simplepublishing.WithRepository(repo),
				simplepublishing.WithIdentityResolver(repo),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := simplepublishing.New(tt.options...)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestCreateArticle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("published article gets slug, read time and initial version", func(t *testing.T) {
		article := createPublished(t, svc, alice.Email, "Hello, World! 2024", "Some article content here.")

		assert.Equal(t, "hello-world-2024", article.Slug)
		assert.Equal(t, "alice", article.AuthorUsername)
		assert.True(t, article.Published)
		require.NotNil(t, article.PublishedAt)
		assert.GreaterOrEqual(t, article.ReadTime, 1)

		versions, err := svc.ListVersions(ctx, article.ID)
		require.NoError(t, err)
		require.Len(t, versions, 1)
		assert.Equal(t, 1, versions[0].VersionNumber)
		assert.Equal(t, "Initial version", versions[0].ChangeDescription)
		assert.Equal(t, alice.Email, versions[0].EditorEmail)
	})

	t.Run("duplicate titles get numbered slugs", func(t *testing.T) {
		first := createPublished(t, svc, alice.Email, "Duplicate Title", "content")
		second := createPublished(t, svc, bob.Email, "Duplicate Title", "content")
		third := createPublished(t, svc, alice.Email, "Duplicate Title", "content")

		assert.Equal(t, "duplicate-title", first.Slug)
		assert.Equal(t, "duplicate-title-1", second.Slug)
		assert.Equal(t, "duplicate-title-2", third.Slug)
	})

	t.Run("tags are normalized", func(t *testing.T) {
		article := createPublished(t, svc, alice.Email, "Tagged Article", "content",
			"Go", "  go ", "Databases", "")
		assert.Equal(t, []string{"go", "databases"}, article.Tags)
	})

	t.Run("unknown author", func(t *testing.T) {
		_, err := svc.CreateArticle(ctx, simplepublishing.CreateArticleRequest{
			AuthorEmail: "nobody@example.com",
			Title:       "Ghost Writer",
		})
		assert.ErrorIs(t, err, simplepublishing.ErrUserNotFound)
	})

	t.Run("title with no usable characters", func(t *testing.T) {
		_, err := svc.CreateArticle(ctx, simplepublishing.CreateArticleRequest{
			AuthorEmail: alice.Email,
			Title:       "!!! ???",
		})
		assert.ErrorIs(t, err, simplepublishing.ErrInvalidTitle)
	})
}

func TestUpdateArticle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("snapshots previous state before overwriting", func(t *testing.T) {
		article := createPublished(t, svc, alice.Email, "Original Title", "Original content.")

		updated, err := svc.UpdateArticle(ctx, simplepublishing.UpdateArticleRequest{
			EditorEmail: alice.Email,
			ArticleID:   article.ID,
			Title:       "Updated Title",
			Content:     "Updated content.",
			Published:   true,
		})
		require.NoError(t, err)
		assert.Equal(t, "Updated Title", updated.Title)
		assert.Equal(t, "updated-title", updated.Slug)

		versions, err := svc.ListVersions(ctx, article.ID)
		require.NoError(t, err)
		require.Len(t, versions, 2)
		// Newest first; version 2 holds the pre-update state.
		assert.Equal(t, 2, versions[0].VersionNumber)
		assert.Equal(t, "Original Title", versions[0].Title)
		assert.Equal(t, "Article updated", versions[0].ChangeDescription)
	})

	t.Run("only the author can update", func(t *testing.T) {
		article := createPublished(t, svc, alice.Email, "Protected Article", "content")

		_, err := svc.UpdateArticle(ctx, simplepublishing.UpdateArticleRequest{
			EditorEmail: bob.Email,
			ArticleID:   article.ID,
			Title:       "Hijacked",
			Content:     "nope",
		})
		assert.ErrorIs(t, err, simplepublishing.ErrNotArticleAuthor)
	})

	t.Run("unpublishing clears published_at", func(t *testing.T) {
		article := createPublished(t, svc, alice.Email, "Soon Unpublished", "content")

		updated, err := svc.UpdateArticle(ctx, simplepublishing.UpdateArticleRequest{
			EditorEmail: alice.Email,
			ArticleID:   article.ID,
			Title:       "Soon Unpublished",
			Content:     "content",
			Published:   false,
		})
		require.NoError(t, err)
		assert.False(t, updated.Published)
		assert.Nil(t, updated.PublishedAt)
	})
}

func TestGetArticleBySlug(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("counts a view per read", func(t *testing.T) {
		article := createPublished(t, svc, alice.Email, "Viewed Article", "content")

		first, err := svc.GetArticleBySlug(ctx, article.Slug)
		require.NoError(t, err)
		assert.Equal(t, 1, first.ViewCount)

		second, err := svc.GetArticleBySlug(ctx, article.Slug)
		require.NoError(t, err)
		assert.Equal(t, 2, second.ViewCount)
	})

	t.Run("unpublished article is not found", func(t *testing.T) {
		draft, err := svc.CreateArticle(ctx, simplepublishing.CreateArticleRequest{
			AuthorEmail: alice.Email,
			Title:       "Hidden Draft Article",
			Content:     "content",
			Published:   false,
		})
		require.NoError(t, err)

		_, err = svc.GetArticleBySlug(ctx, draft.Slug)
		assert.ErrorIs(t, err, simplepublishing.ErrArticleNotFound)
	})
}

func TestVersionHistory(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	update := func(article *simplepublishing.Article, title, content string) {
		t.Helper()
		_, err := svc.UpdateArticle(ctx, simplepublishing.UpdateArticleRequest{
			EditorEmail: alice.Email,
			ArticleID:   article.ID,
			Title:       title,
			Content:     content,
			Published:   true,
		})
		require.NoError(t, err)
	}

	t.Run("version numbers are contiguous and newest first", func(t *testing.T) {
		article := createPublished(t, svc, alice.Email, "Versioned Article", "v1 content")
		update(article, "Versioned Article", "v2 content")
		update(article, "Versioned Article", "v3 content")

		versions, err := svc.ListVersions(ctx, article.ID)
		require.NoError(t, err)
		require.Len(t, versions, 3)
		for i, v := range versions {
			assert.Equal(t, 3-i, v.VersionNumber)
		}
	})

	t.Run("restore snapshots current state then applies target", func(t *testing.T) {
		article := createPublished(t, svc, alice.Email, "Restorable Article", "first draft")
		update(article, "Restorable Article", "second draft")

		restored, err := svc.RestoreVersion(ctx, alice.Email, article.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, "first draft", restored.Content)

		versions, err := svc.ListVersions(ctx, article.ID)
		require.NoError(t, err)
		require.Len(t, versions, 3)
		assert.Equal(t, "Restored from version 1", versions[0].ChangeDescription)
		// Version 3 holds the state immediately before the restore.
		assert.Equal(t, "second draft", versions[0].Content)
	})

	t.Run("deleting a version leaves a gap, numbers never reused", func(t *testing.T) {
		article := createPublished(t, svc, alice.Email, "Gap Article", "v1")
		update(article, "Gap Article", "v2")
		update(article, "Gap Article", "v3")

		require.NoError(t, svc.DeleteVersion(ctx, alice.Email, article.ID, 2))

		_, err := svc.GetVersion(ctx, article.ID, 2)
		assert.ErrorIs(t, err, simplepublishing.ErrVersionNotFound)

		update(article, "Gap Article", "v4")
		versions, err := svc.ListVersions(ctx, article.ID)
		require.NoError(t, err)
		require.Len(t, versions, 3)
		assert.Equal(t, 4, versions[0].VersionNumber)
	})

	t.Run("only the author can restore", func(t *testing.T) {
		article := createPublished(t, svc, alice.Email, "Locked History", "content")
		_, err := svc.RestoreVersion(ctx, bob.Email, article.ID, 1)
		assert.ErrorIs(t, err, simplepublishing.ErrNotArticleAuthor)
	})
}

func TestEngagement(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("claps cap at the per-user maximum", func(t *testing.T) {
		article := createPublished(t, svc, alice.Email, "Clapped Article", "content")

		for i := 0; i < 60; i++ {
			require.NoError(t, svc.RecordEngagement(ctx, bob.Email, article.ID, "clap"))
		}

		total, err := svc.TotalClaps(ctx, article.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(simplepublishing.MaxClapsPerUser), total)
	})

	t.Run("claps sum across users", func(t *testing.T) {
		article := createPublished(t, svc, alice.Email, "Crowd Pleaser", "content")

		for i := 0; i < 3; i++ {
			require.NoError(t, svc.RecordEngagement(ctx, bob.Email, article.ID, "clap"))
		}
		for i := 0; i < 2; i++ {
			require.NoError(t, svc.RecordEngagement(ctx, carol.Email, article.ID, "clap"))
		}

		total, err := svc.TotalClaps(ctx, article.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
	})

	t.Run("stats count distinct users per type", func(t *testing.T) {
		article := createPublished(t, svc, alice.Email, "Measured Article", "content")

		require.NoError(t, svc.RecordEngagement(ctx, bob.Email, article.ID, "like"))
		require.NoError(t, svc.RecordEngagement(ctx, bob.Email, article.ID, "like"))
		require.NoError(t, svc.RecordEngagement(ctx, carol.Email, article.ID, "LIKE"))
		require.NoError(t, svc.RecordEngagement(ctx, bob.Email, article.ID, "bookmark"))

		stats, err := svc.EngagementStats(ctx, article.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats[simplepublishing.EngagementLike])
		assert.Equal(t, int64(1), stats[simplepublishing.EngagementBookmark])
		assert.Equal(t, int64(0), stats[simplepublishing.EngagementShare])
	})

	t.Run("view engagement bumps the view counter", func(t *testing.T) {
		article := createPublished(t, svc, alice.Email, "Watched Article", "content")

		require.NoError(t, svc.RecordEngagement(ctx, bob.Email, article.ID, "view"))
		got, err := svc.GetArticle(ctx, article.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.ViewCount)
	})

	t.Run("bookmarks do not enter the engagement rate", func(t *testing.T) {
		article := createPublished(t, svc, alice.Email, "Bookmarked Article", "content")

		require.NoError(t, svc.RecordEngagement(ctx, bob.Email, article.ID, "view"))
		require.NoError(t, svc.RecordEngagement(ctx, bob.Email, article.ID, "bookmark"))

		stats, err := svc.ArticleStats(ctx, article.Slug)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.Engagement[simplepublishing.EngagementBookmark])
		assert.Equal(t, 0.0, stats.EngagementRate)

		// A like does move the rate.
		require.NoError(t, svc.RecordEngagement(ctx, carol.Email, article.ID, "like"))
		stats, err = svc.ArticleStats(ctx, article.Slug)
		require.NoError(t, err)
		assert.Equal(t, 100.0, stats.EngagementRate)
	})

	t.Run("unknown engagement type", func(t *testing.T) {
		article := createPublished(t, svc, alice.Email, "Typed Article", "content")
		err := svc.RecordEngagement(ctx, bob.Email, article.ID, "applaud")
		assert.ErrorIs(t, err, simplepublishing.ErrInvalidEngagementType)
	})

	t.Run("article stats read model", func(t *testing.T) {
		article := createPublished(t, svc, alice.Email, "Statistical Article", "Readable content right here.")
		require.NoError(t, svc.RecordEngagement(ctx, bob.Email, article.ID, "view"))
		require.NoError(t, svc.RecordEngagement(ctx, bob.Email, article.ID, "like"))
		require.NoError(t, svc.RecordEngagement(ctx, bob.Email, article.ID, "clap"))

		stats, err := svc.ArticleStats(ctx, article.Slug)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.ViewCount)
		assert.Equal(t, "1", stats.FormattedViewCount)
		assert.Equal(t, int64(1), stats.TotalClaps)
		assert.Greater(t, stats.EngagementRate, 0.0)
		assert.NotEmpty(t, stats.ReadingLevel)
	})
}

func TestDiscovery(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	seedViews := func(article *simplepublishing.Article, views int) {
		t.Helper()
		for i := 0; i < views; i++ {
			_, err := svc.GetArticleBySlug(ctx, article.Slug)
			require.NoError(t, err)
		}
	}

	t.Run("trending orders by view count", func(t *testing.T) {
		low := createPublished(t, svc, alice.Email, "Quiet Article", "content")
		high := createPublished(t, svc, alice.Email, "Popular Article", "content")
		seedViews(low, 1)
		seedViews(high, 5)

		page, err := svc.TrendingArticles(ctx, simplepublishing.PageRequest{Size: 10})
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(page.Items), 2)
		assert.Equal(t, high.ID, page.Items[0].ID)
	})

	t.Run("keyword search matches title or content", func(t *testing.T) {
		createPublished(t, svc, alice.Email, "Searching in Go", "about indexes")
		createPublished(t, svc, bob.Email, "Unrelated Piece", "but it mentions searching too")

		page, err := svc.SearchArticles(ctx, "searching", simplepublishing.PageRequest{Size: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.TotalCount)
	})

	t.Run("advanced search is conjunctive", func(t *testing.T) {
		createPublished(t, svc, alice.Email, "Conjunctive Query Test", "filters")
		createPublished(t, svc, bob.Email, "Conjunctive Query Probe", "filters")

		page, err := svc.AdvancedSearch(ctx, simplepublishing.AdvancedSearchRequest{
			Keywords:       "conjunctive",
			AuthorUsername: "alice",
			PublishedOnly:  true,
			Size:           10,
		})
		require.NoError(t, err)
		require.Equal(t, int64(1), page.TotalCount)
		assert.Equal(t, "alice", page.Items[0].AuthorUsername)
	})

	t.Run("tag search requires all tags", func(t *testing.T) {
		createPublished(t, svc, alice.Email, "Only Go Tagged", "content", "go")
		both := createPublished(t, svc, alice.Email, "Go And Databases", "content", "go", "databases")

		page, err := svc.SearchByTags(ctx, []string{"go", "databases"}, simplepublishing.PageRequest{Size: 10})
		require.NoError(t, err)
		require.Equal(t, int64(1), page.TotalCount)
		assert.Equal(t, both.ID, page.Items[0].ID)
	})
}

func TestPersonalizedFeed(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// carol follows alice; bob is unfollowed but trends on views.
	followed := createPublished(t, svc, alice.Email, "From A Followed Author", "content")
	trending := createPublished(t, svc, bob.Email, "Trending Elsewhere", "content")
	for i := 0; i < 5; i++ {
		_, err := svc.GetArticleBySlug(ctx, trending.Slug)
		require.NoError(t, err)
	}

	t.Run("merges sources and deduplicates", func(t *testing.T) {
		page, err := svc.PersonalizedFeed(ctx, simplepublishing.PersonalizedFeedRequest{
			UserEmail:              carol.Email,
			IncludeFollowedAuthors: true,
			IncludeTrending:        true,
			Size:                   10,
		})
		require.NoError(t, err)

		seen := make(map[uuid.UUID]int)
		for _, a := range page.Items {
			seen[a.ID]++
		}
		assert.Equal(t, 1, seen[followed.ID])
		assert.Equal(t, 1, seen[trending.ID])
		for id, n := range seen {
			assert.Equal(t, 1, n, "article %s duplicated", id)
		}
	})

	t.Run("orders newest published first", func(t *testing.T) {
		page, err := svc.PersonalizedFeed(ctx, simplepublishing.PersonalizedFeedRequest{
			UserEmail:              carol.Email,
			IncludeFollowedAuthors: true,
			IncludeTrending:        true,
			Size:                   10,
		})
		require.NoError(t, err)
		for i := 1; i < len(page.Items); i++ {
			prev, cur := page.Items[i-1].PublishedAt, page.Items[i].PublishedAt
			require.NotNil(t, prev)
			require.NotNil(t, cur)
			assert.False(t, prev.Before(*cur))
		}
	})

	t.Run("bounded page window", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			createPublished(t, svc, alice.Email, fmt.Sprintf("Feed Filler %d", i), "content")
		}
		page, err := svc.PersonalizedFeed(ctx, simplepublishing.PersonalizedFeedRequest{
			UserEmail:              carol.Email,
			IncludeFollowedAuthors: true,
			Size:                   3,
		})
		require.NoError(t, err)
		// Page 0 with size 3 fetches a window of 3 per source, so both the
		// items and the merged total stay bounded.
		assert.Len(t, page.Items, 3)
		assert.Equal(t, int64(3), page.TotalCount)
	})
}

func TestTags(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("usage counted on every save", func(t *testing.T) {
		article := createPublished(t, svc, alice.Email, "Tag Usage Article", "content", "golang")

		tags, err := svc.AutocompleteTags(ctx, "gol")
		require.NoError(t, err)
		require.Len(t, tags, 1)
		assert.Equal(t, int64(1), tags[0].UsageCount)

		_, err = svc.UpdateArticle(ctx, simplepublishing.UpdateArticleRequest{
			EditorEmail: alice.Email,
			ArticleID:   article.ID,
			Title:       "Tag Usage Article",
			Content:     "revised content",
			Tags:        []string{"golang"},
			Published:   true,
		})
		require.NoError(t, err)

		tags, err = svc.AutocompleteTags(ctx, "gol")
		require.NoError(t, err)
		require.Len(t, tags, 1)
		assert.Equal(t, int64(2), tags[0].UsageCount)
	})

	t.Run("trending tags ordered by usage", func(t *testing.T) {
		createPublished(t, svc, alice.Email, "Tag Heavy One", "content", "kubernetes")
		createPublished(t, svc, alice.Email, "Tag Heavy Two", "content", "kubernetes")
		createPublished(t, svc, alice.Email, "Tag Light", "content", "terraform")

		tags, err := svc.TrendingTags(ctx, 2)
		require.NoError(t, err)
		require.NotEmpty(t, tags)
		for i := 1; i < len(tags); i++ {
			assert.GreaterOrEqual(t, tags[i-1].UsageCount, tags[i].UsageCount)
		}
	})

	t.Run("tag detail by name", func(t *testing.T) {
		createPublished(t, svc, alice.Email, "Observability Primer", "content", "observability")

		tag, err := svc.GetTag(ctx, "Observability")
		require.NoError(t, err)
		assert.Equal(t, "observability", tag.Name)
		assert.Equal(t, int64(1), tag.UsageCount)

		_, err = svc.GetTag(ctx, "never-used")
		assert.ErrorIs(t, err, simplepublishing.ErrTagNotFound)

		_, err = svc.GetTag(ctx, "   ")
		assert.ErrorIs(t, err, simplepublishing.ErrTagNotFound)
	})

	t.Run("articles by tag", func(t *testing.T) {
		tagged := createPublished(t, svc, alice.Email, "Rust Comparison", "content", "rustlang")
		page, err := svc.ArticlesByTag(ctx, "RustLang", simplepublishing.PageRequest{Size: 10})
		require.NoError(t, err)
		require.Equal(t, int64(1), page.TotalCount)
		assert.Equal(t, tagged.ID, page.Items[0].ID)
	})
}

func TestDrafts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("autosave creates then overwrites without versions", func(t *testing.T) {
		draft, err := svc.AutoSaveDraft(ctx, simplepublishing.AutoSaveDraftRequest{
			AuthorEmail: alice.Email,
			Title:       "Work In Progress",
			Content:     "first keystrokes",
		})
		require.NoError(t, err)
		assert.False(t, draft.Published)
		assert.NotNil(t, draft.LastSavedAt)
		assert.Equal(t, 0, draft.ReadTime)

		saved, err := svc.AutoSaveDraft(ctx, simplepublishing.AutoSaveDraftRequest{
			AuthorEmail: alice.Email,
			DraftID:     &draft.ID,
			Title:       "Work In Progress",
			Content:     "more keystrokes",
		})
		require.NoError(t, err)
		assert.Equal(t, draft.ID, saved.ID)
		assert.Equal(t, "more keystrokes", saved.Content)

		versions, err := svc.ListVersions(ctx, draft.ID)
		require.NoError(t, err)
		assert.Empty(t, versions)
	})

	t.Run("autosave rejects published articles", func(t *testing.T) {
		article := createPublished(t, svc, alice.Email, "Already Live", "content")
		_, err := svc.AutoSaveDraft(ctx, simplepublishing.AutoSaveDraftRequest{
			AuthorEmail: alice.Email,
			DraftID:     &article.ID,
			Title:       "Already Live",
		})
		assert.ErrorIs(t, err, simplepublishing.ErrNotDraft)
	})

	t.Run("publish draft assigns slug, read time and initial version", func(t *testing.T) {
		draft, err := svc.AutoSaveDraft(ctx, simplepublishing.AutoSaveDraftRequest{
			AuthorEmail: alice.Email,
			Title:       "Draft To Publish",
			Content:     "finally finished",
		})
		require.NoError(t, err)

		published, err := svc.PublishDraft(ctx, alice.Email, draft.ID)
		require.NoError(t, err)
		assert.True(t, published.Published)
		assert.Equal(t, "draft-to-publish", published.Slug)
		assert.GreaterOrEqual(t, published.ReadTime, 1)
		require.NotNil(t, published.PublishedAt)

		versions, err := svc.ListVersions(ctx, draft.ID)
		require.NoError(t, err)
		require.Len(t, versions, 1)
		assert.Equal(t, "Initial version", versions[0].ChangeDescription)
	})

	t.Run("drafts are listed per author", func(t *testing.T) {
		_, err := svc.AutoSaveDraft(ctx, simplepublishing.AutoSaveDraftRequest{
			AuthorEmail: bob.Email,
			Title:       "Bob's Secret Draft",
		})
		require.NoError(t, err)

		drafts, err := svc.ListDrafts(ctx, bob.Email)
		require.NoError(t, err)
		require.Len(t, drafts, 1)
		assert.Equal(t, "Bob's Secret Draft", drafts[0].Title)
	})

	t.Run("drafts are private to their author", func(t *testing.T) {
		draft, err := svc.AutoSaveDraft(ctx, simplepublishing.AutoSaveDraftRequest{
			AuthorEmail: alice.Email,
			Title:       "Private Draft",
		})
		require.NoError(t, err)

		_, err = svc.GetDraft(ctx, bob.Email, draft.ID)
		assert.ErrorIs(t, err, simplepublishing.ErrNotArticleAuthor)
	})
}

func TestRecommendations(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	followedArticle := createPublished(t, svc, alice.Email, "Followed Author Piece", "content")
	trendingArticle := createPublished(t, svc, bob.Email, "Trending Piece", "content")
	for i := 0; i < 4; i++ {
		_, err := svc.GetArticleBySlug(ctx, trendingArticle.Slug)
		require.NoError(t, err)
	}

	t.Run("followed authors come first, trending backfills", func(t *testing.T) {
		ids, err := svc.RecommendedArticleIDs(ctx, carol.Email, 10)
		require.NoError(t, err)
		require.NotEmpty(t, ids)
		assert.Equal(t, followedArticle.ID, ids[0])
		assert.Contains(t, ids, trendingArticle.ID)
	})

	t.Run("limit is honored and ids unique", func(t *testing.T) {
		ids, err := svc.RecommendedArticleIDs(ctx, carol.Email, 1)
		require.NoError(t, err)
		assert.Len(t, ids, 1)
	})

	t.Run("batch generation survives all users", func(t *testing.T) {
		assert.NoError(t, svc.GenerateRecommendationsForAllUsers(ctx))
	})
}

func TestDeleteArticle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("cascades to versions and engagements", func(t *testing.T) {
		article := createPublished(t, svc, alice.Email, "Doomed Article", "content")
		require.NoError(t, svc.RecordEngagement(ctx, bob.Email, article.ID, "like"))

		require.NoError(t, svc.DeleteArticle(ctx, alice.Email, article.ID))

		_, err := svc.GetArticle(ctx, article.ID)
		assert.ErrorIs(t, err, simplepublishing.ErrArticleNotFound)
		_, err = svc.ListVersions(ctx, article.ID)
		assert.ErrorIs(t, err, simplepublishing.ErrArticleNotFound)
	})

	t.Run("only the author can delete", func(t *testing.T) {
		article := createPublished(t, svc, alice.Email, "Still Protected", "content")
		err := svc.DeleteArticle(ctx, bob.Email, article.ID)
		assert.ErrorIs(t, err, simplepublishing.ErrNotArticleAuthor)

		// Slug remains taken, so a same-titled article gets a numbered slug.
		again := createPublished(t, svc, alice.Email, "Still Protected", "content")
		assert.Equal(t, "still-protected-1", again.Slug)
	})
}
