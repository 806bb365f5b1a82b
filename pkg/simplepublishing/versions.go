package simplepublishing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Version history operations. A snapshot is taken before every
// content-changing write, so version 1 is always the initial state and the
// newest version is always the state immediately before the latest edit.

// snapshot records the article's current content fields as a new version.
// The repository assigns the version number atomically.
func (s *service) snapshot(ctx context.Context, article *Article, editorEmail, changeDescription string) (int, error) {
	version := &ArticleVersion{
		ID:                uuid.New(),
		ArticleID:         article.ID,
		Title:             article.Title,
		Content:           article.Content,
		Summary:           article.Summary,
		Tags:              append([]string(nil), article.Tags...),
		CoverImageURL:     article.CoverImageURL,
		Slug:              article.Slug,
		ChangeDescription: changeDescription,
		EditorEmail:       editorEmail,
		CreatedAt:         time.Now().UTC(),
	}

	number, err := s.repository.CreateVersion(ctx, version)
	if err != nil {
		return 0, &ArticleError{ArticleID: article.ID, Op: "snapshot", Err: err}
	}
	return number, nil
}

func (s *service) ListVersions(ctx context.Context, articleID uuid.UUID) ([]*ArticleVersion, error) {
	if _, err := s.repository.GetArticle(ctx, articleID); err != nil {
		return nil, err
	}
	return s.repository.ListVersions(ctx, articleID)
}

func (s *service) GetVersion(ctx context.Context, articleID uuid.UUID, versionNumber int) (*ArticleVersion, error) {
	return s.repository.GetVersion(ctx, articleID, versionNumber)
}

func (s *service) RestoreVersion(ctx context.Context, editorEmail string, articleID uuid.UUID, versionNumber int) (*Article, error) {
	article, _, err := s.authorizedArticle(ctx, editorEmail, articleID)
	if err != nil {
		return nil, err
	}

	target, err := s.repository.GetVersion(ctx, articleID, versionNumber)
	if err != nil {
		return nil, err
	}

	// Snapshot the pre-restore state first so the restore itself is undoable.
	description := fmt.Sprintf("Restored from version %d", versionNumber)
	if _, err := s.snapshot(ctx, article, editorEmail, description); err != nil {
		return nil, err
	}

	article.Title = target.Title
	article.Content = target.Content
	article.Summary = target.Summary
	article.Tags = append([]string(nil), target.Tags...)
	article.CoverImageURL = target.CoverImageURL
	article.Slug = target.Slug
	article.ReadTime = ReadTime(target.Content)
	article.UpdatedAt = time.Now().UTC()

	if err := s.repository.UpdateArticle(ctx, article); err != nil {
		return nil, &VersionError{ArticleID: articleID, VersionNumber: versionNumber, Op: "restore", Err: err}
	}

	s.fireEvent(ctx, "article updated", func() error { return s.events.ArticleUpdated(ctx, article) })
	return article, nil
}

func (s *service) DeleteVersion(ctx context.Context, editorEmail string, articleID uuid.UUID, versionNumber int) error {
	if _, _, err := s.authorizedArticle(ctx, editorEmail, articleID); err != nil {
		return err
	}

	if err := s.repository.DeleteVersion(ctx, articleID, versionNumber); err != nil {
		return &VersionError{ArticleID: articleID, VersionNumber: versionNumber, Op: "delete", Err: err}
	}
	return nil
}
