package simplepublishing

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrArticleNotFound indicates an article was not found
	ErrArticleNotFound = errors.New("article not found")

	// ErrVersionNotFound indicates an article version was not found
	ErrVersionNotFound = errors.New("article version not found")

	// ErrUserNotFound indicates a user could not be resolved
	ErrUserNotFound = errors.New("user not found")

	// ErrTagNotFound indicates a tag was not found
	ErrTagNotFound = errors.New("tag not found")

	// ErrNotArticleAuthor indicates the acting user does not own the article.
	// Kept distinct from ErrArticleNotFound so callers can tell "doesn't
	// exist" apart from "not yours".
	ErrNotArticleAuthor = errors.New("not the article author")

	// ErrInvalidEngagementType indicates an unknown engagement type label
	ErrInvalidEngagementType = errors.New("invalid engagement type")

	// ErrInvalidTitle indicates a title from which no slug can be derived
	ErrInvalidTitle = errors.New("title yields an empty slug")

	// ErrNotDraft indicates a draft operation was attempted on a published article
	ErrNotDraft = errors.New("article is not a draft")
)

// ArticleError represents an error related to article operations
type ArticleError struct {
	ArticleID uuid.UUID
	Op        string
	Err       error
}

func (e *ArticleError) Error() string {
	return fmt.Sprintf("article operation %s failed for article %s: %v", e.Op, e.ArticleID, e.Err)
}

func (e *ArticleError) Unwrap() error {
	return e.Err
}

// VersionError represents an error related to version operations
type VersionError struct {
	ArticleID     uuid.UUID
	VersionNumber int
	Op            string
	Err           error
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("version operation %s failed for article %s version %d: %v", e.Op, e.ArticleID, e.VersionNumber, e.Err)
}

func (e *VersionError) Unwrap() error {
	return e.Err
}
