package studyprofile

import (
	"context"
	"errors"
)

var (
	// ErrProfileNotFound is returned when no profile document exists for
	// the user.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrVersionConflict is returned by ReplaceProfile when the document
	// was modified since the version the caller read. Callers re-read and
	// retry.
	ErrVersionConflict = errors.New("profile version conflict")
)

// ProfileDocument is a profile together with the version used for
// optimistic-concurrency writes.
type ProfileDocument struct {
	UserID  string
	Profile StudyProfile
	Version int64
}

// JSON paths for ArrayUnion appends.
const (
	PathKnowledgeInsights = "$.knowledgeInsights"
	PathCompetitions      = "$.competitions"
)

// DocumentStore is the persistence collaborator for profile documents.
// ReplaceProfile is a compare-and-swap on the document version.
// ArrayUnion appends values to a list field atomically, without a prior
// read, for the purely additive operation kinds.
type DocumentStore interface {
	GetProfile(ctx context.Context, userID string) (*ProfileDocument, error)
	CreateProfile(ctx context.Context, userID string, profile *StudyProfile) error
	ReplaceProfile(ctx context.Context, userID string, profile *StudyProfile, expectedVersion int64) error
	ArrayUnion(ctx context.Context, userID string, path string, values ...any) error
}
