// Package storage provides the persistence boundary for issues.
//
// The concrete backend lives in the sqlite sub-package. This package holds
// the interface and sentinel errors referenced by both the backend and its
// consumers (the bulk orchestrator, the CLI, the search index rebuild), so
// alternative implementations can be substituted.
package storage

import (
	"context"
	"errors"

	"github.com/qualityhub/qhub/internal/changelog"
	"github.com/qualityhub/qhub/internal/issue"
)

// ErrNotFound is returned when a requested issue does not exist.
var ErrNotFound = errors.New("issue not found")

// Store is the issue store gateway.
//
// CommitMutation is the single write entry point for the mutation engine:
// it persists the issue row, the merged changelog record and the optional
// comment in one transaction scoped to exactly that issue. There is no
// multi-issue transaction anywhere in the engine; a crash mid-batch leaves a
// well-defined prefix of issues mutated.
type Store interface {
	// Load fetches an issue by key. Fails with ErrNotFound.
	Load(ctx context.Context, key string) (*issue.Issue, error)

	// Insert creates a new issue. Used by the detection pipeline boundary
	// and fixtures; the mutation engine itself never creates issues.
	Insert(ctx context.Context, iss *issue.Issue) error

	// CommitMutation saves a mutated issue together with its changelog
	// record and optional comment, atomically. rec and comment may each be
	// nil, but not both.
	CommitMutation(ctx context.Context, iss *issue.Issue, rec *changelog.Record, comment *changelog.Comment) error

	// Changelog returns the issue's field-diff records, oldest first.
	Changelog(ctx context.Context, key string) ([]*changelog.Record, error)

	// Comments returns the issue's comments, oldest first.
	Comments(ctx context.Context, key string) ([]*changelog.Comment, error)

	// Keys lists all issue keys. Pages via afterKey ("" starts from the
	// beginning); returns at most limit keys. Used by the index rebuild.
	Keys(ctx context.Context, afterKey string, limit int) ([]string, error)

	// Close releases the backend.
	Close() error
}
