// Package search defines the read-index boundary of the engine.
//
// The index is a derived, rebuildable view of the primary store. Writes to
// it must never block or fail a primary commit: the orchestrator logs index
// errors and moves on, and RebuildAll exists as the repair path.
package search

import (
	"context"

	"github.com/qualityhub/qhub/internal/issue"
)

// Index receives issue projections after successful store commits.
type Index interface {
	// Reindex replaces the indexed projection of the issue.
	Reindex(ctx context.Context, iss *issue.Issue) error
	// Remove drops the issue from the index.
	Remove(ctx context.Context, issueKey string) error
}

// Noop is an Index for deployments without a read index.
type Noop struct{}

// Reindex implements Index.
func (Noop) Reindex(context.Context, *issue.Issue) error { return nil }

// Remove implements Index.
func (Noop) Remove(context.Context, string) error { return nil }
