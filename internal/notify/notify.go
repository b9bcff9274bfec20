// Package notify dispatches change notifications for mutated issues.
//
// The orchestrator emits one ChangeEvent per issue that actually changed;
// the dispatcher coalesces events by affected component before handing them
// to handlers, so a bulk change touching fifty issues in one file produces
// one notification for that file, not fifty. Delivery transport is out of
// scope: handlers are the boundary.
package notify

import (
	"context"
	"time"
)

// ChangeEvent describes one issue that changed.
type ChangeEvent struct {
	IssueKey     string
	ComponentKey string
	ProjectKey   string
	Author       string
	Fields       []string // changelog field names that changed
	At           time.Time
}

// ComponentChange aggregates the change events of one component within one
// flush window.
type ComponentChange struct {
	ComponentKey string
	ProjectKey   string
	IssueKeys    []string
	Authors      []string
	At           time.Time
}

// Notifier accepts change events, fire-and-forget.
type Notifier interface {
	IssueChanged(ev ChangeEvent)
}

// Handler receives coalesced per-component change batches. Handler errors
// are logged by the dispatcher and never propagate to the mutation path.
type Handler interface {
	ID() string
	HandleChanges(ctx context.Context, changes []ComponentChange) error
}

// Discard is a Notifier that drops all events. Used when notifications are
// disabled.
type Discard struct{}

// IssueChanged implements Notifier.
func (Discard) IssueChanged(ChangeEvent) {}
