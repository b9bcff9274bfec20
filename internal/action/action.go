// Package action defines the closed set of issue mutations the bulk engine
// can apply: assign, set_severity, set_type, add_tags, remove_tags, comment
// and do_transition.
//
// The set is a sealed sum type: every Action variant lives in this package
// and the orchestrator matches over the concrete types exhaustively, so
// adding a new kind is a compile-time-checked change. Actions mutate the
// in-memory issue and report what changed as field diffs; they never persist
// anything themselves.
package action

import (
	"errors"
	"time"

	"github.com/qualityhub/qhub/internal/changelog"
	"github.com/qualityhub/qhub/internal/issue"
)

// Kind names an action variant on the wire.
type Kind string

// Action kind constants
const (
	KindAssign       Kind = "assign"
	KindSetSeverity  Kind = "set_severity"
	KindSetType      Kind = "set_type"
	KindAddTags      Kind = "add_tags"
	KindRemoveTags   Kind = "remove_tags"
	KindComment      Kind = "comment"
	KindDoTransition Kind = "do_transition"
)

// ErrHotspotTypeChange is returned when a type change is attempted on an
// issue that originated from a security-hotspot detector. The type of such
// issues is frozen regardless of the actor's capabilities.
var ErrHotspotTypeChange = errors.New("type of an issue raised by a security-hotspot rule cannot be changed")

// Action is one unit of mutation in a bulk change request.
//
// Apply mutates iss in place and returns the field diffs describing the
// change. An empty diff list means "nothing to do" (target value already in
// place), which callers must distinguish from an error. Comment is the one
// variant whose Apply never produces diffs; its text is recorded as a
// changelog comment entry by the orchestrator instead.
type Action interface {
	Kind() Kind
	Apply(iss *issue.Issue, now time.Time) ([]changelog.FieldDiff, error)

	// sealed marks the set closed to this package.
	sealed()
}
