// Package workflow defines the static state machine governing issue
// status/resolution changes.
//
// Transitions are statically enumerated edges between statuses. Side effects
// (setting or clearing the resolution, unassigning) are declared on the edge
// itself, never applied ad hoc by callers. Applying a transition whose key
// is not legal for the issue's current status is an error, not a no-op.
package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/qualityhub/qhub/internal/changelog"
	"github.com/qualityhub/qhub/internal/issue"
)

// ErrIllegalTransition is returned when a transition key is unknown or not
// legal from the issue's current status.
var ErrIllegalTransition = errors.New("illegal transition")

// Transition keys
const (
	Confirm       = "confirm"
	Unconfirm     = "unconfirm"
	Resolve       = "resolve"
	FalsePositive = "falsepositive"
	WontFix       = "wontfix"
	Reopen        = "reopen"
	Close         = "close"
)

// Transition is a named edge between issue statuses.
type Transition struct {
	Key  string
	From []issue.Status
	To   issue.Status

	// Declared side effects.
	SetResolution   *issue.Resolution
	ClearResolution bool
	ClearAssignee   bool
}

func resolution(r issue.Resolution) *issue.Resolution { return &r }

var unresolved = []issue.Status{issue.StatusOpen, issue.StatusConfirmed, issue.StatusReopened}

// transitions is the full edge table. Order matters only for presentation
// (LegalTransitions preserves it).
var transitions = []Transition{
	{
		Key:  Confirm,
		From: []issue.Status{issue.StatusOpen, issue.StatusReopened},
		To:   issue.StatusConfirmed,
	},
	{
		Key:  Unconfirm,
		From: []issue.Status{issue.StatusConfirmed},
		To:   issue.StatusReopened,
	},
	{
		Key:           Resolve,
		From:          unresolved,
		To:            issue.StatusResolved,
		SetResolution: resolution(issue.ResolutionFixed),
	},
	{
		Key:           FalsePositive,
		From:          unresolved,
		To:            issue.StatusResolved,
		SetResolution: resolution(issue.ResolutionFalsePositive),
		ClearAssignee: true,
	},
	{
		Key:           WontFix,
		From:          unresolved,
		To:            issue.StatusResolved,
		SetResolution: resolution(issue.ResolutionWontFix),
		ClearAssignee: true,
	},
	{
		Key:             Reopen,
		From:            []issue.Status{issue.StatusResolved, issue.StatusClosed},
		To:              issue.StatusReopened,
		ClearResolution: true,
	},
	{
		Key:  Close,
		From: []issue.Status{issue.StatusResolved},
		To:   issue.StatusClosed,
	},
}

// IsKnownKey reports whether key names any declared transition, regardless
// of source status.
func IsKnownKey(key string) bool {
	for _, t := range transitions {
		if t.Key == key {
			return true
		}
	}
	return false
}

// ResolvesOrCloses reports whether the transition moves the issue into a
// resolved state. Used by authorization policy: resolving transitions are
// more privileged than confirm/reopen style moves.
func (t Transition) ResolvesOrCloses() bool {
	return t.To.IsResolved()
}

func (t Transition) allowsFrom(s issue.Status) bool {
	for _, from := range t.From {
		if from == s {
			return true
		}
	}
	return false
}

// LegalTransitions returns the outbound transitions legal for the issue's
// current status, in declaration order.
func LegalTransitions(iss *issue.Issue) []Transition {
	var out []Transition
	for _, t := range transitions {
		if t.allowsFrom(iss.Status) {
			out = append(out, t)
		}
	}
	return out
}

// Lookup finds a transition by key that is legal for the issue's current
// status. Fails with ErrIllegalTransition otherwise.
func Lookup(iss *issue.Issue, key string) (Transition, error) {
	for _, t := range transitions {
		if t.Key != key {
			continue
		}
		if t.allowsFrom(iss.Status) {
			return t, nil
		}
		return Transition{}, fmt.Errorf("%w: %q is not legal from status %s", ErrIllegalTransition, key, iss.Status)
	}
	return Transition{}, fmt.Errorf("%w: unknown transition %q", ErrIllegalTransition, key)
}

// Apply executes the transition named by key on the issue, mutating status,
// resolution and assignee per the edge declaration, and returns the field
// diffs describing what changed. The issue is left unmodified on error.
func Apply(iss *issue.Issue, key string, now time.Time) ([]changelog.FieldDiff, error) {
	t, err := Lookup(iss, key)
	if err != nil {
		return nil, err
	}

	var diffs []changelog.FieldDiff

	diffs = append(diffs, changelog.NewDiff(changelog.FieldStatus, string(iss.Status), string(t.To)))
	iss.Status = t.To

	oldResolution := iss.ResolutionValue()
	switch {
	case t.SetResolution != nil:
		if oldResolution != string(*t.SetResolution) {
			diffs = append(diffs, changelog.NewDiff(changelog.FieldResolution, oldResolution, string(*t.SetResolution)))
		}
		r := *t.SetResolution
		iss.Resolution = &r
	case t.ClearResolution:
		if oldResolution != "" {
			diffs = append(diffs, changelog.NewDiff(changelog.FieldResolution, oldResolution, ""))
		}
		iss.Resolution = nil
	}

	if t.ClearAssignee && iss.Assignee != nil {
		diffs = append(diffs, changelog.NewDiff(changelog.FieldAssignee, *iss.Assignee, ""))
		iss.Assignee = nil
	}

	iss.UpdatedAt = now
	return diffs, nil
}
