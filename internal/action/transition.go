package action

import (
	"fmt"
	"time"

	"github.com/qualityhub/qhub/internal/authz"
	"github.com/qualityhub/qhub/internal/changelog"
	"github.com/qualityhub/qhub/internal/issue"
	"github.com/qualityhub/qhub/internal/workflow"
)

// DoTransition moves the issue through the workflow state machine.
type DoTransition struct {
	TransitionKey string
}

// NewDoTransition validates that the key names a declared transition.
// Whether the transition is legal for a particular issue is decided at apply
// time against that issue's status.
func NewDoTransition(key string) (DoTransition, error) {
	if !workflow.IsKnownKey(key) {
		return DoTransition{}, fmt.Errorf("%w: unknown transition %q", workflow.ErrIllegalTransition, key)
	}
	return DoTransition{TransitionKey: key}, nil
}

// Kind implements Action.
func (DoTransition) Kind() Kind { return KindDoTransition }

func (DoTransition) sealed() {}

// Apply implements Action. Fails with workflow.ErrIllegalTransition when the
// key is not legal from the issue's current status; the issue is left
// unmodified in that case.
func (a DoTransition) Apply(iss *issue.Issue, now time.Time) ([]changelog.FieldDiff, error) {
	return workflow.Apply(iss, a.TransitionKey, now)
}

// TransitionPolicy decides who may run a transition on an issue.
//
// The shipped policy: issue-admins may run any transition. The current
// assignee may additionally run non-resolving transitions (confirm,
// unconfirm, reopen) on their own issue; resolving and closing transitions
// (resolve, falsepositive, wontfix, close) stay admin-only unless
// AssigneeCanResolve widens the policy (config key
// workflow.assignee_can_transition).
type TransitionPolicy struct {
	AssigneeCanResolve bool
}

// Allowed reports whether actor may run the transition named by key on iss.
// Unknown or status-illegal keys are allowed through here: legality is the
// workflow's verdict at apply time, not an authorization question.
func (p TransitionPolicy) Allowed(iss *issue.Issue, key string, actor authz.Actor, az authz.Authorizer) bool {
	if az.HasCapability(actor, iss.ProjectKey, authz.CapIssueAdmin) {
		return true
	}
	if iss.Assignee == nil || *iss.Assignee != actor.Login {
		return false
	}
	t, err := workflow.Lookup(iss, key)
	if err != nil {
		return true
	}
	if t.ResolvesOrCloses() {
		return p.AssigneeCanResolve
	}
	return true
}
