package action

import (
	"time"

	"github.com/qualityhub/qhub/internal/changelog"
	"github.com/qualityhub/qhub/internal/issue"
)

// Assign sets or clears the issue assignee. An empty login means "un-assign".
type Assign struct {
	Assignee string
}

// NewAssign builds an Assign action. The login is not resolved against a
// user directory here; that is the caller's concern.
func NewAssign(login string) Assign {
	return Assign{Assignee: login}
}

// Kind implements Action.
func (Assign) Kind() Kind { return KindAssign }

func (Assign) sealed() {}

// Apply implements Action. No-op when the assignee is already the target.
func (a Assign) Apply(iss *issue.Issue, now time.Time) ([]changelog.FieldDiff, error) {
	current := iss.AssigneeLogin()
	if current == a.Assignee {
		return nil, nil
	}
	diff := changelog.NewDiff(changelog.FieldAssignee, current, a.Assignee)
	if a.Assignee == "" {
		iss.Assignee = nil
	} else {
		login := a.Assignee
		iss.Assignee = &login
	}
	iss.UpdatedAt = now
	return []changelog.FieldDiff{diff}, nil
}
