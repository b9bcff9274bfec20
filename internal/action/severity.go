package action

import (
	"time"

	"github.com/qualityhub/qhub/internal/changelog"
	"github.com/qualityhub/qhub/internal/issue"
)

// SetSeverity overrides the issue severity. Requires the issue-admin
// capability on the issue's project (enforced by the orchestrator).
type SetSeverity struct {
	Severity issue.Severity
}

// NewSetSeverity parses the severity token and builds the action.
func NewSetSeverity(token string) (SetSeverity, error) {
	sev, err := issue.ParseSeverity(token)
	if err != nil {
		return SetSeverity{}, err
	}
	return SetSeverity{Severity: sev}, nil
}

// Kind implements Action.
func (SetSeverity) Kind() Kind { return KindSetSeverity }

func (SetSeverity) sealed() {}

// Apply implements Action. No-op when the severity is unchanged.
func (a SetSeverity) Apply(iss *issue.Issue, now time.Time) ([]changelog.FieldDiff, error) {
	if iss.Severity == a.Severity {
		return nil, nil
	}
	diff := changelog.NewDiff(changelog.FieldSeverity, string(iss.Severity), string(a.Severity))
	iss.Severity = a.Severity
	iss.UpdatedAt = now
	return []changelog.FieldDiff{diff}, nil
}
