package action

import (
	"fmt"
	"time"

	"github.com/qualityhub/qhub/internal/changelog"
	"github.com/qualityhub/qhub/internal/issue"
)

// SetType changes the issue type. Requires the issue-admin capability on the
// issue's project (enforced by the orchestrator). Issues raised by a
// security-hotspot rule refuse type changes unconditionally.
type SetType struct {
	Type issue.Type
}

// NewSetType parses the type token and builds the action.
func NewSetType(token string) (SetType, error) {
	t, err := issue.ParseType(token)
	if err != nil {
		return SetType{}, err
	}
	return SetType{Type: t}, nil
}

// Kind implements Action.
func (SetType) Kind() Kind { return KindSetType }

func (SetType) sealed() {}

// Apply implements Action. Fails with ErrHotspotTypeChange on hotspot-origin
// issues; no-op when the type is unchanged.
func (a SetType) Apply(iss *issue.Issue, now time.Time) ([]changelog.FieldDiff, error) {
	if iss.FromHotspot {
		return nil, fmt.Errorf("issue %s: %w", iss.Key, ErrHotspotTypeChange)
	}
	if iss.Type == a.Type {
		return nil, nil
	}
	diff := changelog.NewDiff(changelog.FieldType, string(iss.Type), string(a.Type))
	iss.Type = a.Type
	iss.UpdatedAt = now
	return []changelog.FieldDiff{diff}, nil
}
