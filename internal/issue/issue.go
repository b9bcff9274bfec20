// Package issue defines core data structures for the qhub issue engine.
package issue

import (
	"fmt"
	"time"
)

// Issue represents a recorded finding with lifecycle state and classification.
type Issue struct {
	Key          string      `json:"key"`
	Status       Status      `json:"status"`
	Resolution   *Resolution `json:"resolution,omitempty"` // only meaningful when status is resolved/closed
	Type         Type        `json:"type"`
	Severity     Severity    `json:"severity"`
	Assignee     *string     `json:"assignee,omitempty"`
	Tags         []string    `json:"tags,omitempty"` // normalized lowercase, sorted
	ComponentKey string      `json:"component_key"`
	ProjectKey   string      `json:"project_key"`
	RuleKey      string      `json:"rule_key"`
	FromHotspot  bool        `json:"from_hotspot,omitempty"` // detected by a security-hotspot rule; type is frozen
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Validate checks if the issue has valid field values.
func (i *Issue) Validate() error {
	if i.Key == "" {
		return fmt.Errorf("issue key is required")
	}
	if i.ProjectKey == "" {
		return fmt.Errorf("project key is required")
	}
	if i.ComponentKey == "" {
		return fmt.Errorf("component key is required")
	}
	if !i.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", i.Status)
	}
	if !i.Type.IsValid() {
		return fmt.Errorf("invalid type: %s", i.Type)
	}
	if !i.Severity.IsValid() {
		return fmt.Errorf("invalid severity: %s", i.Severity)
	}
	if i.Resolution != nil {
		if !i.Resolution.IsValid() {
			return fmt.Errorf("invalid resolution: %s", *i.Resolution)
		}
		if !i.Status.IsResolved() {
			return fmt.Errorf("resolution %s requires a resolved or closed status (got %s)", *i.Resolution, i.Status)
		}
	}
	for _, tag := range i.Tags {
		if err := CheckTag(tag); err != nil {
			return err
		}
	}
	return nil
}

// HasTag reports whether the issue carries the given (already normalized) tag.
func (i *Issue) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AssigneeLogin returns the assignee login or "" when unassigned.
func (i *Issue) AssigneeLogin() string {
	if i.Assignee == nil {
		return ""
	}
	return *i.Assignee
}

// ResolutionValue returns the resolution or "" when unresolved.
func (i *Issue) ResolutionValue() string {
	if i.Resolution == nil {
		return ""
	}
	return string(*i.Resolution)
}

// Status represents the lifecycle state of an issue.
type Status string

// Issue status constants
const (
	StatusOpen      Status = "OPEN"
	StatusConfirmed Status = "CONFIRMED"
	StatusReopened  Status = "REOPENED"
	StatusResolved  Status = "RESOLVED"
	StatusClosed    Status = "CLOSED"
)

// IsValid checks if the status value is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusConfirmed, StatusReopened, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// IsResolved reports whether the status carries a resolution
// (RESOLVED or CLOSED). The remaining statuses are "unresolved".
func (s Status) IsResolved() bool {
	return s == StatusResolved || s == StatusClosed
}

// ParseStatus converts a wire token into a Status.
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown status: %q", v)
	}
	return s, nil
}

// Resolution explains why a resolved/closed issue left the unresolved states.
type Resolution string

// Resolution constants. REMOVED is never produced by a user-facing
// transition: it is reserved for the cleanup pipeline that closes issues
// whose source file or rule disappeared, which writes it directly.
const (
	ResolutionFixed         Resolution = "FIXED"
	ResolutionFalsePositive Resolution = "FALSE-POSITIVE"
	ResolutionWontFix       Resolution = "WONTFIX"
	ResolutionRemoved       Resolution = "REMOVED"
)

// IsValid checks if the resolution value is valid.
func (r Resolution) IsValid() bool {
	switch r {
	case ResolutionFixed, ResolutionFalsePositive, ResolutionWontFix, ResolutionRemoved:
		return true
	}
	return false
}

// Type categorizes the kind of finding.
type Type string

// Issue type constants
const (
	TypeBug             Type = "BUG"
	TypeVulnerability   Type = "VULNERABILITY"
	TypeCodeSmell       Type = "CODE_SMELL"
	TypeSecurityHotspot Type = "SECURITY_HOTSPOT"
)

// IsValid checks if the issue type value is valid.
func (t Type) IsValid() bool {
	switch t {
	case TypeBug, TypeVulnerability, TypeCodeSmell, TypeSecurityHotspot:
		return true
	}
	return false
}

// ParseType converts a wire token into a Type.
func ParseType(v string) (Type, error) {
	t := Type(v)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown issue type: %q", v)
	}
	return t, nil
}

// Severity rates the impact of an issue. Severities are ordered:
// INFO < MINOR < MAJOR < CRITICAL < BLOCKER.
type Severity string

// Severity constants
const (
	SeverityInfo     Severity = "INFO"
	SeverityMinor    Severity = "MINOR"
	SeverityMajor    Severity = "MAJOR"
	SeverityCritical Severity = "CRITICAL"
	SeverityBlocker  Severity = "BLOCKER"
)

var severityRank = map[Severity]int{
	SeverityInfo:     0,
	SeverityMinor:    1,
	SeverityMajor:    2,
	SeverityCritical: 3,
	SeverityBlocker:  4,
}

// IsValid checks if the severity value is valid.
func (s Severity) IsValid() bool {
	_, ok := severityRank[s]
	return ok
}

// Compare returns -1, 0 or 1 depending on the severity ordering.
// Both severities must be valid.
func (s Severity) Compare(other Severity) int {
	a, b := severityRank[s], severityRank[other]
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// ParseSeverity converts a wire token into a Severity.
func ParseSeverity(v string) (Severity, error) {
	s := Severity(v)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown severity: %q", v)
	}
	return s, nil
}
