// Package changelog models the append-only mutation history of an issue.
//
// Every field mutation is captured as a FieldDiff. All diffs produced within
// one logical change (for bulk operations: one orchestrator pass over one
// issue) are merged into a single Record with one author and one timestamp,
// so a UI can render "at T, user U changed severity MAJOR→MINOR and added
// tag X" as one entry. Comments are a distinct entry type and are never
// merged with field diffs.
package changelog

import (
	"sort"
	"time"
)

// Diff field name constants. These are the only field names the engine emits.
const (
	FieldStatus     = "status"
	FieldResolution = "resolution"
	FieldAssignee   = "assignee"
	FieldSeverity   = "severity"
	FieldType       = "type"
	FieldTags       = "tags"
)

// FieldDiff records one field-level change. Old/new values of nil mean the
// field was unset on that side of the change.
type FieldDiff struct {
	Field    string  `json:"field"`
	OldValue *string `json:"old_value,omitempty"`
	NewValue *string `json:"new_value,omitempty"`
}

// NewDiff builds a FieldDiff from plain strings, mapping "" to nil.
func NewDiff(field, oldValue, newValue string) FieldDiff {
	d := FieldDiff{Field: field}
	if oldValue != "" {
		d.OldValue = &oldValue
	}
	if newValue != "" {
		d.NewValue = &newValue
	}
	return d
}

// Record aggregates the field diffs of a single logical change.
// Author is nil for system-generated changes. Records are append-only: once
// persisted they are never mutated or deleted.
type Record struct {
	ID        int64       `json:"id,omitempty"`
	IssueKey  string      `json:"issue_key"`
	Author    *string     `json:"author,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	Diffs     []FieldDiff `json:"diffs"`
}

// NewRecord merges diffs into a single record attributed to author at now.
// Diffs are ordered by field name so persisted records are deterministic.
// Returns nil when there is nothing to record.
func NewRecord(issueKey string, author string, now time.Time, diffs []FieldDiff) *Record {
	if len(diffs) == 0 {
		return nil
	}
	merged := make([]FieldDiff, len(diffs))
	copy(merged, diffs)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Field < merged[j].Field })

	rec := &Record{
		IssueKey:  issueKey,
		CreatedAt: now,
		Diffs:     merged,
	}
	if author != "" {
		rec.Author = &author
	}
	return rec
}

// Fields returns the distinct field names touched by the record, in order.
func (r *Record) Fields() []string {
	out := make([]string, 0, len(r.Diffs))
	seen := make(map[string]struct{}, len(r.Diffs))
	for _, d := range r.Diffs {
		if _, ok := seen[d.Field]; ok {
			continue
		}
		seen[d.Field] = struct{}{}
		out = append(out, d.Field)
	}
	return out
}

// Comment is an append-only changelog entry carrying free text. Unlike field
// diffs a comment is always attributed to a user.
type Comment struct {
	ID        int64     `json:"id,omitempty"`
	IssueKey  string    `json:"issue_key"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
