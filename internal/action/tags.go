package action

import (
	"time"

	"github.com/qualityhub/qhub/internal/changelog"
	"github.com/qualityhub/qhub/internal/issue"
)

// AddTags adds tags to the issue's tag set. Tags are normalized (lowercased,
// trimmed, de-duplicated) at construction; an invalid tag fails construction
// so a malformed request is rejected before any issue is touched.
type AddTags struct {
	Tags []string
}

// NewAddTags normalizes and validates the tags.
func NewAddTags(raw []string) (AddTags, error) {
	tags, err := issue.NormalizeTags(raw)
	if err != nil {
		return AddTags{}, err
	}
	return AddTags{Tags: tags}, nil
}

// Kind implements Action.
func (AddTags) Kind() Kind { return KindAddTags }

func (AddTags) sealed() {}

// Apply implements Action. No-op when every tag is already present.
func (a AddTags) Apply(iss *issue.Issue, now time.Time) ([]changelog.FieldDiff, error) {
	merged, changed := issue.UnionTags(iss.Tags, a.Tags)
	if !changed {
		return nil, nil
	}
	diff := changelog.NewDiff(changelog.FieldTags, issue.JoinTags(iss.Tags), issue.JoinTags(merged))
	iss.Tags = merged
	iss.UpdatedAt = now
	return []changelog.FieldDiff{diff}, nil
}

// RemoveTags removes tags from the issue's tag set.
type RemoveTags struct {
	Tags []string
}

// NewRemoveTags normalizes and validates the tags.
func NewRemoveTags(raw []string) (RemoveTags, error) {
	tags, err := issue.NormalizeTags(raw)
	if err != nil {
		return RemoveTags{}, err
	}
	return RemoveTags{Tags: tags}, nil
}

// Kind implements Action.
func (RemoveTags) Kind() Kind { return KindRemoveTags }

func (RemoveTags) sealed() {}

// Apply implements Action. No-op when none of the tags are present.
func (a RemoveTags) Apply(iss *issue.Issue, now time.Time) ([]changelog.FieldDiff, error) {
	remaining, changed := issue.SubtractTags(iss.Tags, a.Tags)
	if !changed {
		return nil, nil
	}
	diff := changelog.NewDiff(changelog.FieldTags, issue.JoinTags(iss.Tags), issue.JoinTags(remaining))
	iss.Tags = remaining
	iss.UpdatedAt = now
	return []changelog.FieldDiff{diff}, nil
}
