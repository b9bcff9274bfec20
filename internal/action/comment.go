package action

import (
	"strings"
	"time"

	"github.com/qualityhub/qhub/internal/changelog"
	"github.com/qualityhub/qhub/internal/issue"
)

// Comment appends a changelog comment attributed to the actor. A comment is
// not a field diff: it never merges with other changes and contributes
// independently of whether the other requested actions changed anything.
type Comment struct {
	Text string
}

// NewComment builds a Comment action. Leading/trailing whitespace is trimmed.
func NewComment(text string) Comment {
	return Comment{Text: strings.TrimSpace(text)}
}

// Empty reports whether there is no comment text to record.
func (c Comment) Empty() bool { return c.Text == "" }

// Kind implements Action.
func (Comment) Kind() Kind { return KindComment }

func (Comment) sealed() {}

// Apply implements Action. Commenting produces no field diffs; the
// orchestrator records the text as a changelog comment entry.
func (c Comment) Apply(_ *issue.Issue, _ time.Time) ([]changelog.FieldDiff, error) {
	return nil, nil
}
