package workflow

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/qualityhub/qhub/internal/changelog"
	"github.com/qualityhub/qhub/internal/issue"
)

func testIssue(status issue.Status) *issue.Issue {
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	return &issue.Issue{
		Key:          "PROJ-1",
		Status:       status,
		Type:         issue.TypeBug,
		Severity:     issue.SeverityMajor,
		ComponentKey: "proj:src/app.go",
		ProjectKey:   "proj",
		RuleKey:      "go:S100",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestApplyLegalEdges(t *testing.T) {
	cases := []struct {
		key  string
		from issue.Status
		to   issue.Status
	}{
		{Confirm, issue.StatusOpen, issue.StatusConfirmed},
		{Confirm, issue.StatusReopened, issue.StatusConfirmed},
		{Unconfirm, issue.StatusConfirmed, issue.StatusReopened},
		{Resolve, issue.StatusOpen, issue.StatusResolved},
		{Resolve, issue.StatusConfirmed, issue.StatusResolved},
		{FalsePositive, issue.StatusReopened, issue.StatusResolved},
		{WontFix, issue.StatusOpen, issue.StatusResolved},
		{Reopen, issue.StatusClosed, issue.StatusReopened},
		{Close, issue.StatusResolved, issue.StatusClosed},
	}
	now := time.Now().UTC()
	for _, tc := range cases {
		iss := testIssue(tc.from)
		diffs, err := Apply(iss, tc.key, now)
		if err != nil {
			t.Errorf("%s from %s: unexpected error: %v", tc.key, tc.from, err)
			continue
		}
		if iss.Status != tc.to {
			t.Errorf("%s from %s: got status %s, want %s", tc.key, tc.from, iss.Status, tc.to)
		}
		if len(diffs) == 0 {
			t.Errorf("%s from %s: expected at least a status diff", tc.key, tc.from)
		}
	}
}

func TestApplyIllegalEdgeLeavesIssueUnmodified(t *testing.T) {
	iss := testIssue(issue.StatusOpen)
	before := *iss

	_, err := Apply(iss, Close, time.Now().UTC())
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
	if !reflect.DeepEqual(*iss, before) {
		t.Errorf("issue was modified by a failed transition: %+v", iss)
	}
}

func TestApplyUnknownKey(t *testing.T) {
	iss := testIssue(issue.StatusOpen)
	_, err := Apply(iss, "promote", time.Now().UTC())
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestResolveSetsFixed(t *testing.T) {
	iss := testIssue(issue.StatusOpen)
	diffs, err := Apply(iss, Resolve, time.Now().UTC())
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if iss.ResolutionValue() != string(issue.ResolutionFixed) {
		t.Errorf("expected resolution FIXED, got %q", iss.ResolutionValue())
	}
	found := false
	for _, d := range diffs {
		if d.Field == changelog.FieldResolution {
			found = true
			if d.NewValue == nil || *d.NewValue != string(issue.ResolutionFixed) {
				t.Errorf("resolution diff new value wrong: %+v", d)
			}
			if d.OldValue != nil {
				t.Errorf("resolution diff old value should be nil, got %q", *d.OldValue)
			}
		}
	}
	if !found {
		t.Error("expected a resolution diff")
	}
}

func TestReopenClearsResolution(t *testing.T) {
	iss := testIssue(issue.StatusResolved)
	r := issue.ResolutionFixed
	iss.Resolution = &r

	diffs, err := Apply(iss, Reopen, time.Now().UTC())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if iss.Resolution != nil {
		t.Errorf("expected resolution cleared, got %q", *iss.Resolution)
	}
	found := false
	for _, d := range diffs {
		if d.Field == changelog.FieldResolution && d.NewValue == nil {
			found = true
		}
	}
	if !found {
		t.Error("expected a resolution-cleared diff")
	}
}

func TestWontFixClearsAssignee(t *testing.T) {
	for _, key := range []string{WontFix, FalsePositive} {
		iss := testIssue(issue.StatusOpen)
		login := "arthur"
		iss.Assignee = &login

		diffs, err := Apply(iss, key, time.Now().UTC())
		if err != nil {
			t.Fatalf("%s failed: %v", key, err)
		}
		if iss.Assignee != nil {
			t.Errorf("%s: expected assignee cleared, got %q", key, *iss.Assignee)
		}
		found := false
		for _, d := range diffs {
			if d.Field == changelog.FieldAssignee && d.NewValue == nil {
				found = true
			}
		}
		if !found {
			t.Errorf("%s: expected an assignee-cleared diff", key)
		}
	}
}

func TestApplySetsUpdatedAt(t *testing.T) {
	iss := testIssue(issue.StatusOpen)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if _, err := Apply(iss, Confirm, now); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if !iss.UpdatedAt.Equal(now) {
		t.Errorf("expected updated_at %v, got %v", now, iss.UpdatedAt)
	}
}

func TestLegalTransitions(t *testing.T) {
	keys := func(ts []Transition) []string {
		out := make([]string, 0, len(ts))
		for _, tr := range ts {
			out = append(out, tr.Key)
		}
		return out
	}

	got := keys(LegalTransitions(testIssue(issue.StatusOpen)))
	want := []string{Confirm, Resolve, FalsePositive, WontFix}
	if len(got) != len(want) {
		t.Fatalf("from OPEN: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("from OPEN: got %v, want %v", got, want)
		}
	}

	got = keys(LegalTransitions(testIssue(issue.StatusClosed)))
	if len(got) != 1 || got[0] != Reopen {
		t.Fatalf("from CLOSED: got %v, want [reopen]", got)
	}
}

func TestResolvesOrCloses(t *testing.T) {
	resolving := map[string]bool{
		Confirm:       false,
		Unconfirm:     false,
		Resolve:       true,
		FalsePositive: true,
		WontFix:       true,
		Reopen:        false,
		Close:         true,
	}
	for _, tr := range transitions {
		if tr.ResolvesOrCloses() != resolving[tr.Key] {
			t.Errorf("%s: ResolvesOrCloses = %v, want %v", tr.Key, tr.ResolvesOrCloses(), resolving[tr.Key])
		}
	}
}

func TestIsKnownKey(t *testing.T) {
	if !IsKnownKey(Resolve) {
		t.Error("resolve should be known")
	}
	if IsKnownKey("escalate") {
		t.Error("escalate should be unknown")
	}
}
