package issue

import (
	"fmt"
	"sort"
	"strings"
)

// Tags are free-form labels attached to issues. They are stored lowercase
// and restricted to a conservative charset so they stay usable as facet
// values and URL path segments.

// CheckTag validates an already-normalized tag against the allowed charset.
func CheckTag(tag string) error {
	if tag == "" {
		return fmt.Errorf("tag cannot be empty")
	}
	for _, r := range tag {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			continue
		}
		switch r {
		case '+', '-', '#', '.':
			continue
		}
		return fmt.Errorf("tag '%s' is invalid: only [a-z0-9+-#.] characters are allowed", tag)
	}
	return nil
}

// NormalizeTags lowercases, trims and de-duplicates the given tags, returning
// them sorted. Empty entries are dropped; an invalid tag fails the whole set.
func NormalizeTags(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if err := CheckTag(t); err != nil {
			return nil, err
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

// UnionTags returns current ∪ add, sorted. The second return reports whether
// the result differs from current.
func UnionTags(current, add []string) ([]string, bool) {
	set := make(map[string]struct{}, len(current)+len(add))
	for _, t := range current {
		set[t] = struct{}{}
	}
	changed := false
	for _, t := range add {
		if _, ok := set[t]; !ok {
			set[t] = struct{}{}
			changed = true
		}
	}
	return sortedTagSet(set), changed
}

// SubtractTags returns current \ remove, sorted. The second return reports
// whether the result differs from current.
func SubtractTags(current, remove []string) ([]string, bool) {
	set := make(map[string]struct{}, len(current))
	for _, t := range current {
		set[t] = struct{}{}
	}
	changed := false
	for _, t := range remove {
		if _, ok := set[t]; ok {
			delete(set, t)
			changed = true
		}
	}
	return sortedTagSet(set), changed
}

func sortedTagSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// JoinTags renders a tag list the way it is persisted and diffed.
func JoinTags(tags []string) string {
	return strings.Join(tags, " ")
}

// SplitTags parses a persisted tag list.
func SplitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}
