package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/qualityhub/qhub/internal/changelog"
	"github.com/qualityhub/qhub/internal/issue"
	"github.com/qualityhub/qhub/internal/storage"
)

const issueColumns = `kee, status, resolution, issue_type, severity, assignee, tags,
	component_key, project_key, rule_key, from_hotspot, created_at, updated_at`

// Load fetches an issue by key.
func (s *Store) Load(ctx context.Context, key string) (*issue.Issue, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+issueColumns+` FROM issues WHERE kee = ?`, key)
	iss, err := scanIssue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("issue %s: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load issue %s: %w", key, err)
	}
	return iss, nil
}

// Insert creates a new issue row.
func (s *Store) Insert(ctx context.Context, iss *issue.Issue) error {
	if err := iss.Validate(); err != nil {
		return fmt.Errorf("invalid issue: %w", err)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO issues (`+issueColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, iss.Key, string(iss.Status), nullable(iss.ResolutionValue()), string(iss.Type), string(iss.Severity),
		nullable(iss.AssigneeLogin()), issue.JoinTags(iss.Tags),
		iss.ComponentKey, iss.ProjectKey, iss.RuleKey, boolToInt(iss.FromHotspot),
		iss.CreatedAt, iss.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert issue %s: %w", iss.Key, err)
	}
	return nil
}

// CommitMutation persists the mutated issue, its changelog record and the
// optional comment in one transaction. The transaction is scoped to exactly
// this issue.
func (s *Store) CommitMutation(ctx context.Context, iss *issue.Issue, rec *changelog.Record, comment *changelog.Comment) error {
	if rec == nil && comment == nil {
		return fmt.Errorf("nothing to commit for issue %s", iss.Key)
	}
	if err := iss.Validate(); err != nil {
		return fmt.Errorf("invalid issue: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE issues SET status = ?, resolution = ?, issue_type = ?, severity = ?,
			assignee = ?, tags = ?, updated_at = ?
		WHERE kee = ?
	`, string(iss.Status), nullable(iss.ResolutionValue()), string(iss.Type), string(iss.Severity),
		nullable(iss.AssigneeLogin()), issue.JoinTags(iss.Tags), iss.UpdatedAt, iss.Key)
	if err != nil {
		return fmt.Errorf("failed to update issue %s: %w", iss.Key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update of issue %s: %w", iss.Key, err)
	}
	if affected == 0 {
		return fmt.Errorf("issue %s: %w", iss.Key, storage.ErrNotFound)
	}

	if rec != nil {
		if err := insertChangeRecord(ctx, tx, rec); err != nil {
			return err
		}
	}
	if comment != nil {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO issue_comments (issue_key, author, text, created_at)
			VALUES (?, ?, ?, ?)
		`, comment.IssueKey, comment.Author, comment.Text, comment.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert comment on issue %s: %w", comment.IssueKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mutation of issue %s: %w", iss.Key, err)
	}
	return nil
}

func insertChangeRecord(ctx context.Context, tx *sql.Tx, rec *changelog.Record) error {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO issue_changes (issue_key, author, created_at)
		VALUES (?, ?, ?)
	`, rec.IssueKey, rec.Author, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert change record for issue %s: %w", rec.IssueKey, err)
	}
	changeID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get change record id: %w", err)
	}
	for _, d := range rec.Diffs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO issue_change_diffs (change_id, field, old_value, new_value)
			VALUES (?, ?, ?, ?)
		`, changeID, d.Field, d.OldValue, d.NewValue); err != nil {
			return fmt.Errorf("failed to insert diff %s for issue %s: %w", d.Field, rec.IssueKey, err)
		}
	}
	return nil
}

// Keys lists issue keys in key order, paged by afterKey.
func (s *Store) Keys(ctx context.Context, afterKey string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT kee FROM issues WHERE kee > ? ORDER BY kee LIMIT ?
	`, afterKey, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list issue keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan issue key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIssue(row rowScanner) (*issue.Issue, error) {
	var (
		iss         issue.Issue
		resolution  sql.NullString
		assignee    sql.NullString
		tags        string
		fromHotspot int
	)
	err := row.Scan(&iss.Key, &iss.Status, &resolution, &iss.Type, &iss.Severity,
		&assignee, &tags, &iss.ComponentKey, &iss.ProjectKey, &iss.RuleKey,
		&fromHotspot, &iss.CreatedAt, &iss.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if resolution.Valid {
		r := issue.Resolution(resolution.String)
		iss.Resolution = &r
	}
	if assignee.Valid {
		a := assignee.String
		iss.Assignee = &a
	}
	iss.Tags = issue.SplitTags(tags)
	iss.FromHotspot = fromHotspot != 0
	return &iss, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
