package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/qualityhub/qhub/internal/changelog"
)

// Changelog returns the issue's field-diff records, oldest first, each with
// its diffs populated.
func (s *Store) Changelog(ctx context.Context, key string) ([]*changelog.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, issue_key, author, created_at
		FROM issue_changes
		WHERE issue_key = ?
		ORDER BY created_at ASC, id ASC
	`, key)
	if err != nil {
		return nil, fmt.Errorf("failed to query changelog for %s: %w", key, err)
	}
	defer func() { _ = rows.Close() }()

	var records []*changelog.Record
	byID := make(map[int64]*changelog.Record)
	for rows.Next() {
		rec := &changelog.Record{}
		var author sql.NullString
		if err := rows.Scan(&rec.ID, &rec.IssueKey, &author, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan change record: %w", err)
		}
		if author.Valid {
			a := author.String
			rec.Author = &a
		}
		records = append(records, rec)
		byID[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	diffRows, err := s.db.QueryContext(ctx, `
		SELECT d.change_id, d.field, d.old_value, d.new_value
		FROM issue_change_diffs d
		JOIN issue_changes c ON c.id = d.change_id
		WHERE c.issue_key = ?
		ORDER BY d.id ASC
	`, key)
	if err != nil {
		return nil, fmt.Errorf("failed to query change diffs for %s: %w", key, err)
	}
	defer func() { _ = diffRows.Close() }()

	for diffRows.Next() {
		var (
			changeID int64
			d        changelog.FieldDiff
		)
		if err := diffRows.Scan(&changeID, &d.Field, &d.OldValue, &d.NewValue); err != nil {
			return nil, fmt.Errorf("failed to scan change diff: %w", err)
		}
		if rec, ok := byID[changeID]; ok {
			rec.Diffs = append(rec.Diffs, d)
		}
	}
	return records, diffRows.Err()
}

// Comments returns the issue's comments, oldest first.
func (s *Store) Comments(ctx context.Context, key string) ([]*changelog.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, issue_key, author, text, created_at
		FROM issue_comments
		WHERE issue_key = ?
		ORDER BY created_at ASC, id ASC
	`, key)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments for %s: %w", key, err)
	}
	defer func() { _ = rows.Close() }()

	var comments []*changelog.Comment
	for rows.Next() {
		c := &changelog.Comment{}
		if err := rows.Scan(&c.ID, &c.IssueKey, &c.Author, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
