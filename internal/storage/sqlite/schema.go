package sqlite

// schema defines the qhub database layout.
//
// issue_changes + issue_change_diffs together form the changelog: one
// issue_changes row per logical change (one author, one timestamp), with the
// individual field diffs as child rows. Comments live in their own table;
// they are a distinct changelog entry type, never merged with field diffs.
const schema = `
CREATE TABLE IF NOT EXISTS issues (
    kee TEXT PRIMARY KEY,
    status TEXT NOT NULL,
    resolution TEXT,
    issue_type TEXT NOT NULL,
    severity TEXT NOT NULL,
    assignee TEXT,
    tags TEXT NOT NULL DEFAULT '',
    component_key TEXT NOT NULL,
    project_key TEXT NOT NULL,
    rule_key TEXT NOT NULL,
    from_hotspot INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_issues_project ON issues(project_key);
CREATE INDEX IF NOT EXISTS idx_issues_component ON issues(component_key);

CREATE TABLE IF NOT EXISTS issue_changes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    issue_key TEXT NOT NULL,
    author TEXT,
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY (issue_key) REFERENCES issues(kee) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_issue_changes_issue ON issue_changes(issue_key);

CREATE TABLE IF NOT EXISTS issue_change_diffs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    change_id INTEGER NOT NULL,
    field TEXT NOT NULL,
    old_value TEXT,
    new_value TEXT,
    FOREIGN KEY (change_id) REFERENCES issue_changes(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_issue_change_diffs_change ON issue_change_diffs(change_id);

CREATE TABLE IF NOT EXISTS issue_comments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    issue_key TEXT NOT NULL,
    author TEXT NOT NULL,
    text TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY (issue_key) REFERENCES issues(kee) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_issue_comments_issue ON issue_comments(issue_key);
`
