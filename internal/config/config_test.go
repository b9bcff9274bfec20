package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Run from an empty directory so a developer's qhub.yaml cannot leak in.
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "qhub.db", cfg.DBPath)
	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, 2, cfg.NotifyFlushWindow)
	assert.False(t, cfg.Workflow.AssigneeCanTransition)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qhub.yaml")
	data := []byte(`db_path: /var/lib/qhub/issues.db
redis_url: redis://localhost:6379/0
workers: 8
workflow:
  assignee_can_transition: true
grants:
  alpha/arthur:
    - USER
  alpha/admin:
    - USER
    - ISSUE_ADMIN
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/qhub/issues.db", cfg.DBPath)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 8, cfg.Workers)
	assert.True(t, cfg.Workflow.AssigneeCanTransition)
	assert.Equal(t, []string{"USER", "ISSUE_ADMIN"}, cfg.Grants["alpha/admin"])
	assert.Equal(t, []string{"USER"}, cfg.Grants["alpha/arthur"])
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err, "an explicitly named missing config file should fail")
}
