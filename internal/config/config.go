// Package config loads qhub server configuration via viper.
//
// Sources, in precedence order: explicit flags (bound by the CLI), QHUB_*
// environment variables, an optional config file (qhub.yaml in the working
// directory or ~/.config/qhub/), then defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the runtime configuration of the engine.
type Config struct {
	// DBPath is the sqlite database location. ":memory:" for ephemeral runs.
	DBPath string `mapstructure:"db_path"`
	// RedisURL enables the redis read index when non-empty (redis://...).
	RedisURL string `mapstructure:"redis_url"`
	// Workers bounds the bulk orchestrator pool. 0 means NumCPU.
	Workers int `mapstructure:"workers"`
	// NotifyFlushWindow is the notification coalescing window in seconds.
	NotifyFlushWindow int `mapstructure:"notify_flush_window"`
	// LogDir enables the rotating file log sink when non-empty.
	LogDir string `mapstructure:"log_dir"`

	Workflow WorkflowConfig `mapstructure:"workflow"`
	// Grants maps "project/login" to a list of capabilities (USER,
	// ISSUE_ADMIN) for the built-in static authorizer.
	Grants map[string][]string `mapstructure:"grants"`
}

// WorkflowConfig tunes workflow authorization policy.
type WorkflowConfig struct {
	// AssigneeCanTransition lets the current assignee run resolving
	// transitions, not just confirm/reopen style moves.
	AssigneeCanTransition bool `mapstructure:"assignee_can_transition"`
}

// Load reads the configuration. cfgFile may be empty to use the default
// search path.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetDefault("db_path", "qhub.db")
	v.SetDefault("workers", 0)
	v.SetDefault("notify_flush_window", 2)
	v.SetDefault("workflow.assignee_can_transition", false)

	v.SetEnvPrefix("QHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("qhub")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/qhub")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file is fine; env and defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
