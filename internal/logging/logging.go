// Package logging initializes the global zerolog logger with dual sinks:
// a console writer on stderr (pretty when attached to a terminal) and a
// rotating file.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init configures the global logger. logDir may be empty to disable the file
// sink (console only). Returns the configured logger for injection.
func Init(verbose bool, logDir string) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	isTerminal := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	console := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal,
	}

	sinks := []io.Writer{console}
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err == nil {
			sinks = append(sinks, &lumberjack.Logger{
				Filename:   filepath.Join(logDir, "qhub.log"),
				MaxSize:    20, // MB
				MaxBackups: 5,
				MaxAge:     30, // days
				Compress:   true,
			})
		}
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(sinks...)).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}
