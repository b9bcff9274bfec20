// Command qhub is the issue lifecycle engine CLI: apply bulk changes,
// inspect issues and their changelog, and repair the read index.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/qualityhub/qhub/internal/authz"
	"github.com/qualityhub/qhub/internal/config"
	"github.com/qualityhub/qhub/internal/logging"
	"github.com/qualityhub/qhub/internal/notify"
	"github.com/qualityhub/qhub/internal/search"
	"github.com/qualityhub/qhub/internal/search/redisindex"
	"github.com/qualityhub/qhub/internal/storage/sqlite"
	"github.com/qualityhub/qhub/internal/telemetry"
)

var version = "dev"

var (
	cfgFile string
	verbose bool
)

// env collects the wired collaborators for one command invocation.
type env struct {
	cfg    *config.Config
	log    zerolog.Logger
	store  *sqlite.Store
	index  search.Index
	authz  *authz.StaticAuthorizer
	notify *notify.Dispatcher

	closers []func()
}

func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// setup loads config and opens the store, index and notifier.
func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	log := logging.Init(verbose, cfg.LogDir)

	if err := telemetry.Init(ctx, "qhub", version); err != nil {
		log.Warn().Err(err).Msg("telemetry init failed, continuing without")
	}

	e := &env{cfg: cfg, log: log}
	e.closers = append(e.closers, func() { telemetry.Shutdown(context.Background()) })

	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		e.close()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	e.store = store
	e.closers = append(e.closers, func() { _ = store.Close() })

	e.index = search.Noop{}
	if cfg.RedisURL != "" {
		ix, err := redisindex.Open(ctx, cfg.RedisURL)
		if err != nil {
			e.close()
			return nil, fmt.Errorf("failed to open redis index: %w", err)
		}
		e.index = ix
		e.closers = append(e.closers, func() { _ = ix.Close() })
	}

	e.authz = buildAuthorizer(cfg)

	window := time.Duration(cfg.NotifyFlushWindow) * time.Second
	e.notify = notify.NewDispatcher(log, []notify.Handler{notify.LogHandler{Log: log}}, notify.WithFlushWindow(window))
	e.closers = append(e.closers, e.notify.Stop)

	return e, nil
}

// buildAuthorizer translates config grants ("project/login" -> capabilities)
// into the static authorizer.
func buildAuthorizer(cfg *config.Config) *authz.StaticAuthorizer {
	az := authz.NewStaticAuthorizer()
	for key, caps := range cfg.Grants {
		project, login, ok := strings.Cut(key, "/")
		if !ok {
			continue
		}
		for _, c := range caps {
			az.Grant(login, project, authz.Capability(strings.ToUpper(c)))
		}
	}
	return az
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "qhub",
		Short:         "qhub issue lifecycle and bulk mutation engine",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./qhub.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newBulkCmd())
	root.AddCommand(newShowCmd())
	root.AddCommand(newReindexCmd())
	root.AddCommand(newSeedCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
