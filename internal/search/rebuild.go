package search

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/qualityhub/qhub/internal/storage"
)

const rebuildPageSize = 200

// RebuildAll re-indexes every issue in the store, paging by key. This is the
// operational repair path for index drift: inline index failures during
// bulk changes are logged and dropped, and this walks the primary store to
// restore consistency.
//
// Each page is retried with exponential backoff before giving up, since a
// rebuild typically runs while the index is recovering from an outage.
func RebuildAll(ctx context.Context, store storage.Store, index Index, log zerolog.Logger) (int, error) {
	total := 0
	afterKey := ""
	for {
		keys, err := store.Keys(ctx, afterKey, rebuildPageSize)
		if err != nil {
			return total, fmt.Errorf("failed to page issue keys: %w", err)
		}
		if len(keys) == 0 {
			return total, nil
		}

		for _, key := range keys {
			iss, err := store.Load(ctx, key)
			if err != nil {
				// Deleted between paging and load; nothing to index.
				log.Warn().Str("issue", key).Err(err).Msg("rebuild: skipping issue")
				continue
			}

			op := func() error { return index.Reindex(ctx, iss) }
			policy := backoff.WithContext(newRebuildBackoff(), ctx)
			if err := backoff.Retry(op, policy); err != nil {
				return total, fmt.Errorf("failed to reindex issue %s: %w", key, err)
			}
			total++
		}
		afterKey = keys[len(keys)-1]
	}
}

func newRebuildBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 30 * time.Second
	return b
}
