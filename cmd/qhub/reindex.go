package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qualityhub/qhub/internal/search"
)

func newReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the read index from the primary store",
		Long: `Walk every issue in the store and rewrite its projection in the read
index. Use after an index outage or when inline reindex warnings piled up in
the logs; the index is a derived view and this is its repair path.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := setup(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			if _, isNoop := e.index.(search.Noop); isNoop {
				return fmt.Errorf("no read index configured (set redis_url)")
			}

			n, err := search.RebuildAll(ctx, e.store, e.index, e.log)
			if err != nil {
				return fmt.Errorf("rebuild stopped after %d issues: %w", n, err)
			}
			fmt.Printf("reindexed %d issues\n", n)
			return nil
		},
	}
}
