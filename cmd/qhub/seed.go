package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/qualityhub/qhub/internal/issue"
)

func newSeedCmd() *cobra.Command {
	var (
		project   string
		component string
		rule      string
		severity  string
		issueType string
		count     int
	)

	cmd := &cobra.Command{
		Use:   "seed <issue-key-prefix>",
		Short: "Insert fixture issues (development helper)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := setup(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			sev, err := issue.ParseSeverity(severity)
			if err != nil {
				return err
			}
			typ, err := issue.ParseType(issueType)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			for i := 0; i < count; i++ {
				iss := &issue.Issue{
					Key:          fmt.Sprintf("%s-%04d", args[0], i+1),
					Status:       issue.StatusOpen,
					Type:         typ,
					Severity:     sev,
					ComponentKey: component,
					ProjectKey:   project,
					RuleKey:      rule,
					CreatedAt:    now,
					UpdatedAt:    now,
				}
				if err := e.store.Insert(ctx, iss); err != nil {
					return err
				}
			}
			fmt.Printf("inserted %d issues\n", count)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "demo", "project key")
	cmd.Flags().StringVar(&component, "component", "demo:src/main.go", "component key")
	cmd.Flags().StringVar(&rule, "rule", "go:S0001", "rule key")
	cmd.Flags().StringVar(&severity, "severity", "MAJOR", "severity")
	cmd.Flags().StringVar(&issueType, "type", "CODE_SMELL", "issue type")
	cmd.Flags().IntVar(&count, "count", 10, "number of issues")
	return cmd
}
