package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qualityhub/qhub/internal/issue"
)

func newShowCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <issue-key>",
		Short: "Show an issue with its changelog and comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := setup(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			iss, err := e.store.Load(ctx, args[0])
			if err != nil {
				return err
			}
			changes, err := e.store.Changelog(ctx, iss.Key)
			if err != nil {
				return err
			}
			comments, err := e.store.Comments(ctx, iss.Key)
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"issue":     iss,
					"changelog": changes,
					"comments":  comments,
				})
			}

			fmt.Printf("%s  [%s", iss.Key, iss.Status)
			if iss.Resolution != nil {
				fmt.Printf("/%s", *iss.Resolution)
			}
			fmt.Printf("]  %s %s\n", iss.Type, iss.Severity)
			fmt.Printf("  project: %s  component: %s  rule: %s\n", iss.ProjectKey, iss.ComponentKey, iss.RuleKey)
			if iss.Assignee != nil {
				fmt.Printf("  assignee: %s\n", *iss.Assignee)
			}
			if len(iss.Tags) > 0 {
				fmt.Printf("  tags: %s\n", issue.JoinTags(iss.Tags))
			}

			if len(changes) > 0 {
				fmt.Println("\nChangelog:")
				for _, rec := range changes {
					author := "system"
					if rec.Author != nil {
						author = *rec.Author
					}
					fmt.Printf("  %s  %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"), author)
					for _, d := range rec.Diffs {
						fmt.Printf("    %s: %s -> %s\n", d.Field, strOrNone(d.OldValue), strOrNone(d.NewValue))
					}
				}
			}
			if len(comments) > 0 {
				fmt.Println("\nComments:")
				for _, c := range comments {
					fmt.Printf("  %s  %s: %s\n", c.CreatedAt.Format("2006-01-02 15:04:05"), c.Author, c.Text)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "JSON output")
	return cmd
}

func strOrNone(s *string) string {
	if s == nil {
		return "(none)"
	}
	return *s
}
