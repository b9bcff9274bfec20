package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/qualityhub/qhub/internal/action"
	"github.com/qualityhub/qhub/internal/authz"
	"github.com/qualityhub/qhub/internal/bulk"
)

type bulkFlags struct {
	actor          string
	assign         string
	assignSet      bool
	severity       string
	issueType      string
	transition     string
	addTags        []string
	removeTags     []string
	comment        string
	notify         bool
	timeoutSeconds int
}

func newBulkCmd() *cobra.Command {
	var flags bulkFlags

	cmd := &cobra.Command{
		Use:   "bulk <issue-key>...",
		Short: "Apply a bulk change to a set of issues",
		Long: `Apply the selected actions to every listed issue.

Each issue is processed independently: ineligible issues (unknown key, no
browse permission, nothing to change) are counted as ignored and the rest of
the batch continues.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.assignSet = cmd.Flags().Changed("assign")
			return runBulk(cmd.Context(), flags, args)
		},
	}

	cmd.Flags().StringVar(&flags.actor, "actor", "", "acting user login (required)")
	cmd.Flags().StringVar(&flags.assign, "assign", "", "assign issues to this login (empty value un-assigns)")
	cmd.Flags().StringVar(&flags.severity, "set-severity", "", "change severity (INFO|MINOR|MAJOR|CRITICAL|BLOCKER)")
	cmd.Flags().StringVar(&flags.issueType, "set-type", "", "change type (BUG|VULNERABILITY|CODE_SMELL|SECURITY_HOTSPOT)")
	cmd.Flags().StringVar(&flags.transition, "do-transition", "", "run a workflow transition (confirm|resolve|reopen|...)")
	cmd.Flags().StringSliceVar(&flags.addTags, "add-tags", nil, "tags to add")
	cmd.Flags().StringSliceVar(&flags.removeTags, "remove-tags", nil, "tags to remove")
	cmd.Flags().StringVar(&flags.comment, "comment", "", "comment to record on each changed issue")
	cmd.Flags().BoolVar(&flags.notify, "send-notifications", false, "notify on changed issues")
	cmd.Flags().IntVar(&flags.timeoutSeconds, "timeout", 0, "overall deadline in seconds (0: none)")
	_ = cmd.MarkFlagRequired("actor")

	return cmd
}

// buildActions translates flags into the action list, preserving a stable
// order: classification changes first, then tags, transition, comment.
func buildActions(flags bulkFlags) ([]action.Action, error) {
	var actions []action.Action

	if flags.assignSet {
		actions = append(actions, action.NewAssign(flags.assign))
	}
	if flags.severity != "" {
		a, err := action.NewSetSeverity(flags.severity)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	if flags.issueType != "" {
		a, err := action.NewSetType(flags.issueType)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	if len(flags.addTags) > 0 {
		a, err := action.NewAddTags(flags.addTags)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	if len(flags.removeTags) > 0 {
		a, err := action.NewRemoveTags(flags.removeTags)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	if flags.transition != "" {
		a, err := action.NewDoTransition(flags.transition)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	if flags.comment != "" {
		actions = append(actions, action.NewComment(flags.comment))
	}
	return actions, nil
}

func runBulk(ctx context.Context, flags bulkFlags, keys []string) error {
	actions, err := buildActions(flags)
	if err != nil {
		return fmt.Errorf("%w: %v", bulk.ErrIllegalArgument, err)
	}

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	if flags.timeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(flags.timeoutSeconds)*time.Second)
		defer cancel()
	}

	orch := bulk.NewOrchestrator(e.store, e.index, e.notify, e.authz, e.log,
		bulk.WithWorkers(e.cfg.Workers),
		bulk.WithTransitionPolicy(action.TransitionPolicy{AssigneeCanResolve: e.cfg.Workflow.AssigneeCanTransition}),
	)

	res, err := orch.Run(ctx, bulk.Request{
		IssueKeys:         keys,
		Actions:           actions,
		SendNotifications: flags.notify,
	}, authz.Actor{Login: flags.actor})
	if err != nil {
		return err
	}

	fmt.Printf("total: %d  success: %d  ignored: %d  failures: %d\n",
		res.Total, res.Success, res.Ignored, res.Failures)
	return nil
}
