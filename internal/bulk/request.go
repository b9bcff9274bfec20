// Package bulk implements the bulk mutation orchestrator: it applies a
// bundle of requested actions to up to MaxBatchSize issues in one call,
// with per-issue authorization, partial-failure isolation, changelog
// recording and propagation to the read index.
package bulk

import (
	"errors"
	"fmt"

	"github.com/qualityhub/qhub/internal/action"
)

// MaxBatchSize bounds the number of issue keys per request.
const MaxBatchSize = 500

// Request-level sentinel errors. Any error returned by Run wraps one of
// these; per-issue problems never surface as errors, only as Result buckets.
var (
	// ErrIllegalArgument marks a malformed request: too many keys, no
	// actions, invalid action parameters.
	ErrIllegalArgument = errors.New("illegal argument")
	// ErrUnauthenticated marks a call without an authenticated actor.
	ErrUnauthenticated = errors.New("authentication is required")
)

// Request is one bulk change call.
type Request struct {
	IssueKeys []string
	// Actions are applied per issue in this order; later actions see the
	// effects of earlier ones.
	Actions           []action.Action
	SendNotifications bool
}

// Validate performs the request-level checks that fail the whole call before
// any issue is touched.
func (r Request) Validate() error {
	if len(r.IssueKeys) == 0 {
		return fmt.Errorf("%w: at least one issue key is required", ErrIllegalArgument)
	}
	if len(r.IssueKeys) > MaxBatchSize {
		return fmt.Errorf("%w: Number of issues is limited to %d", ErrIllegalArgument, MaxBatchSize)
	}
	nonComment := 0
	for _, act := range r.Actions {
		if act.Kind() != action.KindComment {
			nonComment++
		}
	}
	if nonComment == 0 {
		return fmt.Errorf("%w: At least one action must be provided", ErrIllegalArgument)
	}
	return nil
}

// Result aggregates the per-issue outcomes of one bulk change.
//
// Total == Success + Ignored + Failures always holds. Ignored covers
// ineligible issues (not found, no browse permission, nothing to do, not
// attempted before the deadline); Failures is reserved for unexpected
// errors.
type Result struct {
	Total    int64 `json:"total"`
	Success  int64 `json:"success"`
	Ignored  int64 `json:"ignored"`
	Failures int64 `json:"failures"`
}
