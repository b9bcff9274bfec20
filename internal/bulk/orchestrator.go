package bulk

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/qualityhub/qhub/internal/action"
	"github.com/qualityhub/qhub/internal/authz"
	"github.com/qualityhub/qhub/internal/changelog"
	"github.com/qualityhub/qhub/internal/issue"
	"github.com/qualityhub/qhub/internal/notify"
	"github.com/qualityhub/qhub/internal/search"
	"github.com/qualityhub/qhub/internal/storage"
)

const instrumentationScope = "github.com/qualityhub/qhub"

// Orchestrator fans a bulk change out over the issues it names. Issues are
// processed independently on a bounded worker pool; each worker owns its own
// single-issue store transaction, so one bad issue can never abort the batch
// or roll back a sibling.
type Orchestrator struct {
	store    storage.Store
	index    search.Index
	notifier notify.Notifier
	az       authz.Authorizer
	log      zerolog.Logger

	workers int
	policy  action.TransitionPolicy
	now     func() time.Time

	outcomes metric.Int64Counter
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithWorkers bounds the worker pool (default: NumCPU).
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithTransitionPolicy overrides the transition authorization policy.
func WithTransitionPolicy(p action.TransitionPolicy) Option {
	return func(o *Orchestrator) { o.policy = p }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator wires the orchestrator to its gateways.
func NewOrchestrator(store storage.Store, index search.Index, notifier notify.Notifier, az authz.Authorizer, log zerolog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		index:    index,
		notifier: notifier,
		az:       az,
		log:      log,
		workers:  runtime.NumCPU(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	// Metric errors only mean a broken meter provider; the counter degrades
	// to a no-op in that case.
	o.outcomes, _ = otel.Meter(instrumentationScope).Int64Counter("qhub.bulk.issues",
		metric.WithDescription("Per-issue outcomes of bulk changes"))
	return o
}

type bucket int

const (
	bucketSuccess bucket = iota
	bucketIgnored
	bucketFailure
)

type outcome struct {
	bucket bucket
	reason string // log-only detail; never part of the response shape
}

func success() outcome              { return outcome{bucket: bucketSuccess} }
func ignored(reason string) outcome { return outcome{bucket: bucketIgnored, reason: reason} }
func failure(reason string) outcome { return outcome{bucket: bucketFailure, reason: reason} }

// Run applies the request on behalf of actor and returns the aggregated
// outcome counts. Request-level problems (unauthenticated actor, malformed
// request) fail the whole call with no partial work; everything after
// validation is reported through the Result.
func (o *Orchestrator) Run(ctx context.Context, req Request, actor authz.Actor) (Result, error) {
	if actor.Anonymous() {
		return Result{}, ErrUnauthenticated
	}
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	var successes, ignores, fails atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(o.workers)
	for _, key := range req.IssueKeys {
		// Keys never started before the deadline are ignored, not failed:
		// partial completion is a valid, reportable outcome.
		if ctx.Err() != nil {
			ignores.Add(1)
			o.log.Debug().Str("issue", key).Str("reason", "not_attempted").Msg("bulk change: issue skipped")
			continue
		}
		g.Go(func() error {
			out := o.processOne(ctx, req, actor, key)
			switch out.bucket {
			case bucketSuccess:
				successes.Add(1)
			case bucketIgnored:
				ignores.Add(1)
				o.log.Debug().Str("issue", key).Str("reason", out.reason).Msg("bulk change: issue ignored")
			case bucketFailure:
				fails.Add(1)
				o.log.Error().Str("issue", key).Str("reason", out.reason).Msg("bulk change: issue failed")
			}
			o.recordOutcome(ctx, out.bucket)
			return nil
		})
	}
	_ = g.Wait()

	res := Result{
		Total:    int64(len(req.IssueKeys)),
		Success:  successes.Load(),
		Ignored:  ignores.Load(),
		Failures: fails.Load(),
	}
	o.log.Info().
		Int64("total", res.Total).
		Int64("success", res.Success).
		Int64("ignored", res.Ignored).
		Int64("failures", res.Failures).
		Str("actor", actor.Login).
		Msg("bulk change finished")
	return res, nil
}

// processOne runs the full pipeline for a single issue. It never lets an
// error or panic escape: every path maps to an outcome bucket.
func (o *Orchestrator) processOne(ctx context.Context, req Request, actor authz.Actor, key string) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error().Str("issue", key).Interface("panic", r).Msg("bulk change: panic while processing issue")
			out = failure(fmt.Sprintf("panic: %v", r))
		}
	}()

	iss, err := o.store.Load(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		// Stale or foreign keys are expected input; not an error.
		return ignored("not_found")
	}
	if err != nil {
		if ctx.Err() != nil {
			return ignored("not_attempted")
		}
		return failure(fmt.Sprintf("load: %v", err))
	}

	if !o.az.CanBrowse(actor, iss.ProjectKey) {
		return ignored("not_authorized")
	}

	now := o.now().UTC().Truncate(time.Millisecond)
	diffs, comment, err := o.applyActions(req.Actions, iss, actor, now)
	if err != nil {
		return failure(fmt.Sprintf("apply: %v", err))
	}

	rec := changelog.NewRecord(iss.Key, actor.Login, now, diffs)
	if rec == nil && comment == nil {
		return ignored("no_effect")
	}

	if err := o.store.CommitMutation(ctx, iss, rec, comment); err != nil {
		if ctx.Err() != nil {
			return ignored("interrupted")
		}
		return failure(fmt.Sprintf("commit: %v", err))
	}

	// The index is a derived, rebuildable view: a failed write is logged and
	// dropped, never reverts the commit or flips the outcome.
	if err := o.index.Reindex(ctx, iss); err != nil {
		o.log.Warn().Str("issue", iss.Key).Err(err).Msg("bulk change: reindex failed")
	}

	if req.SendNotifications {
		fields := []string{}
		if rec != nil {
			fields = rec.Fields()
		}
		o.notifier.IssueChanged(notify.ChangeEvent{
			IssueKey:     iss.Key,
			ComponentKey: iss.ComponentKey,
			ProjectKey:   iss.ProjectKey,
			Author:       actor.Login,
			Fields:       fields,
			At:           now,
		})
	}
	return success()
}

// applyActions runs the requested actions on the issue in caller order and
// returns the union of their diffs plus the comment, if any. An action the
// actor lacks the capability for is skipped — the other actions still apply,
// so an actor with partial rights gets the changes they are allowed to make.
func (o *Orchestrator) applyActions(actions []action.Action, iss *issue.Issue, actor authz.Actor, now time.Time) ([]changelog.FieldDiff, *changelog.Comment, error) {
	var diffs []changelog.FieldDiff
	var comment *changelog.Comment

	for _, act := range actions {
		if !o.allowed(act, iss, actor) {
			o.log.Debug().
				Str("issue", iss.Key).
				Str("action", string(act.Kind())).
				Str("actor", actor.Login).
				Msg("bulk change: action skipped, missing capability")
			continue
		}

		switch a := act.(type) {
		case action.Comment:
			if a.Empty() {
				continue
			}
			comment = &changelog.Comment{
				IssueKey:  iss.Key,
				Author:    actor.Login,
				Text:      a.Text,
				CreatedAt: now,
			}
		case action.Assign, action.SetSeverity, action.SetType, action.AddTags, action.RemoveTags, action.DoTransition:
			d, err := act.Apply(iss, now)
			if err != nil {
				return nil, nil, err
			}
			diffs = append(diffs, d...)
		default:
			// The action set is sealed; a new variant must be handled here.
			panic(fmt.Sprintf("unhandled action kind %q", act.Kind()))
		}
	}
	return diffs, comment, nil
}

// allowed checks the per-action capability requirements. Browse permission
// on the issue's project is already established by the caller.
func (o *Orchestrator) allowed(act action.Action, iss *issue.Issue, actor authz.Actor) bool {
	switch a := act.(type) {
	case action.SetSeverity, action.SetType:
		return o.az.HasCapability(actor, iss.ProjectKey, authz.CapIssueAdmin)
	case action.DoTransition:
		return o.policy.Allowed(iss, a.TransitionKey, actor, o.az)
	default:
		return true
	}
}

func (o *Orchestrator) recordOutcome(ctx context.Context, b bucket) {
	if o.outcomes == nil {
		return
	}
	var name string
	switch b {
	case bucketSuccess:
		name = "success"
	case bucketIgnored:
		name = "ignored"
	case bucketFailure:
		name = "failure"
	}
	o.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", name)))
}
