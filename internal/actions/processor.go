package actions

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"touchbase/internal/recurrence"
	"touchbase/internal/types"
)

// RunReport summarizes one processor run for logging, run history, and
// metrics.
type RunReport struct {
	StartedAt   time.Time
	Due         int
	Completed   int
	Rescheduled int
	Skipped     int
}

// CatchUpOnePeriod advances an overdue recurring action by exactly one
// period per run, anchored to the original trigger time. It is the only
// implemented catch-up policy; the knob exists so the behavior is an
// explicit deployment choice rather than an accident of the algorithm.
const CatchUpOnePeriod = "one-period"

// ProcessorConfig tunes a Processor.
type ProcessorConfig struct {
	// MaxParallel bounds concurrent per-action processing. Values <= 1
	// process the due set sequentially. Parallelism is safe because no
	// action's processing depends on another's outcome within a run and
	// the store's completion transition is atomic.
	MaxParallel int

	// CatchUpPolicy names the catch-up policy for overdue recurring
	// actions. Empty defaults to CatchUpOnePeriod; unknown values fall
	// back to it with a warning.
	CatchUpPolicy string
}

// Processor is the scheduler core. Each run is stateless apart from its
// single "now" snapshot: the due set is re-derived from the store on every
// invocation, so redelivered or overlapping trigger signals are harmless.
type Processor struct {
	store         ActionStore
	registry      *Registry
	metrics       RunMetrics
	clock         Clock
	logger        *slog.Logger
	maxParallel   int
	catchUpPolicy string
}

// NewProcessor creates a Processor. clock may be nil, in which case
// time.Now is used; metrics may be nil, in which case nothing is recorded.
func NewProcessor(store ActionStore, registry *Registry, metrics RunMetrics, clock Clock, cfg ProcessorConfig, logger *slog.Logger) *Processor {
	if clock == nil {
		clock = time.Now
	}
	if metrics == nil {
		metrics = NoopRunMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	maxParallel := cfg.MaxParallel
	if maxParallel < 1 {
		maxParallel = 1
	}
	catchUpPolicy := cfg.CatchUpPolicy
	if catchUpPolicy == "" {
		catchUpPolicy = CatchUpOnePeriod
	}
	if catchUpPolicy != CatchUpOnePeriod {
		logger.Warn("unknown catch-up policy, using one-period", "policy", catchUpPolicy)
		catchUpPolicy = CatchUpOnePeriod
	}
	return &Processor{
		store:         store,
		registry:      registry,
		metrics:       metrics,
		clock:         clock,
		logger:        logger,
		maxParallel:   maxParallel,
		catchUpPolicy: catchUpPolicy,
	}
}

// ProcessDueActions runs one scan-execute-complete-reschedule pass.
//
// The "now" snapshot is captured once at the start so every action in the
// run sees the same reference instant. For each due action, independently:
//
//  1. Dispatch the command effect by tag.
//  2. Mark the action completed (atomic pending->completed transition).
//  3. If recurring and this run won the transition, insert a brand-new
//     pending Action anchored to the ORIGINAL trigger time plus one
//     period. Anchoring to the original time, not "now", prevents drift; a
//     long-overdue recurring action therefore advances exactly one period
//     per run and catches up over successive runs rather than
//     fast-forwarding.
//
// Per-action failures (unknown tag, effect error, orphaned contact) are
// logged and skipped so one bad action never blocks the rest of the due
// set; the failed action stays pending and is re-attempted on the next
// run. Only a store failure while fetching the due set fails the whole
// run, letting the at-least-once trigger redeliver the signal.
func (p *Processor) ProcessDueActions(ctx context.Context) (RunReport, error) {
	start := p.clock()
	now := start.UTC()
	report := RunReport{StartedAt: now}

	due, err := p.store.FindAllPendingDueBefore(ctx, now)
	if err != nil {
		return report, fmt.Errorf("fetching due actions: %w", err)
	}
	report.Due = len(due)

	p.logger.InfoContext(ctx, "processing due actions",
		"now", now.Format(time.RFC3339),
		"due_count", len(due),
		"catch_up_policy", p.catchUpPolicy,
	)

	var completed, rescheduled, skipped atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxParallel)
	for _, action := range due {
		action := action
		g.Go(func() error {
			outcome := p.processOne(gCtx, action)
			switch outcome {
			case outcomeCompleted:
				completed.Add(1)
			case outcomeRescheduled:
				completed.Add(1)
				rescheduled.Add(1)
			case outcomeSkipped:
				skipped.Add(1)
			}
			// Per-action failures are never propagated; each action's
			// processing must be independently correct.
			return nil
		})
	}
	_ = g.Wait()

	report.Completed = int(completed.Load())
	report.Rescheduled = int(rescheduled.Load())
	report.Skipped = int(skipped.Load())

	p.metrics.RecordRun(ctx, report, time.Since(start))

	p.logger.InfoContext(ctx, "processor run complete",
		"due", report.Due,
		"completed", report.Completed,
		"rescheduled", report.Rescheduled,
		"skipped", report.Skipped,
	)

	return report, nil
}

// nextOccurrence computes the successor trigger time under the configured
// catch-up policy. Under one-period the successor anchors to the ORIGINAL
// trigger time plus one period, never to "now".
func (p *Processor) nextOccurrence(action *types.Action) time.Time {
	// catchUpPolicy is normalized to CatchUpOnePeriod in NewProcessor.
	return recurrence.NextTriggerTime(action.TriggerTime, action.Frequency)
}

type runOutcome int

const (
	outcomeSkipped runOutcome = iota
	outcomeCompleted
	outcomeRescheduled
	outcomeNoop
)

// processOne handles a single due action: effect, completion, successor.
func (p *Processor) processOne(ctx context.Context, action *types.Action) runOutcome {
	logger := p.logger.With(
		"action_id", action.ID,
		"tenant_id", action.TenantID,
		"command_tag", string(action.Command.Tag),
		"frequency", string(action.Frequency),
	)

	if err := p.registry.Dispatch(ctx, action); err != nil {
		logger.ErrorContext(ctx, "action effect failed, skipping", "error", err)
		return outcomeSkipped
	}

	transitioned, err := p.store.MarkCompleted(ctx, action.ID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to mark action completed", "error", err)
		return outcomeSkipped
	}
	if !transitioned {
		// A concurrent run already completed this action. Its successor,
		// if any, was created by whichever run won the transition.
		logger.InfoContext(ctx, "action already completed, no-op")
		return outcomeNoop
	}

	if !action.Frequency.IsRecurring() {
		return outcomeCompleted
	}

	successor := &types.Action{
		ID:          types.NewActionID(),
		TenantID:    action.TenantID,
		Status:      types.ActionPending,
		TriggerTime: p.nextOccurrence(action),
		Frequency:   action.Frequency,
		Command:     action.Command,
	}
	if err := p.store.Insert(ctx, successor); err != nil {
		// The occurrence is completed but its successor was not created;
		// this breaks the recurring chain and needs operator attention.
		logger.ErrorContext(ctx, "failed to schedule next occurrence",
			"successor_trigger_time", successor.TriggerTime.Format(time.RFC3339),
			"error", err,
		)
		return outcomeCompleted
	}

	logger.InfoContext(ctx, "next occurrence scheduled",
		"successor_id", successor.ID,
		"successor_trigger_time", successor.TriggerTime.Format(time.RFC3339),
	)
	return outcomeRescheduled
}
