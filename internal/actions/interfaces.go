// Package actions implements the recurring-action scheduler core: the
// processor that scans for due Actions, executes their command effects,
// marks them completed, and registers the next occurrence of recurring
// schedules.
//
// The package owns only the scheduling semantics. Persistence and the
// follow-up system of record are collaborators expressed as interfaces
// here so the core can be tested without a database.
package actions

import (
	"context"
	"time"

	"touchbase/internal/types"
)

// ActionStore is the durable record of pending and completed Actions.
// Implementations must scope all rows by tenant and keep trigger times
// immutable: a recurring schedule's next occurrence is always a new row.
type ActionStore interface {
	// Insert persists a new Action. The caller assigns the ID.
	Insert(ctx context.Context, action *types.Action) error

	// MarkCompleted atomically transitions the Action from pending to
	// completed. It reports true only when this call performed the
	// transition; an already-completed or absent Action is a no-op that
	// returns (false, nil). This guard is what makes concurrent runs safe:
	// the caller creates a successor occurrence only when it won the
	// transition.
	MarkCompleted(ctx context.Context, actionID string) (bool, error)

	// FindAllPendingDueBefore returns every pending Action across all
	// tenants whose trigger time is at or before the given instant
	// (inclusive boundary), ordered by trigger time.
	FindAllPendingDueBefore(ctx context.Context, instant time.Time) ([]*types.Action, error)
}

// FollowUpRegistrar is the external system of record for human-facing
// follow-ups. The processor only calls it; it does not own its schema.
type FollowUpRegistrar interface {
	// RegisterFollowUp records a follow-up for the contact and returns
	// the created record. taskID is a freshly generated identifier for
	// the resulting record; no record is pre-created when the Action is
	// registered. A missing contact surfaces as a types.AppError with
	// ErrCodeNotFoundContact.
	RegisterFollowUp(ctx context.Context, tenantID, contactID, taskID, note string) (*types.FollowUp, error)
}

// CommandHandler executes the effect of one command tag. Handlers are
// registered with the Registry; the processor dispatches by tag and never
// inspects command bodies, so new command kinds require only a new handler.
type CommandHandler interface {
	Tag() types.CommandTag
	Execute(ctx context.Context, action *types.Action) error
}

// Clock abstracts wall-clock access so due-set computation is
// deterministic in tests. Production code passes time.Now.
type Clock func() time.Time
