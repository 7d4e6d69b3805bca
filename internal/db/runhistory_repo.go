package db

import (
	"context"

	"touchbase/internal/types"
)

// RunHistoryRepository provides data access for the scheduler_runs table.
// Each processor invocation records a row for operational visibility:
// which worker ran, when, how many actions were due, and how the run
// ended. Entries are written around every trigger-signal handling, so gaps
// in the table are themselves a signal that the trigger source is stalled.
type RunHistoryRepository struct {
	db DBTX
}

// NewRunHistoryRepository creates a new RunHistoryRepository backed by the
// given database connection (pool or transaction).
func NewRunHistoryRepository(db DBTX) *RunHistoryRepository {
	return &RunHistoryRepository{db: db}
}

// Start inserts a new scheduler_runs row with status 'running' and returns
// the auto-generated BIGSERIAL ID. The caller uses this ID to later call
// Finish with the outcome.
func (r *RunHistoryRepository) Start(ctx context.Context, traceID string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO scheduler_runs (trace_id, started_at, status)
		 VALUES ($1, NOW(), 'running')
		 RETURNING id`,
		traceID,
	).Scan(&id)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to start run history entry", err)
	}
	return id, nil
}

// Finish updates the scheduler_runs row with the final status and counts.
// The status should be 'success' or 'failed'. If runErr is non-nil, its
// message is stored in the error column.
func (r *RunHistoryRepository) Finish(ctx context.Context, id int64, status string, due, completed, skipped int, runErr error) error {
	var errMsg *string
	if runErr != nil {
		s := runErr.Error()
		errMsg = &s
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE scheduler_runs
		 SET finished_at = NOW(), status = $2, due_count = $3,
		     completed_count = $4, skipped_count = $5, error = $6
		 WHERE id = $1`,
		id,
		status,
		due,
		completed,
		skipped,
		errMsg,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to finish run history entry", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "run history entry not found", nil)
	}
	return nil
}
