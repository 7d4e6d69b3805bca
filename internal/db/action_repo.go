package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"touchbase/internal/types"
)

// ActionRepository provides data access for the actions table. It
// implements the scheduler core's ActionStore contract plus the read
// methods the API layer needs.
//
// Rows are append-mostly: the only mutation this subsystem ever performs
// is the pending->completed status flip. A recurring schedule's next
// occurrence is a brand-new row, never an update of trigger_time, which
// preserves an immutable audit trail of past occurrences. Rows are never
// deleted here; retention is a concern outside this core.
type ActionRepository struct {
	db DBTX
}

// NewActionRepository creates a new ActionRepository backed by the given
// database connection (pool or transaction).
func NewActionRepository(db DBTX) *ActionRepository {
	return &ActionRepository{db: db}
}

// Insert persists a new Action. The caller must set the ID, TenantID,
// TriggerTime, Frequency, and Command; Status defaults to pending and
// CreatedAt to NOW() when unset.
func (r *ActionRepository) Insert(ctx context.Context, a *types.Action) error {
	status := a.Status
	if status == "" {
		status = types.ActionPending
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO actions
		 (id, tenant_id, status, trigger_time, frequency, command, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))
		 RETURNING created_at`,
		a.ID,
		a.TenantID,
		string(status),
		a.TriggerTime,
		string(a.Frequency),
		a.Command,
		nilIfZeroTime(a.CreatedAt),
	)
	if err := row.Scan(&a.CreatedAt); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert action", err)
	}
	a.Status = status
	return nil
}

// MarkCompleted atomically flips the Action from pending to completed.
// The WHERE status = 'pending' guard makes concurrent completion attempts
// safe: exactly one caller observes the transition (true), every other
// caller -- and any call for an absent ID -- gets a (false, nil) no-op.
func (r *ActionRepository) MarkCompleted(ctx context.Context, actionID string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE actions
		 SET status = 'completed', completed_at = NOW()
		 WHERE id = $1 AND status = 'pending'`,
		actionID,
	)
	if err != nil {
		return false, types.NewAppError(types.ErrCodeInternalDB, "failed to mark action completed", err)
	}
	return tag.RowsAffected() > 0, nil
}

// FindAllPendingDueBefore returns every pending Action across all tenants
// whose trigger_time is at or before the given instant (inclusive), in
// trigger-time order. The processor operates over the full due set in one
// pass, so there is no limit clause; the due set is bounded by how often
// the trigger fires.
//
// Leverages the idx_actions_due partial index on (trigger_time)
// WHERE status = 'pending'.
func (r *ActionRepository) FindAllPendingDueBefore(ctx context.Context, instant time.Time) ([]*types.Action, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, tenant_id, status, trigger_time, frequency, command, created_at, completed_at
		 FROM actions
		 WHERE status = 'pending' AND trigger_time <= $1
		 ORDER BY trigger_time, id`,
		instant,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query due actions", err)
	}
	defer rows.Close()

	var results []*types.Action
	for rows.Next() {
		a, scanErr := scanAction(rows)
		if scanErr != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan action row", scanErr)
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating action rows", err)
	}

	return results, nil
}

// GetByID returns a single Action scoped to a tenant. Returns a not_found
// AppError when no row matches; tenant scoping means one tenant can never
// observe another's actions.
func (r *ActionRepository) GetByID(ctx context.Context, tenantID, actionID string) (*types.Action, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, tenant_id, status, trigger_time, frequency, command, created_at, completed_at
		 FROM actions
		 WHERE id = $1 AND tenant_id = $2`,
		actionID,
		tenantID,
	)

	a, err := scanAction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundAction, "action not found", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to get action", err)
	}
	return a, nil
}

// ListByTenant returns a tenant's Actions, newest trigger time first,
// optionally filtered by status. limit <= 0 defaults to 50 and is capped
// at 200.
func (r *ActionRepository) ListByTenant(ctx context.Context, tenantID string, status types.ActionStatus, limit int) ([]*types.Action, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	query := `SELECT id, tenant_id, status, trigger_time, frequency, command, created_at, completed_at
	          FROM actions
	          WHERE tenant_id = $1`
	args := []any{tenantID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, string(status))
	}
	query += ` ORDER BY trigger_time DESC, id LIMIT $` + itoa(len(args)+1)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list actions", err)
	}
	defer rows.Close()

	var results []*types.Action
	for rows.Next() {
		a, scanErr := scanAction(rows)
		if scanErr != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan action row", scanErr)
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating action rows", err)
	}

	return results, nil
}

// scanAction scans one actions row from either a pgx.Row or pgx.Rows.
func scanAction(row pgx.Row) (*types.Action, error) {
	var (
		a           types.Action
		status      string
		frequency   string
		completedAt *time.Time
	)
	err := row.Scan(
		&a.ID,
		&a.TenantID,
		&status,
		&a.TriggerTime,
		&frequency,
		&a.Command,
		&a.CreatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = types.ActionStatus(status)
	a.Frequency = types.Frequency(frequency)
	a.CompletedAt = completedAt
	return &a, nil
}
