package actions

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"touchbase/internal/types"
)

// FollowUpHandler executes the "followup" command: register a follow-up
// record for the Action's contact via the external registrar.
//
// Each occurrence gets a freshly generated task identifier. The
// registration itself is the effect; deduping re-executions after a crash
// between effect and completion (the accepted at-least-once gap) would
// require the registrar to dedupe by action ID, which is a future
// extension of its contract, not of this handler.
type FollowUpHandler struct {
	registrar FollowUpRegistrar
	logger    *slog.Logger
}

// NewFollowUpHandler creates a FollowUpHandler backed by the given registrar.
func NewFollowUpHandler(registrar FollowUpRegistrar, logger *slog.Logger) *FollowUpHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FollowUpHandler{registrar: registrar, logger: logger}
}

// Tag implements CommandHandler.
func (h *FollowUpHandler) Tag() types.CommandTag {
	return types.CommandFollowUp
}

// Execute decodes the command body and registers the follow-up.
// A contact that no longer exists propagates as a not_found AppError; the
// processor logs and skips the Action, leaving it pending.
//
// TODO: retire orphaned-contact Actions instead of re-attempting them on
// every run once a retirement status is added to the store contract.
func (h *FollowUpHandler) Execute(ctx context.Context, action *types.Action) error {
	cmd, err := action.Command.FollowUp()
	if err != nil {
		return types.NewAppError(types.ErrCodeValidationInvalidCommand, "malformed followup command", err)
	}

	taskID := types.NewTaskID()
	followUp, err := h.registrar.RegisterFollowUp(ctx, action.TenantID, cmd.ContactID, taskID, cmd.Note)
	if err != nil {
		return fmt.Errorf("registering follow-up for contact %s: %w", cmd.ContactID, err)
	}

	h.logger.InfoContext(ctx, "follow-up registered",
		"action_id", action.ID,
		"tenant_id", action.TenantID,
		"contact_id", followUp.ContactID,
		"task_id", followUp.ID,
		"registered_at", followUp.CreatedAt.Format(time.RFC3339),
	)
	return nil
}

// Compile-time assertion that FollowUpHandler implements CommandHandler.
var _ CommandHandler = (*FollowUpHandler)(nil)
