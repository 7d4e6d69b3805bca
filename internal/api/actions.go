package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"touchbase/internal/types"
)

// ActionRepo defines the data access contract for the Action handler.
// Mirrors the concrete db.ActionRepository methods used here.
type ActionRepo interface {
	Insert(ctx context.Context, a *types.Action) error
	GetByID(ctx context.Context, tenantID, actionID string) (*types.Action, error)
	ListByTenant(ctx context.Context, tenantID string, status types.ActionStatus, limit int) ([]*types.Action, error)
}

// CreateActionRequest is the request body for
// POST /v1/tenants/{tenantID}/actions.
type CreateActionRequest struct {
	// TriggerTime is checked by hand so a missing or zero value maps to
	// the dedicated trigger-time error code rather than a generic one.
	TriggerTime time.Time       `json:"trigger_time"`
	Frequency   string          `json:"frequency" validate:"required,frequency"`
	Command     CommandEnvelope `json:"command" validate:"required"`
}

// CommandEnvelope is the polymorphic command as submitted by clients.
// Only the "followup" tag is currently accepted.
type CommandEnvelope struct {
	Tag       string `json:"tag" validate:"required,oneof=followup"`
	ContactID string `json:"contact_id" validate:"required"`
	Note      string `json:"note" validate:"max=2000"`
}

// ActionHandler serves Action registration and read endpoints.
type ActionHandler struct {
	repo      ActionRepo
	validator *Validator
	logger    *slog.Logger
}

// NewActionHandler creates a new ActionHandler with the provided dependencies.
func NewActionHandler(repo ActionRepo, v *Validator, logger *slog.Logger) *ActionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActionHandler{repo: repo, validator: v, logger: logger}
}

// RegisterRoutes mounts Action routes on the provided chi.Router.
func (h *ActionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/tenants/{tenantID}/actions", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{actionID}", h.Get)
	})
}

// Create handles POST /v1/tenants/{tenantID}/actions.
//
// Trigger times are stored in UTC regardless of the offset the client
// submits. A trigger time in the past is accepted: the action simply becomes
// due on the next run, which is how clients register an immediate follow-up.
func (h *ActionHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var req CreateActionRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		Error(w, r, err)
		return
	}
	if req.TriggerTime.IsZero() {
		Error(w, r, types.NewAppError(
			types.ErrCodeValidationInvalidTime,
			"trigger_time must be a valid RFC 3339 timestamp",
			nil,
		))
		return
	}

	cmd, err := types.NewFollowUpCommand(req.Command.ContactID, req.Command.Note)
	if err != nil {
		Error(w, r, types.NewAppError(
			types.ErrCodeValidationInvalidCommand,
			"invalid command payload",
			err,
		))
		return
	}

	action := &types.Action{
		ID:          types.NewActionID(),
		TenantID:    tenantID,
		Status:      types.ActionPending,
		TriggerTime: req.TriggerTime.UTC(),
		Frequency:   types.Frequency(req.Frequency),
		Command:     cmd,
	}

	if err := h.repo.Insert(r.Context(), action); err != nil {
		Error(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "action registered",
		"action_id", action.ID,
		"tenant_id", tenantID,
		"frequency", string(action.Frequency),
		"trigger_time", action.TriggerTime,
	)

	JSON(w, r, http.StatusCreated, APIResponse{Data: action})
}

// Get handles GET /v1/tenants/{tenantID}/actions/{actionID}.
func (h *ActionHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	actionID := chi.URLParam(r, "actionID")

	action, err := h.repo.GetByID(r.Context(), tenantID, actionID)
	if err != nil {
		Error(w, r, err)
		return
	}

	JSON(w, r, http.StatusOK, APIResponse{Data: action})
}

// List handles GET /v1/tenants/{tenantID}/actions.
// Optional query parameters: status (pending|completed), limit.
func (h *ActionHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var status types.ActionStatus
	if s := r.URL.Query().Get("status"); s != "" {
		status = types.ActionStatus(s)
		if status != types.ActionPending && status != types.ActionCompleted {
			Error(w, r, types.NewAppError(
				errCodeValidationInvalidValue,
				"status must be 'pending' or 'completed'",
				nil,
			))
			return
		}
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			Error(w, r, types.NewAppError(
				errCodeValidationInvalidValue,
				"limit must be a positive integer",
				nil,
			))
			return
		}
		limit = parsed
	}

	actions, err := h.repo.ListByTenant(r.Context(), tenantID, status, limit)
	if err != nil {
		Error(w, r, err)
		return
	}
	if actions == nil {
		actions = []*types.Action{}
	}

	JSON(w, r, http.StatusOK, APIResponse{Data: actions})
}
