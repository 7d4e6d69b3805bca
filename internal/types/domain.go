package types

import "time"

// Action is a stored deferred or recurring command, scoped to a tenant.
// It is the unit the scheduler core operates on: the processor scans for
// due Actions, executes each one's command effect exactly once per
// occurrence, and for recurring frequencies registers a brand-new Action
// for the next occurrence.
//
// TriggerTime is immutable: a recurring schedule never mutates an existing
// row's trigger time. Completing an occurrence and scheduling its successor
// are always two rows, which preserves an audit trail of past occurrences.
type Action struct {
	// ID is an opaque prefixed UUID ("act_..."), assigned at creation.
	ID string `json:"id"`

	// TenantID is the owning tenant. All queries and authorization are
	// scoped by it; the scheduler core itself never interprets it.
	TenantID string `json:"tenant_id"`

	Status ActionStatus `json:"status"`

	// TriggerTime is the instant at which the Action becomes due. An
	// Action is due when Status is pending and TriggerTime <= now
	// (inclusive).
	TriggerTime time.Time `json:"trigger_time"`

	Frequency Frequency `json:"frequency"`

	// Command is the polymorphic payload describing the effect to execute
	// when the Action is processed. Stored as JSONB.
	Command Command `json:"command"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// IsDue reports whether the Action is due at the given instant.
// The boundary is inclusive: an Action whose TriggerTime equals now is due.
func (a *Action) IsDue(now time.Time) bool {
	return a.Status == ActionPending && !a.TriggerTime.After(now)
}

// FollowUp is the human-facing follow-up record the followup command
// registers when its Action is processed. The scheduler core only writes
// these through the FollowUpRegistrar contract; their lifecycle beyond
// creation belongs to the contact-management side of the platform.
type FollowUp struct {
	// ID is a freshly generated prefixed UUID ("task_...") per occurrence.
	// No task record is pre-created when the Action is registered; the
	// registration at processing time is the effect itself.
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	ContactID string    `json:"contact_id"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}
