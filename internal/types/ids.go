package types

import "github.com/google/uuid"

// Prefixed UUIDs make identifier provenance obvious in logs and foreign
// keys without requiring a schema lookup.

// NewActionID returns a fresh Action identifier ("act_...").
func NewActionID() string {
	return "act_" + uuid.New().String()
}

// NewTaskID returns a fresh follow-up task identifier ("task_...").
func NewTaskID() string {
	return "task_" + uuid.New().String()
}

// NewTraceID returns a fresh trace identifier for correlating trigger
// signals with processor runs.
func NewTraceID() string {
	return uuid.New().String()
}
