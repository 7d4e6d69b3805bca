package types

import "time"

// TriggerMessage is the SQS payload for the scheduler wake-up signal.
//
// The signal is deliberately content-free: it carries no per-action
// addressing and no scheduling information, only observability metadata.
// The processor always re-derives the due set from the store at invocation
// time, which keeps "when to check" (an operational concern, owned by the
// publisher) decoupled from "what is due" (data-driven, owned by the store).
// Delivery is at-least-once within a competing-consumer group, so redundant
// or redelivered signals only cause redundant scans, never duplicate
// scheduling state.
type TriggerMessage struct {
	// TraceID correlates a signal with the processor run it triggered.
	TraceID string `json:"trace_id"`

	// PublishedAt is when the signal was emitted, used to observe queue lag.
	// It is never used as the processor's "now".
	PublishedAt time.Time `json:"published_at"`
}

// TriggerReasonManual and TriggerReasonScheduled are the values of the
// "reason" message attribute attached to wake-up signals, distinguishing
// operator-initiated publishes from timer-driven ones in logs.
const (
	TriggerReasonManual    = "manual"
	TriggerReasonScheduled = "scheduled"
)
