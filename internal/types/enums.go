package types

// ActionStatus represents the lifecycle state of an Action.
// An Action starts pending and transitions to completed exactly once;
// the transition never reverts.
type ActionStatus string

const (
	ActionPending   ActionStatus = "pending"
	ActionCompleted ActionStatus = "completed"
)

// Frequency is the recurrence cadence of an Action. FrequencySingle means
// the Action fires once and never recurs.
type Frequency string

const (
	FrequencySingle       Frequency = "single"
	FrequencyWeekly       Frequency = "weekly"
	FrequencyBiweekly     Frequency = "biweekly"
	FrequencyMonthly      Frequency = "monthly"
	FrequencyQuarterly    Frequency = "quarterly"
	FrequencySemiAnnually Frequency = "semiannually"
	FrequencyAnnually     Frequency = "annually"
)

// AllFrequencies is the complete set of valid Frequency values.
// Used by validators when registering new Actions.
var AllFrequencies = []Frequency{
	FrequencySingle,
	FrequencyWeekly,
	FrequencyBiweekly,
	FrequencyMonthly,
	FrequencyQuarterly,
	FrequencySemiAnnually,
	FrequencyAnnually,
}

// IsValid reports whether f is one of the known Frequency values.
func (f Frequency) IsValid() bool {
	for _, known := range AllFrequencies {
		if f == known {
			return true
		}
	}
	return false
}

// IsRecurring reports whether an Action with this frequency produces a
// successor occurrence after it is processed.
func (f Frequency) IsRecurring() bool {
	return f.IsValid() && f != FrequencySingle
}

// CommandTag identifies the effect a Command performs when its Action
// becomes due. The processor dispatches on the tag and never interprets
// the command body itself.
type CommandTag string

const (
	// CommandFollowUp registers a follow-up task for a contact.
	CommandFollowUp CommandTag = "followup"
)
