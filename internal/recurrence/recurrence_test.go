package recurrence

import (
	"testing"
	"time"

	"touchbase/internal/types"
)

func ts(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestNextTriggerTime_FixedSpans(t *testing.T) {
	base := ts(2025, time.June, 2, 9, 0) // a Monday

	tests := []struct {
		name      string
		frequency types.Frequency
		expected  time.Time
	}{
		{"weekly", types.FrequencyWeekly, ts(2025, time.June, 9, 9, 0)},
		{"biweekly", types.FrequencyBiweekly, ts(2025, time.June, 16, 9, 0)},
		{"monthly", types.FrequencyMonthly, ts(2025, time.July, 2, 9, 0)},
		{"quarterly", types.FrequencyQuarterly, ts(2025, time.September, 2, 9, 0)},
		{"semiannually", types.FrequencySemiAnnually, ts(2025, time.December, 2, 9, 0)},
		{"annually", types.FrequencyAnnually, ts(2026, time.June, 2, 9, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextTriggerTime(base, tt.frequency)
			if !got.Equal(tt.expected) {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNextTriggerTime_MonthEndClamp(t *testing.T) {
	tests := []struct {
		name      string
		last      time.Time
		frequency types.Frequency
		expected  time.Time
	}{
		{
			name:      "jan 31 monthly clamps to feb 28",
			last:      ts(2025, time.January, 31, 9, 0),
			frequency: types.FrequencyMonthly,
			expected:  ts(2025, time.February, 28, 9, 0),
		},
		{
			name:      "jan 31 monthly clamps to feb 29 in leap year",
			last:      ts(2024, time.January, 31, 9, 0),
			frequency: types.FrequencyMonthly,
			expected:  ts(2024, time.February, 29, 9, 0),
		},
		{
			name:      "mar 31 monthly clamps to apr 30",
			last:      ts(2025, time.March, 31, 12, 30),
			frequency: types.FrequencyMonthly,
			expected:  ts(2025, time.April, 30, 12, 30),
		},
		{
			name:      "nov 30 quarterly clamps to feb 28",
			last:      ts(2025, time.November, 30, 9, 0),
			frequency: types.FrequencyQuarterly,
			expected:  ts(2026, time.February, 28, 9, 0),
		},
		{
			name:      "aug 31 semiannually clamps to feb 28",
			last:      ts(2025, time.August, 31, 9, 0),
			frequency: types.FrequencySemiAnnually,
			expected:  ts(2026, time.February, 28, 9, 0),
		},
		{
			name:      "leap day annually clamps to feb 28",
			last:      ts(2024, time.February, 29, 9, 0),
			frequency: types.FrequencyAnnually,
			expected:  ts(2025, time.February, 28, 9, 0),
		},
		{
			name:      "year rollover monthly",
			last:      ts(2025, time.December, 15, 9, 0),
			frequency: types.FrequencyMonthly,
			expected:  ts(2026, time.January, 15, 9, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextTriggerTime(tt.last, tt.frequency)
			if !got.Equal(tt.expected) {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNextTriggerTime_SingleIsNoOp(t *testing.T) {
	base := ts(2025, time.June, 2, 9, 0)
	got := NextTriggerTime(base, types.FrequencySingle)
	if !got.Equal(base) {
		t.Errorf("single frequency must return the input unchanged; got %v, want %v", got, base)
	}
}

func TestNextTriggerTime_UnknownFrequencyIsNoOp(t *testing.T) {
	base := ts(2025, time.June, 2, 9, 0)
	got := NextTriggerTime(base, types.Frequency("fortnightly"))
	if !got.Equal(base) {
		t.Errorf("unknown frequency must return the input unchanged; got %v, want %v", got, base)
	}
}

func TestNextTriggerTime_NonUTCInputNormalizedToUTC(t *testing.T) {
	// 2025-06-02 09:00 in UTC+2 is 07:00 UTC. The calendar math must run
	// in UTC and the result must be expressed in UTC.
	loc := time.FixedZone("UTC+2", 2*60*60)
	local := time.Date(2025, time.June, 2, 9, 0, 0, 0, loc)

	got := NextTriggerTime(local, types.FrequencyWeekly)

	expected := ts(2025, time.June, 9, 7, 0)
	if !got.Equal(expected) {
		t.Errorf("got %v, want %v", got, expected)
	}
	if got.Location() != time.UTC {
		t.Errorf("result location = %v, want UTC", got.Location())
	}
}

func TestNextTriggerTime_PreservesTimeOfDay(t *testing.T) {
	last := time.Date(2025, time.May, 14, 23, 45, 12, 987654321, time.UTC)
	got := NextTriggerTime(last, types.FrequencyMonthly)

	expected := time.Date(2025, time.June, 14, 23, 45, 12, 987654321, time.UTC)
	if !got.Equal(expected) {
		t.Errorf("got %v, want %v", got, expected)
	}
}

func TestNextTriggerTime_Deterministic(t *testing.T) {
	base := ts(2025, time.January, 31, 9, 0)
	first := NextTriggerTime(base, types.FrequencyMonthly)
	second := NextTriggerTime(base, types.FrequencyMonthly)
	if !first.Equal(second) {
		t.Errorf("calculator must be deterministic: %v != %v", first, second)
	}
}
