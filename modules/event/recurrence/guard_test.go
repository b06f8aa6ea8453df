package recurrence

import (
	"testing"
	"time"

	"family-calendar-api/core/errors"
	"family-calendar-api/modules/event/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRangeCeilings(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		recurrenceType entity.RecurrenceType
		end            time.Time
		wantErr        bool
	}{
		{"daily at limit", entity.RecurrenceDaily, start.AddDate(0, 0, 364), false},
		{"daily over limit", entity.RecurrenceDaily, start.AddDate(0, 0, 365), true},
		{"weekly at limit", entity.RecurrenceWeekly, start.AddDate(0, 0, 729), false},
		{"weekly over limit", entity.RecurrenceWeekly, start.AddDate(0, 0, 730), true},
		{"monthly at limit", entity.RecurrenceMonthly, start.AddDate(0, 0, 1094), false},
		{"monthly over limit", entity.RecurrenceMonthly, start.AddDate(0, 0, 1095), true},
		{"yearly at limit", entity.RecurrenceYearly, start.AddDate(0, 0, 3649), false},
		{"yearly over limit", entity.RecurrenceYearly, start.AddDate(0, 0, 3650), true},
		{"none has no ceiling", entity.RecurrenceNone, start.AddDate(20, 0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := ValidateRange(tt.recurrenceType, start, tt.end)
			if tt.wantErr {
				require.NotNil(t, appErr)
				assert.Equal(t, errors.ErrRangeTooLarge, appErr.Code)
			} else {
				assert.Nil(t, appErr)
			}
		})
	}
}

func TestValidateRangeInvertedWindow(t *testing.T) {
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	appErr := ValidateRange(entity.RecurrenceDaily, start, start.AddDate(0, 0, -1))
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
}

func TestDefaultHorizon(t *testing.T) {
	start := time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		recurrenceType entity.RecurrenceType
		wantYears      int
	}{
		{entity.RecurrenceDaily, 1},
		{entity.RecurrenceWeekly, 2},
		{entity.RecurrenceMonthly, 3},
		{entity.RecurrenceYearly, 10},
	}

	for _, tt := range tests {
		t.Run(string(tt.recurrenceType), func(t *testing.T) {
			horizon := DefaultHorizon(tt.recurrenceType, start)
			require.NotNil(t, horizon)
			assert.Equal(t, time.Date(2025+tt.wantYears, 3, 15, 0, 0, 0, 0, time.UTC), *horizon)
		})
	}
}

func TestDefaultHorizonNone(t *testing.T) {
	assert.Nil(t, DefaultHorizon(entity.RecurrenceNone, time.Now()))
}
