package recurrence

import (
	"fmt"
	"time"

	"family-calendar-api/core/constants"
	"family-calendar-api/core/errors"
	"family-calendar-api/modules/event/entity"
)

var maxRangeDays = map[entity.RecurrenceType]int{
	entity.RecurrenceDaily:   constants.MaxRangeDaysDaily,
	entity.RecurrenceWeekly:  constants.MaxRangeDaysWeekly,
	entity.RecurrenceMonthly: constants.MaxRangeDaysMonthly,
	entity.RecurrenceYearly:  constants.MaxRangeDaysYearly,
}

var defaultHorizonYears = map[entity.RecurrenceType]int{
	entity.RecurrenceDaily:   constants.DefaultHorizonYearsDaily,
	entity.RecurrenceWeekly:  constants.DefaultHorizonYearsWeekly,
	entity.RecurrenceMonthly: constants.DefaultHorizonYearsMonthly,
	entity.RecurrenceYearly:  constants.DefaultHorizonYearsYearly,
}

// ValidateRange rejects query windows whose inclusive day span exceeds the
// per-type ceiling, bounding worst-case expansion work before it starts.
// Non-recurring events have no ceiling: they contribute a single candidate.
func ValidateRange(recurrenceType entity.RecurrenceType, start, end time.Time) *errors.AppError {
	if end.Before(start) {
		return errors.NewAppError(errors.ErrInvalidInput, "Date range end must not be before start", nil)
	}

	limit, ok := maxRangeDays[recurrenceType]
	if !ok {
		return nil
	}

	spanDays := int(endOfDay(end).Sub(startOfDay(start)).Hours()/24) + 1
	if spanDays > limit {
		return errors.NewAppError(errors.ErrRangeTooLarge,
			fmt.Sprintf("Date range of %d days exceeds the %d-day limit for %s events", spanDays, limit, recurrenceType),
			nil)
	}

	return nil
}

// DefaultHorizon computes the recurrence end applied to a recurring event
// created or updated without one, so no series is unbounded by default. The
// expansion candidate cap remains the backstop for legacy rows that predate
// this default. Returns nil for non-recurring events.
func DefaultHorizon(recurrenceType entity.RecurrenceType, start time.Time) *time.Time {
	years, ok := defaultHorizonYears[recurrenceType]
	if !ok {
		return nil
	}

	horizon := startOfDay(start).AddDate(years, 0, 0)
	return &horizon
}
