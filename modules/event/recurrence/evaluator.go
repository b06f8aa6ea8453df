package recurrence

import (
	"fmt"
	"time"

	"family-calendar-api/core/constants"
	"family-calendar-api/modules/event/entity"

	"github.com/teambition/rrule-go"
)

var frequencies = map[entity.RecurrenceType]rrule.Frequency{
	entity.RecurrenceDaily:   rrule.DAILY,
	entity.RecurrenceWeekly:  rrule.WEEKLY,
	entity.RecurrenceMonthly: rrule.MONTHLY,
	entity.RecurrenceYearly:  rrule.YEARLY,
}

// Expand generates the candidate occurrence dates of an event inside the
// query window, in ascending order. Expansion stops at the earlier of the
// window end and the event's recurrence end, and never pulls more than
// constants.MaxOccurrenceCandidates candidates from the rule, so it
// terminates even for events without an end bound.
//
// Monthly rules anchored on a day a month lacks (e.g. the 31st) skip that
// month entirely; the same applies to yearly rules anchored on Feb 29. This is
// standard RFC 5545 iteration behavior and rrule-go implements it.
func Expand(event *entity.Event, queryStart, queryEnd time.Time) ([]time.Time, error) {
	if queryEnd.Before(queryStart) {
		return nil, nil
	}

	windowStart := startOfDay(queryStart)
	windowEnd := endOfDay(queryEnd)

	if !event.RecurrenceType.IsRecurring() {
		start := event.StartTime.UTC()
		if !start.Before(windowStart) && !start.After(windowEnd) {
			return []time.Time{start}, nil
		}
		return nil, nil
	}

	until := windowEnd
	if event.RecurrenceEnd != nil {
		if recEnd := endOfDay(*event.RecurrenceEnd); recEnd.Before(until) {
			until = recEnd
		}
	}

	freq, ok := frequencies[event.RecurrenceType]
	if !ok {
		return nil, fmt.Errorf("unknown recurrence type %q", event.RecurrenceType)
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     freq,
		Interval: 1,
		Dtstart:  event.StartTime.UTC(),
		Until:    until,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build recurrence rule: %w", err)
	}

	var candidates []time.Time
	next := rule.Iterator()
	for generated := 0; generated < constants.MaxOccurrenceCandidates; generated++ {
		d, ok := next()
		if !ok {
			break
		}
		if d.After(until) {
			break
		}
		if d.Before(windowStart) {
			continue
		}
		candidates = append(candidates, d)
	}

	return candidates, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}
