package service

import (
	"time"

	"family-calendar-api/modules/event/entity"
)

// resolveOccurrences merges expanded candidate dates with the pre-fetched
// overlay state into the final occurrence list for one event. No I/O happens
// here: deleted slots are dropped, modified slots carry the override event's
// content under the original series date, everything else passes through.
// Candidate order (ascending) is preserved.
func resolveOccurrences(event *entity.Event, candidates []time.Time, overlays entity.Overlays) []entity.Occurrence {
	occurrences := make([]entity.Occurrence, 0, len(candidates))

	for _, date := range candidates {
		if overlays.IsDeleted(event.ID, date) {
			continue
		}

		if override, ok := overlays.OverrideFor(event.ID, date); ok {
			occurrences = append(occurrences, entity.Occurrence{
				EventID:        event.ID,
				OccurrenceDate: date,
				Content:        override,
				IsModified:     true,
			})
			continue
		}

		content := *event
		content.StartTime = occurrenceStartAt(event, date)
		if event.EndTime != nil {
			end := content.StartTime.Add(event.Duration())
			content.EndTime = &end
		}

		occurrences = append(occurrences, entity.Occurrence{
			EventID:        event.ID,
			OccurrenceDate: date,
			Content:        content,
		})
	}

	return occurrences
}

// occurrenceStartAt places the base event's time of day on the occurrence
// date.
func occurrenceStartAt(event *entity.Event, date time.Time) time.Time {
	date = date.UTC()
	start := event.StartTime.UTC()
	return time.Date(date.Year(), date.Month(), date.Day(),
		start.Hour(), start.Minute(), start.Second(), 0, time.UTC)
}
