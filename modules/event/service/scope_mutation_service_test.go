package service

import (
	"context"
	"testing"
	"time"

	"family-calendar-api/core/cache"
	"family-calendar-api/core/errors"
	"family-calendar-api/core/tasks"
	"family-calendar-api/modules/event/dto"
	"family-calendar-api/modules/event/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testFamilyID = uuid.New()
	testUserID   = uuid.New()
)

// weeklyEvent returns an 8-week Monday series: Jan 6 .. Feb 24 2025, 09:00-10:00 UTC.
func weeklyEvent(s *fakeStore) *entity.Event {
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	recEnd := time.Date(2025, 2, 24, 0, 0, 0, 0, time.UTC)
	return s.addEvent(&entity.Event{
		FamilyID:       testFamilyID,
		CreatedBy:      &testUserID,
		Title:          "Soccer practice",
		StartTime:      start,
		EndTime:        &end,
		RecurrenceType: entity.RecurrenceWeekly,
		RecurrenceEnd:  &recEnd,
	})
}

func newMutationService(s *fakeStore) MutationServiceInterface {
	return NewMutationService(s, cache.NewNoop(), tasks.NewNoop())
}

func strPtr(s string) *string { return &s }

func TestUpdateOccurrenceThisCreatesOverride(t *testing.T) {
	store := newFakeStore()
	ev := weeklyEvent(store)
	svc := newMutationService(store)

	date := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	resp, appErr := svc.UpdateOccurrence(context.Background(), testFamilyID, ev.ID, &dto.UpdateOccurrenceRequest{
		OccurrenceDate: date,
		Scope:          string(entity.ScopeThis),
		Content:        dto.EventContent{Title: "Soccer practice (indoor)"},
	})
	require.Nil(t, appErr)
	require.NotNil(t, resp)
	assert.Equal(t, ev.ID, resp.EventID)
	assert.Nil(t, resp.NewEventID)

	x := store.exceptionBySlot(ev.ID, date)
	require.NotNil(t, x)
	assert.Equal(t, entity.ExceptionModified, x.Kind)
	require.NotNil(t, x.OverrideEventID)

	override := store.events[*x.OverrideEventID]
	require.NotNil(t, override)
	assert.True(t, override.IsOverride)
	assert.Equal(t, entity.RecurrenceNone, override.RecurrenceType)
	assert.Equal(t, "Soccer practice (indoor)", override.Title)
	assert.Equal(t, time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC), override.StartTime)
	require.NotNil(t, override.EndTime)
	assert.Equal(t, time.Hour, override.EndTime.Sub(override.StartTime))

	// Base series is untouched
	assert.Equal(t, "Soccer practice", store.events[ev.ID].Title)
}

func TestUpdateOccurrenceThisSupersedesPreviousEdit(t *testing.T) {
	store := newFakeStore()
	ev := weeklyEvent(store)
	svc := newMutationService(store)

	date := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)
	for _, title := range []string{"First edit", "Second edit"} {
		_, appErr := svc.UpdateOccurrence(context.Background(), testFamilyID, ev.ID, &dto.UpdateOccurrenceRequest{
			OccurrenceDate: date,
			Scope:          string(entity.ScopeThis),
			Content:        dto.EventContent{Title: title},
		})
		require.Nil(t, appErr)
	}

	// One exception for the slot, old override gone
	assert.Len(t, store.exceptions, 1)
	assert.Len(t, store.events, 2) // base + current override

	x := store.exceptionBySlot(ev.ID, date)
	require.NotNil(t, x)
	require.NotNil(t, x.OverrideEventID)
	assert.Equal(t, "Second edit", store.events[*x.OverrideEventID].Title)
}

func TestDeleteOccurrenceThisAfterUpdateRemovesOverride(t *testing.T) {
	store := newFakeStore()
	ev := weeklyEvent(store)
	svc := newMutationService(store)

	date := time.Date(2025, 1, 27, 0, 0, 0, 0, time.UTC)
	_, appErr := svc.UpdateOccurrence(context.Background(), testFamilyID, ev.ID, &dto.UpdateOccurrenceRequest{
		OccurrenceDate: date,
		Scope:          string(entity.ScopeThis),
		Content:        dto.EventContent{Title: "Changed"},
	})
	require.Nil(t, appErr)

	appErr = svc.DeleteOccurrence(context.Background(), testFamilyID, ev.ID, date, entity.ScopeThis)
	require.Nil(t, appErr)

	x := store.exceptionBySlot(ev.ID, date)
	require.NotNil(t, x)
	assert.Equal(t, entity.ExceptionDeleted, x.Kind)
	assert.Nil(t, x.OverrideEventID)
	assert.Len(t, store.events, 1) // only the base series remains
}

func TestDeleteOccurrenceThisIsIdempotent(t *testing.T) {
	store := newFakeStore()
	ev := weeklyEvent(store)
	svc := newMutationService(store)

	date := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		appErr := svc.DeleteOccurrence(context.Background(), testFamilyID, ev.ID, date, entity.ScopeThis)
		require.Nil(t, appErr)
	}

	assert.Len(t, store.exceptions, 1)
	x := store.exceptionBySlot(ev.ID, date)
	require.NotNil(t, x)
	assert.Equal(t, entity.ExceptionDeleted, x.Kind)
}

func TestUpdateOccurrenceTailSplitsSeries(t *testing.T) {
	store := newFakeStore()
	ev := weeklyEvent(store)
	svc := newMutationService(store)

	// A tail-side exception that should move to the new series
	splitDate := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	tailException := store.addException(&entity.EventException{
		EventID:        ev.ID,
		OccurrenceDate: time.Date(2025, 2, 17, 0, 0, 0, 0, time.UTC),
		Kind:           entity.ExceptionDeleted,
	})
	// A head-side exception that must stay put
	headException := store.addException(&entity.EventException{
		EventID:        ev.ID,
		OccurrenceDate: time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
		Kind:           entity.ExceptionDeleted,
	})

	weekly := string(entity.RecurrenceWeekly)
	resp, appErr := svc.UpdateOccurrence(context.Background(), testFamilyID, ev.ID, &dto.UpdateOccurrenceRequest{
		OccurrenceDate: splitDate,
		Scope:          string(entity.ScopeThisAndFollowing),
		RecurrenceType: &weekly,
		Content:        dto.EventContent{Title: "Swim practice"},
	})
	require.Nil(t, appErr)
	require.NotNil(t, resp.NewEventID)

	// Original truncated to the day before the split
	original := store.events[ev.ID]
	require.NotNil(t, original.RecurrenceEnd)
	assert.Equal(t, time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC), *original.RecurrenceEnd)
	assert.Equal(t, "Soccer practice", original.Title)

	// New series starts at the split occurrence with the edited content and
	// inherits the remaining end bound
	tail := store.events[*resp.NewEventID]
	require.NotNil(t, tail)
	assert.Equal(t, "Swim practice", tail.Title)
	assert.False(t, tail.IsOverride)
	assert.Equal(t, entity.RecurrenceWeekly, tail.RecurrenceType)
	assert.Equal(t, time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC), tail.StartTime)
	require.NotNil(t, tail.RecurrenceEnd)
	assert.Equal(t, time.Date(2025, 2, 24, 0, 0, 0, 0, time.UTC), *tail.RecurrenceEnd)

	// Recurrence shape unchanged: the tail exception follows the new series
	assert.Equal(t, *resp.NewEventID, store.exceptions[tailException.ID].EventID)
	assert.Equal(t, ev.ID, store.exceptions[headException.ID].EventID)
}

func TestUpdateOccurrenceTailDropsExceptionsOnShapeChange(t *testing.T) {
	store := newFakeStore()
	ev := weeklyEvent(store)
	svc := newMutationService(store)

	override := store.addEvent(&entity.Event{
		FamilyID:   testFamilyID,
		Title:      "Edited occurrence",
		StartTime:  time.Date(2025, 2, 17, 9, 0, 0, 0, time.UTC),
		IsOverride: true,
	})
	tailException := store.addException(&entity.EventException{
		EventID:         ev.ID,
		OccurrenceDate:  time.Date(2025, 2, 17, 0, 0, 0, 0, time.UTC),
		Kind:            entity.ExceptionModified,
		OverrideEventID: &override.ID,
	})

	daily := string(entity.RecurrenceDaily)
	resp, appErr := svc.UpdateOccurrence(context.Background(), testFamilyID, ev.ID, &dto.UpdateOccurrenceRequest{
		OccurrenceDate: time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
		Scope:          string(entity.ScopeThisAndFollowing),
		RecurrenceType: &daily,
		Content:        dto.EventContent{},
	})
	require.Nil(t, appErr)
	require.NotNil(t, resp.NewEventID)

	assert.Equal(t, entity.RecurrenceDaily, store.events[*resp.NewEventID].RecurrenceType)

	// Shape changed: the tail exception and its override are gone
	_, exceptionExists := store.exceptions[tailException.ID]
	assert.False(t, exceptionExists)
	_, overrideExists := store.events[override.ID]
	assert.False(t, overrideExists)
}

func TestUpdateOccurrenceTailRejectsNonRecurring(t *testing.T) {
	store := newFakeStore()
	ev := store.addEvent(&entity.Event{
		FamilyID:       testFamilyID,
		Title:          "Dentist",
		StartTime:      time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC),
		RecurrenceType: entity.RecurrenceNone,
	})
	svc := newMutationService(store)

	weekly := string(entity.RecurrenceWeekly)
	_, appErr := svc.UpdateOccurrence(context.Background(), testFamilyID, ev.ID, &dto.UpdateOccurrenceRequest{
		OccurrenceDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Scope:          string(entity.ScopeThisAndFollowing),
		RecurrenceType: &weekly,
	})
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
}

func TestUpdateOccurrenceAllKeepsExceptions(t *testing.T) {
	store := newFakeStore()
	ev := weeklyEvent(store)
	svc := newMutationService(store)

	exception := store.addException(&entity.EventException{
		EventID:        ev.ID,
		OccurrenceDate: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
		Kind:           entity.ExceptionDeleted,
	})

	weekly := string(entity.RecurrenceWeekly)
	_, appErr := svc.UpdateOccurrence(context.Background(), testFamilyID, ev.ID, &dto.UpdateOccurrenceRequest{
		OccurrenceDate: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		Scope:          string(entity.ScopeAll),
		RecurrenceType: &weekly,
		Content:        dto.EventContent{Title: "Soccer practice (new coach)", Description: strPtr("Bring cleats")},
	})
	require.Nil(t, appErr)

	updated := store.events[ev.ID]
	assert.Equal(t, "Soccer practice (new coach)", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Bring cleats", *updated.Description)

	// The deleted slot survives the whole-series edit
	_, exists := store.exceptions[exception.ID]
	assert.True(t, exists)
}

func TestDeleteOccurrenceTailTruncates(t *testing.T) {
	store := newFakeStore()
	ev := weeklyEvent(store)
	svc := newMutationService(store)

	tailException := store.addException(&entity.EventException{
		EventID:        ev.ID,
		OccurrenceDate: time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
		Kind:           entity.ExceptionDeleted,
	})

	appErr := svc.DeleteOccurrence(context.Background(), testFamilyID, ev.ID,
		time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), entity.ScopeThisAndFollowing)
	require.Nil(t, appErr)

	original := store.events[ev.ID]
	require.NotNil(t, original.RecurrenceEnd)
	assert.Equal(t, time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC), *original.RecurrenceEnd)

	_, exists := store.exceptions[tailException.ID]
	assert.False(t, exists)
}

func TestDeleteOccurrenceAllRemovesSeriesAndExceptions(t *testing.T) {
	store := newFakeStore()
	ev := weeklyEvent(store)
	svc := newMutationService(store)

	override := store.addEvent(&entity.Event{
		FamilyID:   testFamilyID,
		Title:      "Edited",
		StartTime:  time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC),
		IsOverride: true,
	})
	store.addException(&entity.EventException{
		EventID:         ev.ID,
		OccurrenceDate:  time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
		Kind:            entity.ExceptionModified,
		OverrideEventID: &override.ID,
	})
	store.addException(&entity.EventException{
		EventID:        ev.ID,
		OccurrenceDate: time.Date(2025, 1, 27, 0, 0, 0, 0, time.UTC),
		Kind:           entity.ExceptionDeleted,
	})

	appErr := svc.DeleteOccurrence(context.Background(), testFamilyID, ev.ID,
		time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), entity.ScopeAll)
	require.Nil(t, appErr)

	assert.Empty(t, store.events)
	assert.Empty(t, store.exceptions)
}

func TestUpdateOccurrenceSlotRaceRetriesOnce(t *testing.T) {
	store := newFakeStore()
	ev := weeklyEvent(store)
	svc := newMutationService(store)

	date := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

	// The first insert loses to a concurrent delete of the same slot
	store.failExceptionCreates = 1
	store.raceWinner = &entity.EventException{
		EventID:        ev.ID,
		OccurrenceDate: date,
		Kind:           entity.ExceptionDeleted,
	}

	resp, appErr := svc.UpdateOccurrence(context.Background(), testFamilyID, ev.ID, &dto.UpdateOccurrenceRequest{
		OccurrenceDate: date,
		Scope:          string(entity.ScopeThis),
		Content:        dto.EventContent{Title: "Rescheduled"},
	})
	require.Nil(t, appErr)
	require.NotNil(t, resp)

	// The retry found the winner's exception and superseded it
	x := store.exceptionBySlot(ev.ID, date)
	require.NotNil(t, x)
	assert.Equal(t, entity.ExceptionModified, x.Kind)
	require.NotNil(t, x.OverrideEventID)
	assert.Equal(t, "Rescheduled", store.events[*x.OverrideEventID].Title)
}

func TestUpdateOccurrenceSlotRaceConflictAfterRetry(t *testing.T) {
	store := newFakeStore()
	ev := weeklyEvent(store)
	svc := newMutationService(store)

	// Both attempts lose the slot race
	store.failExceptionCreates = 2

	_, appErr := svc.UpdateOccurrence(context.Background(), testFamilyID, ev.ID, &dto.UpdateOccurrenceRequest{
		OccurrenceDate: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
		Scope:          string(entity.ScopeThis),
		Content:        dto.EventContent{Title: "Never lands"},
	})
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrConflict, appErr.Code)
}

func TestUpdateOccurrenceValidation(t *testing.T) {
	store := newFakeStore()
	ev := weeklyEvent(store)
	svc := newMutationService(store)

	date := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		eventID uuid.UUID
		req     *dto.UpdateOccurrenceRequest
	}{
		{
			name:    "missing event id",
			eventID: uuid.Nil,
			req:     &dto.UpdateOccurrenceRequest{OccurrenceDate: date, Scope: string(entity.ScopeThis)},
		},
		{
			name:    "missing occurrence date",
			eventID: ev.ID,
			req:     &dto.UpdateOccurrenceRequest{Scope: string(entity.ScopeThis)},
		},
		{
			name:    "invalid scope",
			eventID: ev.ID,
			req:     &dto.UpdateOccurrenceRequest{OccurrenceDate: date, Scope: "everything"},
		},
		{
			name:    "series edit without recurrence type",
			eventID: ev.ID,
			req:     &dto.UpdateOccurrenceRequest{OccurrenceDate: date, Scope: string(entity.ScopeAll)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, appErr := svc.UpdateOccurrence(context.Background(), testFamilyID, tt.eventID, tt.req)
			require.NotNil(t, appErr)
			assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
		})
	}
}

func TestUpdateOccurrenceWrongFamilyIsNotFound(t *testing.T) {
	store := newFakeStore()
	ev := weeklyEvent(store)
	svc := newMutationService(store)

	_, appErr := svc.UpdateOccurrence(context.Background(), uuid.New(), ev.ID, &dto.UpdateOccurrenceRequest{
		OccurrenceDate: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
		Scope:          string(entity.ScopeThis),
		Content:        dto.EventContent{Title: "Nope"},
	})
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}
