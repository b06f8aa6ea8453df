package service

import (
	"context"
	stderrors "errors"
	"time"

	"family-calendar-api/core/cache"
	"family-calendar-api/core/constants"
	"family-calendar-api/core/database"
	"family-calendar-api/core/errors"
	"family-calendar-api/core/logger"
	"family-calendar-api/core/tasks"
	"family-calendar-api/modules/event/dto"
	"family-calendar-api/modules/event/entity"
	"family-calendar-api/modules/event/recurrence"
	"family-calendar-api/modules/event/repository"

	"github.com/google/uuid"
)

// MutationService is the scope-mutation coordinator: the only code path that
// writes base events and occurrence exceptions. Every operation runs inside a
// single transaction; a failure rolls back all partial effects.
type MutationService struct {
	store repository.Store
	cache cache.Cache
	tasks tasks.Client
}

type MutationServiceInterface interface {
	UpdateOccurrence(ctx context.Context, familyID, eventID uuid.UUID, req *dto.UpdateOccurrenceRequest) (*dto.MutationResponse, *errors.AppError)
	DeleteOccurrence(ctx context.Context, familyID, eventID uuid.UUID, occurrenceDate time.Time, scope entity.EditScope) *errors.AppError
}

func NewMutationService(store repository.Store, c cache.Cache, t tasks.Client) MutationServiceInterface {
	return &MutationService{
		store: store,
		cache: c,
		tasks: t,
	}
}

// UpdateOccurrence applies an edit to one occurrence, the tail of the series,
// or the whole series.
func (s *MutationService) UpdateOccurrence(ctx context.Context, familyID, eventID uuid.UUID, req *dto.UpdateOccurrenceRequest) (*dto.MutationResponse, *errors.AppError) {
	scope := entity.EditScope(req.Scope)
	if appErr := validateSlot(eventID, req.OccurrenceDate, scope); appErr != nil {
		return nil, appErr
	}

	// Editing the series shape is meaningless without saying what shape it
	// should have
	var newType entity.RecurrenceType
	if scope != entity.ScopeThis {
		if req.RecurrenceType == nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "Recurrence type is required when editing the series", nil)
		}
		newType = entity.RecurrenceType(*req.RecurrenceType)
		if !newType.Valid() {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid recurrence type", nil)
		}
	}

	resp := &dto.MutationResponse{EventID: eventID}

	switch scope {
	case entity.ScopeThis:
		appErr := s.runWithSlotRetry(ctx, func(st repository.Store) error {
			return s.applyThisUpdate(ctx, st, familyID, eventID, req)
		})
		if appErr != nil {
			return nil, appErr
		}

	case entity.ScopeThisAndFollowing:
		var newEvent *entity.Event
		err := s.store.WithinTransaction(ctx, func(st repository.Store) error {
			var err error
			newEvent, err = s.applyTailUpdate(ctx, st, familyID, eventID, newType, req)
			return err
		})
		if appErr := asAppError(err, "Failed to split series"); appErr != nil {
			return nil, appErr
		}
		resp.NewEventID = &newEvent.ID
		scheduleReminder(ctx, s.tasks, newEvent)

	case entity.ScopeAll:
		err := s.store.WithinTransaction(ctx, func(st repository.Store) error {
			return s.applyAllUpdate(ctx, st, familyID, eventID, newType, req)
		})
		if appErr := asAppError(err, "Failed to update series"); appErr != nil {
			return nil, appErr
		}
	}

	s.cache.Delete(ctx, constants.RedisKeyEvent+eventID.String())
	return resp, nil
}

// DeleteOccurrence removes one occurrence, the tail of the series, or the
// whole series.
func (s *MutationService) DeleteOccurrence(ctx context.Context, familyID, eventID uuid.UUID, occurrenceDate time.Time, scope entity.EditScope) *errors.AppError {
	if appErr := validateSlot(eventID, occurrenceDate, scope); appErr != nil {
		return appErr
	}

	switch scope {
	case entity.ScopeThis:
		if appErr := s.runWithSlotRetry(ctx, func(st repository.Store) error {
			return s.applyThisDelete(ctx, st, familyID, eventID, occurrenceDate)
		}); appErr != nil {
			return appErr
		}

	case entity.ScopeThisAndFollowing:
		err := s.store.WithinTransaction(ctx, func(st repository.Store) error {
			return s.applyTailDelete(ctx, st, familyID, eventID, occurrenceDate)
		})
		if appErr := asAppError(err, "Failed to truncate series"); appErr != nil {
			return appErr
		}

	case entity.ScopeAll:
		err := s.store.WithinTransaction(ctx, func(st repository.Store) error {
			return s.applyAllDelete(ctx, st, familyID, eventID)
		})
		if appErr := asAppError(err, "Failed to delete series"); appErr != nil {
			return appErr
		}
	}

	s.cache.Delete(ctx, constants.RedisKeyEvent+eventID.String())
	return nil
}

// ===================== THIS scope =====================

func (s *MutationService) applyThisUpdate(ctx context.Context, st repository.Store, familyID, eventID uuid.UUID, req *dto.UpdateOccurrenceRequest) error {
	event, err := s.getOwnedEvent(ctx, st, familyID, eventID)
	if err != nil {
		return err
	}

	override := buildOverrideEvent(event, req.OccurrenceDate, req.Content)

	existing, err := st.Exceptions().GetBySlot(ctx, event.ID, req.OccurrenceDate)
	if err != nil {
		return err
	}

	if existing != nil {
		// Supersede the previous edit: the old override is deleted first so
		// it can never be left orphaned
		if existing.OverrideEventID != nil {
			if err := st.Events().Delete(ctx, *existing.OverrideEventID); err != nil {
				return err
			}
		}

		created, err := st.Events().Create(ctx, override)
		if err != nil {
			return err
		}

		existing.Kind = entity.ExceptionModified
		existing.OverrideEventID = &created.ID
		return st.Exceptions().Update(ctx, existing)
	}

	created, err := st.Events().Create(ctx, override)
	if err != nil {
		return err
	}

	// A unique violation here means a concurrent request created the first
	// exception for this slot; it propagates so the retry can take the
	// update-of-existing path
	_, err = st.Exceptions().Create(ctx, &entity.EventException{
		EventID:         event.ID,
		OccurrenceDate:  startOfDayUTC(req.OccurrenceDate),
		Kind:            entity.ExceptionModified,
		OverrideEventID: &created.ID,
	})
	return err
}

func (s *MutationService) applyThisDelete(ctx context.Context, st repository.Store, familyID, eventID uuid.UUID, occurrenceDate time.Time) error {
	event, err := s.getOwnedEvent(ctx, st, familyID, eventID)
	if err != nil {
		return err
	}

	existing, err := st.Exceptions().GetBySlot(ctx, event.ID, occurrenceDate)
	if err != nil {
		return err
	}

	if existing != nil {
		if existing.Kind == entity.ExceptionDeleted {
			return nil
		}
		if existing.OverrideEventID == nil {
			return errors.NewAppError(errors.ErrIntegrity, "Modified exception has no override event", nil)
		}
		if err := st.Events().Delete(ctx, *existing.OverrideEventID); err != nil {
			return err
		}

		existing.Kind = entity.ExceptionDeleted
		existing.OverrideEventID = nil
		return st.Exceptions().Update(ctx, existing)
	}

	_, err = st.Exceptions().Create(ctx, &entity.EventException{
		EventID:        event.ID,
		OccurrenceDate: startOfDayUTC(occurrenceDate),
		Kind:           entity.ExceptionDeleted,
	})
	return err
}

// ===================== THIS_AND_FOLLOWING scope =====================

func (s *MutationService) applyTailUpdate(ctx context.Context, st repository.Store, familyID, eventID uuid.UUID, newType entity.RecurrenceType, req *dto.UpdateOccurrenceRequest) (*entity.Event, error) {
	event, err := s.getOwnedEvent(ctx, st, familyID, eventID)
	if err != nil {
		return nil, err
	}
	if !event.RecurrenceType.IsRecurring() {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Only recurring series can be split", nil)
	}

	splitDate := startOfDayUTC(req.OccurrenceDate)

	tail, err := st.Exceptions().ListOnOrAfter(ctx, event.ID, splitDate)
	if err != nil {
		return nil, err
	}

	if err := st.Events().TruncateRecurrence(ctx, event.ID, splitDate.AddDate(0, 0, -1)); err != nil {
		return nil, err
	}

	newEvent := buildOverrideEvent(event, req.OccurrenceDate, req.Content)
	newEvent.IsOverride = false
	newEvent.RecurrenceType = newType
	newEvent.RecurrenceEnd = tailRecurrenceEnd(event, newType, splitDate, req.RecurrenceEnd)

	created, err := st.Events().Create(ctx, newEvent)
	if err != nil {
		return nil, err
	}

	// Exceptions dated on or after the split may not reference a series that
	// no longer covers their date: re-parent them to the new series when its
	// recurrence shape is unchanged, otherwise remove them together with
	// their overrides
	if newType == event.RecurrenceType {
		ids := make([]uuid.UUID, len(tail))
		for i, x := range tail {
			ids[i] = x.ID
		}
		if err := st.Exceptions().Reparent(ctx, ids, created.ID); err != nil {
			return nil, err
		}
	} else {
		if err := s.removeExceptions(ctx, st, tail); err != nil {
			return nil, err
		}
	}

	return created, nil
}

func (s *MutationService) applyTailDelete(ctx context.Context, st repository.Store, familyID, eventID uuid.UUID, occurrenceDate time.Time) error {
	event, err := s.getOwnedEvent(ctx, st, familyID, eventID)
	if err != nil {
		return err
	}
	if !event.RecurrenceType.IsRecurring() {
		return errors.NewAppError(errors.ErrInvalidInput, "Only recurring series can be truncated", nil)
	}

	splitDate := startOfDayUTC(occurrenceDate)

	tail, err := st.Exceptions().ListOnOrAfter(ctx, event.ID, splitDate)
	if err != nil {
		return err
	}

	if err := st.Events().TruncateRecurrence(ctx, event.ID, splitDate.AddDate(0, 0, -1)); err != nil {
		return err
	}

	return s.removeExceptions(ctx, st, tail)
}

// ===================== ALL scope =====================

func (s *MutationService) applyAllUpdate(ctx context.Context, st repository.Store, familyID, eventID uuid.UUID, newType entity.RecurrenceType, req *dto.UpdateOccurrenceRequest) error {
	event, err := s.getOwnedEvent(ctx, st, familyID, eventID)
	if err != nil {
		return err
	}

	applyContent(event, req.Content)
	event.RecurrenceType = newType
	if req.RecurrenceEnd != nil {
		event.RecurrenceEnd = req.RecurrenceEnd
	} else if newType.IsRecurring() && event.RecurrenceEnd == nil {
		event.RecurrenceEnd = recurrence.DefaultHorizon(newType, event.StartTime)
	}

	// Existing per-occurrence exceptions are deliberately left as they are;
	// the stored overrides keep their content even if the new base content
	// disagrees with them
	return st.Events().Update(ctx, event)
}

func (s *MutationService) applyAllDelete(ctx context.Context, st repository.Store, familyID, eventID uuid.UUID) error {
	event, err := s.getOwnedEvent(ctx, st, familyID, eventID)
	if err != nil {
		return err
	}

	exceptions, err := st.Exceptions().ListByEventID(ctx, event.ID)
	if err != nil {
		return err
	}

	if err := s.removeExceptions(ctx, st, exceptions); err != nil {
		return err
	}

	return st.Events().Delete(ctx, event.ID)
}

// ===================== Helpers =====================

func validateSlot(eventID uuid.UUID, occurrenceDate time.Time, scope entity.EditScope) *errors.AppError {
	if eventID == uuid.Nil {
		return errors.NewAppError(errors.ErrInvalidInput, "Event ID is required", nil)
	}
	if occurrenceDate.IsZero() {
		return errors.NewAppError(errors.ErrInvalidInput, "Occurrence date is required", nil)
	}
	if !scope.Valid() {
		return errors.NewAppError(errors.ErrInvalidInput, "Invalid edit scope", nil)
	}
	return nil
}

func (s *MutationService) getOwnedEvent(ctx context.Context, st repository.Store, familyID, eventID uuid.UUID) (*entity.Event, error) {
	event, err := st.Events().GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil || event.FamilyID != familyID {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
	}
	return event, nil
}

// removeExceptions deletes exceptions together with the override events they
// own. An override must never survive its exception.
func (s *MutationService) removeExceptions(ctx context.Context, st repository.Store, exceptions []entity.EventException) error {
	for _, x := range exceptions {
		if x.Kind == entity.ExceptionModified {
			if x.OverrideEventID == nil {
				return errors.NewAppError(errors.ErrIntegrity, "Modified exception has no override event", nil)
			}
			if err := st.Events().Delete(ctx, *x.OverrideEventID); err != nil {
				return err
			}
		}
		if err := st.Exceptions().Delete(ctx, x.ID); err != nil {
			return err
		}
	}
	return nil
}

// runWithSlotRetry runs fn in a transaction and retries it exactly once when
// it loses the race to create the first exception for a slot. On retry fn
// re-reads the slot and applies its change to the winner's exception instead,
// making the operation idempotent from the caller's perspective. A second
// collision is a genuine conflict and surfaces to the caller.
func (s *MutationService) runWithSlotRetry(ctx context.Context, fn func(st repository.Store) error) *errors.AppError {
	err := s.store.WithinTransaction(ctx, fn)
	if err == nil {
		return nil
	}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	if !database.IsUniqueViolation(err) {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to apply occurrence change", err)
	}

	logger.Warn("MutationService:runWithSlotRetry", "reason", "exception slot race, retrying once")

	err = s.store.WithinTransaction(ctx, fn)
	if err == nil {
		return nil
	}
	if stderrors.As(err, &appErr) {
		return appErr
	}
	if database.IsUniqueViolation(err) {
		return errors.NewAppError(errors.ErrConflict, "Occurrence was modified concurrently, please retry", err)
	}
	return errors.NewAppError(errors.ErrInternalServer, "Failed to apply occurrence change", err)
}

func asAppError(err error, fallback string) *errors.AppError {
	if err == nil {
		return nil
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return errors.NewAppError(errors.ErrInternalServer, fallback, err)
}

// buildOverrideEvent copies the base event's content onto the occurrence
// date, applies the requested content changes, and marks the result as an
// override holder.
func buildOverrideEvent(base *entity.Event, occurrenceDate time.Time, content dto.EventContent) *entity.Event {
	start := occurrenceStartAt(base, occurrenceDate)

	override := &entity.Event{
		FamilyID:       base.FamilyID,
		CreatedBy:      base.CreatedBy,
		AssignedTo:     base.AssignedTo,
		Title:          base.Title,
		Description:    base.Description,
		StartTime:      start,
		RecurrenceType: entity.RecurrenceNone,
		IsTask:         base.IsTask,
		XPPoints:       base.XPPoints,
		IsRequired:     base.IsRequired,
		IsOverride:     true,
	}
	if base.EndTime != nil {
		end := start.Add(base.Duration())
		override.EndTime = &end
	}

	applyContent(override, content)
	return override
}

// applyContent overlays the non-empty content fields onto an event.
func applyContent(event *entity.Event, content dto.EventContent) {
	if content.Title != "" {
		event.Title = content.Title
	}
	if content.Description != nil {
		event.Description = content.Description
	}
	if content.StartTime != nil {
		event.StartTime = content.StartTime.UTC()
	}
	if content.EndTime != nil {
		event.EndTime = content.EndTime
	}
	if content.AssignedTo != nil {
		event.AssignedTo = content.AssignedTo
	}
	if content.IsTask != nil {
		event.IsTask = *content.IsTask
	}
	if content.XPPoints != nil {
		event.XPPoints = *content.XPPoints
	}
	if content.IsRequired != nil {
		event.IsRequired = *content.IsRequired
	}
}

// tailRecurrenceEnd inherits the remaining end bound of the original series,
// falling back to the default horizon when nothing remains to inherit.
func tailRecurrenceEnd(original *entity.Event, newType entity.RecurrenceType, splitDate time.Time, requested *time.Time) *time.Time {
	if !newType.IsRecurring() {
		return nil
	}
	if requested != nil {
		return requested
	}
	if original.RecurrenceEnd != nil && original.RecurrenceEnd.After(splitDate) {
		return original.RecurrenceEnd
	}
	return recurrence.DefaultHorizon(newType, splitDate)
}

func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
