package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"family-calendar-api/core/cache"
	"family-calendar-api/core/constants"
	"family-calendar-api/core/errors"
	"family-calendar-api/core/logger"
	"family-calendar-api/core/storage"
	"family-calendar-api/core/tasks"
	"family-calendar-api/core/utils"
	"family-calendar-api/modules/event/dto"
	"family-calendar-api/modules/event/entity"
	"family-calendar-api/modules/event/recurrence"
	"family-calendar-api/modules/event/repository"

	"github.com/google/uuid"
)

// EventService handles event reads and creation. Scoped mutations live in
// MutationService.
type EventService struct {
	store    repository.Store
	cache    cache.Cache
	tasks    tasks.Client
	uploader storage.Uploader
}

type EventServiceInterface interface {
	CreateEvent(ctx context.Context, familyID, userID uuid.UUID, req *dto.CreateEventRequest) (*dto.EventResponse, *errors.AppError)
	GetEventByID(ctx context.Context, familyID, eventID uuid.UUID) (*dto.EventResponse, *errors.AppError)
	ListOccurrences(ctx context.Context, familyID uuid.UUID, from, to time.Time) ([]dto.OccurrenceResponse, *errors.AppError)
	AttachFile(ctx context.Context, familyID, eventID uuid.UUID, filename, contentType string, body io.Reader) (*dto.AttachmentResponse, *errors.AppError)
}

func NewEventService(store repository.Store, c cache.Cache, t tasks.Client, uploader storage.Uploader) EventServiceInterface {
	return &EventService{
		store:    store,
		cache:    c,
		tasks:    t,
		uploader: uploader,
	}
}

// CreateEvent creates a base event. Recurring events without an explicit end
// bound get the per-type default horizon so no series is unbounded by default.
func (s *EventService) CreateEvent(ctx context.Context, familyID, userID uuid.UUID, req *dto.CreateEventRequest) (*dto.EventResponse, *errors.AppError) {
	if req.Title == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Title is required", nil)
	}
	if req.StartTime.IsZero() {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Start time is required", nil)
	}

	recurrenceType := entity.RecurrenceType(req.RecurrenceType)
	if req.RecurrenceType == "" {
		recurrenceType = entity.RecurrenceNone
	}
	if !recurrenceType.Valid() {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid recurrence type", nil)
	}

	event := &entity.Event{
		FamilyID:       familyID,
		CreatedBy:      &userID,
		AssignedTo:     req.AssignedTo,
		Title:          req.Title,
		StartTime:      req.StartTime.UTC(),
		EndTime:        req.EndTime,
		RecurrenceType: recurrenceType,
		RecurrenceEnd:  req.RecurrenceEnd,
		IsTask:         req.IsTask,
		XPPoints:       req.XPPoints,
		IsRequired:     req.IsRequired,
	}
	if req.Description != "" {
		event.Description = &req.Description
	}
	if recurrenceType.IsRecurring() && event.RecurrenceEnd == nil {
		event.RecurrenceEnd = recurrence.DefaultHorizon(recurrenceType, event.StartTime)
	}

	created, err := s.store.Events().Create(ctx, event)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create event", err)
	}

	scheduleReminder(ctx, s.tasks, created)

	return dto.ToEventResponse(created), nil
}

// GetEventByID reads a base event through the cache.
func (s *EventService) GetEventByID(ctx context.Context, familyID, eventID uuid.UUID) (*dto.EventResponse, *errors.AppError) {
	key := constants.RedisKeyEvent + eventID.String()

	var event entity.Event
	if !s.cache.GetJSON(ctx, key, &event) {
		found, err := s.store.Events().GetByID(ctx, eventID)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get event", err)
		}
		if found == nil {
			return nil, errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
		}
		event = *found
		s.cache.SetJSON(ctx, key, event, 10*time.Minute)
	}

	if event.FamilyID != familyID {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
	}

	return dto.ToEventResponse(&event), nil
}

// ListOccurrences expands every family event over the window and merges the
// exception overlays into the final ordered occurrence list. The overlay
// fetch is two queries total regardless of event count.
func (s *EventService) ListOccurrences(ctx context.Context, familyID uuid.UUID, from, to time.Time) ([]dto.OccurrenceResponse, *errors.AppError) {
	if from.IsZero() || to.IsZero() {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Date range start and end are required", nil)
	}
	if to.Before(from) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Date range end must not be before start", nil)
	}

	events, err := s.store.Events().ListForWindow(ctx, familyID, from, to)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list events", err)
	}

	// Range ceilings are per recurrence type; reject before any expansion
	for i := range events {
		if appErr := recurrence.ValidateRange(events[i].RecurrenceType, from, to); appErr != nil {
			return nil, appErr
		}
	}

	eventIDs := make([]uuid.UUID, len(events))
	for i := range events {
		eventIDs[i] = events[i].ID
	}

	overlays, err := s.store.Exceptions().LoadOverlays(ctx, eventIDs)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load occurrence exceptions", err)
	}

	var occurrences []entity.Occurrence
	for i := range events {
		candidates, err := recurrence.Expand(&events[i], from, to)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to expand recurrence rule", err)
		}
		occurrences = append(occurrences, resolveOccurrences(&events[i], candidates, overlays)...)
	}

	sort.SliceStable(occurrences, func(i, j int) bool {
		if !occurrences[i].OccurrenceDate.Equal(occurrences[j].OccurrenceDate) {
			return occurrences[i].OccurrenceDate.Before(occurrences[j].OccurrenceDate)
		}
		return occurrences[i].Content.StartTime.Before(occurrences[j].Content.StartTime)
	})

	result := make([]dto.OccurrenceResponse, 0, len(occurrences))
	for _, o := range occurrences {
		result = append(result, dto.ToOccurrenceResponse(o))
	}

	return result, nil
}

// AttachFile uploads an attachment and records its URL on the event.
func (s *EventService) AttachFile(ctx context.Context, familyID, eventID uuid.UUID, filename, contentType string, body io.Reader) (*dto.AttachmentResponse, *errors.AppError) {
	event, err := s.store.Events().GetByID(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get event", err)
	}
	if event == nil || event.FamilyID != familyID {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
	}

	key := fmt.Sprintf("attachments/%s/%s-%s", eventID, utils.GenerateID(), filename)
	url, err := s.uploader.Upload(ctx, key, contentType, body)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to upload attachment", err)
	}

	if err := s.store.Events().SetAttachmentURL(ctx, eventID, url); err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to save attachment URL", err)
	}

	s.cache.Delete(ctx, constants.RedisKeyEvent+eventID.String())

	return &dto.AttachmentResponse{EventID: eventID, AttachmentURL: url}, nil
}

// scheduleReminder enqueues a reminder task for the first upcoming occurrence.
// Best effort: a failed enqueue never fails the mutation that triggered it.
func scheduleReminder(ctx context.Context, t tasks.Client, event *entity.Event) {
	now := time.Now().UTC()
	candidates, err := recurrence.Expand(event, now, now.AddDate(1, 0, 0))
	if err != nil || len(candidates) == 0 {
		return
	}

	first := candidates[0]
	userID := event.FamilyID
	if event.AssignedTo != nil {
		userID = *event.AssignedTo
	} else if event.CreatedBy != nil {
		userID = *event.CreatedBy
	}

	payload := tasks.EventReminderPayload{
		EventID:        event.ID,
		UserID:         userID,
		Title:          event.Title,
		OccurrenceDate: first,
	}
	if err := t.EnqueueEventReminder(ctx, payload, first); err != nil {
		logger.Warn("EventService:scheduleReminder", "event_id", event.ID.String(), "error", err)
	}
}
