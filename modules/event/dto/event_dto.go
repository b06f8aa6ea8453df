package dto

import (
	"time"

	"family-calendar-api/modules/event/entity"

	"github.com/google/uuid"
)

// EventContent carries the editable content fields of an event. Nil pointer
// fields are left unchanged by updates.
type EventContent struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`
	IsTask      *bool      `json:"is_task,omitempty"`
	XPPoints    *int       `json:"xp_points,omitempty"`
	IsRequired  *bool      `json:"is_required,omitempty"`
}

type CreateEventRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        *time.Time `json:"end_time"`
	RecurrenceType string     `json:"recurrence_type"`
	RecurrenceEnd  *time.Time `json:"recurrence_end"`
	AssignedTo     *uuid.UUID `json:"assigned_to"`
	IsTask         bool       `json:"is_task"`
	XPPoints       int        `json:"xp_points"`
	IsRequired     bool       `json:"is_required"`
}

type UpdateOccurrenceRequest struct {
	OccurrenceDate time.Time    `json:"occurrence_date"`
	Scope          string       `json:"scope"`
	RecurrenceType *string      `json:"recurrence_type"`
	RecurrenceEnd  *time.Time   `json:"recurrence_end"`
	Content        EventContent `json:"content"`
}

type EventResponse struct {
	ID             uuid.UUID  `json:"id"`
	FamilyID       uuid.UUID  `json:"family_id"`
	AssignedTo     *uuid.UUID `json:"assigned_to,omitempty"`
	Title          string     `json:"title"`
	Description    *string    `json:"description,omitempty"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	RecurrenceType string     `json:"recurrence_type"`
	RecurrenceEnd  *time.Time `json:"recurrence_end,omitempty"`
	IsTask         bool       `json:"is_task"`
	XPPoints       int        `json:"xp_points"`
	IsRequired     bool       `json:"is_required"`
	AttachmentURL  *string    `json:"attachment_url,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type OccurrenceResponse struct {
	EventID        uuid.UUID  `json:"event_id"`
	OccurrenceDate time.Time  `json:"occurrence_date"`
	Title          string     `json:"title"`
	Description    *string    `json:"description,omitempty"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	AssignedTo     *uuid.UUID `json:"assigned_to,omitempty"`
	IsTask         bool       `json:"is_task"`
	XPPoints       int        `json:"xp_points"`
	IsRequired     bool       `json:"is_required"`
	IsModified     bool       `json:"is_modified"`
	AttachmentURL  *string    `json:"attachment_url,omitempty"`
}

// MutationResponse identifies the series affected by a scoped mutation.
// NewEventID is set when a tail-scoped edit split the series.
type MutationResponse struct {
	EventID    uuid.UUID  `json:"event_id"`
	NewEventID *uuid.UUID `json:"new_event_id,omitempty"`
}

type AttachmentResponse struct {
	EventID       uuid.UUID `json:"event_id"`
	AttachmentURL string    `json:"attachment_url"`
}

func ToEventResponse(e *entity.Event) *EventResponse {
	return &EventResponse{
		ID:             e.ID,
		FamilyID:       e.FamilyID,
		AssignedTo:     e.AssignedTo,
		Title:          e.Title,
		Description:    e.Description,
		StartTime:      e.StartTime,
		EndTime:        e.EndTime,
		RecurrenceType: string(e.RecurrenceType),
		RecurrenceEnd:  e.RecurrenceEnd,
		IsTask:         e.IsTask,
		XPPoints:       e.XPPoints,
		IsRequired:     e.IsRequired,
		AttachmentURL:  e.AttachmentURL,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func ToOccurrenceResponse(o entity.Occurrence) OccurrenceResponse {
	return OccurrenceResponse{
		EventID:        o.EventID,
		OccurrenceDate: o.OccurrenceDate,
		Title:          o.Content.Title,
		Description:    o.Content.Description,
		StartTime:      o.Content.StartTime,
		EndTime:        o.Content.EndTime,
		AssignedTo:     o.Content.AssignedTo,
		IsTask:         o.Content.IsTask,
		XPPoints:       o.Content.XPPoints,
		IsRequired:     o.Content.IsRequired,
		IsModified:     o.IsModified,
		AttachmentURL:  o.Content.AttachmentURL,
	}
}
