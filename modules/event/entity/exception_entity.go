package entity

import (
	"time"

	"family-calendar-api/core/constants"

	"github.com/google/uuid"
)

// ExceptionKind is the kind of per-occurrence overlay.
type ExceptionKind string

const (
	ExceptionModified ExceptionKind = "modified"
	ExceptionDeleted  ExceptionKind = "deleted"
)

// EventException overlays a single occurrence of a series. At most one
// exception exists per (event_id, occurrence_date); the store enforces it with
// a unique constraint. A modified exception exclusively owns its override
// event: the two are always created and deleted together.
type EventException struct {
	ID              uuid.UUID     `db:"id" json:"id"`
	EventID         uuid.UUID     `db:"event_id" json:"event_id"`
	OccurrenceDate  time.Time     `db:"occurrence_date" json:"occurrence_date"`
	Kind            ExceptionKind `db:"kind" json:"kind"`
	OverrideEventID *uuid.UUID    `db:"override_event_id" json:"override_event_id,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// Occurrence is one concrete date-instance generated from a base event. It is
// derived at read time and never persisted. Content is either the base event
// or the override event of a modified exception; OccurrenceDate is always the
// original series date.
type Occurrence struct {
	EventID        uuid.UUID `json:"event_id"`
	OccurrenceDate time.Time `json:"occurrence_date"`
	Content        Event     `json:"content"`
	IsModified     bool      `json:"is_modified"`
}

// DateKey normalizes a timestamp to its UTC calendar date, the key under
// which overlays are matched against candidates.
func DateKey(t time.Time) string {
	return t.UTC().Format(constants.DateLayout)
}

// Overlays is the batch-loaded exception state for a set of events.
type Overlays struct {
	// Modified maps event id -> occurrence date key -> override event content.
	Modified map[uuid.UUID]map[string]Event
	// Deleted maps event id -> set of suppressed occurrence date keys.
	Deleted map[uuid.UUID]map[string]struct{}
}

func NewOverlays() Overlays {
	return Overlays{
		Modified: make(map[uuid.UUID]map[string]Event),
		Deleted:  make(map[uuid.UUID]map[string]struct{}),
	}
}

// OverrideFor returns the override content for a slot, if any.
func (o Overlays) OverrideFor(eventID uuid.UUID, date time.Time) (Event, bool) {
	byDate, ok := o.Modified[eventID]
	if !ok {
		return Event{}, false
	}
	ev, ok := byDate[DateKey(date)]
	return ev, ok
}

// IsDeleted reports whether the slot is suppressed.
func (o Overlays) IsDeleted(eventID uuid.UUID, date time.Time) bool {
	byDate, ok := o.Deleted[eventID]
	if !ok {
		return false
	}
	_, ok = byDate[DateKey(date)]
	return ok
}

// AddModified records an override for a slot.
func (o Overlays) AddModified(eventID uuid.UUID, date time.Time, override Event) {
	if o.Modified[eventID] == nil {
		o.Modified[eventID] = make(map[string]Event)
	}
	o.Modified[eventID][DateKey(date)] = override
}

// AddDeleted records a suppressed slot.
func (o Overlays) AddDeleted(eventID uuid.UUID, date time.Time) {
	if o.Deleted[eventID] == nil {
		o.Deleted[eventID] = make(map[string]struct{})
	}
	o.Deleted[eventID][DateKey(date)] = struct{}{}
}
