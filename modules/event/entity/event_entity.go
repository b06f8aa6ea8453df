package entity

import (
	"time"

	"github.com/google/uuid"
)

// RecurrenceType describes how an event repeats.
type RecurrenceType string

const (
	RecurrenceNone    RecurrenceType = "none"
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceYearly  RecurrenceType = "yearly"
)

func (t RecurrenceType) Valid() bool {
	switch t {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// IsRecurring reports whether the event represents a series rather than a
// single occurrence.
func (t RecurrenceType) IsRecurring() bool {
	return t.Valid() && t != RecurrenceNone
}

// EditScope is the breadth of a scoped mutation: one occurrence, the tail of
// the series from that occurrence on, or the whole series.
type EditScope string

const (
	ScopeThis             EditScope = "this"
	ScopeThisAndFollowing EditScope = "this_and_following"
	ScopeAll              EditScope = "all"
)

func (s EditScope) Valid() bool {
	switch s {
	case ScopeThis, ScopeThisAndFollowing, ScopeAll:
		return true
	}
	return false
}

// Event is a base event: the stored definition of a recurring or single
// calendar event. Events created solely to hold the edited content of a
// modified occurrence have IsOverride set and never show up in listings on
// their own.
type Event struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	FamilyID       uuid.UUID      `db:"family_id" json:"family_id"`
	CreatedBy      *uuid.UUID     `db:"created_by" json:"created_by,omitempty"`
	AssignedTo     *uuid.UUID     `db:"assigned_to" json:"assigned_to,omitempty"`
	Title          string         `db:"title" json:"title"`
	Description    *string        `db:"description" json:"description,omitempty"`
	StartTime      time.Time      `db:"start_time" json:"start_time"`
	EndTime        *time.Time     `db:"end_time" json:"end_time,omitempty"`
	RecurrenceType RecurrenceType `db:"recurrence_type" json:"recurrence_type"`
	RecurrenceEnd  *time.Time     `db:"recurrence_end" json:"recurrence_end,omitempty"`
	IsTask         bool           `db:"is_task" json:"is_task"`
	XPPoints       int            `db:"xp_points" json:"xp_points"`
	IsRequired     bool           `db:"is_required" json:"is_required"`
	IsOverride     bool           `db:"is_override" json:"is_override"`
	AttachmentURL  *string        `db:"attachment_url" json:"attachment_url,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// Duration returns the event length, zero when no end time is set.
func (e *Event) Duration() time.Duration {
	if e.EndTime == nil {
		return 0
	}
	return e.EndTime.Sub(e.StartTime)
}
