package repository

import (
	"context"
	"database/sql"
	"time"

	"family-calendar-api/core/database"
	"family-calendar-api/core/logger"
	"family-calendar-api/modules/event/entity"

	"github.com/google/uuid"
)

// EventRepositoryInterface defines the base-event store contract.
type EventRepositoryInterface interface {
	Create(ctx context.Context, event *entity.Event) (*entity.Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	ListForWindow(ctx context.Context, familyID uuid.UUID, from, to time.Time) ([]entity.Event, error)
	Update(ctx context.Context, event *entity.Event) error
	TruncateRecurrence(ctx context.Context, id uuid.UUID, end time.Time) error
	SetAttachmentURL(ctx context.Context, id uuid.UUID, url string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// EventRepository handles event database operations (events table)
type EventRepository struct {
	db database.Querier
}

func NewEventRepository(db database.Querier) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `
	id, family_id, created_by, assigned_to, title, description, start_time, end_time,
	recurrence_type, recurrence_end, is_task, xp_points, is_required, is_override,
	attachment_url, created_at, updated_at
`

func (r *EventRepository) Create(ctx context.Context, event *entity.Event) (*entity.Event, error) {
	query := `
		INSERT INTO events (family_id, created_by, assigned_to, title, description, start_time, end_time,
		                    recurrence_type, recurrence_end, is_task, xp_points, is_required, is_override, attachment_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + eventColumns

	var created entity.Event
	err := r.db.GetContext(ctx, &created, query,
		event.FamilyID, event.CreatedBy, event.AssignedTo, event.Title, event.Description,
		event.StartTime, event.EndTime, event.RecurrenceType, event.RecurrenceEnd,
		event.IsTask, event.XPPoints, event.IsRequired, event.IsOverride, event.AttachmentURL)

	if err != nil {
		logger.Error("EventRepository:Create", err)
		return nil, err
	}

	return &created, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var event entity.Event
	err := r.db.GetContext(ctx, &event, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("EventRepository:GetByID", err)
		return nil, err
	}

	return &event, nil
}

// ListForWindow returns the family's non-override events whose series could
// intersect the window. Exact occurrence membership is decided by expansion.
func (r *EventRepository) ListForWindow(ctx context.Context, familyID uuid.UUID, from, to time.Time) ([]entity.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE family_id = $1
		  AND is_override = false
		  AND start_time <= $3
		  AND (recurrence_type <> 'none' OR start_time >= $2)
		  AND (recurrence_end IS NULL OR recurrence_end >= $2)
		ORDER BY start_time ASC
	`

	var events []entity.Event
	err := r.db.SelectContext(ctx, &events, query, familyID, from, to)
	if err != nil {
		logger.Error("EventRepository:ListForWindow", err)
		return nil, err
	}

	return events, nil
}

func (r *EventRepository) Update(ctx context.Context, event *entity.Event) error {
	query := `
		UPDATE events
		SET assigned_to = $2, title = $3, description = $4, start_time = $5, end_time = $6,
		    recurrence_type = $7, recurrence_end = $8, is_task = $9, xp_points = $10,
		    is_required = $11, attachment_url = $12, updated_at = NOW()
		WHERE id = $1
	`

	err := r.db.ExecContext(ctx, query,
		event.ID, event.AssignedTo, event.Title, event.Description, event.StartTime, event.EndTime,
		event.RecurrenceType, event.RecurrenceEnd, event.IsTask, event.XPPoints,
		event.IsRequired, event.AttachmentURL)

	if err != nil {
		logger.Error("EventRepository:Update", err)
		return err
	}

	return nil
}

// TruncateRecurrence shortens a series' end bound, used by tail-scoped edits.
func (r *EventRepository) TruncateRecurrence(ctx context.Context, id uuid.UUID, end time.Time) error {
	query := `UPDATE events SET recurrence_end = $2, updated_at = NOW() WHERE id = $1`
	err := r.db.ExecContext(ctx, query, id, end)
	if err != nil {
		logger.Error("EventRepository:TruncateRecurrence", err)
		return err
	}
	return nil
}

func (r *EventRepository) SetAttachmentURL(ctx context.Context, id uuid.UUID, url string) error {
	query := `UPDATE events SET attachment_url = $2, updated_at = NOW() WHERE id = $1`
	err := r.db.ExecContext(ctx, query, id, url)
	if err != nil {
		logger.Error("EventRepository:SetAttachmentURL", err)
		return err
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM events WHERE id = $1`
	err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		logger.Error("EventRepository:Delete", err)
		return err
	}
	return nil
}
