package repository

import (
	"context"
	"database/sql"
	"time"

	"family-calendar-api/core/database"
	"family-calendar-api/core/logger"
	"family-calendar-api/modules/event/entity"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ExceptionRepositoryInterface defines the occurrence-exception store
// contract. The (event_id, occurrence_date) pair carries a unique constraint;
// Create surfaces its violation unchanged so the coordinator can run its
// race-resolution retry.
type ExceptionRepositoryInterface interface {
	Create(ctx context.Context, exception *entity.EventException) (*entity.EventException, error)
	Update(ctx context.Context, exception *entity.EventException) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetBySlot(ctx context.Context, eventID uuid.UUID, date time.Time) (*entity.EventException, error)
	ListByEventID(ctx context.Context, eventID uuid.UUID) ([]entity.EventException, error)
	ListOnOrAfter(ctx context.Context, eventID uuid.UUID, date time.Time) ([]entity.EventException, error)
	Reparent(ctx context.Context, ids []uuid.UUID, newEventID uuid.UUID) error
	LoadOverlays(ctx context.Context, eventIDs []uuid.UUID) (entity.Overlays, error)
}

// ExceptionRepository handles exception database operations (event_exceptions table)
type ExceptionRepository struct {
	db database.Querier
}

func NewExceptionRepository(db database.Querier) *ExceptionRepository {
	return &ExceptionRepository{db: db}
}

const exceptionColumns = `id, event_id, occurrence_date, kind, override_event_id, created_at, updated_at`

func (r *ExceptionRepository) Create(ctx context.Context, exception *entity.EventException) (*entity.EventException, error) {
	query := `
		INSERT INTO event_exceptions (event_id, occurrence_date, kind, override_event_id)
		VALUES ($1, $2::date, $3, $4)
		RETURNING ` + exceptionColumns

	var created entity.EventException
	err := r.db.GetContext(ctx, &created, query,
		exception.EventID, exception.OccurrenceDate.UTC(), exception.Kind, exception.OverrideEventID)

	if err != nil {
		// Unique violations are an expected race outcome, not a defect
		if !database.IsUniqueViolation(err) {
			logger.Error("ExceptionRepository:Create", err)
		}
		return nil, err
	}

	return &created, nil
}

func (r *ExceptionRepository) Update(ctx context.Context, exception *entity.EventException) error {
	query := `
		UPDATE event_exceptions
		SET kind = $2, override_event_id = $3, updated_at = NOW()
		WHERE id = $1
	`

	err := r.db.ExecContext(ctx, query, exception.ID, exception.Kind, exception.OverrideEventID)
	if err != nil {
		logger.Error("ExceptionRepository:Update", err)
		return err
	}

	return nil
}

func (r *ExceptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM event_exceptions WHERE id = $1`
	err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		logger.Error("ExceptionRepository:Delete", err)
		return err
	}
	return nil
}

func (r *ExceptionRepository) GetBySlot(ctx context.Context, eventID uuid.UUID, date time.Time) (*entity.EventException, error) {
	query := `
		SELECT ` + exceptionColumns + `
		FROM event_exceptions
		WHERE event_id = $1 AND occurrence_date = $2::date
	`

	var exception entity.EventException
	err := r.db.GetContext(ctx, &exception, query, eventID, date.UTC())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("ExceptionRepository:GetBySlot", err)
		return nil, err
	}

	return &exception, nil
}

func (r *ExceptionRepository) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]entity.EventException, error) {
	query := `
		SELECT ` + exceptionColumns + `
		FROM event_exceptions
		WHERE event_id = $1
		ORDER BY occurrence_date ASC
	`

	var exceptions []entity.EventException
	err := r.db.SelectContext(ctx, &exceptions, query, eventID)
	if err != nil {
		logger.Error("ExceptionRepository:ListByEventID", err)
		return nil, err
	}

	return exceptions, nil
}

func (r *ExceptionRepository) ListOnOrAfter(ctx context.Context, eventID uuid.UUID, date time.Time) ([]entity.EventException, error) {
	query := `
		SELECT ` + exceptionColumns + `
		FROM event_exceptions
		WHERE event_id = $1 AND occurrence_date >= $2::date
		ORDER BY occurrence_date ASC
	`

	var exceptions []entity.EventException
	err := r.db.SelectContext(ctx, &exceptions, query, eventID, date.UTC())
	if err != nil {
		logger.Error("ExceptionRepository:ListOnOrAfter", err)
		return nil, err
	}

	return exceptions, nil
}

// Reparent moves exceptions to a new series, used when a tail-scoped edit
// splits a series without changing its recurrence shape.
func (r *ExceptionRepository) Reparent(ctx context.Context, ids []uuid.UUID, newEventID uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	query := `UPDATE event_exceptions SET event_id = $2, updated_at = NOW() WHERE id = ANY($1::uuid[])`
	err := r.db.ExecContext(ctx, query, pq.Array(uuidStrings(ids)), newEventID)
	if err != nil {
		logger.Error("ExceptionRepository:Reparent", err)
		return err
	}

	return nil
}

// LoadOverlays batch-fetches the overlay state for a set of events in exactly
// two queries, regardless of how many event ids are supplied: one join for
// modified exceptions with their override content, one for deleted dates.
func (r *ExceptionRepository) LoadOverlays(ctx context.Context, eventIDs []uuid.UUID) (entity.Overlays, error) {
	overlays := entity.NewOverlays()
	if len(eventIDs) == 0 {
		return overlays, nil
	}

	ids := pq.Array(uuidStrings(eventIDs))

	modifiedQuery := `
		SELECT x.event_id AS exception_event_id, x.occurrence_date,
		       e.id, e.family_id, e.created_by, e.assigned_to, e.title, e.description,
		       e.start_time, e.end_time, e.recurrence_type, e.recurrence_end,
		       e.is_task, e.xp_points, e.is_required, e.is_override, e.attachment_url,
		       e.created_at, e.updated_at
		FROM event_exceptions x
		JOIN events e ON e.id = x.override_event_id
		WHERE x.event_id = ANY($1::uuid[]) AND x.kind = 'modified'
	`

	rows, err := r.db.QueryContext(ctx, modifiedQuery, ids)
	if err != nil {
		logger.Error("ExceptionRepository:LoadOverlays:Modified", err)
		return overlays, err
	}
	defer rows.Close()

	for rows.Next() {
		var eventID uuid.UUID
		var date time.Time
		var override entity.Event
		if err := rows.Scan(
			&eventID, &date,
			&override.ID, &override.FamilyID, &override.CreatedBy, &override.AssignedTo,
			&override.Title, &override.Description, &override.StartTime, &override.EndTime,
			&override.RecurrenceType, &override.RecurrenceEnd, &override.IsTask,
			&override.XPPoints, &override.IsRequired, &override.IsOverride,
			&override.AttachmentURL, &override.CreatedAt, &override.UpdatedAt,
		); err != nil {
			logger.Error("ExceptionRepository:LoadOverlays:ModifiedScan", err)
			return overlays, err
		}
		overlays.AddModified(eventID, date, override)
	}
	if err := rows.Err(); err != nil {
		return overlays, err
	}

	deletedQuery := `
		SELECT event_id, occurrence_date
		FROM event_exceptions
		WHERE event_id = ANY($1::uuid[]) AND kind = 'deleted'
	`

	deletedRows, err := r.db.QueryContext(ctx, deletedQuery, ids)
	if err != nil {
		logger.Error("ExceptionRepository:LoadOverlays:Deleted", err)
		return overlays, err
	}
	defer deletedRows.Close()

	for deletedRows.Next() {
		var eventID uuid.UUID
		var date time.Time
		if err := deletedRows.Scan(&eventID, &date); err != nil {
			logger.Error("ExceptionRepository:LoadOverlays:DeletedScan", err)
			return overlays, err
		}
		overlays.AddDeleted(eventID, date)
	}
	if err := deletedRows.Err(); err != nil {
		return overlays, err
	}

	return overlays, nil
}

// Convert []uuid.UUID to []string for the PostgreSQL array binding
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
