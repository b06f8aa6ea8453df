package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	coreEntity "family-calendar-api/core/entity"
	"family-calendar-api/core/logger"
	"family-calendar-api/core/params"
	"family-calendar-api/core/tasks"
	"family-calendar-api/modules/notification/dto"
	"family-calendar-api/modules/notification/entity"
	"family-calendar-api/modules/notification/repository"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type NotificationService struct {
	repo repository.NotificationRepositoryInterface
}

func NewNotificationService(repo repository.NotificationRepositoryInterface) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) Create(ctx context.Context, req *dto.CreateNotificationRequest) error {
	notif := &entity.Notification{
		UserID:  req.UserID,
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
		Data:    entity.JSONB(req.Data),
		IsRead:  false,
		BaseEntity: coreEntity.BaseEntity{
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
	}
	return s.repo.Create(ctx, notif)
}

func (s *NotificationService) GetMyNotifications(ctx context.Context, userID uuid.UUID, queryParams params.QueryParams) (*entity.PaginatedNotificationEntity, error) {
	return s.repo.GetByUserID(ctx, userID, queryParams)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []string) error {
	return s.repo.MarkAsRead(ctx, userID, ids)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

// HandleEventReminder consumes a scheduled reminder task and materializes it
// as an in-app notification.
func (s *NotificationService) HandleEventReminder(ctx context.Context, task *asynq.Task) error {
	var payload tasks.EventReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("NotificationService:HandleEventReminder:Unmarshal", err)
		return fmt.Errorf("unmarshal reminder payload: %w", err)
	}

	return s.Create(ctx, &dto.CreateNotificationRequest{
		UserID:  payload.UserID,
		Title:   "Upcoming event",
		Message: fmt.Sprintf("%s starts on %s", payload.Title, payload.OccurrenceDate.Format("Jan 2, 2006 15:04")),
		Type:    entity.TypeEventReminder,
		Data: map[string]interface{}{
			"event_id":        payload.EventID.String(),
			"occurrence_date": payload.OccurrenceDate,
		},
	})
}
