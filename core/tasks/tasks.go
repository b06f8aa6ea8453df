package tasks

import (
	"context"
	"encoding/json"
	"time"

	"family-calendar-api/core/constants"
	"family-calendar-api/core/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// EventReminderPayload is carried by an event:reminder task. The task is
// scheduled for the first upcoming occurrence of a series.
type EventReminderPayload struct {
	EventID        uuid.UUID `json:"event_id"`
	UserID         uuid.UUID `json:"user_id"`
	Title          string    `json:"title"`
	OccurrenceDate time.Time `json:"occurrence_date"`
}

// Client enqueues background tasks.
type Client interface {
	EnqueueEventReminder(ctx context.Context, payload EventReminderPayload, at time.Time) error
	Close() error
}

type asynqClient struct {
	client *asynq.Client
}

func NewClient(redisAddr, redisPassword string) Client {
	return &asynqClient{
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr, Password: redisPassword}),
	}
}

func (c *asynqClient) EnqueueEventReminder(ctx context.Context, payload EventReminderPayload, at time.Time) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(constants.TaskTypeEventReminder, data)
	info, err := c.client.EnqueueContext(ctx, task, asynq.ProcessAt(at), asynq.MaxRetry(3))
	if err != nil {
		return err
	}

	logger.Info("Tasks:EnqueueEventReminder",
		"task_id", info.ID,
		"event_id", payload.EventID.String(),
		"process_at", at.Format(time.RFC3339),
	)
	return nil
}

func (c *asynqClient) Close() error {
	return c.client.Close()
}

// NewServer builds the asynq worker server. Handlers are registered on the
// returned mux by the modules that own them.
func NewServer(redisAddr, redisPassword string, concurrency int) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr, Password: redisPassword},
		asynq.Config{Concurrency: concurrency},
	)
	return srv, asynq.NewServeMux()
}

// noopClient is used when the worker is disabled and in tests.
type noopClient struct{}

func NewNoop() Client {
	return &noopClient{}
}

func (noopClient) EnqueueEventReminder(context.Context, EventReminderPayload, time.Time) error {
	return nil
}

func (noopClient) Close() error { return nil }
