package notify

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"wedding-invitation/internal/models"
)

// Queue enqueues notification tasks.
type Queue struct {
	client *asynq.Client
	log    zerolog.Logger
}

// NewQueue connects an asynq client to redisURL.
func NewQueue(redisURL string, log zerolog.Logger) (*Queue, error) {
	opt, err := redisOpt(redisURL)
	if err != nil {
		return nil, err
	}
	return &Queue{
		client: asynq.NewClient(opt),
		log:    log.With().Str("component", "NotifyQueue").Logger(),
	}, nil
}

// Enqueue schedules a notification for s.
func (q *Queue) Enqueue(ctx context.Context, s models.Submission) error {
	task, err := NewTask(s)
	if err != nil {
		return err
	}
	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	q.log.Debug().Str("task_id", info.ID).Str("submission_id", s.ID).Msg("Notification enqueued")
	return nil
}

// Listener adapts Enqueue to the board's submit hook. Failures are logged only.
func (q *Queue) Listener() func(context.Context, models.Submission) {
	return func(ctx context.Context, s models.Submission) {
		if err := q.Enqueue(ctx, s); err != nil {
			q.log.Error().Err(err).Str("submission_id", s.ID).Msg("Error enqueuing notification")
		}
	}
}

// Close releases the redis connection.
func (q *Queue) Close() error {
	return q.client.Close()
}
