package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"wedding-invitation/internal/locale"
)

// Sender delivers WhatsApp text messages.
type Sender interface {
	SendText(ctx context.Context, phoneNumber, text string) error
}

// Worker consumes notification tasks and messages every recipient.
type Worker struct {
	server     *asynq.Server
	sender     Sender
	recipients []string
	formatter  *locale.Formatter
	log        zerolog.Logger
}

// NewWorker creates an asynq server on redisURL. Call Start to begin processing.
func NewWorker(redisURL string, sender Sender, recipients []string, formatter *locale.Formatter, log zerolog.Logger) (*Worker, error) {
	opt, err := redisOpt(redisURL)
	if err != nil {
		return nil, err
	}
	log = log.With().Str("component", "NotifyWorker").Logger()
	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 2,
		Queues:      map[string]int{queueName: 1},
		Logger:      asynqLogger{log: log},
	})
	return &Worker{
		server:     server,
		sender:     sender,
		recipients: recipients,
		formatter:  formatter,
		log:        log,
	}, nil
}

// HandleNotify sends the summary of one submission to each recipient.
// A payload that does not decode is dropped without retry.
func (w *Worker) HandleNotify(ctx context.Context, t *asynq.Task) error {
	var p Payload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to decode notification: %v: %w", err, asynq.SkipRetry)
	}

	text := Summary(p.Submission, w.formatter.DateTime(p.Submission.CreatedAt))
	var errs []error
	for _, phone := range w.recipients {
		if err := w.sender.SendText(ctx, phone, text); err != nil {
			errs = append(errs, fmt.Errorf("notify %s: %w", phone, err))
			continue
		}
		w.log.Info().Str("submission_id", p.Submission.ID).Str("phone", phone).Msg("Couple notified")
	}
	return errors.Join(errs...)
}

// Start begins processing in the background.
func (w *Worker) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeRSVPNotify, w.HandleNotify)
	if err := w.server.Start(mux); err != nil {
		return fmt.Errorf("failed to start notification worker: %w", err)
	}
	return nil
}

// Shutdown waits for in-flight tasks and stops the server.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}
