// Package notify tells the couple about new RSVPs through a background queue.
package notify

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"wedding-invitation/internal/models"
)

// TypeRSVPNotify is the asynq task type for a new submission.
const TypeRSVPNotify = "rsvp:notify"

const (
	queueName  = "notifications"
	maxRetries = 5
	taskTTL    = 24 * time.Hour
)

// Payload is the task body of TypeRSVPNotify.
type Payload struct {
	Submission models.Submission `json:"submission"`
}

// NewTask builds the notification task for s.
func NewTask(s models.Submission) (*asynq.Task, error) {
	body, err := json.Marshal(Payload{Submission: s})
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification: %w", err)
	}
	return asynq.NewTask(TypeRSVPNotify, body,
		asynq.Queue(queueName),
		asynq.MaxRetry(maxRetries),
		asynq.Retention(taskTTL),
	), nil
}

// Summary is the WhatsApp text the couple receives for s.
func Summary(s models.Submission, date string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📝 *Konfirmasi baru*\n\n")
	fmt.Fprintf(&b, "Nama: %s\n", s.Name)
	fmt.Fprintf(&b, "Kehadiran: %s\n", s.Status)
	if date != "" {
		fmt.Fprintf(&b, "Waktu: %s\n", date)
	}
	fmt.Fprintf(&b, "\n%s", s.Message)
	return b.String()
}

// asynqLogger routes asynq's own logging into zerolog.
type asynqLogger struct {
	log zerolog.Logger
}

func (l asynqLogger) Debug(args ...interface{}) { l.log.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...interface{})  { l.log.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...interface{})  { l.log.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...interface{}) { l.log.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...interface{}) { l.log.Fatal().Msg(fmt.Sprint(args...)) }

// redisOpt parses a redis:// URL into asynq connection options.
func redisOpt(rawURL string) (asynq.RedisConnOpt, error) {
	opt, err := asynq.ParseRedisURI(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}
	return opt, nil
}

