package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"wedding-invitation/internal/locale"
	"wedding-invitation/internal/models"
)

type fakeSender struct {
	sent  map[string]string
	errOn string
}

func (f *fakeSender) SendText(_ context.Context, phone, text string) error {
	if phone == f.errOn {
		return errors.New("send failed")
	}
	f.sent[phone] = text
	return nil
}

func sample() models.Submission {
	return models.Submission{
		ID:        "abc",
		Name:      "Budi Santoso",
		Status:    models.StatusUndecided,
		Message:   "Semoga lancar",
		CreatedAt: time.Date(2025, 12, 1, 2, 0, 0, 0, time.UTC),
	}
}

func newTestWorker(sender Sender, recipients ...string) *Worker {
	return &Worker{
		sender:     sender,
		recipients: recipients,
		formatter:  locale.New("id-ID", time.FixedZone("WIB", 7*60*60)),
		log:        zerolog.New(io.Discard),
	}
}

func TestNewTaskPayload(t *testing.T) {
	t.Parallel()

	task, err := NewTask(sample())
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}
	if task.Type() != TypeRSVPNotify {
		t.Fatalf("type = %q", task.Type())
	}
	var p Payload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Submission.ID != "abc" || p.Submission.Status != models.StatusUndecided {
		t.Fatalf("payload = %+v", p)
	}
}

func TestSummary(t *testing.T) {
	t.Parallel()

	got := Summary(sample(), "1 Desember 2025 pukul 09.00")
	for _, want := range []string{"Budi Santoso", "Masih Ragu", "1 Desember 2025 pukul 09.00", "Semoga lancar"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestHandleNotifySendsToEveryRecipient(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{sent: map[string]string{}}
	w := newTestWorker(sender, "6281111", "6282222")
	task, err := NewTask(sample())
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}
	if err := w.HandleNotify(context.Background(), task); err != nil {
		t.Fatalf("HandleNotify: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("sent = %v", sender.sent)
	}
	if !strings.Contains(sender.sent["6281111"], "1 Desember 2025 pukul 09.00") {
		t.Fatalf("summary not localized: %q", sender.sent["6281111"])
	}
}

func TestHandleNotifyReportsPartialFailure(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{sent: map[string]string{}, errOn: "6282222"}
	w := newTestWorker(sender, "6281111", "6282222")
	task, _ := NewTask(sample())
	if err := w.HandleNotify(context.Background(), task); err == nil {
		t.Fatal("expected error for failed recipient")
	}
	if _, ok := sender.sent["6281111"]; !ok {
		t.Fatal("first recipient should still be notified")
	}
}

func TestHandleNotifyBadPayloadSkipsRetry(t *testing.T) {
	t.Parallel()

	w := newTestWorker(&fakeSender{sent: map[string]string{}}, "6281111")
	err := w.HandleNotify(context.Background(), asynq.NewTask(TypeRSVPNotify, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("err = %v, want SkipRetry", err)
	}
}

func TestNewQueueRejectsBadURL(t *testing.T) {
	t.Parallel()

	if _, err := NewQueue("http://nope", zerolog.New(io.Discard)); err == nil {
		t.Fatal("expected error for non-redis URL")
	}
}
