package handler

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"wedding-invitation/internal/locale"
	"wedding-invitation/internal/models"
	"wedding-invitation/internal/storage"
)

type sentMessage struct {
	phone, text string
}

type fakeSender struct {
	sent []sentMessage
	err  error
}

func (f *fakeSender) SendText(_ context.Context, phone, text string) error {
	f.sent = append(f.sent, sentMessage{phone: phone, text: text})
	return f.err
}

type fakeGuests map[string]models.Guest

func (f fakeGuests) FindGuestByPhone(_ context.Context, phone string) (models.Guest, error) {
	g, ok := f[phone]
	if !ok {
		return models.Guest{}, storage.ErrNotFound
	}
	return g, nil
}

type fakeBoard struct {
	drafts []models.Draft
	err    error
}

func (f *fakeBoard) Submit(_ context.Context, d models.Draft) (models.Submission, error) {
	if f.err != nil {
		return models.Submission{}, f.err
	}
	f.drafts = append(f.drafts, d)
	return models.Submission{ID: "1", Name: d.Name, Status: d.Status, Message: d.Message}, nil
}

func newHandler(sender *fakeSender, board *fakeBoard) *RSVPHandler {
	guests := fakeGuests{"6281234567890": {Slug: "budi-santoso", Name: "Budi Santoso", PhoneNumber: "6281234567890"}}
	return NewRSVPHandler(sender, guests, board, locale.New("id-ID", time.UTC), Config{
		WeddingDate: time.Date(2025, 12, 28, 9, 0, 0, 0, time.UTC),
		BrideName:   "Ayu",
		GroomName:   "Raka",
		CountryCode: "62",
	}, zerolog.New(io.Discard))
}

func TestClassifyReply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text   string
		want   models.AttendanceStatus
		wantOK bool
	}{
		{"Hadir", models.StatusAttending, true},
		{"InsyaAllah hadir ya!", models.StatusAttending, true},
		{"Tidak hadir, mohon maaf", models.StatusNotAttending, true},
		{"maaf tidak bisa datang", models.StatusNotAttending, true},
		{"Masih ragu", models.StatusUndecided, true},
		{"belum tahu bisa hadir atau tidak", models.StatusUndecided, true},
		{"YES", models.StatusAttending, true},
		{"no, sorry", models.StatusNotAttending, true},
		{"❌", models.StatusNotAttending, true},
		{"✅", models.StatusAttending, true},
		{"nomor rekening berapa?", "", false},
		{"Selamat ya kalian", models.StatusAttending, true},
		{"terima kasih", "", false},
		{"Iya, tidak sabar menunggu hari bahagianya!", models.StatusAttending, true},
		{"Hadir, tanpa ragu", models.StatusAttending, true},
		{"Insyaallah hadir, tidak akan terlewat", models.StatusAttending, true},
		{"tidak ragu untuk datang", models.StatusAttending, true},
		{"masih ragu ragu nih", models.StatusUndecided, true},
		{"maaf, kami tidak datang", models.StatusNotAttending, true},
		{"sorry, not attending", models.StatusNotAttending, true},
	}
	for _, tt := range tests {
		got, ok := ClassifyReply(tt.text)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ClassifyReply(%q) = %q, %v; want %q, %v", tt.text, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestHandleReplyRecordsSubmission(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	board := &fakeBoard{}
	h := newHandler(sender, board)

	if err := h.HandleReply(context.Background(), "0812-3456-7890", "Tidak hadir, doa terbaik untuk kalian"); err != nil {
		t.Fatalf("HandleReply: %v", err)
	}
	if len(board.drafts) != 1 {
		t.Fatalf("drafts = %d, want 1", len(board.drafts))
	}
	d := board.drafts[0]
	if d.Name != "Budi Santoso" || d.Status != models.StatusNotAttending || d.Message != "Tidak hadir, doa terbaik untuk kalian" {
		t.Fatalf("draft = %+v", d)
	}
	if len(sender.sent) != 1 || sender.sent[0].phone != "6281234567890" {
		t.Fatalf("sent = %+v", sender.sent)
	}
	if !strings.Contains(sender.sent[0].text, "Budi Santoso") {
		t.Fatalf("confirmation lacks guest name: %q", sender.sent[0].text)
	}
}

func TestHandleReplyAttendMentionsDate(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	h := newHandler(sender, &fakeBoard{})
	if err := h.HandleReply(context.Background(), "6281234567890", "hadir"); err != nil {
		t.Fatalf("HandleReply: %v", err)
	}
	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0].text, "Minggu, 28 Desember 2025") {
		t.Fatalf("sent = %+v", sender.sent)
	}
}

func TestHandleReplyIgnoresUnknownSenderAndUnclearText(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	board := &fakeBoard{}
	h := newHandler(sender, board)
	ctx := context.Background()

	if err := h.HandleReply(ctx, "6289999999999", "hadir"); err != nil {
		t.Fatalf("unknown sender: %v", err)
	}
	if err := h.HandleReply(ctx, "6281234567890", "terima kasih"); err != nil {
		t.Fatalf("unclear text: %v", err)
	}
	if len(board.drafts) != 0 || len(sender.sent) != 0 {
		t.Fatalf("expected no activity, drafts=%d sent=%d", len(board.drafts), len(sender.sent))
	}
}

func TestHandleReplySubmitFailure(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	board := &fakeBoard{err: &storage.InsertError{Err: errors.New("db down")}}
	h := newHandler(sender, board)

	err := h.HandleReply(context.Background(), "6281234567890", "hadir")
	var insertErr *storage.InsertError
	if !errors.As(err, &insertErr) {
		t.Fatalf("err = %v, want *storage.InsertError", err)
	}
	if len(sender.sent) != 1 || sender.sent[0].text != "Gagal mengirim ucapan. Silakan coba lagi." {
		t.Fatalf("sent = %+v", sender.sent)
	}
}

func TestSendInvitation(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	h := newHandler(sender, &fakeBoard{})
	g := models.Guest{Slug: "budi-santoso", Name: "Budi Santoso", PhoneNumber: "6281234567890"}
	if err := h.SendInvitation(context.Background(), g, "https://example.com/?to=budi-santoso"); err != nil {
		t.Fatalf("SendInvitation: %v", err)
	}
	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0].text, "?to=budi-santoso") {
		t.Fatalf("sent = %+v", sender.sent)
	}

	g.PhoneNumber = ""
	if err := h.SendInvitation(context.Background(), g, ""); !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
