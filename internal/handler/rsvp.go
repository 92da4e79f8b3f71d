package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow/types/events"

	"wedding-invitation/internal/locale"
	"wedding-invitation/internal/models"
	"wedding-invitation/internal/storage"
	"wedding-invitation/internal/whatsapp"
)

// Sender delivers WhatsApp text messages.
type Sender interface {
	SendText(ctx context.Context, phoneNumber, text string) error
}

// GuestFinder looks a registered guest up by phone number.
type GuestFinder interface {
	FindGuestByPhone(ctx context.Context, phoneNumber string) (models.Guest, error)
}

// Submitter records an RSVP on the board.
type Submitter interface {
	Submit(ctx context.Context, draft models.Draft) (models.Submission, error)
}

type Config struct {
	WeddingDate     time.Time
	WeddingLocation string
	BrideName       string
	GroomName       string
	CountryCode     string
	ReplyTimeout    time.Duration
}

type RSVPHandler struct {
	sender    Sender
	guests    GuestFinder
	board     Submitter
	formatter *locale.Formatter
	config    Config
	log       zerolog.Logger
}

// NewRSVPHandler creates a new RSVP handler
func NewRSVPHandler(sender Sender, guests GuestFinder, board Submitter, formatter *locale.Formatter, cfg Config, log zerolog.Logger) *RSVPHandler {
	if cfg.ReplyTimeout <= 0 {
		cfg.ReplyTimeout = 30 * time.Second
	}
	return &RSVPHandler{
		sender:    sender,
		guests:    guests,
		board:     board,
		formatter: formatter,
		config:    cfg,
		log:       log.With().Str("component", "RSVPHandler").Logger(),
	}
}

// HandleMessage processes incoming WhatsApp messages for RSVP responses
func (h *RSVPHandler) HandleMessage(msg *events.Message) error {
	text := whatsapp.MessageText(msg)
	if text == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), h.config.ReplyTimeout)
	defer cancel()
	return h.HandleReply(ctx, whatsapp.SenderPhone(msg), text)
}

// HandleReply turns a reply from an invited guest into a submission and
// confirms it back. Replies from unknown numbers or without a clear answer
// are ignored.
func (h *RSVPHandler) HandleReply(ctx context.Context, phoneNumber, text string) error {
	phoneNumber = whatsapp.NormalizePhoneNumber(phoneNumber, h.config.CountryCode)

	// Only process RSVP if guest was previously invited
	guest, err := h.guests.FindGuestByPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up guest: %w", err)
	}

	status, ok := ClassifyReply(text)
	if !ok {
		h.log.Debug().Str("phone", phoneNumber).Msg("Reply is not an RSVP answer")
		return nil
	}

	submission, err := h.board.Submit(ctx, models.Draft{
		Name:    guest.Name,
		Status:  status,
		Message: text,
	})
	if err != nil {
		if sendErr := h.sender.SendText(ctx, phoneNumber, h.formatter.Notice(locale.NoticeSubmitFailed)); sendErr != nil {
			h.log.Error().Err(sendErr).Str("phone", phoneNumber).Msg("Error sending failure notice")
		}
		return fmt.Errorf("failed to record RSVP: %w", err)
	}

	if err := h.sender.SendText(ctx, phoneNumber, h.confirmation(submission)); err != nil {
		return fmt.Errorf("failed to send confirmation: %w", err)
	}
	return nil
}

func (h *RSVPHandler) confirmation(s models.Submission) string {
	switch s.Status {
	case models.StatusNotAttending:
		return h.formatter.Notice(locale.NoticeReplyDecline, s.Name)
	case models.StatusUndecided:
		return h.formatter.Notice(locale.NoticeReplyUnsure, s.Name)
	default:
		return h.formatter.Notice(locale.NoticeReplyAttend, s.Name, h.formatter.LongDate(h.config.WeddingDate))
	}
}

// SendInvitation sends a wedding invitation to a registered guest
func (h *RSVPHandler) SendInvitation(ctx context.Context, guest models.Guest, link string) error {
	if guest.PhoneNumber == "" {
		return fmt.Errorf("%w: guest %q has no phone number", storage.ErrInvalidInput, guest.Slug)
	}
	inv := whatsapp.Invitation{
		GuestName: guest.Name,
		BrideName: h.config.BrideName,
		GroomName: h.config.GroomName,
		Date:      h.formatter.LongDate(h.config.WeddingDate),
		Location:  h.config.WeddingLocation,
		Link:      link,
	}
	if err := h.sender.SendText(ctx, guest.PhoneNumber, whatsapp.InvitationMessage(inv)); err != nil {
		return fmt.Errorf("failed to send invitation: %w", err)
	}
	return nil
}

var (
	undecidedPhrases = []string{"masih ragu", "ragu ragu", "belum tahu", "belum tau", "belum pasti", "belum yakin", "mungkin", "maybe", "not sure"}
	decliningPhrases = []string{"tidak hadir", "tidak bisa", "tidak dapat", "tidak datang", "tidak ikut", "gak bisa", "ga bisa", "nggak bisa", "gak hadir", "nggak hadir", "berhalangan", "no", "nope", "decline", "can't come", "cannot come", "not coming", "not attending"}
	attendingPhrases = []string{"hadir", "insyaallah hadir", "datang", "bisa", "iya", "ya", "yes", "yep", "accept", "attending", "coming"}

	// negators cancel a phrase they directly precede, so "tanpa ragu" is not doubt.
	negators = map[string]struct{}{"tidak": {}, "tak": {}, "tanpa": {}, "bukan": {}, "gak": {}, "ga": {}, "nggak": {}, "enggak": {}, "not": {}}
)

// ClassifyReply maps a free-text reply to an attendance status. Doubt and
// refusal are checked before acceptance so "tidak hadir" never reads as "hadir".
// Refusal needs a negated phrase; a lone "tidak" as in "tidak sabar" is not one.
func ClassifyReply(text string) (models.AttendanceStatus, bool) {
	switch {
	case strings.Contains(text, "❌"):
		return models.StatusNotAttending, true
	case strings.Contains(text, "✅"):
		return models.StatusAttending, true
	}

	words := " " + normalizeWords(text) + " "
	switch {
	case containsAny(words, undecidedPhrases...):
		return models.StatusUndecided, true
	case containsAny(words, decliningPhrases...):
		return models.StatusNotAttending, true
	case containsAny(words, attendingPhrases...):
		return models.StatusAttending, true
	}
	return "", false
}

// normalizeWords lowercases text and collapses everything that is not a
// letter, digit or apostrophe into single spaces.
func normalizeWords(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)
	return strings.Join(strings.Fields(cleaned), " ")
}

// containsAny checks if the padded text contains any of the given phrases as
// whole words, skipping occurrences right after a negator.
func containsAny(text string, phrases ...string) bool {
	for _, phrase := range phrases {
		rest := text
		for {
			i := strings.Index(rest, " "+phrase+" ")
			if i < 0 {
				break
			}
			if !negated(rest[:i]) {
				return true
			}
			rest = rest[i+1+len(phrase):]
		}
	}
	return false
}

func negated(before string) bool {
	fields := strings.Fields(before)
	if len(fields) == 0 {
		return false
	}
	_, ok := negators[fields[len(fields)-1]]
	return ok
}
