package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
)

var (
	// ErrNotOnWhatsApp is returned when the recipient has no WhatsApp account.
	ErrNotOnWhatsApp = errors.New("number is not registered on WhatsApp")
	// ErrDisconnected is returned by Ping while the session is down.
	ErrDisconnected = errors.New("not connected to WhatsApp")
)

// MessageHandler is a callback function for handling messages
type MessageHandler func(*events.Message) error

type Config struct {
	DataDir     string
	CountryCode string
	// QROut receives the pairing QR code. Defaults to stdout.
	QROut io.Writer
}

type Service struct {
	client         *whatsmeow.Client
	cfg            Config
	log            zerolog.Logger
	messageHandler MessageHandler
}

// NewService opens the device store and prepares a client. It does not connect.
func NewService(ctx context.Context, cfg Config, log zerolog.Logger) (*Service, error) {
	if cfg.QROut == nil {
		cfg.QROut = os.Stdout
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", filepath.Join(cfg.DataDir, "whatsmeow.db"))
	// Use nil logger - sqlstore will use a no-op logger by default
	container, err := sqlstore.New(ctx, "sqlite3", dsn, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	service := &Service{
		client: whatsmeow.NewClient(deviceStore, nil),
		cfg:    cfg,
		log:    log.With().Str("component", "WhatsApp").Logger(),
	}
	service.client.AddEventHandler(service.eventHandler)
	return service, nil
}

// Connect connects to WhatsApp. An unpaired device prints a QR code and
// blocks until pairing finishes or ctx is done.
func (s *Service) Connect(ctx context.Context) error {
	if s.client.Store.ID != nil {
		if err := s.client.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		return nil
	}

	qrChan, err := s.client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to get QR channel: %w", err)
	}
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	for evt := range qrChan {
		if evt.Event != "code" {
			s.log.Info().Str("event", evt.Event).Msg("Login event")
			continue
		}
		s.printQR(evt.Code)
	}
	return nil
}

func (s *Service) printQR(code string) {
	q, err := qrcode.New(code, qrcode.Medium)
	if err != nil {
		fmt.Fprintf(s.cfg.QROut, "QR Code: %s\n", code)
		return
	}
	fmt.Fprintln(s.cfg.QROut, "\n"+q.ToSmallString(false))
	fmt.Fprintln(s.cfg.QROut, "📱 Scan the QR code above with WhatsApp:")
	fmt.Fprintln(s.cfg.QROut, "   Settings > Linked Devices > Link a Device")
}

// Disconnect disconnects from WhatsApp
func (s *Service) Disconnect() {
	s.client.Disconnect()
}

// IsConnected reports whether the websocket to WhatsApp is up.
func (s *Service) IsConnected() bool {
	return s.client.IsConnected()
}

// Ping reports ErrDisconnected while the websocket to WhatsApp is down.
func (s *Service) Ping(context.Context) error {
	if !s.IsConnected() {
		return ErrDisconnected
	}
	return nil
}

// SendText sends a plain text message to phoneNumber.
func (s *Service) SendText(ctx context.Context, phoneNumber, text string) error {
	jid, err := s.resolveJID(ctx, phoneNumber)
	if err != nil {
		return err
	}

	s.log.Debug().Str("jid", jid.String()).Msg("Attempting to send message")
	sent, err := s.client.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: &text,
	})
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", jid.String(), err)
	}
	s.log.Info().Str("jid", jid.String()).Str("message_id", sent.ID).Msg("Message sent")
	return nil
}

// resolveJID verifies the number is on WhatsApp and returns the JID WhatsApp reports for it.
func (s *Service) resolveJID(ctx context.Context, phoneNumber string) (types.JID, error) {
	phoneNumber = NormalizePhoneNumber(phoneNumber, s.cfg.CountryCode)
	if phoneNumber == "" {
		return types.JID{}, fmt.Errorf("%w: empty phone number", ErrNotOnWhatsApp)
	}

	resp, err := s.client.IsOnWhatsApp(ctx, []string{"+" + phoneNumber})
	if err != nil {
		return types.JID{}, fmt.Errorf("failed to verify number on WhatsApp: %w", err)
	}
	if len(resp) == 0 || !resp[0].IsIn {
		return types.JID{}, fmt.Errorf("%w: %s", ErrNotOnWhatsApp, phoneNumber)
	}
	return resp[0].JID, nil
}

// eventHandler handles incoming WhatsApp events
func (s *Service) eventHandler(evt interface{}) {
	switch evt := evt.(type) {
	case *events.Message:
		s.handleMessage(evt)
	case *events.Connected:
		s.log.Info().Msg("Connected to WhatsApp")
	case *events.Disconnected:
		s.log.Info().Msg("Disconnected from WhatsApp")
	case *events.LoggedOut:
		s.log.Warn().Msg("Logged out from WhatsApp")
	}
}

// handleMessage processes incoming messages
func (s *Service) handleMessage(msg *events.Message) {
	// Skip messages from self
	if msg.Info.IsFromMe {
		return
	}

	if s.messageHandler == nil {
		s.log.Info().
			Str("sender", msg.Info.Sender.String()).
			Str("message", MessageText(msg)).
			Msg("Received message")
		return
	}
	if err := s.messageHandler(msg); err != nil {
		s.log.Error().Err(err).Msg("Error handling message")
	}
}

// SetMessageHandler sets a custom handler for incoming messages
func (s *Service) SetMessageHandler(handler MessageHandler) {
	s.messageHandler = handler
}

// MessageText returns the text of a plain or extended text message.
func MessageText(msg *events.Message) string {
	if msg == nil || msg.Message == nil {
		return ""
	}
	if text := msg.Message.GetConversation(); text != "" {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(msg.Message.GetExtendedTextMessage().GetText())
}

// SenderPhone returns the sender's number without the server part.
func SenderPhone(msg *events.Message) string {
	if msg == nil {
		return ""
	}
	return msg.Info.Sender.User
}
