package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wedding-invitation/internal/models"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
	DriverFile     = "file"
)

// RecordStore is the persistence boundary for guests and RSVP submissions.
type RecordStore interface {
	FindGuestBySlug(ctx context.Context, slug string) (models.Guest, error)
	FindGuestByPhone(ctx context.Context, phoneNumber string) (models.Guest, error)
	AddGuest(ctx context.Context, guest models.Guest) (models.Guest, error)
	ListGuests(ctx context.Context) ([]models.Guest, error)

	ListSubmissions(ctx context.Context) ([]models.Submission, error)
	InsertSubmission(ctx context.Context, draft models.Draft) (models.Submission, error)

	Ping(ctx context.Context) error
	Close() error
}

// Config selects and locates the backing store.
type Config struct {
	Driver  string
	DSN     string
	DataDir string
}

// Open opens the store selected by cfg.Driver.
func Open(ctx context.Context, cfg Config) (RecordStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverPostgres:
		return OpenSQL(ctx, DriverPostgres, cfg.DSN)
	case DriverSQLite, "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			if cfg.DataDir != "" {
				if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
					return nil, fmt.Errorf("failed to create data directory: %w", err)
				}
			}
			dsn = fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", filepath.Join(cfg.DataDir, "invitation.db"))
		}
		return OpenSQL(ctx, DriverSQLite, dsn)
	case DriverFile, "":
		return NewFileStore(filepath.Join(cfg.DataDir, "records.json"))
	default:
		return nil, fmt.Errorf("%w: unsupported database driver %q", ErrInvalidInput, cfg.Driver)
	}
}

// decodeSubmission validates a row read from the store.
func decodeSubmission(s models.Submission) (models.Submission, error) {
	if strings.TrimSpace(s.ID) == "" {
		return models.Submission{}, fmt.Errorf("%w: submission without id", ErrMalformedRecord)
	}
	if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.Message) == "" {
		return models.Submission{}, fmt.Errorf("%w: submission %s has empty name or message", ErrMalformedRecord, s.ID)
	}
	if !s.Status.Valid() {
		return models.Submission{}, fmt.Errorf("%w: submission %s has status %q", ErrMalformedRecord, s.ID, s.Status)
	}
	if s.CreatedAt.IsZero() {
		return models.Submission{}, fmt.Errorf("%w: submission %s has no created_at", ErrMalformedRecord, s.ID)
	}
	s.CreatedAt = s.CreatedAt.UTC()
	return s, nil
}

// decodeGuest validates a guest row.
func decodeGuest(g models.Guest) (models.Guest, error) {
	if strings.TrimSpace(g.Name) == "" {
		return models.Guest{}, fmt.Errorf("%w: guest %q has no name", ErrMalformedRecord, g.Slug)
	}
	g.CreatedAt = g.CreatedAt.UTC()
	return g, nil
}

// prepareDraft applies the submission invariants before a write.
func prepareDraft(draft models.Draft) (models.Draft, error) {
	draft = draft.Normalize()
	if !draft.Complete() {
		return models.Draft{}, fmt.Errorf("%w: name and message are required", ErrInvalidInput)
	}
	if !draft.Status.Valid() {
		return models.Draft{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, draft.Status)
	}
	return draft, nil
}

// prepareGuest applies the guest invariants before a write.
func prepareGuest(guest models.Guest) (models.Guest, error) {
	guest.Slug = strings.TrimSpace(guest.Slug)
	guest.Name = strings.TrimSpace(guest.Name)
	guest.PhoneNumber = strings.TrimSpace(guest.PhoneNumber)
	if guest.Slug == "" || guest.Name == "" {
		return models.Guest{}, fmt.Errorf("%w: guest slug and name are required", ErrInvalidInput)
	}
	if guest.CreatedAt.IsZero() {
		guest.CreatedAt = now()
	}
	return guest, nil
}

// now returns the store clock truncated to the precision Postgres keeps.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
