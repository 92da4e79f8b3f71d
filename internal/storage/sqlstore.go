package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"wedding-invitation/internal/models"
	"wedding-invitation/internal/storage/migrations"
)

const (
	guestColumns      = `id, slug, name, phone_number, created_at`
	submissionColumns = `id, name, status, message, created_at`
)

// SQLStore persists guests and submissions through sqlx; the same queries
// serve Postgres and SQLite, with placeholders rebound per driver.
type SQLStore struct {
	db     *sqlx.DB
	driver string
}

// OpenSQL connects to driver/dsn, verifies connectivity and applies migrations.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: database dsn is required", ErrInvalidInput)
	}
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if driver == DriverSQLite {
		// SQLite serializes writers; one connection avoids SQLITE_BUSY under load.
		db.SetMaxOpenConns(1)
	}
	if err := applyMigrations(ctx, db, migrations.FS, driver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &SQLStore{db: db, driver: driver}, nil
}

// FindGuestBySlug returns the single guest whose slug equals slug.
func (s *SQLStore) FindGuestBySlug(ctx context.Context, slug string) (models.Guest, error) {
	var rows []models.Guest
	query := s.db.Rebind(`SELECT ` + guestColumns + ` FROM guests WHERE slug = ? LIMIT 2`)
	if err := s.db.SelectContext(ctx, &rows, query, slug); err != nil {
		return models.Guest{}, &LookupError{Slug: slug, Err: err}
	}
	switch len(rows) {
	case 0:
		return models.Guest{}, ErrNotFound
	case 1:
		g, err := decodeGuest(rows[0])
		if err != nil {
			return models.Guest{}, &LookupError{Slug: slug, Err: err}
		}
		return g, nil
	default:
		return models.Guest{}, &LookupError{Slug: slug, Err: ErrAmbiguous}
	}
}

// FindGuestByPhone returns the guest registered with phoneNumber.
func (s *SQLStore) FindGuestByPhone(ctx context.Context, phoneNumber string) (models.Guest, error) {
	if phoneNumber == "" {
		return models.Guest{}, ErrNotFound
	}
	var g models.Guest
	query := s.db.Rebind(`SELECT ` + guestColumns + ` FROM guests WHERE phone_number = ? ORDER BY created_at LIMIT 1`)
	err := s.db.GetContext(ctx, &g, query, phoneNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Guest{}, ErrNotFound
	}
	if err != nil {
		return models.Guest{}, fmt.Errorf("failed to find guest by phone: %w", err)
	}
	return decodeGuest(g)
}

// AddGuest inserts a guest; a duplicate slug yields ErrAlreadyExists.
func (s *SQLStore) AddGuest(ctx context.Context, guest models.Guest) (models.Guest, error) {
	guest, err := prepareGuest(guest)
	if err != nil {
		return models.Guest{}, err
	}
	if guest.ID == "" {
		guest.ID = uuid.NewString()
	}

	query := s.db.Rebind(`INSERT INTO guests (` + guestColumns + `) VALUES (?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query, guest.ID, guest.Slug, guest.Name, guest.PhoneNumber, guest.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return models.Guest{}, ErrAlreadyExists
		}
		return models.Guest{}, fmt.Errorf("failed to add guest: %w", err)
	}
	return guest, nil
}

// ListGuests returns all guests ordered by name.
func (s *SQLStore) ListGuests(ctx context.Context) ([]models.Guest, error) {
	var rows []models.Guest
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+guestColumns+` FROM guests ORDER BY name, slug`); err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}
	for i := range rows {
		rows[i].CreatedAt = rows[i].CreatedAt.UTC()
	}
	return rows, nil
}

// ListSubmissions returns every submission ordered newest first.
func (s *SQLStore) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	var rows []models.Submission
	query := `SELECT ` + submissionColumns + ` FROM submissions ORDER BY created_at DESC, id DESC`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, &LoadError{Err: err}
	}
	out := make([]models.Submission, 0, len(rows))
	for _, row := range rows {
		sub, err := decodeSubmission(row)
		if err != nil {
			return nil, &LoadError{Err: err}
		}
		out = append(out, sub)
	}
	return out, nil
}

// InsertSubmission stores draft and reads the inserted row back.
func (s *SQLStore) InsertSubmission(ctx context.Context, draft models.Draft) (models.Submission, error) {
	draft, err := prepareDraft(draft)
	if err != nil {
		return models.Submission{}, &InsertError{Err: err}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Submission{}, &InsertError{Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	id := uuid.NewString()
	insert := tx.Rebind(`INSERT INTO submissions (` + submissionColumns + `) VALUES (?, ?, ?, ?, ?)`)
	if _, err := tx.ExecContext(ctx, insert, id, draft.Name, string(draft.Status), draft.Message, now()); err != nil {
		return models.Submission{}, &InsertError{Err: err}
	}

	var row models.Submission
	if err := tx.GetContext(ctx, &row, tx.Rebind(`SELECT `+submissionColumns+` FROM submissions WHERE id = ?`), id); err != nil {
		return models.Submission{}, &InsertError{Err: err}
	}
	if err := tx.Commit(); err != nil {
		return models.Submission{}, &InsertError{Err: err}
	}

	sub, err := decodeSubmission(row)
	if err != nil {
		return models.Submission{}, &InsertError{Err: err}
	}
	return sub, nil
}

// Ping checks database connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle.
func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
