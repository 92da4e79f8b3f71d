package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"wedding-invitation/internal/models"
)

// fileData is the on-disk layout of a FileStore.
type fileData struct {
	Guests      []models.Guest      `json:"guests"`
	Submissions []models.Submission `json:"submissions"`
}

// FileStore keeps guests and submissions in a single JSON file.
type FileStore struct {
	mu   sync.RWMutex
	data fileData
	file string
}

// NewFileStore creates a new file-backed store
func NewFileStore(filePath string) (*FileStore, error) {
	s := &FileStore{
		data: fileData{
			Guests:      make([]models.Guest, 0),
			Submissions: make([]models.Submission, 0),
		},
		file: filePath,
	}

	// Load existing data if file exists
	if _, err := os.Stat(filePath); err == nil {
		if err := s.Load(); err != nil {
			return nil, fmt.Errorf("failed to load storage: %w", err)
		}
	}

	return s, nil
}

// FindGuestBySlug retrieves the single guest whose slug matches
func (s *FileStore) FindGuestBySlug(ctx context.Context, slug string) (models.Guest, error) {
	if err := ctx.Err(); err != nil {
		return models.Guest{}, &LookupError{Slug: slug, Err: err}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found []models.Guest
	for _, g := range s.data.Guests {
		if g.Slug == slug {
			found = append(found, g)
		}
	}
	switch len(found) {
	case 0:
		return models.Guest{}, ErrNotFound
	case 1:
		g, err := decodeGuest(found[0])
		if err != nil {
			return models.Guest{}, &LookupError{Slug: slug, Err: err}
		}
		return g, nil
	default:
		return models.Guest{}, &LookupError{Slug: slug, Err: ErrAmbiguous}
	}
}

// FindGuestByPhone retrieves a guest by normalized phone number
func (s *FileStore) FindGuestByPhone(ctx context.Context, phoneNumber string) (models.Guest, error) {
	if err := ctx.Err(); err != nil {
		return models.Guest{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.data.Guests {
		if phoneNumber != "" && g.PhoneNumber == phoneNumber {
			return g, nil
		}
	}
	return models.Guest{}, ErrNotFound
}

// AddGuest adds a new guest; slugs are unique
func (s *FileStore) AddGuest(ctx context.Context, guest models.Guest) (models.Guest, error) {
	if err := ctx.Err(); err != nil {
		return models.Guest{}, err
	}
	guest, err := prepareGuest(guest)
	if err != nil {
		return models.Guest{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.data.Guests {
		if g.Slug == guest.Slug {
			return models.Guest{}, ErrAlreadyExists
		}
	}
	if guest.ID == "" {
		guest.ID = uuid.NewString()
	}
	s.data.Guests = append(s.data.Guests, guest)
	if err := s.Save(); err != nil {
		s.data.Guests = s.data.Guests[:len(s.data.Guests)-1]
		return models.Guest{}, err
	}
	return guest, nil
}

// ListGuests returns all guests ordered by name
func (s *FileStore) ListGuests(ctx context.Context) ([]models.Guest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	guests := make([]models.Guest, len(s.data.Guests))
	copy(guests, s.data.Guests)
	sort.SliceStable(guests, func(i, j int) bool { return guests[i].Name < guests[j].Name })
	return guests, nil
}

// ListSubmissions returns every submission, newest first
func (s *FileStore) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Err: err}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Submission, 0, len(s.data.Submissions))
	for _, row := range s.data.Submissions {
		sub, err := decodeSubmission(row)
		if err != nil {
			return nil, &LoadError{Err: err}
		}
		out = append(out, sub)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// InsertSubmission stores a draft and returns the stored row
func (s *FileStore) InsertSubmission(ctx context.Context, draft models.Draft) (models.Submission, error) {
	if err := ctx.Err(); err != nil {
		return models.Submission{}, &InsertError{Err: err}
	}
	draft, err := prepareDraft(draft)
	if err != nil {
		return models.Submission{}, &InsertError{Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub := models.Submission{
		ID:        uuid.NewString(),
		Name:      draft.Name,
		Status:    draft.Status,
		Message:   draft.Message,
		CreatedAt: now(),
	}
	s.data.Submissions = append(s.data.Submissions, sub)
	if err := s.Save(); err != nil {
		s.data.Submissions = s.data.Submissions[:len(s.data.Submissions)-1]
		return models.Submission{}, &InsertError{Err: err}
	}
	return sub, nil
}

// Ping reports whether the backing file is usable.
func (s *FileStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.file)
	if _, err := os.Stat(dir); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close is a no-op; every write is flushed by Save.
func (s *FileStore) Close() error { return nil }

// Save saves the records to file. Callers hold the write lock.
func (s *FileStore) Save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(s.file)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return os.WriteFile(s.file, data, 0644)
}

// Load loads records from file
func (s *FileStore) Load() error {
	data, err := os.ReadFile(s.file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if len(data) == 0 {
		s.data = fileData{Guests: make([]models.Guest, 0), Submissions: make([]models.Submission, 0)}
		return nil
	}

	if err := json.Unmarshal(data, &s.data); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	return nil
}
