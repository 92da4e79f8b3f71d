// Package rsvp holds the RSVP board: the ordered list of submissions, the
// visitor's current page and the submit flow in front of the record store.
package rsvp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"wedding-invitation/internal/metrics"
	"wedding-invitation/internal/models"
	"wedding-invitation/internal/storage"
)

var (
	// ErrIncompleteDraft means name or message was blank; nothing was stored.
	ErrIncompleteDraft = errors.New("name and message are required")
	// ErrUnknownStatus means the draft carried a status outside models.Statuses.
	ErrUnknownStatus = errors.New("unknown attendance status")
)

// Store is the part of the record store the board needs.
type Store interface {
	ListSubmissions(ctx context.Context) ([]models.Submission, error)
	InsertSubmission(ctx context.Context, draft models.Draft) (models.Submission, error)
}

// listenerTimeout bounds one round of listeners after a submission.
const listenerTimeout = 30 * time.Second

// Listener is called after a submission has been stored and prepended. It runs
// off the submit path with a context detached from the caller's cancellation.
type Listener func(ctx context.Context, s models.Submission)

// Manager owns the board state. All transitions are serialized by mu.
type Manager struct {
	store   Store
	metrics *metrics.Metrics
	log     zerolog.Logger

	mu          sync.Mutex
	items       []models.Submission
	currentPage int
	generation  uint64
	listeners   []Listener
	pending     sync.WaitGroup
}

// NewManager creates an empty board over store. m may be nil.
func NewManager(store Store, m *metrics.Metrics, log zerolog.Logger) *Manager {
	return &Manager{
		store:       store,
		metrics:     m,
		log:         log.With().Str("component", "RSVPManager").Logger(),
		items:       make([]models.Submission, 0),
		currentPage: 1,
	}
}

// OnSubmit registers fn to run after every accepted submission.
func (m *Manager) OnSubmit(fn Listener) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// LoadAll replaces the board with every stored submission, newest first, and
// resets the current page to 1. On failure the board keeps what it had and a
// *storage.LoadError is returned. A load overtaken by a later submit or load
// is dropped and the in-memory board is returned instead.
func (m *Manager) LoadAll(ctx context.Context) ([]models.Submission, error) {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.mu.Unlock()

	list, err := m.store.ListSubmissions(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		var loadErr *storage.LoadError
		if !errors.As(err, &loadErr) {
			loadErr = &storage.LoadError{Err: err}
		}
		m.metrics.ObserveLoad(false)
		m.log.Error().Err(err).Msg("Error loading submissions")
		return m.snapshot(), loadErr
	}
	if gen != m.generation {
		m.log.Debug().Uint64("generation", gen).Msg("Discarding superseded submission load")
		return m.snapshot(), nil
	}

	m.items = make([]models.Submission, len(list))
	copy(m.items, list)
	m.currentPage = 1
	m.metrics.ObserveLoad(true)
	m.metrics.SetBoardSize(len(m.items))
	return m.snapshot(), nil
}

// Submit validates draft, stores it and puts the stored row at the top of the
// board. Incomplete drafts never reach the store.
func (m *Manager) Submit(ctx context.Context, draft models.Draft) (models.Submission, error) {
	draft = draft.Normalize()
	if !draft.Complete() {
		m.metrics.ObserveSubmission(metrics.SubmissionIncomplete)
		return models.Submission{}, ErrIncompleteDraft
	}
	if !draft.Status.Valid() {
		m.metrics.ObserveSubmission(metrics.SubmissionIncomplete)
		return models.Submission{}, fmt.Errorf("%w: %q", ErrUnknownStatus, draft.Status)
	}

	stored, err := m.store.InsertSubmission(ctx, draft)
	if err != nil {
		var insertErr *storage.InsertError
		if !errors.As(err, &insertErr) {
			insertErr = &storage.InsertError{Err: err}
		}
		m.metrics.ObserveSubmission(metrics.SubmissionFailed)
		m.log.Error().Err(err).Str("name", draft.Name).Msg("Error submitting RSVP")
		return models.Submission{}, insertErr
	}

	m.mu.Lock()
	m.items = append([]models.Submission{stored}, m.items...)
	m.currentPage = 1
	m.generation++
	size := len(m.items)
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	m.metrics.ObserveSubmission(metrics.SubmissionAccepted)
	m.metrics.SetBoardSize(size)
	m.log.Info().Str("id", stored.ID).Str("name", stored.Name).Str("status", string(stored.Status)).Msg("RSVP recorded")

	if len(listeners) > 0 {
		m.pending.Add(1)
		go func() {
			defer m.pending.Done()
			lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), listenerTimeout)
			defer cancel()
			for _, fn := range listeners {
				fn(lctx, stored)
			}
		}()
	}
	return stored, nil
}

// Wait blocks until listeners started by earlier submissions have returned.
func (m *Manager) Wait() {
	m.pending.Wait()
}

// Paginate moves the current page to n, clamped into [1, TotalPages], and
// returns that page.
func (m *Manager) Paginate(n int) Page {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.currentPage = clampPage(n, TotalPages(len(m.items)))
	return slicePage(m.items, m.currentPage)
}

// PageAt returns page n, clamped, without moving the current page.
func (m *Manager) PageAt(n int) Page {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slicePage(m.items, clampPage(n, TotalPages(len(m.items))))
}

// Current returns the page the board is on.
func (m *Manager) Current() Page {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slicePage(m.items, clampPage(m.currentPage, TotalPages(len(m.items))))
}

// Submissions returns a copy of the whole board.
func (m *Manager) Submissions() []models.Submission {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.snapshot()
}

func (m *Manager) snapshot() []models.Submission {
	out := make([]models.Submission, len(m.items))
	copy(out, m.items)
	return out
}
