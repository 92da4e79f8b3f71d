package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"wedding-invitation/internal/models"
)

const (
	defaultRetryDelay = 500 * time.Millisecond
	maxRetryDelay     = 30 * time.Second
)

// Opener opens a backing store; Open is the production one.
type Opener func(ctx context.Context, cfg Config) (RecordStore, error)

// Reconnecting is a RecordStore that stays usable while its backing store is
// down. Until the first successful open every call fails with ErrUnavailable.
type Reconnecting struct {
	cfg  Config
	open Opener
	log  zerolog.Logger

	minDelay time.Duration
	maxDelay time.Duration

	mu     sync.RWMutex
	store  RecordStore
	closed bool
	ready  chan struct{}
}

func NewReconnecting(cfg Config, open Opener, log zerolog.Logger) *Reconnecting {
	if open == nil {
		open = Open
	}
	return &Reconnecting{
		cfg:      cfg,
		open:     open,
		log:      log.With().Str("component", "RecordStore").Logger(),
		minDelay: defaultRetryDelay,
		maxDelay: maxRetryDelay,
		ready:    make(chan struct{}),
	}
}

// Start makes the first connection attempt. Configuration errors
// (ErrInvalidInput) are returned as is and never retried. Any other failure is
// returned too, but dialing continues in the background until ctx ends.
func (r *Reconnecting) Start(ctx context.Context) error {
	store, err := r.open(ctx, r.cfg)
	if err == nil {
		r.set(store)
		return nil
	}
	if errors.Is(err, ErrInvalidInput) {
		return err
	}
	go r.retry(ctx)
	return err
}

// Ready is closed once a backing store is connected.
func (r *Reconnecting) Ready() <-chan struct{} {
	return r.ready
}

func (r *Reconnecting) retry(ctx context.Context) {
	delay := r.minDelay
	for {
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return
		}

		store, err := r.open(ctx, r.cfg)
		if err == nil {
			r.set(store)
			r.log.Info().Str("driver", r.cfg.Driver).Msg("Record store connected")
			return
		}
		r.log.Warn().Err(err).Dur("retry_in", delay).Msg("Record store still unreachable")

		if delay < r.maxDelay {
			delay *= 2
			if delay > r.maxDelay {
				delay = r.maxDelay
			}
		}
	}
}

func (r *Reconnecting) set(store RecordStore) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		_ = store.Close()
		return
	}
	r.store = store
	close(r.ready)
	r.mu.Unlock()
}

func (r *Reconnecting) current() RecordStore {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store
}

func (r *Reconnecting) FindGuestBySlug(ctx context.Context, slug string) (models.Guest, error) {
	s := r.current()
	if s == nil {
		return models.Guest{}, &LookupError{Slug: slug, Err: ErrUnavailable}
	}
	return s.FindGuestBySlug(ctx, slug)
}

func (r *Reconnecting) FindGuestByPhone(ctx context.Context, phoneNumber string) (models.Guest, error) {
	s := r.current()
	if s == nil {
		return models.Guest{}, ErrUnavailable
	}
	return s.FindGuestByPhone(ctx, phoneNumber)
}

func (r *Reconnecting) AddGuest(ctx context.Context, guest models.Guest) (models.Guest, error) {
	s := r.current()
	if s == nil {
		return models.Guest{}, ErrUnavailable
	}
	return s.AddGuest(ctx, guest)
}

func (r *Reconnecting) ListGuests(ctx context.Context) ([]models.Guest, error) {
	s := r.current()
	if s == nil {
		return nil, ErrUnavailable
	}
	return s.ListGuests(ctx)
}

func (r *Reconnecting) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	s := r.current()
	if s == nil {
		return nil, &LoadError{Err: ErrUnavailable}
	}
	return s.ListSubmissions(ctx)
}

func (r *Reconnecting) InsertSubmission(ctx context.Context, draft models.Draft) (models.Submission, error) {
	s := r.current()
	if s == nil {
		return models.Submission{}, &InsertError{Err: ErrUnavailable}
	}
	return s.InsertSubmission(ctx, draft)
}

func (r *Reconnecting) Ping(ctx context.Context) error {
	s := r.current()
	if s == nil {
		return ErrUnavailable
	}
	return s.Ping(ctx)
}

// Close closes the backing store, if any. A store connected afterwards by the
// background dialer is closed immediately.
func (r *Reconnecting) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}
