package guest

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"wedding-invitation/internal/metrics"
	"wedding-invitation/internal/models"
	"wedding-invitation/internal/storage"
)

// DefaultPlaceholder is shown when no guest could be resolved.
const DefaultPlaceholder = "Tamu Undangan"

// Finder looks a guest up by slug.
type Finder interface {
	FindGuestBySlug(ctx context.Context, slug string) (models.Guest, error)
}

// Cache holds resolved guest names keyed by slug.
type Cache interface {
	GetName(ctx context.Context, slug string) (string, bool, error)
	SetName(ctx context.Context, slug, name string) error
}

// Resolver turns the invitation token into a guest.
type Resolver struct {
	finder      Finder
	cache       Cache
	metrics     *metrics.Metrics
	log         zerolog.Logger
	placeholder string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache puts a read-through cache in front of the finder.
func WithCache(c Cache) Option {
	return func(r *Resolver) { r.cache = c }
}

// WithMetrics records lookup results.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// WithPlaceholder overrides DefaultPlaceholder.
func WithPlaceholder(name string) Option {
	return func(r *Resolver) {
		if strings.TrimSpace(name) != "" {
			r.placeholder = name
		}
	}
}

// NewResolver creates a new guest resolver
func NewResolver(finder Finder, log zerolog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		finder:      finder,
		log:         log.With().Str("component", "GuestResolver").Logger(),
		placeholder: DefaultPlaceholder,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve returns the guest invited under token, or nil. Lookup failures are
// logged and reported as nil; they never reach the caller. There is no retry.
func (r *Resolver) Resolve(ctx context.Context, token string) *models.Guest {
	if token == "" {
		return nil
	}

	if r.cache != nil {
		name, ok, err := r.cache.GetName(ctx, token)
		if err != nil {
			r.log.Warn().Err(err).Str("slug", token).Msg("Guest cache read failed")
		} else if ok {
			r.metrics.ObserveLookup(metrics.LookupCached)
			return &models.Guest{Slug: token, Name: name}
		}
	}

	g, err := r.finder.FindGuestBySlug(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			r.metrics.ObserveLookup(metrics.LookupMissing)
			r.log.Info().Str("slug", token).Msg("No guest for invitation token")
		} else {
			r.metrics.ObserveLookup(metrics.LookupFailed)
			r.log.Error().Err(err).Str("slug", token).Msg("Error fetching guest")
		}
		return nil
	}
	r.metrics.ObserveLookup(metrics.LookupFound)

	if r.cache != nil {
		if err := r.cache.SetName(ctx, token, g.Name); err != nil {
			r.log.Warn().Err(err).Str("slug", token).Msg("Guest cache write failed")
		}
	}
	return &g
}

// DisplayName returns the guest's name or the placeholder.
func (r *Resolver) DisplayName(g *models.Guest) string {
	if g == nil || strings.TrimSpace(g.Name) == "" {
		return r.placeholder
	}
	return g.Name
}
