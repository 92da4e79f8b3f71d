package guest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gosimple/slug"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"wedding-invitation/internal/models"
	"wedding-invitation/internal/storage"
)

const (
	slugSuffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	slugSuffixLength   = 4
	maxSlugAttempts    = 5
)

// Store is what the registry needs from the record store.
type Store interface {
	AddGuest(ctx context.Context, guest models.Guest) (models.Guest, error)
	ListGuests(ctx context.Context) ([]models.Guest, error)
}

// Registry adds guests and builds their personal invitation links.
type Registry struct {
	store          Store
	baseURL        string
	normalizePhone func(string) string
}

// NewRegistry creates a guest registry. normalizePhone may be nil.
func NewRegistry(store Store, baseURL string, normalizePhone func(string) string) *Registry {
	if normalizePhone == nil {
		normalizePhone = strings.TrimSpace
	}
	return &Registry{
		store:          store,
		baseURL:        strings.TrimRight(baseURL, "/"),
		normalizePhone: normalizePhone,
	}
}

// Add stores a guest under a slug derived from the name. A taken slug gets a
// short random suffix.
func (r *Registry) Add(ctx context.Context, name, phoneNumber string) (models.Guest, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Guest{}, fmt.Errorf("%w: guest name is required", storage.ErrInvalidInput)
	}
	base := slug.Make(name)
	if base == "" {
		base = "tamu"
	}
	if phoneNumber != "" {
		phoneNumber = r.normalizePhone(phoneNumber)
	}

	candidate := base
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		g, err := r.store.AddGuest(ctx, models.Guest{Slug: candidate, Name: name, PhoneNumber: phoneNumber})
		if err == nil {
			return g, nil
		}
		if !errors.Is(err, storage.ErrAlreadyExists) {
			return models.Guest{}, fmt.Errorf("failed to add guest: %w", err)
		}
		suffix, err := gonanoid.Generate(slugSuffixAlphabet, slugSuffixLength)
		if err != nil {
			return models.Guest{}, fmt.Errorf("failed to generate slug suffix: %w", err)
		}
		candidate = base + "-" + suffix
	}
	return models.Guest{}, fmt.Errorf("failed to add guest: no free slug for %q", base)
}

// List returns all registered guests.
func (r *Registry) List(ctx context.Context) ([]models.Guest, error) {
	return r.store.ListGuests(ctx)
}

// Link returns the personal invitation URL for g.
func (r *Registry) Link(g models.Guest) string {
	return r.baseURL + "/?to=" + url.QueryEscape(g.Slug)
}
