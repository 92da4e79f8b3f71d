package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"wedding-invitation/internal/models"
)

// GuestResolver resolves the `to` token of an invitation link.
type GuestResolver interface {
	Resolve(ctx context.Context, token string) *models.Guest
	DisplayName(g *models.Guest) string
}

type GuestView struct {
	Name     string `json:"name"`
	Resolved bool   `json:"resolved"`
}

type GuestController struct {
	resolver GuestResolver
	timeout  time.Duration
}

func NewGuestController(resolver GuestResolver, timeout time.Duration) *GuestController {
	return &GuestController{resolver: resolver, timeout: timeout}
}

// GetGuest returns the name to greet. Lookup problems yield the placeholder, never an error.
func (h *GuestController) GetGuest(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	g := h.resolver.Resolve(ctx, c.QueryParam("to"))
	return respond(c, http.StatusOK, GuestView{
		Name:     h.resolver.DisplayName(g),
		Resolved: g != nil,
	}, "Guest resolved")
}
