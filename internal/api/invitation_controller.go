package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"wedding-invitation/internal/countdown"
	"wedding-invitation/internal/locale"
)

const wsWriteTimeout = 5 * time.Second

// Event describes the wedding itself.
type Event struct {
	BrideName string
	GroomName string
	Date      time.Time
	Location  string
	Gallery   []string
}

type Section struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Sections are the page anchors in navigation order.
var Sections = []Section{
	{ID: "home", Title: "Beranda"},
	{ID: "mempelai", Title: "Mempelai"},
	{ID: "acara", Title: "Acara"},
	{ID: "galeri", Title: "Galeri"},
	{ID: "kehadiran", Title: "Kehadiran"},
}

type InvitationView struct {
	BrideName string    `json:"bride_name"`
	GroomName string    `json:"groom_name"`
	StartsAt  time.Time `json:"starts_at"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Location  string    `json:"location"`
	Sections  []Section `json:"sections"`
	Gallery   []string  `json:"gallery"`
}

type InvitationController struct {
	event          Event
	formatter      *locale.Formatter
	clock          countdown.Clock
	originPatterns []string
	log            zerolog.Logger
}

func NewInvitationController(event Event, formatter *locale.Formatter, clock countdown.Clock, originPatterns []string, log zerolog.Logger) *InvitationController {
	if clock == nil {
		clock = time.Now
	}
	if event.Gallery == nil {
		event.Gallery = []string{}
	}
	return &InvitationController{
		event:          event,
		formatter:      formatter,
		clock:          clock,
		originPatterns: originPatterns,
		log:            log.With().Str("component", "InvitationController").Logger(),
	}
}

func (h *InvitationController) GetInvitation(c echo.Context) error {
	start := h.event.Date.In(h.formatter.Location())
	return respond(c, http.StatusOK, InvitationView{
		BrideName: h.event.BrideName,
		GroomName: h.event.GroomName,
		StartsAt:  h.event.Date,
		Date:      h.formatter.LongDate(h.event.Date),
		Time:      start.Format("15.04"),
		Location:  h.event.Location,
		Sections:  Sections,
		Gallery:   h.event.Gallery,
	}, "Invitation retrieved")
}

func (h *InvitationController) GetCountdown(c echo.Context) error {
	return respond(c, http.StatusOK, countdown.Remaining(h.clock(), h.event.Date), "Countdown computed")
}

// StreamCountdown pushes one countdown frame per second over a websocket
// until the wedding starts or the peer goes away.
func (h *InvitationController) StreamCountdown(c echo.Context) error {
	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Error accepting websocket")
		return nil
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "bye") }()

	// The stream is send-only; CloseRead cancels ctx once the peer closes.
	ctx := conn.CloseRead(c.Request().Context())

	err = countdown.Run(ctx, h.clock, h.event.Date, time.Second, func(cd countdown.Countdown) error {
		wctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
		defer cancel()
		return wsjson.Write(wctx, conn, cd)
	})
	if err != nil && !errors.Is(err, context.Canceled) && websocket.CloseStatus(err) == -1 {
		h.log.Debug().Err(err).Msg("Countdown stream ended")
	}
	return nil
}

// OriginPatterns turns CORS origins into websocket.Accept host patterns.
// A wildcard origin allows every host.
func OriginPatterns(allowed []string) []string {
	seen := make(map[string]struct{}, len(allowed))
	out := make([]string, 0, len(allowed))
	for _, a := range allowed {
		a = strings.TrimSpace(a)
		if a == "*" {
			return []string{"*"}
		}
		host := a
		if u, err := url.Parse(a); err == nil && u.Host != "" {
			host = u.Host
		}
		host = strings.ToLower(host)
		if host == "" {
			continue
		}
		if _, ok := seen[host]; ok {
			continue
		}
		seen[host] = struct{}{}
		out = append(out, host)
	}
	return out
}
