// Package server wires the echo instance: middleware, probes and metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"wedding-invitation/internal/api"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Addr           string
	AllowedOrigins []string
	ReadyTimeout   time.Duration
}

type readinessCheck struct {
	name   string
	pinger Pinger
}

type Server struct {
	echo   *echo.Echo
	cfg    Config
	log    zerolog.Logger
	checks []readinessCheck
}

// New builds the echo instance and registers probes. metricsHandler may be nil.
func New(cfg Config, log zerolog.Logger, store Pinger, metricsHandler http.Handler) *Server {
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = 2 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	log = log.With().Str("component", "HTTP").Logger()

	e := echo.New()
	s := &Server{echo: e, cfg: cfg, log: log, checks: []readinessCheck{{name: "record store", pinger: store}}}
	e.HideBanner = true
	e.HidePort = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.ErrorHandler(log)

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				evt = log.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("Request")
			return nil
		},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/readyz", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), cfg.ReadyTimeout)
		defer cancel()
		for _, check := range s.checks {
			if err := check.pinger.Ping(ctx); err != nil {
				log.Warn().Err(err).Str("check", check.name).Msg("Not ready")
				return api.NewErrorResponse(http.StatusServiceUnavailable, api.ErrCodeUnavailable, check.name+" unreachable")
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	})
	if metricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(metricsHandler))
	}

	return s
}

// AddReadinessCheck makes /readyz also depend on p. Call it before Start.
func (s *Server) AddReadinessCheck(name string, p Pinger) {
	s.checks = append(s.checks, readinessCheck{name: name, pinger: p})
}

// Echo exposes the instance so routers can register on it.
func (s *Server) Echo() *echo.Echo { return s.echo }

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.cfg.Addr).Msg("HTTP server listening")
	if err := s.echo.Start(s.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
