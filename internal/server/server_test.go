package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"wedding-invitation/internal/metrics"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func serve(s *Server, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestProbes(t *testing.T) {
	t.Parallel()

	ok := New(Config{}, zerolog.New(io.Discard), fakePinger{}, nil)
	if rec := serve(ok, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
	if rec := serve(ok, http.MethodGet, "/readyz", nil); rec.Code != http.StatusOK {
		t.Fatalf("readyz = %d", rec.Code)
	}

	down := New(Config{}, zerolog.New(io.Discard), fakePinger{err: errors.New("no route")}, nil)
	rec := serve(down, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz with failing store = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"UNAVAILABLE"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.ObserveLookup(metrics.LookupFound)
	s := New(Config{}, zerolog.New(io.Discard), fakePinger{}, m.Handler())

	rec := serve(s, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `invitation_guest_lookups_total{result="found"} 1`) {
		t.Fatalf("metrics body missing lookup counter")
	}
}

func TestNotFoundUsesEnvelope(t *testing.T) {
	t.Parallel()

	s := New(Config{}, zerolog.New(io.Discard), fakePinger{}, nil)
	rec := serve(s, http.MethodGet, "/nope", nil)
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `"NOT_FOUND"`) {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
}

func TestCORS(t *testing.T) {
	t.Parallel()

	s := New(Config{AllowedOrigins: []string{"https://undangan.example"}}, zerolog.New(io.Discard), fakePinger{}, nil)
	rec := serve(s, http.MethodGet, "/healthz", map[string]string{"Origin": "https://undangan.example"})
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://undangan.example" {
		t.Fatalf("allow origin = %q", got)
	}
}

func TestReadinessChecksAllDependencies(t *testing.T) {
	t.Parallel()

	s := New(Config{}, zerolog.New(io.Discard), fakePinger{}, nil)
	s.AddReadinessCheck("whatsapp", fakePinger{err: errors.New("not connected")})

	rec := serve(s, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "whatsapp unreachable") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}
