package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"wedding-invitation/internal/guest"
	"wedding-invitation/internal/locale"
	"wedding-invitation/internal/models"
	"wedding-invitation/internal/rsvp"
	"wedding-invitation/internal/storage"
)

var wib = time.FixedZone("WIB", 7*60*60)

type failingInserts struct {
	*storage.FileStore
}

func (failingInserts) InsertSubmission(context.Context, models.Draft) (models.Submission, error) {
	return models.Submission{}, &storage.InsertError{Err: errors.New("db down")}
}

type testEnv struct {
	echo  *echo.Echo
	store *storage.FileStore
	board *rsvp.Manager
}

func newTestEnv(t *testing.T, failInsert bool) *testEnv {
	t.Helper()

	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "records.json"))
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	ctx := context.Background()
	if _, err := store.AddGuest(ctx, models.Guest{Slug: "budi-santoso", Name: "Budi Santoso"}); err != nil {
		t.Fatalf("add guest: %v", err)
	}

	log := zerolog.New(io.Discard)
	var boardStore rsvp.Store = store
	if failInsert {
		boardStore = failingInserts{store}
	}
	board := rsvp.NewManager(boardStore, nil, log)
	formatter := locale.New("id-ID", wib)
	event := Event{
		BrideName: "Ayu",
		GroomName: "Raka",
		Date:      time.Date(2025, 12, 28, 9, 0, 0, 0, wib),
		Location:  "Gedung Serbaguna",
	}
	clock := func() time.Time { return time.Date(2025, 12, 27, 8, 59, 30, 0, wib) }

	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler(log)
	NewRouter(
		NewGuestController(guest.NewResolver(store, log), time.Second),
		NewSubmissionController(board, formatter, time.Second),
		NewInvitationController(event, formatter, clock, nil, log),
	).Register(e)

	return &testEnv{echo: e, store: store, board: board}
}

func (env *testEnv) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode %s %s: %v\n%s", method, target, err, rec.Body.String())
	}
	return rec, envelope
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode: %v\n%s", err, raw)
	}
	return v
}

func TestGetGuest(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)
	tests := []struct {
		target   string
		name     string
		resolved bool
	}{
		{"/api/guest?to=budi-santoso", "Budi Santoso", true},
		{"/api/guest?to=unknown-guest", "Tamu Undangan", false},
		{"/api/guest", "Tamu Undangan", false},
	}
	for _, tt := range tests {
		rec, body := env.do(t, http.MethodGet, tt.target, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", tt.target, rec.Code)
		}
		got := decode[GuestView](t, body["data"])
		if got.Name != tt.name || got.Resolved != tt.resolved {
			t.Fatalf("%s: got %+v", tt.target, got)
		}
	}
}

func TestCreateSubmissionAndPaginate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)
	for i := 0; i < 6; i++ {
		payload := fmt.Sprintf(`{"name":"Tamu %d","status":"Masih Ragu","message":"Selamat %d"}`, i, i)
		rec, body := env.do(t, http.MethodPost, "/api/submissions", payload)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %d: status = %d %s", i, rec.Code, rec.Body.String())
		}
		created := decode[CreatedView](t, body["data"])
		if created.Page.CurrentPage != 1 || created.Page.Items[0].ID != created.Submission.ID {
			t.Fatalf("new submission not first on page 1: %+v", created.Page)
		}
		if created.Submission.Date == "" || created.Submission.Status != models.StatusUndecided {
			t.Fatalf("submission view = %+v", created.Submission)
		}
		if msg := decode[string](t, body["message"]); msg != "Ucapan berhasil dikirim!" {
			t.Fatalf("message = %q", msg)
		}
	}

	rec, body := env.do(t, http.MethodGet, "/api/submissions?page=9", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	page := decode[PageView](t, body["data"])
	if page.CurrentPage != 2 || page.TotalPages != 2 || len(page.Items) != 1 || page.HasNext || !page.HasPrev {
		t.Fatalf("clamped page = %+v", page)
	}
	if page.Items[0].Name != "Tamu 0" {
		t.Fatalf("oldest entry should be last: %+v", page.Items)
	}
}

func TestCreateSubmissionDefaultsStatus(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)
	rec, body := env.do(t, http.MethodPost, "/api/submissions", `{"name":"Ani","message":"Barakallah"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode[CreatedView](t, body["data"]).Submission.Status; got != models.StatusAttending {
		t.Fatalf("status = %q, want Hadir", got)
	}
}

func TestCreateSubmissionRejectsIncomplete(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)
	payloads := []string{
		`{"name":"   ","message":"Selamat"}`,
		`{"name":"Ani","message":""}`,
		`{"name":"Ani","status":"Mungkin","message":"Hai"}`,
	}
	for _, p := range payloads {
		rec, body := env.do(t, http.MethodPost, "/api/submissions", p)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("%s: status = %d", p, rec.Code)
		}
		if code := decode[ErrorCode](t, body["code"]); code != ErrCodeIncomplete {
			t.Fatalf("%s: code = %q", p, code)
		}
	}

	subs, err := env.store.ListSubmissions(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 0 {
		t.Fatalf("store received %d submissions, want 0", len(subs))
	}
}

func TestCreateSubmissionInsertFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, true)
	rec, body := env.do(t, http.MethodPost, "/api/submissions", `{"name":"Ani","message":"Selamat"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	if msg := decode[string](t, body["message"]); msg != "Gagal mengirim ucapan. Silakan coba lagi." {
		t.Fatalf("message = %q", msg)
	}
	if n := len(env.board.Submissions()); n != 0 {
		t.Fatalf("board has %d entries after failed insert", n)
	}
}

func TestReloadSubmissions(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := env.store.InsertSubmission(ctx, models.Draft{Name: fmt.Sprintf("Tamu %d", i), Message: "Hai"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	_, body := env.do(t, http.MethodGet, "/api/submissions", "")
	if page := decode[PageView](t, body["data"]); len(page.Items) != 0 {
		t.Fatalf("board should be empty before reload: %+v", page)
	}

	rec, body := env.do(t, http.MethodPost, "/api/submissions/reload", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("reload status = %d", rec.Code)
	}
	if page := decode[PageView](t, body["data"]); len(page.Items) != 3 || page.TotalPages != 1 {
		t.Fatalf("page after reload = %+v", page)
	}
}

func TestListSubmissionsBadPage(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)
	rec, _ := env.do(t, http.MethodGet, "/api/submissions?page=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGetInvitationAndCountdown(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, false)
	_, body := env.do(t, http.MethodGet, "/api/invitation", "")
	inv := decode[InvitationView](t, body["data"])
	if inv.Date != "Minggu, 28 Desember 2025" || inv.Time != "09.00" || inv.Location != "Gedung Serbaguna" {
		t.Fatalf("invitation = %+v", inv)
	}
	if len(inv.Sections) != 5 || inv.Sections[4].ID != "kehadiran" {
		t.Fatalf("sections = %+v", inv.Sections)
	}

	_, body = env.do(t, http.MethodGet, "/api/countdown", "")
	cd := decode[struct {
		Days, Hours, Minutes, Seconds int64
		Counting                      bool
	}](t, body["data"])
	if cd.Days != 1 || cd.Hours != 0 || cd.Minutes != 0 || cd.Seconds != 30 || !cd.Counting {
		t.Fatalf("countdown = %+v", cd)
	}
}
