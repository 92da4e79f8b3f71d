package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"wedding-invitation/internal/locale"
	"wedding-invitation/internal/models"
	"wedding-invitation/internal/rsvp"
)

// Board is the RSVP board behind the submission endpoints.
type Board interface {
	LoadAll(ctx context.Context) ([]models.Submission, error)
	Submit(ctx context.Context, draft models.Draft) (models.Submission, error)
	PageAt(n int) rsvp.Page
}

type SubmissionRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Status  string `json:"status" validate:"omitempty,attendance"`
	Message string `json:"message" validate:"required,max=1000"`
}

type SubmissionView struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Status    models.AttendanceStatus `json:"status"`
	Message   string                  `json:"message"`
	CreatedAt time.Time               `json:"created_at"`
	Date      string                  `json:"date"`
}

type PageView struct {
	Items       []SubmissionView `json:"items"`
	CurrentPage int              `json:"current_page"`
	TotalPages  int              `json:"total_pages"`
	HasPrev     bool             `json:"has_prev"`
	HasNext     bool             `json:"has_next"`
}

type CreatedView struct {
	Submission SubmissionView `json:"submission"`
	Page       PageView       `json:"page"`
}

type SubmissionController struct {
	board     Board
	formatter *locale.Formatter
	timeout   time.Duration
}

func NewSubmissionController(board Board, formatter *locale.Formatter, timeout time.Duration) *SubmissionController {
	return &SubmissionController{board: board, formatter: formatter, timeout: timeout}
}

// ListSubmissions returns one page of the board. Out-of-range pages are clamped.
func (h *SubmissionController) ListSubmissions(c echo.Context) error {
	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return NewErrorResponse(http.StatusBadRequest, ErrCodeInvalidRequest, "page must be a number")
		}
		page = n
	}
	return respond(c, http.StatusOK, h.pageView(h.board.PageAt(page)), "Submissions retrieved")
}

// CreateSubmission stores a new RSVP and returns it with the refreshed first page.
func (h *SubmissionController) CreateSubmission(c echo.Context) error {
	var req SubmissionRequest
	if err := c.Bind(&req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Message = strings.TrimSpace(req.Message)
	req.Status = strings.TrimSpace(req.Status)
	if err := c.Validate(&req); err != nil {
		return NewErrorResponse(http.StatusUnprocessableEntity, ErrCodeIncomplete,
			h.formatter.Notice(locale.NoticeIncomplete), validationDetails(err))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stored, err := h.board.Submit(ctx, models.Draft{
		Name:    req.Name,
		Status:  models.AttendanceStatus(req.Status),
		Message: req.Message,
	})
	switch {
	case errors.Is(err, rsvp.ErrIncompleteDraft), errors.Is(err, rsvp.ErrUnknownStatus):
		return NewErrorResponse(http.StatusUnprocessableEntity, ErrCodeIncomplete, h.formatter.Notice(locale.NoticeIncomplete))
	case err != nil:
		return NewErrorResponse(http.StatusBadGateway, ErrCodeInsertFailed, h.formatter.Notice(locale.NoticeSubmitFailed))
	}

	return respond(c, http.StatusCreated, CreatedView{
		Submission: h.view(stored),
		Page:       h.pageView(h.board.PageAt(1)),
	}, h.formatter.Notice(locale.NoticeSubmitted))
}

// ReloadSubmissions refetches the whole board from the store.
func (h *SubmissionController) ReloadSubmissions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if _, err := h.board.LoadAll(ctx); err != nil {
		return NewErrorResponse(http.StatusBadGateway, ErrCodeLoadFailed, "Failed to load submissions")
	}
	return respond(c, http.StatusOK, h.pageView(h.board.PageAt(1)), "Submissions reloaded")
}

func (h *SubmissionController) view(s models.Submission) SubmissionView {
	return SubmissionView{
		ID:        s.ID,
		Name:      s.Name,
		Status:    s.Status,
		Message:   s.Message,
		CreatedAt: s.CreatedAt,
		Date:      h.formatter.DateTime(s.CreatedAt),
	}
}

func (h *SubmissionController) pageView(p rsvp.Page) PageView {
	items := make([]SubmissionView, len(p.Items))
	for i, s := range p.Items {
		items[i] = h.view(s)
	}
	return PageView{
		Items:       items,
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		HasPrev:     p.HasPrev,
		HasNext:     p.HasNext,
	}
}
