package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ErrorCode identifies an API failure independently of the HTTP status.
type ErrorCode string

const (
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrCodeIncomplete     ErrorCode = "INCOMPLETE_SUBMISSION"
	ErrCodeInsertFailed   ErrorCode = "SUBMISSION_FAILED"
	ErrCodeLoadFailed     ErrorCode = "LOAD_FAILED"
	ErrCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrCodeUnavailable    ErrorCode = "UNAVAILABLE"
	ErrCodeInternal       ErrorCode = "INTERNAL_SERVER_ERROR"
)

// Response types
type (
	SuccessResponse struct {
		Status    int       `json:"status"`
		Message   string    `json:"message"`
		Data      any       `json:"data,omitempty"`
		Timestamp time.Time `json:"timestamp"`
	}

	ErrorResponse struct {
		Status    string    `json:"status"`
		Code      ErrorCode `json:"code"`
		Message   string    `json:"message"`
		Details   any       `json:"details,omitempty"`
		Timestamp time.Time `json:"timestamp"`
	}

	ValidationError struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}
)

// NewSuccessResponse wraps data in the success envelope.
func NewSuccessResponse(httpStatusCode int, data any, message string) *SuccessResponse {
	return &SuccessResponse{
		Status:    httpStatusCode,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewErrorResponse builds an echo error carrying the error envelope.
func NewErrorResponse(httpStatusCode int, code ErrorCode, message string, details ...any) *echo.HTTPError {
	err := &ErrorResponse{
		Status:    "error",
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return echo.NewHTTPError(httpStatusCode, err)
}

func respond(c echo.Context, status int, data any, message string) error {
	return c.JSON(status, NewSuccessResponse(status, data, message))
}

// ErrorHandler renders every error returned by a handler in the error envelope.
func ErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		body := &ErrorResponse{
			Status:    "error",
			Code:      ErrCodeInternal,
			Message:   "internal server error",
			Timestamp: time.Now(),
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			switch msg := he.Message.(type) {
			case *ErrorResponse:
				body = msg
			case string:
				body.Code = codeForStatus(status)
				body.Message = msg
			default:
				body.Code = codeForStatus(status)
				body.Message = http.StatusText(status)
			}
		}

		if status >= http.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Path()).Int("status", status).Msg("Request failed")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			log.Error().Err(writeErr).Msg("Error writing error response")
		}
	}
}

func codeForStatus(status int) ErrorCode {
	switch status {
	case http.StatusBadRequest, http.StatusUnsupportedMediaType, http.StatusMethodNotAllowed:
		return ErrCodeInvalidRequest
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusServiceUnavailable:
		return ErrCodeUnavailable
	default:
		return ErrCodeInternal
	}
}
