package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//   - Sent with a status code derived from the error itself
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Error is mapped via core.MapError to get user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is written as JSON

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/textnorm/internal/core"
	"github.com/JonMunkholm/textnorm/internal/logging"
)

// Request-level errors raised by the handlers themselves.
var (
	errRateLimited     = errors.New("rate limit exceeded")
	errInvalidRecordID = errors.New("invalid record id")
	errInvalidBody     = errors.New("invalid request body")
	errNoFile          = errors.New("no file provided")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`

	// Columns lists the absent header columns of a VAL004 error.
	Columns []string `json:"columns,omitempty"`
}

// ImportErrorResponse is returned when an import is refused after the
// pipeline ran, so the client can still show the row counts.
type ImportErrorResponse struct {
	ErrorResponse
	Summary *core.ImportResult `json:"summary,omitempty"`
}

// respondError logs the technical error server-side and writes a
// user-friendly JSON error.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	writeJSON(w, status, newErrorResponse(r, err, status))
}

// respondImportError is respondError with an import summary attached.
func respondImportError(w http.ResponseWriter, r *http.Request, err error, summary *core.ImportResult) {
	status := statusFor(err)
	writeJSON(w, status, ImportErrorResponse{
		ErrorResponse: newErrorResponse(r, err, status),
		Summary:       summary,
	})
}

func newErrorResponse(r *http.Request, err error, status int) ErrorResponse {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", args...)
	} else {
		logger.Warn("request error", args...)
	}

	resp := ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}

	var missing *core.MissingColumnsError
	if errors.As(err, &missing) {
		resp.Columns = missing.Columns
		resp.Message = userMsg.Message + ": " + strings.Join(missing.Columns, ", ")
	}
	return resp
}

// statusFor picks the HTTP status for an error.
func statusFor(err error) int {
	var (
		missing *core.MissingColumnsError
		invalid *core.RecordValidationError
	)

	switch {
	case errors.Is(err, core.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.As(err, &invalid), errors.Is(err, core.ErrNoValidRows):
		return http.StatusUnprocessableEntity
	case errors.As(err, &missing),
		errors.Is(err, core.ErrMalformedInput),
		errors.Is(err, errInvalidRecordID),
		errors.Is(err, errInvalidBody),
		errors.Is(err, errNoFile):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
