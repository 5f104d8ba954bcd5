package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//   - Formatted for the client: htmx fragment, JSON, or plain text
//
// Error codes for support reference:
//
//	SES001 - Session not found: the table session expired or never existed
//	COL001 - Unknown column: the request names a column the table does not have
//	COL002 - Not sortable: the column is declared not sortable
//	COL003 - Not filterable: the column is declared not filterable
//	REQ001 - Bad request: the request body or parameters could not be read
//	REQ002 - Row not found: no record at the given index
//	REQ003 - Timeout: the request or a source load timed out
//	SRC001 - Unsupported source: the data source format is not understood
//	SRC002 - File too large: the data source exceeds the size limit
//	SRC003 - No source: reload requested but nothing to reload from
//	RATE001 - Rate limited: too many requests
//	ERR000 - Unknown error: anything else

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/tablesorter/internal/logging"
	"github.com/JonMunkholm/tablesorter/internal/source"
	"github.com/JonMunkholm/tablesorter/internal/view"
	"github.com/JonMunkholm/tablesorter/internal/web/templates"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session IDs.
	ErrSessionNotFound = errors.New("session not found")

	// ErrBadRequest wraps request decoding and parameter problems.
	ErrBadRequest = errors.New("bad request")

	// ErrRowNotFound is returned when a row index is out of range.
	ErrRowNotFound = errors.New("row not found")

	// ErrRateLimited is returned by the rate limiter.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrNoSource is returned when a reload is requested without a source.
	ErrNoSource = errors.New("no data source configured")
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
	Status  int    // HTTP status for the response
}

// errorMapping pairs a sentinel error with its user message.
type errorMapping struct {
	target error
	msg    UserMessage
}

// errorMappings is checked in order with errors.Is; the first match wins.
var errorMappings = []errorMapping{
	{ErrSessionNotFound, UserMessage{
		Message: "Table session not found",
		Action:  "The session may have expired. Reload the page to start a new one",
		Code:    "SES001",
		Status:  http.StatusNotFound,
	}},
	{view.ErrUnknownColumn, UserMessage{
		Message: "Unknown column",
		Action:  "Check the column key against the table's columns",
		Code:    "COL001",
		Status:  http.StatusBadRequest,
	}},
	{view.ErrNotSortable, UserMessage{
		Message: "This column cannot be sorted",
		Action:  "Sort by a sortable column",
		Code:    "COL002",
		Status:  http.StatusBadRequest,
	}},
	{view.ErrNotFilterable, UserMessage{
		Message: "This column cannot be filtered",
		Action:  "Use the global search instead",
		Code:    "COL003",
		Status:  http.StatusBadRequest,
	}},
	{ErrBadRequest, UserMessage{
		Message: "The request could not be read",
		Action:  "Check the parameters and try again",
		Code:    "REQ001",
		Status:  http.StatusBadRequest,
	}},
	{ErrRowNotFound, UserMessage{
		Message: "Row not found",
		Action:  "Refresh the table and try again",
		Code:    "REQ002",
		Status:  http.StatusNotFound,
	}},
	{source.ErrUnsupportedSource, UserMessage{
		Message: "The data source format is not supported",
		Action:  "Use a CSV or JSON file, or a database table",
		Code:    "SRC001",
		Status:  http.StatusUnprocessableEntity,
	}},
	{source.ErrFileTooLarge, UserMessage{
		Message: "The data source is too large",
		Action:  "Split the file into smaller files",
		Code:    "SRC002",
		Status:  http.StatusRequestEntityTooLarge,
	}},
	{ErrNoSource, UserMessage{
		Message: "There is no data source to reload from",
		Action:  "Configure SOURCE_PATH or SOURCE_DB_TABLE",
		Code:    "SRC003",
		Status:  http.StatusConflict,
	}},
	{ErrRateLimited, UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
		Status:  http.StatusTooManyRequests,
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "Request timed out",
		Action:  "Please try again",
		Code:    "REQ003",
		Status:  http.StatusGatewayTimeout,
	}},
}

// defaultMessage is returned when no mapping matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
	Status:  http.StatusInternalServerError,
}

// MapError converts a technical error into a user-friendly message.
// A nil error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.msg
		}
	}
	return defaultMessage
}

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error server-side and writes the mapped
// user message in the format the client expects.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	userMsg := MapError(err)

	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", userMsg.Status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if userMsg.Status >= http.StatusInternalServerError {
		logger.Error("request error", args...)
	} else {
		logger.Warn("request error", args...)
	}

	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, userMsg)
	case wantsJSON(r):
		respondErrorJSON(w, userMsg)
	default:
		respondErrorText(w, userMsg)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg UserMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(msg.Status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondErrorText writes a plain text error response.
func respondErrorText(w http.ResponseWriter, msg UserMessage) {
	http.Error(w, msg.Message+" ("+msg.Code+")", msg.Status)
}

// renderErrorPartial renders an htmx error fragment into the alert area.
// htmx only swaps 2xx responses, so the status travels in X-Error-Status.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg UserMessage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("HX-Retarget", "#table-alert")
	w.Header().Set("HX-Reswap", "innerHTML")
	w.Header().Set("X-Error-Status", strconv.Itoa(msg.Status))
	w.WriteHeader(http.StatusOK)
	templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

// isHTMX checks if the request is an htmx request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if isHTMX(r) {
		return false
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
