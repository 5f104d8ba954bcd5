package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JonMunkholm/tablesorter/internal/source"
	"github.com/JonMunkholm/tablesorter/internal/view"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"session", fmt.Errorf("%w: abc", ErrSessionNotFound), "SES001", http.StatusNotFound},
		{"unknown column", fmt.Errorf("sort %q: %w", "x", view.ErrUnknownColumn), "COL001", http.StatusBadRequest},
		{"not sortable", view.ErrNotSortable, "COL002", http.StatusBadRequest},
		{"not filterable", view.ErrNotFilterable, "COL003", http.StatusBadRequest},
		{"bad request", ErrBadRequest, "REQ001", http.StatusBadRequest},
		{"row", ErrRowNotFound, "REQ002", http.StatusNotFound},
		{"timeout", fmt.Errorf("load: %w", context.DeadlineExceeded), "REQ003", http.StatusGatewayTimeout},
		{"unsupported source", source.ErrUnsupportedSource, "SRC001", http.StatusUnprocessableEntity},
		{"too large", source.ErrFileTooLarge, "SRC002", http.StatusRequestEntityTooLarge},
		{"no source", ErrNoSource, "SRC003", http.StatusConflict},
		{"rate", ErrRateLimited, "RATE001", http.StatusTooManyRequests},
		{"unknown", errors.New("disk on fire"), "ERR000", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := MapError(tt.err)
			if msg.Code != tt.code {
				t.Errorf("Code = %q, want %q", msg.Code, tt.code)
			}
			if msg.Status != tt.status {
				t.Errorf("Status = %d, want %d", msg.Status, tt.status)
			}
			if msg.Message == "" || msg.Action == "" {
				t.Errorf("message and action should be set: %+v", msg)
			}
		})
	}

	if got := MapError(nil); got != (UserMessage{}) {
		t.Errorf("MapError(nil) = %+v, want zero", got)
	}
}

func TestMapError_DoesNotLeakDetails(t *testing.T) {
	msg := MapError(errors.New("pq: password authentication failed for user admin"))
	if msg.Message != defaultMessage.Message {
		t.Errorf("Message = %q, want generic message", msg.Message)
	}
}

func TestWantsJSON(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		header map[string]string
		want   bool
	}{
		{"api path", "/api/t/x", nil, true},
		{"accept header", "/t/x", map[string]string{"Accept": "application/json"}, true},
		{"json body", "/t/x/search", map[string]string{"Content-Type": "application/json"}, true},
		{"browser", "/t/x", map[string]string{"Accept": "text/html"}, false},
		{"htmx on api path", "/api/t/x", map[string]string{"HX-Request": "true"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}
			if got := wantsJSON(r); got != tt.want {
				t.Errorf("wantsJSON() = %v, want %v", got, tt.want)
			}
		})
	}
}
