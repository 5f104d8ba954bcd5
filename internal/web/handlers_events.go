package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/tablesorter/internal/logging"
	"github.com/JonMunkholm/tablesorter/internal/view"
)

// handleEvents streams the session's change events via Server-Sent Events.
// Every render emits a "table-updated" event; a "closed" event is sent when
// the session ends.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	events, cancel := sess.Subscribe()
	defer cancel()

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, r, errors.New("streaming not supported"))
		return
	}

	// The stream outlives the server's write timeout.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logging.FromContext(r.Context()).Warn("clear write deadline", "error", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	eventID := 0
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				fmt.Fprintf(w, "event: closed\ndata: {}\n\n")
				flusher.Flush()
				return
			}

			eventID++
			data, _ := json.Marshal(ev)
			fmt.Fprintf(w, "id: %d\nevent: table-updated\ndata: %s\n\n", eventID, data)
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// reloadResult reports a source reload.
type reloadResult struct {
	Records  int `json:"records"`
	Sessions int `json:"sessions"`
}

// handleReload re-reads the data source. New sessions start from the fresh
// options; live sessions get the new records and keep their filters, search
// and sort.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.reload == nil {
		s.respondError(w, r, ErrNoSource)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Source.LoadTimeout)
	defer cancel()

	opts, err := s.reload(ctx)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("reload source: %w", err))
		return
	}
	s.setOptions(opts)

	var result reloadResult
	result.Records = len(opts.Data)
	s.sessions.Each(func(sess *Session) {
		_, err := sess.Do(func(t *view.Table) error { return t.SetData(opts.Data) })
		if err != nil {
			logging.FromContext(r.Context()).Error("reload session", "session", sess.ID, "error", err)
			return
		}
		result.Sessions++
	})

	logging.FromContext(r.Context()).Info("source reloaded", "records", result.Records, "sessions", result.Sessions)
	writeJSON(w, r, http.StatusOK, result)
}
