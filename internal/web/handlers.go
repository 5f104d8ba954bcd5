package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/tablesorter/internal/locale"
	"github.com/JonMunkholm/tablesorter/internal/logging"
	"github.com/JonMunkholm/tablesorter/internal/view"
	"github.com/JonMunkholm/tablesorter/internal/web/templates"
)

// ColumnState is a column as exposed by the JSON API.
type ColumnState struct {
	Key        string              `json:"key"`
	Title      string              `json:"title"`
	Width      string              `json:"width,omitempty"`
	Sortable   bool                `json:"sortable"`
	Filterable bool                `json:"filterable"`
	Options    []view.SelectOption `json:"selectOptions,omitempty"`
}

// TableState is the JSON view of a session.
type TableState struct {
	Session   string         `json:"session"`
	Rows      []view.Record  `json:"rows"`
	Columns   []ColumnState  `json:"columns"`
	Page      view.PageInfo  `json:"page"`
	Search    string         `json:"search"`
	Filters   view.Filters   `json:"filters"`
	Sort      view.SortState `json:"sort"`
	Filtered  bool           `json:"filtered"`
	Pending   bool           `json:"pending"`
	Records   int            `json:"records"`
	Summary   string         `json:"summary"`
	Empty     []string       `json:"empty,omitempty"`
	PageSizes []int          `json:"pageSizes"`
}

func newTableState(id string, st State) TableState {
	f := st.Frame
	tr := translator(st.Options)

	cols := make([]ColumnState, len(f.Columns))
	for i, c := range f.Columns {
		cols[i] = ColumnState{
			Key:        c.Key,
			Title:      c.Title,
			Width:      c.Width,
			Sortable:   c.Sortable,
			Filterable: c.Filterable,
			Options:    c.Options,
		}
	}

	rows := f.Rows
	if rows == nil {
		rows = []view.Record{}
	}

	ts := TableState{
		Session:   id,
		Rows:      rows,
		Columns:   cols,
		Page:      f.Page,
		Search:    st.Search,
		Filters:   st.Filters,
		Sort:      f.Sort,
		Filtered:  f.Filtered,
		Pending:   st.Pending,
		Records:   st.Records,
		Summary:   tr.Showing(f.Page.From, f.Page.To, f.Page.Total, f.Filtered),
		PageSizes: view.PageSizeChoices,
	}
	if f.Empty() {
		ts.Empty = tr.EmptyMessage(f.Filtered)
	}
	return ts
}

func translator(opts view.Options) *locale.Translator {
	return locale.New(opts.Locale, opts.Translations)
}

// tableData builds the template input for a session's fragment.
func (s *Server) tableData(id string, st State) templates.TableData {
	return templates.TableData{
		Base:       "/t/" + id,
		Frame:      st.Frame,
		Search:     st.Search,
		Filters:    st.Filters,
		T:          translator(st.Options),
		ShowSearch: st.Options.ShowSearch,
		PageSizes:  view.PageSizeChoices,
		Pending:    st.Pending,
		FlushAfter: s.cfg.Table.ThrottleDelay,
		CanAddRow:  s.newRecord != nil,
	}
}

// respond writes the session state in the format the client expects:
// the table fragment for htmx, JSON for API clients, and a redirect back
// to the page for plain form posts.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, sess *Session, st State) {
	switch {
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.Table(s.tableData(sess.ID, st)).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render table fragment", "session", sess.ID, "error", err)
		}
	case wantsJSON(r):
		writeJSON(w, r, http.StatusOK, newTableState(sess.ID, st))
	default:
		http.Redirect(w, r, "/t/"+sess.ID, http.StatusSeeOther)
	}
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}

// session resolves the {id} route parameter.
func (s *Server) session(r *http.Request) (*Session, error) {
	return s.sessions.Get(chi.URLParam(r, "id"))
}

// act runs fn against the request's session and responds with the result.
func (s *Server) act(w http.ResponseWriter, r *http.Request, fn func(t *view.Table, p params) error) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	p, err := readParams(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	st, err := sess.Do(func(t *view.Table) error { return fn(t, p) })
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, sess, st)
}

// handleHealth reports liveness and the number of sessions.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

// handleIndex starts a session and redirects to its page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("session created", "session", sess.ID)
	http.Redirect(w, r, "/t/"+sess.ID, http.StatusSeeOther)
}

// handleTablePage renders the full page, or the fragment for htmx.
func (s *Server) handleTablePage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		if !isHTMX(r) && !wantsJSON(r) {
			// Expired bookmark: start over
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		s.respondError(w, r, err)
		return
	}

	st, _ := sess.Do(func(*view.Table) error { return nil })
	if isHTMX(r) || wantsJSON(r) {
		s.respond(w, r, sess, st)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Page(s.title, s.tableData(sess.ID, st)).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render table page", "session", sess.ID, "error", err)
	}
}

// handleCreateSession starts a session for an API client.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	st, _ := sess.Do(func(*view.Table) error { return nil })

	logging.FromContext(r.Context()).Info("session created", "session", sess.ID, "api", true)
	w.Header().Set("Location", "/api/t/"+sess.ID)
	writeJSON(w, r, http.StatusCreated, newTableState(sess.ID, st))
}

// handleDeleteSession ends a session.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.sessions.Delete(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

// handleState returns the session's current state.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(*view.Table, params) error { return nil })
}
