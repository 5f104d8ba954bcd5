package web

// handlers_actions.go maps table operations onto routes. Each handler reads
// its parameters, drives the session's table and responds with the new state.

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/tablesorter/internal/logging"
	"github.com/JonMunkholm/tablesorter/internal/view"
)

// handleRows returns the whole filtered and sorted view (every page).
func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var rows []view.Record
	sess.Do(func(t *view.Table) error {
		rows = t.View()
		return nil
	})
	if rows == nil {
		rows = []view.Record{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"total": len(rows),
		"rows":  rows,
	})
}

// handleRow returns one backing record by data index.
func (s *Server) handleRow(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	index, err := rowIndex(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var (
		rec view.Record
		ok  bool
	)
	sess.Do(func(t *view.Table) error {
		rec, ok = t.Record(index)
		return nil
	})
	if !ok {
		s.respondError(w, r, fmt.Errorf("%w: index %d", ErrRowNotFound, index))
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}

// handleSearch sets the global search term. input=1 marks keystroke-driven
// input, which renders at most once per throttle window.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(t *view.Table, p params) error {
		input, err := p.Bool("input", false)
		if err != nil {
			return err
		}
		if input {
			return t.SearchInput(p.String("q"))
		}
		return t.SetSearch(p.String("q"))
	})
}

// handleFilter sets or clears one column filter.
func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(t *view.Table, p params) error {
		key, err := p.Required("key")
		if err != nil {
			return err
		}
		input, err := p.Bool("input", false)
		if err != nil {
			return err
		}
		if input {
			return t.FilterInput(key, p.String("value"))
		}
		return t.SetFilter(key, p.String("value"))
	})
}

// handleSort sorts by key. Without an order the sort toggles; an empty key
// with an explicit order clears the sort.
func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(t *view.Table, p params) error {
		key := p.String("key")
		if order := p.String("order"); order != "" {
			return t.SetSort(key, view.ParseSortOrder(order))
		}
		if key == "" {
			return fmt.Errorf("%w: missing key", ErrBadRequest)
		}
		return t.ToggleSort(key)
	})
}

// handlePage moves to a page. Pages outside the range are ignored.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(t *view.Table, p params) error {
		page, err := p.Int("page")
		if err != nil {
			return err
		}
		return t.SetPage(page)
	})
}

// handlePageSize changes the rows per page. Values are coerced the way
// configuration is, so "25" and "25 rows" both mean 25.
func (s *Server) handlePageSize(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(t *view.Table, p params) error {
		return t.SetPageSize(p.String("size"))
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(t *view.Table, _ params) error {
		return t.ClearFilters()
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(t *view.Table, _ params) error {
		return t.Refresh()
	})
}

// handleFlush renders a throttled input that skipped its render.
func (s *Server) handleFlush(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(t *view.Table, _ params) error {
		return t.Flush()
	})
}

// handleInsert adds a record. The record comes from the "record" parameter
// as a JSON object; without one, the server's record generator is used.
// Records go to the front unless atFront is false.
func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(t *view.Table, p params) error {
		rec, ok, err := p.Record("record")
		if err != nil {
			return err
		}
		if !ok {
			if s.newRecord == nil {
				return fmt.Errorf("%w: missing record", ErrBadRequest)
			}
			rec = s.newRecord(t.Len() + 1)
		}
		atFront, err := p.Bool("atFront", true)
		if err != nil {
			return err
		}
		return t.Insert(rec, atFront)
	})
}

// handleRemove deletes the backing record at {index}. Out-of-range
// indices leave the table unchanged.
func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	index, err := rowIndex(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.act(w, r, func(t *view.Table, _ params) error {
		return t.RemoveAt(index)
	})
}

// handleOptions reconfigures the session's table from a JSON options
// document. Omitted data keeps the current records; columns, page size,
// sort and locale come from the document. Filters and search are reset.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.respondError(w, r, fmt.Errorf("%w: read body: %v", ErrBadRequest, err))
		return
	}
	opts, err := view.ParseOptions(body, logging.FromContext(r.Context()))
	if err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	st, err := sess.Do(func(t *view.Table) error {
		if opts.Data == nil {
			return t.Reconfigure(opts)
		}
		data := opts.Data
		opts.Data = nil
		if err := t.Reconfigure(opts); err != nil {
			return err
		}
		return t.Load(data)
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, sess, st)
}

func rowIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, fmt.Errorf("%w: row index must be an integer", ErrBadRequest)
	}
	return index, nil
}
