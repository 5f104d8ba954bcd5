package view

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"
)

var (
	// ErrNoRenderer is returned by New when there is no render target.
	ErrNoRenderer = errors.New("render target not found")

	// ErrUnknownColumn is returned when a setter names a column the table does not have.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrNotSortable is returned when sorting by a column declared not sortable.
	ErrNotSortable = errors.New("column is not sortable")

	// ErrNotFilterable is returned when filtering a column declared not filterable.
	ErrNotFilterable = errors.New("column is not filterable")
)

// Table owns the mutable state of one table instance and runs the pipeline.
// Every mutating method re-renders through the Renderer and returns its error.
type Table struct {
	opts     Options
	columns  []Column
	renderer Renderer
	logger   *slog.Logger

	data     []Record
	filters  Filters
	search   string
	sort     SortState
	pageSize int
	page     int

	cache    Cache
	info     PageInfo
	visible  []Record
	throttle *Throttle
	pending  bool

	listeners []func(ChangeEvent)
}

// TableOption configures a Table at construction.
type TableOption func(*Table)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) TableOption {
	return func(t *Table) { t.logger = logger }
}

// WithThrottle sets the window for SearchInput and FilterInput renders.
// A nil clock uses time.Now.
func WithThrottle(delay time.Duration, now func() time.Time) TableOption {
	return func(t *Table) { t.throttle = NewThrottle(delay, now) }
}

// OnChange registers fn to receive a ChangeEvent after every render.
func OnChange(fn func(ChangeEvent)) TableOption {
	return func(t *Table) { t.listeners = append(t.listeners, fn) }
}

// New creates a table from normalized options and renders it once with
// opts.Data. It fails only when r is nil.
func New(opts Options, r Renderer, options ...TableOption) (*Table, error) {
	if r == nil {
		return nil, ErrNoRenderer
	}

	t := &Table{
		renderer: r,
		logger:   slog.Default(),
		filters:  make(Filters),
		page:     1,
	}
	for _, o := range options {
		o(t)
	}
	if t.throttle == nil {
		t.throttle = NewThrottle(DefaultThrottleDelay, nil)
	}

	t.configure(opts)
	if err := t.Load(opts.Data); err != nil {
		return nil, err
	}
	return t, nil
}

// configure applies options without touching data or rendering.
func (t *Table) configure(opts Options) {
	t.opts = opts
	t.columns = opts.Columns
	t.pageSize = CoercePageSize(opts.RowsPerPage)
	t.sort = SortState{Key: opts.SortBy, Order: opts.SortOrder}
	if t.sort.Order == "" {
		t.sort.Order = Asc
	}
	t.cache.Invalidate()
}

// OnChange registers fn to receive a ChangeEvent after every render.
func (t *Table) OnChange(fn func(ChangeEvent)) {
	t.listeners = append(t.listeners, fn)
}

// Load replaces the data and resets filters, search and page.
func (t *Table) Load(records []Record) error {
	t.data = cloneRecords(records)
	t.filters = make(Filters)
	t.search = ""
	t.page = 1
	t.cache.Invalidate()
	return t.Update()
}

// SetData replaces the data and resets the page, keeping filters and search.
func (t *Table) SetData(records []Record) error {
	t.data = cloneRecords(records)
	t.page = 1
	t.cache.Invalidate()
	return t.Update()
}

// Insert adds r at the front (atFront) or the back of the data.
func (t *Table) Insert(r Record, atFront bool) error {
	if atFront {
		t.data = append([]Record{r}, t.data...)
	} else {
		t.data = append(t.data, r)
	}
	t.page = 1
	t.cache.Invalidate()
	return t.Update()
}

// RemoveAt deletes the record at data index i. Out-of-range indices are
// ignored and nothing is rendered. The page is clamped by Update if it no
// longer exists.
func (t *Table) RemoveAt(i int) error {
	if i < 0 || i >= len(t.data) {
		return nil
	}
	t.data = append(t.data[:i:i], t.data[i+1:]...)
	t.cache.Invalidate()
	return t.Update()
}

// SetPage moves to page p. Requests outside [1, PageCount] are ignored.
func (t *Table) SetPage(p int) error {
	count := pageCountFor(len(t.View()), t.pageSize)
	if p < 1 || p > count {
		return nil
	}
	t.page = p
	return t.Update()
}

// SetPageSize changes the page size (coerced with CoercePageSize) and goes
// back to page 1. The filtered view stays cached.
func (t *Table) SetPageSize(size any) error {
	t.pageSize = CoercePageSize(size)
	t.page = 1
	return t.Update()
}

// ClearFilters drops every column filter and the search term.
func (t *Table) ClearFilters() error {
	t.filters = make(Filters)
	t.search = ""
	t.page = 1
	t.cache.Invalidate()
	return t.Update()
}

// SetSearch sets the global search term. It is trimmed and lowercased.
func (t *Table) SetSearch(term string) error {
	t.applySearch(term)
	return t.Update()
}

// SearchInput is SetSearch for keystroke-driven input: the new term is
// always recorded, but rendering is throttled. A skipped render leaves the
// table pending until Flush or the next render.
func (t *Table) SearchInput(term string) error {
	t.applySearch(term)
	return t.throttledUpdate()
}

func (t *Table) applySearch(term string) {
	t.search = NormalizeSearch(term)
	t.page = 1
	t.cache.Invalidate()
}

// SetFilter sets the filter for column key. Blank values remove it.
// Free-text values are trimmed; select values are kept as given.
func (t *Table) SetFilter(key, value string) error {
	if err := t.applyFilter(key, value); err != nil {
		return err
	}
	return t.Update()
}

// FilterInput is SetFilter with a throttled render, see SearchInput.
func (t *Table) FilterInput(key, value string) error {
	if err := t.applyFilter(key, value); err != nil {
		return err
	}
	return t.throttledUpdate()
}

func (t *Table) applyFilter(key, value string) error {
	col, ok := t.column(key)
	if !ok {
		return fmt.Errorf("filter %q: %w", key, ErrUnknownColumn)
	}
	if !col.Filterable {
		return fmt.Errorf("filter %q: %w", key, ErrNotFilterable)
	}
	if !col.IsSelect() {
		value = strings.TrimSpace(value)
	}
	t.filters.Set(key, value)
	t.page = 1
	t.cache.Invalidate()
	return nil
}

// ToggleSort sorts by key ascending, or flips the order if key is already
// the sort column.
func (t *Table) ToggleSort(key string) error {
	order := Asc
	if t.sort.Key == key && t.sort.Order == Asc {
		order = Desc
	}
	return t.SetSort(key, order)
}

// SetSort sets the sort column and order. An empty key clears the sort.
func (t *Table) SetSort(key string, order SortOrder) error {
	if key != "" {
		col, ok := t.column(key)
		if !ok {
			return fmt.Errorf("sort %q: %w", key, ErrUnknownColumn)
		}
		if !col.Sortable {
			return fmt.Errorf("sort %q: %w", key, ErrNotSortable)
		}
	}
	if order != Desc {
		order = Asc
	}
	t.sort = SortState{Key: key, Order: order}
	t.page = 1
	t.cache.Invalidate()
	return t.Update()
}

// Refresh recomputes the view from scratch and re-renders.
func (t *Table) Refresh() error {
	t.cache.Invalidate()
	return t.Update()
}

// Reconfigure applies new options and reloads the current data, which
// resets filters, search and page.
func (t *Table) Reconfigure(opts Options) error {
	t.configure(opts)
	return t.Load(t.data)
}

// Flush renders if a throttled input skipped its render.
func (t *Table) Flush() error {
	if !t.pending {
		return nil
	}
	return t.Update()
}

// Pending reports whether state changed since the last render.
func (t *Table) Pending() bool { return t.pending }

func (t *Table) throttledUpdate() error {
	if !t.throttle.Allow() {
		t.pending = true
		return nil
	}
	return t.Update()
}

// Update runs the pipeline and renders the current page. It is the only
// place that renders, and it clamps the current page into [1, PageCount].
// Calling it again without a state change renders an identical frame.
func (t *Table) Update() error {
	rows := t.View()
	t.info = Paginate(len(rows), t.pageSize, t.page)
	t.page = t.info.Page
	t.visible = rows[t.info.Start:t.info.End]
	t.pending = false

	frame := Frame{
		Rows:     t.visible,
		Columns:  t.columns,
		Page:     t.info,
		Search:   t.search,
		Filters:  t.filters.Clone(),
		Sort:     t.sort,
		Filtered: t.IsFiltered(),
	}
	if err := t.renderer.Render(frame); err != nil {
		t.logger.Error("table render failed", "error", err)
		return fmt.Errorf("render: %w", err)
	}

	event := ChangeEvent{
		CurrentPage:       t.page,
		TotalRecords:      t.info.Total,
		ActiveFilterCount: len(t.filters),
	}
	for _, fn := range t.listeners {
		fn(event)
	}
	return nil
}

// View returns the whole filtered and sorted record set (all pages).
func (t *Table) View() []Record {
	return t.cache.Get(t.compute)
}

func (t *Table) compute() []Record {
	m := NewMatcher(t.columns, t.search, t.filters)
	rows := make([]Record, 0, len(t.data))
	for _, r := range t.data {
		if m.Match(r) {
			rows = append(rows, r)
		}
	}
	sortInPlace(rows, t.sort, t.columns)
	return rows
}

func (t *Table) column(key string) (Column, bool) {
	for _, col := range t.columns {
		if col.Key == key {
			return col, true
		}
	}
	return Column{}, false
}

// VisibleSlice returns the records on the current page as of the last render.
func (t *Table) VisibleSlice() []Record { return t.visible }

// TotalCount returns the number of records in the filtered view as of the last render.
func (t *Table) TotalCount() int { return t.info.Total }

// CurrentPage returns the 1-based current page.
func (t *Table) CurrentPage() int { return t.page }

// PageInfo returns the pagination metadata of the last render.
func (t *Table) PageInfo() PageInfo { return t.info }

// PageSize returns the effective page size.
func (t *Table) PageSize() int { return t.pageSize }

// Len returns the number of records in the backing data, ignoring filters.
func (t *Table) Len() int { return len(t.data) }

// Record returns the backing record at data index i.
func (t *Table) Record(i int) (Record, bool) {
	if i < 0 || i >= len(t.data) {
		return nil, false
	}
	return t.data[i], true
}

// IndexOf returns the data index of r, matched by identity rather than by
// content, or -1. Renderers use it to map a visible row back to RemoveAt.
func (t *Table) IndexOf(r Record) int {
	if r == nil {
		return -1
	}
	p := reflect.ValueOf(r).Pointer()
	for i, d := range t.data {
		if d != nil && reflect.ValueOf(d).Pointer() == p {
			return i
		}
	}
	return -1
}

// Filters returns a copy of the active column filters.
func (t *Table) Filters() Filters { return t.filters.Clone() }

// Search returns the normalized global search term.
func (t *Table) Search() string { return t.search }

// Sort returns the active sort.
func (t *Table) Sort() SortState { return t.sort }

// Columns returns the column definitions.
func (t *Table) Columns() []Column { return t.columns }

// Options returns the options the table was configured with.
func (t *Table) Options() Options { return t.opts }

// IsFiltered reports whether a search term or any column filter is active.
func (t *Table) IsFiltered() bool {
	return t.search != "" || len(t.filters) > 0
}

// CacheValid reports whether the filtered view is currently cached.
func (t *Table) CacheValid() bool { return t.cache.Valid() }

func cloneRecords(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	return out
}
