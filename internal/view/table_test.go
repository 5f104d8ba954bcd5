package view

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbered(n int) []Record {
	rows := make([]Record, n)
	for i := range rows {
		rows[i] = Record{"id": i + 1, "name": fmt.Sprintf("row %02d", i+1)}
	}
	return rows
}

func newTestTable(t *testing.T, rows []Record, opts ...TableOption) (*Table, *FrameRecorder) {
	t.Helper()
	rec := &FrameRecorder{}
	tbl, err := New(Options{
		Data: rows,
		Columns: []Column{
			{Key: "id", Title: "ID", Sortable: true, Filterable: true},
			{Key: "name", Title: "Name", Sortable: true, Filterable: true},
		},
		RowsPerPage: 10,
	}, rec, opts...)
	require.NoError(t, err)
	return tbl, rec
}

func TestNew_RequiresRenderer(t *testing.T) {
	_, err := New(Options{}, nil)
	assert.ErrorIs(t, err, ErrNoRenderer)
}

func TestNew_RendersInitialFrame(t *testing.T) {
	tbl, rec := newTestTable(t, numbered(15))

	assert.Equal(t, 1, rec.Frames())
	assert.Equal(t, 15, tbl.TotalCount())
	assert.Len(t, rec.Last().Rows, 10)
	assert.Equal(t, 2, rec.Last().Page.PageCount)
}

func TestTable_UpdateIsIdempotent(t *testing.T) {
	tbl, rec := newTestTable(t, numbered(23))
	require.NoError(t, tbl.SetSearch("row 1"))
	require.NoError(t, tbl.ToggleSort("name"))

	require.NoError(t, tbl.Update())
	first := rec.Last()
	page, total := tbl.CurrentPage(), tbl.TotalCount()

	require.NoError(t, tbl.Update())
	second := rec.Last()

	assert.Equal(t, first, second)
	assert.Equal(t, fmt.Sprint(first), fmt.Sprint(second))
	assert.Equal(t, page, tbl.CurrentPage())
	assert.Equal(t, total, tbl.TotalCount())
}

func TestTable_ViewCachedUntilMutation(t *testing.T) {
	tbl, _ := newTestTable(t, numbered(5))

	first := tbl.View()
	for i := 0; i < 4; i++ {
		again := tbl.View()
		require.Len(t, again, 5)
		assert.Same(t, &first[0], &again[0])
	}

	require.NoError(t, tbl.SetFilter("name", "row 03"))
	changed := tbl.View()
	require.Len(t, changed, 1)
	assert.Equal(t, 3, changed[0]["id"])
}

func TestTable_PageChangesKeepCache(t *testing.T) {
	tbl, _ := newTestTable(t, numbered(30))
	before := tbl.View()
	require.True(t, tbl.CacheValid())

	require.NoError(t, tbl.SetPage(2))
	require.NoError(t, tbl.SetPageSize(25))
	assert.Same(t, &before[0], &tbl.View()[0])

	require.NoError(t, tbl.SetSearch("row"))
	assert.NotSame(t, &before[0], &tbl.View()[0])
}

func TestTable_RemovalClampsPage(t *testing.T) {
	tbl, _ := newTestTable(t, numbered(21))
	require.NoError(t, tbl.SetPage(3))
	require.Equal(t, 3, tbl.CurrentPage())
	require.Len(t, tbl.VisibleSlice(), 1)
	assert.Equal(t, 21, tbl.VisibleSlice()[0]["id"])

	require.NoError(t, tbl.RemoveAt(20))

	assert.Equal(t, 20, tbl.TotalCount())
	assert.Equal(t, 2, tbl.PageInfo().PageCount)
	assert.Equal(t, 2, tbl.CurrentPage())
}

func TestTable_RemoveAtOutOfRangeIsNoOp(t *testing.T) {
	tbl, rec := newTestTable(t, numbered(3))
	frames := rec.Frames()

	require.NoError(t, tbl.RemoveAt(-1))
	require.NoError(t, tbl.RemoveAt(3))

	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, frames, rec.Frames(), "no render for a no-op removal")
}

func TestTable_SetDataRoundTrip(t *testing.T) {
	tbl, _ := newTestTable(t, nil)
	rows := numbered(12)

	require.NoError(t, tbl.SetData(rows))

	visible := tbl.VisibleSlice()
	require.Len(t, visible, 10)
	for i, r := range visible {
		assert.Equal(t, rows[i]["id"], r["id"])
	}
}

func TestTable_SetPageIgnoresOutOfRange(t *testing.T) {
	tbl, rec := newTestTable(t, numbered(25))
	frames := rec.Frames()

	require.NoError(t, tbl.SetPage(0))
	require.NoError(t, tbl.SetPage(4))
	assert.Equal(t, 1, tbl.CurrentPage())
	assert.Equal(t, frames, rec.Frames())

	require.NoError(t, tbl.SetPage(3))
	assert.Equal(t, 3, tbl.CurrentPage())
	assert.Len(t, tbl.VisibleSlice(), 5)
}

func TestTable_SettersResetPage(t *testing.T) {
	tests := []struct {
		name string
		do   func(*Table) error
	}{
		{"search", func(tb *Table) error { return tb.SetSearch("row") }},
		{"filter", func(tb *Table) error { return tb.SetFilter("name", "row") }},
		{"sort", func(tb *Table) error { return tb.ToggleSort("id") }},
		{"page size", func(tb *Table) error { return tb.SetPageSize("5") }},
		{"clear", func(tb *Table) error { return tb.ClearFilters() }},
		{"insert", func(tb *Table) error { return tb.Insert(Record{"id": 99}, false) }},
		{"set data", func(tb *Table) error { return tb.SetData(numbered(30)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, _ := newTestTable(t, numbered(30))
			require.NoError(t, tbl.SetPage(3))

			require.NoError(t, tt.do(tbl))
			assert.Equal(t, 1, tbl.CurrentPage())
		})
	}
}

func TestTable_LoadResetsFiltersButSetDataKeepsThem(t *testing.T) {
	tbl, _ := newTestTable(t, numbered(10))
	require.NoError(t, tbl.SetFilter("name", "row 0"))
	require.NoError(t, tbl.SetSearch("  ROW "))

	require.NoError(t, tbl.SetData(numbered(12)))
	assert.Equal(t, Filters{"name": "row 0"}, tbl.Filters())
	assert.Equal(t, "row", tbl.Search())
	assert.Equal(t, 9, tbl.TotalCount())

	require.NoError(t, tbl.Load(numbered(12)))
	assert.Empty(t, tbl.Filters())
	assert.Empty(t, tbl.Search())
	assert.Equal(t, 12, tbl.TotalCount())
}

func TestTable_BlankFilterRemovesEntry(t *testing.T) {
	tbl, _ := newTestTable(t, numbered(10))
	require.NoError(t, tbl.SetFilter("name", "row"))
	require.Len(t, tbl.Filters(), 1)

	require.NoError(t, tbl.SetFilter("name", "   "))
	assert.Empty(t, tbl.Filters())
	assert.False(t, tbl.IsFiltered())
}

func TestTable_SetFilterErrors(t *testing.T) {
	rec := &FrameRecorder{}
	tbl, err := New(Options{Columns: []Column{
		{Key: "a", Title: "A", Filterable: false, Sortable: false},
	}}, rec)
	require.NoError(t, err)

	assert.ErrorIs(t, tbl.SetFilter("missing", "x"), ErrUnknownColumn)
	assert.ErrorIs(t, tbl.SetFilter("a", "x"), ErrNotFilterable)
	assert.ErrorIs(t, tbl.ToggleSort("a"), ErrNotSortable)
	assert.ErrorIs(t, tbl.SetSort("missing", Asc), ErrUnknownColumn)
}

func TestTable_ToggleSort(t *testing.T) {
	tbl, _ := newTestTable(t, numbered(3))

	require.NoError(t, tbl.ToggleSort("name"))
	assert.Equal(t, SortState{Key: "name", Order: Asc}, tbl.Sort())

	require.NoError(t, tbl.ToggleSort("name"))
	assert.Equal(t, SortState{Key: "name", Order: Desc}, tbl.Sort())
	assert.Equal(t, 3, tbl.VisibleSlice()[0]["id"])

	require.NoError(t, tbl.ToggleSort("id"))
	assert.Equal(t, SortState{Key: "id", Order: Asc}, tbl.Sort())
}

func TestTable_Insert(t *testing.T) {
	tbl, _ := newTestTable(t, numbered(2))

	require.NoError(t, tbl.Insert(Record{"id": 0, "name": "front"}, true))
	require.NoError(t, tbl.Insert(Record{"id": 9, "name": "back"}, false))

	view := tbl.View()
	require.Len(t, view, 4)
	assert.Equal(t, "front", view[0]["name"])
	assert.Equal(t, "back", view[3]["name"])
}

func TestTable_ChangeEvents(t *testing.T) {
	var events []ChangeEvent
	tbl, _ := newTestTable(t, numbered(21), OnChange(func(e ChangeEvent) {
		events = append(events, e)
	}))

	require.NoError(t, tbl.SetFilter("name", "row"))
	require.NoError(t, tbl.SetPage(3))

	require.Len(t, events, 3)
	assert.Equal(t, ChangeEvent{CurrentPage: 1, TotalRecords: 21, ActiveFilterCount: 0}, events[0])
	assert.Equal(t, ChangeEvent{CurrentPage: 1, TotalRecords: 21, ActiveFilterCount: 1}, events[1])
	assert.Equal(t, ChangeEvent{CurrentPage: 3, TotalRecords: 21, ActiveFilterCount: 1}, events[2])
}

func TestTable_SearchInputThrottlesRenderButKeepsState(t *testing.T) {
	clock := newFakeClock()
	tbl, rec := newTestTable(t, numbered(30), WithThrottle(300*time.Millisecond, clock.Now))
	frames := rec.Frames()

	require.NoError(t, tbl.SearchInput("r"))
	assert.Equal(t, frames+1, rec.Frames(), "first keystroke renders")

	clock.Advance(50 * time.Millisecond)
	require.NoError(t, tbl.SearchInput("row 2"))
	clock.Advance(50 * time.Millisecond)
	require.NoError(t, tbl.SearchInput("row 25"))

	assert.Equal(t, frames+1, rec.Frames(), "keystrokes inside the window are dropped")
	assert.Equal(t, "row 25", tbl.Search(), "final state is recorded")
	assert.True(t, tbl.Pending())

	require.NoError(t, tbl.Flush())
	assert.Equal(t, frames+2, rec.Frames())
	assert.False(t, tbl.Pending())
	assert.Equal(t, "row 25", rec.Last().Search)
	assert.Len(t, rec.Last().Rows, 1)

	require.NoError(t, tbl.Flush())
	assert.Equal(t, frames+2, rec.Frames(), "nothing pending, nothing rendered")
}

func TestTable_FilterInputTrimsFreeText(t *testing.T) {
	tbl, _ := newTestTable(t, numbered(5), WithThrottle(0, nil))

	require.NoError(t, tbl.FilterInput("name", "  row 04  "))
	assert.Equal(t, Filters{"name": "row 04"}, tbl.Filters())
	assert.Equal(t, 1, tbl.TotalCount())
}

func TestTable_EmptyData(t *testing.T) {
	tbl, rec := newTestTable(t, nil)

	info := tbl.PageInfo()
	assert.Equal(t, 1, info.PageCount)
	assert.Equal(t, 0, info.From)
	assert.Equal(t, 0, info.To)
	assert.Empty(t, tbl.VisibleSlice())
	assert.True(t, rec.Last().Empty())
}

func TestTable_Reconfigure(t *testing.T) {
	tbl, _ := newTestTable(t, numbered(30))
	require.NoError(t, tbl.SetFilter("name", "row 1"))

	require.NoError(t, tbl.Reconfigure(Options{
		Columns:     tbl.Columns(),
		RowsPerPage: 25,
		SortBy:      "id",
		SortOrder:   Desc,
	}))

	assert.Empty(t, tbl.Filters())
	assert.Equal(t, 25, tbl.PageSize())
	// ids compare as text, so "9" is the largest
	assert.Equal(t, 9, tbl.VisibleSlice()[0]["id"])
}

type failingRenderer struct{ err error }

func (f failingRenderer) Render(Frame) error { return f.err }

func TestTable_RenderErrorIsReturned(t *testing.T) {
	boom := errors.New("boom")
	_, err := New(Options{}, failingRenderer{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestTable_IndexOfMatchesByIdentity(t *testing.T) {
	tbl, rec := newTestTable(t, numbered(5))
	require.NoError(t, tbl.SetSort("id", Desc))

	top := rec.Last().Rows[0]
	assert.Equal(t, 4, tbl.IndexOf(top))
	assert.Equal(t, -1, tbl.IndexOf(Record{"id": 5, "name": "row 05"}), "equal content is a different record")
	assert.Equal(t, -1, tbl.IndexOf(nil))

	require.NoError(t, tbl.RemoveAt(tbl.IndexOf(top)))
	assert.Equal(t, 4, tbl.Len())
}
