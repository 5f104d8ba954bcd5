package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/tablesorter/internal/locale"
	"github.com/JonMunkholm/tablesorter/internal/view"
)

// Table renders the swappable table fragment.
func Table(d TableData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		f := d.Frame

		h.raw(`<div id="table-root" class="rts" hx-target="#table-root" hx-swap="outerHTML">`)
		h.raw(`<div id="table-alert" role="alert"></div>`)

		toolbar(h, d)

		h.raw(`<table><thead><tr>`)
		for _, col := range f.Columns {
			header(h, d, col)
		}
		h.raw(`</tr><tr class="rts-filters">`)
		for _, col := range f.Columns {
			filterCell(h, d, col)
		}
		h.raw(`</tr></thead><tbody id="rts-body">`)
		if f.Empty() {
			h.raw(`<tr><td class="rts-empty"`)
			h.attr("colspan", itoa(max(len(f.Columns), 1)))
			h.raw(`>`)
			for i, line := range d.T.EmptyMessage(f.Filtered) {
				if i > 0 {
					h.raw(`<br>`)
				}
				h.text(line)
			}
			h.raw(`</td></tr>`)
		}
		for _, rec := range f.Rows {
			h.raw(`<tr>`)
			for _, col := range f.Columns {
				h.raw(`<td>`)
				highlighted(h, col.Text(rec), f.Search)
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table>`)

		footer(h, d)

		h.raw(`<div id="rts-flush">`)
		if d.Pending {
			h.raw(`<div`)
			h.attr("hx-post", d.Base+"/flush")
			h.attr("hx-trigger", "load delay:"+itoa(int(d.FlushAfter.Milliseconds()))+"ms")
			resultsOnly(h)
			h.raw(`></div>`)
		}
		h.raw(`</div></div>`)
		return h.err
	})
}

func toolbar(h *htmlWriter, d TableData) {
	h.raw(`<div class="rts-toolbar">`)
	if d.ShowSearch {
		h.raw(`<input id="rts-search" type="search" name="q"`)
		h.attr("value", d.Search)
		h.attr("placeholder", d.T.T(locale.SearchPlaceholder))
		h.attr("hx-post", d.Base+"/search")
		h.attr("hx-trigger", "input changed")
		h.attr("hx-vals", vals(map[string]string{"input": "1"}))
		resultsOnly(h)
		h.raw(`>`)
	}
	h.raw(`<button type="button"`)
	h.attr("hx-post", d.Base+"/clear")
	h.raw(`>`)
	h.text(d.T.T(locale.ClearFilters))
	h.raw(`</button>`)
	if d.CanAddRow {
		h.raw(`<button type="button"`)
		h.attr("hx-post", d.Base+"/rows")
		h.raw(`>+</button>`)
	}
	h.raw(`<span class="htmx-indicator">`)
	h.text(d.T.T(locale.Loading))
	h.raw(`</span></div>`)
}

func header(h *htmlWriter, d TableData, col view.Column) {
	h.raw(`<th`)
	if col.Width != "" {
		h.attr("style", "width:"+col.Width)
	}
	if d.Frame.Sort.Key == col.Key {
		if d.Frame.Sort.Order == view.Desc {
			h.attr("aria-sort", "descending")
		} else {
			h.attr("aria-sort", "ascending")
		}
	}
	h.raw(`>`)
	if !col.Sortable {
		h.text(col.Title)
		h.raw(`</th>`)
		return
	}

	h.raw(`<button type="button"`)
	h.attr("hx-post", d.Base+"/sort")
	h.attr("hx-vals", vals(map[string]string{"key": col.Key}))
	h.raw(`>`)
	h.text(col.Title)
	h.raw(` `)
	h.text(sortIndicator(d.Frame.Sort, col.Key))
	h.raw(`</button></th>`)
}

func sortIndicator(s view.SortState, key string) string {
	switch {
	case s.Key != key:
		return "↕"
	case s.Order == view.Desc:
		return "▼"
	default:
		return "▲"
	}
}

func filterCell(h *htmlWriter, d TableData, col view.Column) {
	h.raw(`<th>`)
	defer h.raw(`</th>`)
	if !col.Filterable {
		return
	}

	current := d.Filters[col.Key]
	id := "rts-filter-" + col.Key

	if col.IsSelect() {
		h.raw(`<select name="value"`)
		h.attr("id", id)
		h.attr("aria-label", d.T.T(locale.Filter)+" "+col.Title)
		h.attr("hx-post", d.Base+"/filter")
		h.attr("hx-trigger", "change")
		h.attr("hx-vals", vals(map[string]string{"key": col.Key}))
		h.raw(`><option value="">`)
		h.text(d.T.T(locale.All))
		h.raw(`</option>`)
		for _, opt := range col.Options {
			h.raw(`<option`)
			h.attr("value", opt.Value)
			if opt.Value == current {
				h.raw(` selected`)
			}
			h.raw(`>`)
			h.text(opt.Label)
			h.raw(`</option>`)
		}
		h.raw(`</select>`)
		return
	}

	h.raw(`<input type="text" name="value"`)
	h.attr("id", id)
	h.attr("value", current)
	h.attr("placeholder", d.T.T(locale.Filter))
	h.attr("aria-label", d.T.T(locale.Filter)+" "+col.Title)
	h.attr("hx-post", d.Base+"/filter")
	h.attr("hx-trigger", "input changed")
	h.attr("hx-vals", vals(map[string]string{"key": col.Key, "input": "1"}))
	resultsOnly(h)
	h.raw(`>`)
}

// resultsOnly makes a keystroke-driven control swap just the body, footer
// and flush trigger, leaving the input being typed in untouched.
func resultsOnly(h *htmlWriter) {
	h.attr("hx-target", "#rts-body")
	h.attr("hx-select", "#rts-body")
	h.attr("hx-swap", "outerHTML")
	h.attr("hx-select-oob", "#rts-footer,#rts-flush")
}

// highlighted writes text with search matches wrapped in <mark>.
func highlighted(h *htmlWriter, text, term string) {
	for _, seg := range view.Highlight(text, term) {
		if seg.Match {
			h.raw(`<mark>`)
			h.text(seg.Text)
			h.raw(`</mark>`)
		} else {
			h.text(seg.Text)
		}
	}
}

func footer(h *htmlWriter, d TableData) {
	p := d.Frame.Page

	h.raw(`<div id="rts-footer" class="rts-footer"><span class="rts-summary">`)
	h.text(d.T.Showing(p.From, p.To, p.Total, d.Frame.Filtered))
	h.raw(`</span><label>`)
	h.text(d.T.T(locale.RowsPerPage))
	h.raw(` <select id="rts-page-size" name="size"`)
	h.attr("hx-post", d.Base+"/page-size")
	h.attr("hx-trigger", "change")
	h.raw(`>`)
	for _, size := range d.PageSizes {
		h.raw(`<option`)
		h.attr("value", itoa(size))
		if size == p.PageSize {
			h.raw(` selected`)
		}
		h.raw(`>`)
		h.text(itoa(size))
		h.raw(`</option>`)
	}
	h.raw(`</select></label><nav class="rts-pages">`)

	pageButton(h, d.Base, p.Page-1, d.T.T(locale.Previous), !p.HasPrev(), false)
	for _, n := range PageWindow(p.Page, p.PageCount, 5) {
		pageButton(h, d.Base, n, itoa(n), false, n == p.Page)
	}
	pageButton(h, d.Base, p.Page+1, d.T.T(locale.Next), !p.HasNext(), false)

	h.raw(`</nav></div>`)
}

func pageButton(h *htmlWriter, base string, page int, label string, disabled, current bool) {
	h.raw(`<button type="button"`)
	if current {
		h.raw(` class="current" aria-current="page"`)
	}
	if disabled {
		h.raw(` disabled`)
	} else {
		h.attr("hx-post", base+"/page")
		h.attr("hx-vals", vals(map[string]string{"page": itoa(page)}))
	}
	h.raw(`>`)
	h.text(label)
	h.raw(`</button>`)
}

// PageWindow returns up to width page numbers centred on current.
func PageWindow(current, count, width int) []int {
	if count < 1 || width < 1 {
		return nil
	}
	start := current - width/2
	if start > count-width+1 {
		start = count - width + 1
	}
	if start < 1 {
		start = 1
	}
	end := min(start+width-1, count)

	pages := make([]int, 0, end-start+1)
	for n := start; n <= end; n++ {
		pages = append(pages, n)
	}
	return pages
}
