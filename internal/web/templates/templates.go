// Package templates renders the HTML of the web table host as templ
// components. The table fragment is self-contained: every control posts to
// the session's action routes with htmx and the response replaces
// #table-root.
package templates

import (
	"context"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/tablesorter/internal/locale"
	"github.com/JonMunkholm/tablesorter/internal/view"
)

// TableData is everything the table fragment needs.
type TableData struct {
	Base       string // action route prefix, e.g. /t/{id}
	Frame      view.Frame
	Search     string       // input values; ahead of Frame while Pending
	Filters    view.Filters // input values; ahead of Frame while Pending
	T          *locale.Translator
	ShowSearch bool
	PageSizes  []int

	// Pending means a throttled input skipped its render; the fragment
	// schedules a flush after FlushAfter.
	Pending    bool
	FlushAfter time.Duration

	// CanAddRow shows the add-row control.
	CanAddRow bool
}

// htmlWriter writes HTML and keeps the first error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) attr(name, value string) {
	h.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// render runs another component on the same writer.
func (h *htmlWriter) render(ctx context.Context, c templ.Component) {
	if h.err == nil {
		h.err = c.Render(ctx, h.w)
	}
}

// vals encodes hx-vals.
func vals(kv map[string]string) string {
	b, _ := json.Marshal(kv)
	return string(b)
}

func itoa(i int) string { return strconv.Itoa(i) }

const styles = `
body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2937}
.rts table{border-collapse:collapse;width:100%}
.rts th,.rts td{border-bottom:1px solid #e5e7eb;padding:.4rem .6rem;text-align:left}
.rts th button{background:none;border:0;font:inherit;font-weight:600;cursor:pointer}
.rts-toolbar,.rts-footer{display:flex;gap:.5rem;align-items:center;margin:.6rem 0}
.rts-footer{justify-content:space-between}
.rts-empty{text-align:center;color:#6b7280;padding:1.5rem}
.rts-error{background:#fee2e2;border:1px solid #fca5a5;padding:.5rem;margin:.5rem 0}
.rts mark{background:#fde68a}
.rts .current{font-weight:700}
.htmx-indicator{opacity:0}.htmx-request .htmx-indicator{opacity:1}
`

// Page renders a full HTML document around the table fragment.
func Page(title string, d TableData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html`)
		h.attr("lang", d.T.Locale())
		h.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		h.text(title)
		h.raw(`</title><script src="https://unpkg.com/htmx.org@1.9.12"></script><style>`)
		h.raw(styles)
		h.raw(`</style></head><body><h1>`)
		h.text(title)
		h.raw(`</h1>`)
		h.render(ctx, Table(d))
		h.raw(`</body></html>`)
		return h.err
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="rts-error"><strong>`)
		h.text(message)
		h.raw(`</strong>`)
		if action != "" {
			h.raw(` <span>`)
			h.text(action)
			h.raw(`</span>`)
		}
		if code != "" {
			h.raw(` <code>`)
			h.text(code)
			h.raw(`</code>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}
