// Package tui renders a table in the terminal with Bubble Tea. Keys drive
// the table's setters; the table renders into a frame recorder and View
// draws the last frame.
package tui

import (
	"log/slog"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/tablesorter/internal/locale"
	"github.com/JonMunkholm/tablesorter/internal/view"
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeFilter
)

// flushMsg asks the model to render a throttled input.
type flushMsg struct{}

// Config holds the terminal host settings.
type Config struct {
	Title string

	// ThrottleDelay is the render window for typed search and filter input.
	ThrottleDelay time.Duration

	// Now replaces time.Now for throttling. Tests use a fixed clock.
	Now func() time.Time

	Logger *slog.Logger

	// NewRecord enables the add-row key. id is the next 1-based row number.
	NewRecord func(id int) view.Record
}

// Model is the Bubble Tea model for one table.
type Model struct {
	cfg    Config
	table  *view.Table
	frames *view.FrameRecorder
	tr     *locale.Translator
	logger *slog.Logger

	keys  keyMap
	help  help.Model
	input textinput.Model
	mode  mode

	col    int // column cursor
	row    int // row cursor on the current page
	before string

	flushScheduled bool
	status         string
	width, height  int
}

// New creates a model over a table built from opts.
func New(opts view.Options, cfg Config) (Model, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ThrottleDelay <= 0 {
		cfg.ThrottleDelay = view.DefaultThrottleDelay
	}

	frames := &view.FrameRecorder{}
	table, err := view.New(opts, frames,
		view.WithLogger(cfg.Logger),
		view.WithThrottle(cfg.ThrottleDelay, cfg.Now),
	)
	if err != nil {
		return Model{}, err
	}

	tr := locale.New(opts.Locale, opts.Translations)

	km := newKeyMap(tr)
	km.Search.SetEnabled(opts.ShowSearch)

	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 40

	return Model{
		cfg:    cfg,
		table:  table,
		frames: frames,
		tr:     tr,
		logger: cfg.Logger,
		keys:   km,
		help:   help.New(),
		input:  ti,
	}, nil
}

// Table returns the underlying table.
func (m Model) Table() *view.Table { return m.table }

// Frame returns the frame View draws.
func (m Model) Frame() view.Frame { return m.frames.Last() }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case flushMsg:
		m.flushScheduled = false
		m.check(m.table.Flush())
		m.clampRow()
		return m, nil

	case tea.KeyMsg:
		if m.mode != modeBrowse {
			return m.updatePrompt(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	frame := m.Frame()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		if m.row > 0 {
			m.row--
		}

	case key.Matches(msg, m.keys.Down):
		if m.row < len(frame.Rows)-1 {
			m.row++
		}

	case key.Matches(msg, m.keys.Left):
		if m.col > 0 {
			m.col--
		}

	case key.Matches(msg, m.keys.Right):
		if m.col < len(frame.Columns)-1 {
			m.col++
		}

	case key.Matches(msg, m.keys.NextPage):
		m.check(m.table.SetPage(frame.Page.Page + 1))
		m.row = 0

	case key.Matches(msg, m.keys.PrevPage):
		m.check(m.table.SetPage(frame.Page.Page - 1))
		m.row = 0

	case key.Matches(msg, m.keys.FirstPage):
		m.check(m.table.SetPage(1))
		m.row = 0

	case key.Matches(msg, m.keys.LastPage):
		m.check(m.table.SetPage(frame.Page.PageCount))
		m.row = 0

	case key.Matches(msg, m.keys.Bigger):
		m.check(m.table.SetPageSize(nextPageSize(m.table.PageSize(), 1)))

	case key.Matches(msg, m.keys.Smaller):
		m.check(m.table.SetPageSize(nextPageSize(m.table.PageSize(), -1)))

	case key.Matches(msg, m.keys.Sort):
		if col, ok := m.column(); ok {
			m.check(m.table.ToggleSort(col.Key))
		}

	case key.Matches(msg, m.keys.Clear):
		m.check(m.table.ClearFilters())

	case key.Matches(msg, m.keys.Refresh):
		m.check(m.table.Refresh())

	case key.Matches(msg, m.keys.Add):
		if m.cfg.NewRecord != nil {
			m.check(m.table.Insert(m.cfg.NewRecord(m.table.Len()+1), true))
			m.row = 0
		}

	case key.Matches(msg, m.keys.Delete):
		if m.row < len(frame.Rows) {
			m.check(m.table.RemoveAt(m.table.IndexOf(frame.Rows[m.row])))
		}

	case key.Matches(msg, m.keys.Search):
		if !m.table.Options().ShowSearch {
			break
		}
		m.mode = modeSearch
		m.before = m.table.Search()
		m.input.Placeholder = m.tr.T(locale.SearchPlaceholder)
		m.input.SetValue(m.before)
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Filter):
		col, ok := m.column()
		if !ok || !col.Filterable {
			break
		}
		if col.IsSelect() {
			next := nextOption(col, m.table.Filters()[col.Key])
			m.check(m.table.SetFilter(col.Key, next))
			break
		}
		m.mode = modeFilter
		m.before = m.table.Filters()[col.Key]
		m.input.Placeholder = m.tr.T(locale.Filter) + " " + col.Title
		m.input.SetValue(m.before)
		return m, m.input.Focus()
	}

	m.clampRow()
	return m, nil
}

// updatePrompt handles keys while the search or filter prompt is open.
// Every edit goes to the table as throttled input; a skipped render is
// flushed by a tick after the throttle window.
func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Accept):
		m.check(m.apply(m.input.Value(), false))
		m.closePrompt()
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		m.check(m.apply(m.before, false))
		m.closePrompt()
		return m, nil
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == prev {
		return m, cmd
	}

	m.check(m.apply(m.input.Value(), true))
	m.clampRow()
	if m.table.Pending() && !m.flushScheduled {
		m.flushScheduled = true
		cmd = tea.Batch(cmd, tea.Tick(m.cfg.ThrottleDelay, func(time.Time) tea.Msg {
			return flushMsg{}
		}))
	}
	return m, cmd
}

// apply writes the prompt value to the search or the current column's
// filter. input selects the throttled setters.
func (m *Model) apply(value string, input bool) error {
	if m.mode == modeSearch {
		if input {
			return m.table.SearchInput(value)
		}
		return m.table.SetSearch(value)
	}

	col, ok := m.column()
	if !ok {
		return nil
	}
	if input {
		return m.table.FilterInput(col.Key, value)
	}
	return m.table.SetFilter(col.Key, value)
}

func (m *Model) closePrompt() {
	m.mode = modeBrowse
	m.input.Blur()
	m.input.SetValue("")
	m.clampRow()
}

func (m *Model) column() (view.Column, bool) {
	cols := m.table.Columns()
	if m.col < 0 || m.col >= len(cols) {
		return view.Column{}, false
	}
	return cols[m.col], true
}

func (m *Model) clampRow() {
	n := len(m.Frame().Rows)
	if m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

// check logs a table error and shows it in the status line.
func (m *Model) check(err error) {
	if err != nil {
		m.logger.Error("table action failed", "error", err)
		m.status = err.Error()
	}
}

// nextPageSize steps through view.PageSizeChoices from current.
func nextPageSize(current, step int) int {
	choices := view.PageSizeChoices
	i := slices.Index(choices, current)
	if i < 0 {
		// Not a standard size: start from the nearest choice in that direction
		i = 0
		for i < len(choices) && choices[i] < current {
			i++
		}
		if step > 0 {
			i--
		}
	}
	i = min(max(i+step, 0), len(choices)-1)
	if (step > 0 && choices[i] < current) || (step < 0 && choices[i] > current) {
		return current
	}
	return choices[i]
}

// nextOption cycles a select filter through "" (all) and each option.
func nextOption(col view.Column, current string) string {
	if current == "" {
		if len(col.Options) == 0 {
			return ""
		}
		return col.Options[0].Value
	}
	for i, opt := range col.Options {
		if opt.Value == current && i+1 < len(col.Options) {
			return col.Options[i+1].Value
		}
	}
	return ""
}

// Run starts a full-screen program over opts and blocks until the user quits.
func Run(opts view.Options, cfg Config) error {
	m, err := New(opts, cfg)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
