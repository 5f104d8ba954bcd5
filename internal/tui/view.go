package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/JonMunkholm/tablesorter/internal/locale"
	"github.com/JonMunkholm/tablesorter/internal/view"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginBottom(1)
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	activeHeader  = headerStyle.Foreground(lipgloss.Color("11"))
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	selectedStyle = cellStyle.Background(lipgloss.Color("236"))
	markStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func (m Model) View() string {
	f := m.Frame()
	var b strings.Builder

	if m.cfg.Title != "" {
		b.WriteString(titleStyle.Render(m.cfg.Title))
		b.WriteString("\n")
	}

	if line := m.searchLine(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if line := m.filterLine(f); line != "" {
		b.WriteString(dimStyle.Render(line))
		b.WriteString("\n")
	}

	b.WriteString(m.grid(f))
	b.WriteString("\n")

	if f.Empty() {
		for _, line := range m.tr.EmptyMessage(f.Filtered) {
			b.WriteString(dimStyle.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.footer(f))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}

	if m.mode != modeBrowse {
		b.WriteString(m.help.View(promptKeys{m.keys}))
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

// searchLine shows the prompt while editing, otherwise the active search.
func (m Model) searchLine() string {
	switch {
	case m.mode == modeSearch:
		return "/ " + m.input.View()
	case m.mode == modeFilter:
		return m.tr.T(locale.Filter) + ": " + m.input.View()
	case !m.table.Options().ShowSearch:
		return ""
	case m.table.Search() != "":
		return "/ " + m.table.Search()
	default:
		return dimStyle.Render("/ " + m.tr.T(locale.SearchPlaceholder))
	}
}

// filterLine lists active column filters as title=value, by column order.
func (m Model) filterLine(f view.Frame) string {
	if len(f.Filters) == 0 {
		return ""
	}
	titles := make(map[string]string, len(f.Columns))
	order := make(map[string]int, len(f.Columns))
	for i, c := range f.Columns {
		titles[c.Key] = c.Title
		order[c.Key] = i
	}

	keys := make([]string, 0, len(f.Filters))
	for k := range f.Filters {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return order[keys[i]] < order[keys[j]] })

	parts := make([]string, len(keys))
	for i, k := range keys {
		value := f.Filters[k]
		for _, c := range f.Columns {
			if c.Key == k && c.IsSelect() {
				value = c.Label(value)
			}
		}
		parts[i] = titles[k] + "=" + value
	}
	return m.tr.T(locale.Filter) + ": " + strings.Join(parts, ", ")
}

func (m Model) grid(f view.Frame) string {
	headers := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		headers[i] = c.Title + sortIndicator(f.Sort, c)
	}

	rows := make([][]string, len(f.Rows))
	for i, rec := range f.Rows {
		cells := make([]string, len(f.Columns))
		for j, c := range f.Columns {
			cells[j] = highlight(c.Text(rec), f.Search)
		}
		rows[i] = cells
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow && col == m.col:
				return activeHeader
			case row == table.HeaderRow:
				return headerStyle
			case row == m.row && m.mode == modeBrowse:
				return selectedStyle
			default:
				return cellStyle
			}
		})
	if m.width > 0 {
		t = t.Width(m.width)
	}
	return t.String()
}

func sortIndicator(s view.SortState, c view.Column) string {
	switch {
	case !c.Sortable:
		return ""
	case s.Key != c.Key:
		return " ↕"
	case s.Order == view.Desc:
		return " ▼"
	default:
		return " ▲"
	}
}

// highlight marks the parts of text that match the search term.
func highlight(text, term string) string {
	if term == "" {
		return text
	}
	var b strings.Builder
	for _, seg := range view.Highlight(text, term) {
		if seg.Match {
			b.WriteString(markStyle.Render(seg.Text))
		} else {
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

func (m Model) footer(f view.Frame) string {
	p := f.Page
	summary := m.tr.Showing(p.From, p.To, p.Total, f.Filtered)
	pages := fmt.Sprintf("%d/%d", p.Page, p.PageCount)
	size := fmt.Sprintf("%s: %d", m.tr.T(locale.RowsPerPage), p.PageSize)

	parts := []string{summary, pages, size}
	if m.table.Pending() {
		parts = append(parts, m.tr.T(locale.Loading))
	}
	return dimStyle.Render(strings.Join(parts, "  ·  "))
}
