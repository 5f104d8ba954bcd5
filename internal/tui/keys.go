package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/JonMunkholm/tablesorter/internal/locale"
)

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	PrevPage  key.Binding
	NextPage  key.Binding
	FirstPage key.Binding
	LastPage  key.Binding
	Bigger    key.Binding
	Smaller   key.Binding
	Search    key.Binding
	Filter    key.Binding
	Sort      key.Binding
	Clear     key.Binding
	Add       key.Binding
	Delete    key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding

	// Prompt keys
	Accept key.Binding
	Cancel key.Binding
}

func newKeyMap(tr *locale.Translator) keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev column")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next column")),
		PrevPage:  key.NewBinding(key.WithKeys("pgup", "p"), key.WithHelp("p", tr.T(locale.Previous))),
		NextPage:  key.NewBinding(key.WithKeys("pgdown", "n"), key.WithHelp("n", tr.T(locale.Next))),
		FirstPage: key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first page")),
		LastPage:  key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last page")),
		Bigger:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", tr.T(locale.RowsPerPage)+" +")),
		Smaller:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", tr.T(locale.RowsPerPage)+" -")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", tr.T(locale.SearchPlaceholder))),
		Filter:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", tr.T(locale.Filter))),
		Sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", tr.T(locale.ClearFilters))),
		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add row")),
		Delete:    key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete row")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Accept:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", tr.T(locale.Accept))),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", tr.T(locale.Cancel))),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Filter, k.Sort, k.NextPage, k.PrevPage, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.NextPage, k.PrevPage, k.FirstPage, k.LastPage, k.Bigger, k.Smaller},
		{k.Search, k.Filter, k.Sort, k.Clear},
		{k.Add, k.Delete, k.Refresh, k.Help, k.Quit},
	}
}

// promptKeys is the help shown while a prompt is open.
type promptKeys struct{ keyMap }

func (k promptKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Accept, k.Cancel}
}

func (k promptKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
