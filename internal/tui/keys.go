package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the browser key bindings.
type KeyMap struct {
	Up, Down, Left, Right key.Binding

	Edit        key.Binding
	Sort        key.Binding
	FilterCell  key.Binding
	FilterInput key.Binding
	ClearFilter key.Binding

	Narrow, Widen       key.Binding
	MoveLeft, MoveRight key.Binding
	MoveUp, MoveDown    key.Binding
	Hide, ShowAll       key.Binding
	Save, Reload        key.Binding
	Help, Quit          key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),

		Edit:        key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit")),
		Sort:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		FilterCell:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter by cell")),
		FilterInput: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter column")),
		ClearFilter: key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "clear filter")),

		Narrow:    key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "narrow")),
		Widen:     key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "widen")),
		MoveLeft:  key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "move column left")),
		MoveRight: key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "move column right")),
		MoveUp:    key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move row up")),
		MoveDown:  key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move row down")),
		Hide:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "hide column")),
		ShowAll:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "show all")),

		Save:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Reload: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Sort, k.FilterCell, k.Save, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Edit, k.Sort, k.FilterCell, k.FilterInput, k.ClearFilter},
		{k.Narrow, k.Widen, k.MoveLeft, k.MoveRight, k.MoveUp, k.MoveDown},
		{k.Hide, k.ShowAll, k.Save, k.Reload, k.Help, k.Quit},
	}
}
