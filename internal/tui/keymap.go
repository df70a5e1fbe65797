package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the queue keybindings.
type KeyMap struct {
	Quit        key.Binding
	Up          key.Binding
	Down        key.Binding
	Toggle      key.Binding
	SelectAll   key.Binding
	Clear       key.Binding
	Approve     key.Binding
	Reject      key.Binding
	Promote     key.Binding
	Reopen      key.Binding
	Refresh     key.Binding
	Open        key.Binding
	Back        key.Binding
	Search      key.Binding
	CycleStatus key.Binding
	CycleSort   key.Binding
	ToggleOrder key.Binding
	Reload      key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:      key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "select")),
		SelectAll:   key.NewBinding(key.WithKeys("*"), key.WithHelp("*", "select all")),
		Clear:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		Approve:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "approve")),
		Reject:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reject")),
		Promote:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "promote")),
		Reopen:      key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "reopen")),
		Refresh:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "refresh")),
		Open:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		CycleStatus: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "status")),
		CycleSort:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		ToggleOrder: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "order")),
		Reload:      key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "reload")),
	}
}

// listHelp is the key help shown under the list.
func (k KeyMap) listHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.SelectAll, k.Approve, k.Reject, k.Promote, k.Open, k.Search, k.CycleStatus, k.CycleSort, k.Quit}
}

// detailHelp is the key help shown under the detail view.
func (k KeyMap) detailHelp() []key.Binding {
	return []key.Binding{k.Approve, k.Reject, k.Reopen, k.Promote, k.Refresh, k.Back}
}
