package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up     key.Binding
	down   key.Binding
	add    key.Binding
	search key.Binding
	random key.Binding
	del    key.Binding
	clear  key.Binding
	undo   key.Binding
	redo   key.Binding
	tab    key.Binding
	enter  key.Binding
	back   key.Binding
	yes    key.Binding
	no     key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add result")),
		search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		random: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "random")),
		del:    key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		clear:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		undo:   key.NewBinding(key.WithKeys("ctrl+z", "u"), key.WithHelp("u", "undo")),
		redo:   key.NewBinding(key.WithKeys("ctrl+y", "ctrl+r"), key.WithHelp("ctrl+y", "redo")),
		tab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:     key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.random, k.search, k.del, k.undo, k.redo, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.tab},
		{k.random, k.add, k.search},
		{k.del, k.clear, k.undo, k.redo},
		{k.quit},
	}
}
