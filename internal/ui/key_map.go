package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	watched  key.Binding
	moveUp   key.Binding
	moveDown key.Binding
	sort     key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		watched:  key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "toggle watched")),
		moveUp:   key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move up")),
		moveDown: key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move down")),
		sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.watched, k.moveUp, k.moveDown, k.sort},
		{k.quit},
	}
}
