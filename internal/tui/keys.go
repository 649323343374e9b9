package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	PlayPause key.Binding
	Next      key.Binding
	Prev      key.Binding
	First     key.Binding
	Last      key.Binding
	Faster    key.Binding
	Slower    key.Binding
	Dismiss   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.Prev, k.Next, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.Prev, k.Next, k.First, k.Last},
		{k.Faster, k.Slower, k.Dismiss, k.Help, k.Quit},
	}
}

var defaultKeys = keyMap{
	PlayPause: key.NewBinding(key.WithKeys(" ", "space", "p"), key.WithHelp("space", "play/pause")),
	Next:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
	Prev:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev")),
	First:     key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first")),
	Last:      key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last")),
	Faster:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
	Slower:    key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),
	Dismiss:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss error")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}
