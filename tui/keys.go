package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Sample      key.Binding
	ToggleTrend key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Sample: key.NewBinding(
			key.WithKeys("s", " "),
			key.WithHelp("s", "sample now"),
		),
		ToggleTrend: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle trend"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Sample, k.ToggleTrend, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Sample, k.ToggleTrend},
		{k.Help, k.Quit},
	}
}
