package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the player's key bindings.
type KeyMap struct {
	Toggle key.Binding
	Stop   key.Binding
	Left   key.Binding
	Right  key.Binding
	Select key.Binding
	Scene  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "play/pause")),
		Stop:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous")),
		Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Scene: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "scene"),
		),
		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Scene, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Stop},
		{k.Left, k.Right, k.Select, k.Scene},
		{k.Help, k.Quit},
	}
}
