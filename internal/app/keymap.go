package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the application key bindings.
type KeyMap struct {
	Toggle key.Binding
	Pause  key.Binding
	Resume key.Binding
	Up     key.Binding
	Down   key.Binding
	Home   key.Binding
	End    key.Binding
	Hide   key.Binding
	Detail key.Binding
	Back   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the stock bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "Run/Pause")),
		Pause:  key.NewBinding(key.WithKeys("p", "P"), key.WithHelp("p", "Pause")),
		Resume: key.NewBinding(key.WithKeys("s", "S"), key.WithHelp("s", "Run")),
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Home:   key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home", "first")),
		End:    key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end", "last")),
		Hide:   key.NewBinding(key.WithKeys("x", "X"), key.WithHelp("x", "show/hide")),
		Detail: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "detail")),
		Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "Help")),
		Quit:   key.NewBinding(key.WithKeys("q", "Q", "ctrl+c"), key.WithHelp("q", "Quit")),
	}
}

// ShortHelp is shown in the menu bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Hide, k.Help, k.Quit}
}

// FullHelp is shown by the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Pause, k.Resume},
		{k.Up, k.Down, k.Home, k.End},
		{k.Hide, k.Detail, k.Back},
		{k.Help, k.Quit},
	}
}
