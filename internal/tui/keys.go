package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	Back    key.Binding
	Show    key.Binding
	Grab    key.Binding
	Release key.Binding
	Preview key.Binding
	Refresh key.Binding
	Quit    key.Binding

	// Popup.
	Save   key.Binding
	Cancel key.Binding
	Focus  key.Binding
	Left   key.Binding
	Right  key.Binding
	Press  key.Binding
	Drop   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:    key.NewBinding(key.WithKeys("enter", "right", "l"), key.WithHelp("enter", "open")),
		Back:    key.NewBinding(key.WithKeys("backspace", "left", "h"), key.WithHelp("⌫", "back")),
		Show:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "show record")),
		Grab:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "grab")),
		Release: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "release")),
		Preview: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Save:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Cancel: key.NewBinding(key.WithKeys("esc", "ctrl+g"), key.WithHelp("esc", "cancel")),
		Focus:  key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "focus")),
		Left:   key.NewBinding(key.WithKeys("left")),
		Right:  key.NewBinding(key.WithKeys("right")),
		Press:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Drop:   key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "drop held texture")),
	}
}

func helpLine(bindings ...key.Binding) string {
	out := ""
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		if out != "" {
			out += "   "
		}
		out += h.Key + ": " + h.Desc
	}
	return out
}
