package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	SwitchPane key.Binding
	PickUp     key.Binding
	DropAtRow  key.Binding
	DropAtEnd  key.Binding
	Cancel     key.Binding
	Paste      key.Binding
	Import     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		SwitchPane: key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch list")),
		PickUp:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pick up")),
		DropAtRow:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop here")),
		DropAtEnd:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "drop at end")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Paste:      key.NewBinding(key.WithKeys("ctrl+v", "p"), key.WithHelp("p", "paste")),
		Import:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import line")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) footer() []key.Binding {
	return []key.Binding{k.SwitchPane, k.PickUp, k.DropAtRow, k.DropAtEnd, k.Cancel, k.Paste, k.Import, k.Help, k.Quit}
}
