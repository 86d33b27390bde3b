package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding of the simulator. It implements help.KeyMap.
type keyMap struct {
	Place    key.Binding
	FailNext key.Binding
	Tap      key.Binding
	Next     key.Binding
	Yes      key.Binding
	No       key.Binding
	Copy     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Place: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "place"),
		),
		FailNext: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fail next anchor"),
		),
		Tap: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "tap object"),
		),
		Next: key.NewBinding(
			key.WithKeys("enter", "right"),
			key.WithHelp("enter/→", "next"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "no"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy tally"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Place, k.Tap, k.Next, k.Yes, k.No, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Place, k.FailNext, k.Tap},
		{k.Next, k.Yes, k.No},
		{k.Copy, k.Help, k.Quit},
	}
}
