package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the viewer key bindings.
type KeyMap struct {
	ZoomIn      key.Binding
	ZoomOut     key.Binding
	ZoomReset   key.Binding
	Refresh     key.Binding
	Hierarchy   key.Binding
	External    key.Binding
	Passive     key.Binding
	Reclassify  key.Binding
	Yank        key.Binding
	OpenRecord  key.Binding
	ClearSelect key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "zoom out"),
		),
		ZoomReset: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "reset view"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Hierarchy: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "toggle hierarchy"),
		),
		External: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "toggle external"),
		),
		Passive: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "toggle passive"),
		),
		Reclassify: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "reclassify"),
		),
		Yank: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy node id"),
		),
		OpenRecord: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open record"),
		),
		ClearSelect: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear selection"),
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
