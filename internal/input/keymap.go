package input

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap is the full keyboard surface of the timeline view.
type KeyMap struct {
	PlayPause     key.Binding
	Next          key.Binding
	Prev          key.Binding
	Delete        key.Binding
	ZoomIn        key.Binding
	ZoomOut       key.Binding
	VolumeUp      key.Binding
	VolumeDown    key.Binding
	MasterUp      key.Binding
	MasterDown    key.Binding
	ToggleLoop    key.Binding
	ToggleVariant key.Binding
	AddAll        key.Binding
	Inspector     key.Binding
	Quit          key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		PlayPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "play/pause"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "n"),
			key.WithHelp("→", "next track"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "p"),
			key.WithHelp("←", "previous track"),
		),
		Delete: key.NewBinding(
			key.WithKeys("delete", "backspace"),
			key.WithHelp("del", "remove selected"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("up", "+", "="),
			key.WithHelp("↑", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("down", "-"),
			key.WithHelp("↓", "zoom out"),
		),
		VolumeUp: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "track volume up"),
		),
		VolumeDown: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "track volume down"),
		),
		MasterUp: key.NewBinding(
			key.WithKeys("}"),
			key.WithHelp("}", "master volume up"),
		),
		MasterDown: key.NewBinding(
			key.WithKeys("{"),
			key.WithHelp("{", "master volume down"),
		),
		ToggleLoop: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "loop all"),
		),
		ToggleVariant: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "vocal/instrumental"),
		),
		AddAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add all library clips"),
		),
		Inspector: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "waveform inspector"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
	}
}
