package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Select     key.Binding
	BBox       key.Binding
	Polygon    key.Binding
	Freehand   key.Binding
	Erase      key.Binding
	Palette    key.Binding
	Finish     key.Binding
	UndoVertex key.Binding
	Cancel     key.Binding
	Undo       key.Binding
	Redo       key.Binding
	Delete     key.Binding
	SelectAll  key.Binding
	Label      key.Binding
	Save       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Select: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "select"),
	),
	BBox: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "box"),
	),
	Polygon: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "polygon"),
	),
	Freehand: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "freehand"),
	),
	Erase: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "erase"),
	),
	Palette: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8"),
		key.WithHelp("1-8", "color"),
	),
	Finish: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "close polygon"),
	),
	UndoVertex: key.NewBinding(
		key.WithKeys("backspace"),
		key.WithHelp("⌫", "drop vertex"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Undo: key.NewBinding(
		key.WithKeys("ctrl+z", "u"),
		key.WithHelp("u/C-z", "undo"),
	),
	Redo: key.NewBinding(
		key.WithKeys("ctrl+y", "U"),
		key.WithHelp("U/C-y", "redo"),
	),
	Delete: key.NewBinding(
		key.WithKeys("x", "delete"),
		key.WithHelp("x/del", "delete selected"),
	),
	SelectAll: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "select all"),
	),
	Label: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "label"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+s", "w"),
		key.WithHelp("w/C-s", "save"),
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
