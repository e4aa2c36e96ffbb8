package types

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the application.
// It lives in pkg/types so the model and the help view share one definition.
type KeyMap struct {
	// General
	Help    key.Binding
	Quit    key.Binding
	Refresh key.Binding

	// Navigation
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	GotoTop     key.Binding
	GotoBottom  key.Binding
	Enter       key.Binding
	GoBack      key.Binding
	SwitchPanel key.Binding
	Jump        key.Binding
	Drives      key.Binding

	// Selection
	Select         key.Binding
	SelectPattern  key.Binding
	InvertSelected key.Binding
	ClearSelection key.Binding
	ToggleHidden   key.Binding
	CycleSort      key.Binding
	ReverseSort    key.Binding
	CycleTheme     key.Binding

	// Operations
	View     key.Binding
	Edit     key.Binding
	Copy     key.Binding
	Move     key.Binding
	MakeDir  key.Binding
	Delete   key.Binding
	Rename   key.Binding
	Undo     key.Binding
	Cancel   key.Binding
	YankPath key.Binding
}

// DefaultKeyMap returns the stock bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Help:    key.NewBinding(key.WithKeys("f1", "?"), key.WithHelp("F1", "help")),
		Quit:    key.NewBinding(key.WithKeys("f10", "q", "ctrl+c"), key.WithHelp("F10", "quit")),
		Refresh: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("^R", "refresh")),

		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:      key.NewBinding(key.WithKeys("pgup"), key.WithHelp("PgUp", "page up")),
		PageDown:    key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("PgDn", "page down")),
		GotoTop:     key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("Home", "top")),
		GotoBottom:  key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("End", "bottom")),
		Enter:       key.NewBinding(key.WithKeys("enter", "right", "l"), key.WithHelp("Enter", "open")),
		GoBack:      key.NewBinding(key.WithKeys("backspace", "left", "h"), key.WithHelp("BS", "parent")),
		SwitchPanel: key.NewBinding(key.WithKeys("tab"), key.WithHelp("Tab", "switch panel")),
		Jump:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "jump")),
		Drives:      key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("^D", "drives")),

		Select:         key.NewBinding(key.WithKeys(" ", "insert"), key.WithHelp("Space", "select")),
		SelectPattern:  key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "select pattern")),
		InvertSelected: key.NewBinding(key.WithKeys("*"), key.WithHelp("*", "invert")),
		ClearSelection: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "clear")),
		ToggleHidden:   key.NewBinding(key.WithKeys("ctrl+h", "."), key.WithHelp("^H", "hidden")),
		CycleSort:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("^S", "sort")),
		ReverseSort:    key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("^O", "reverse")),
		CycleTheme:     key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("^T", "theme")),

		View:     key.NewBinding(key.WithKeys("f3"), key.WithHelp("F3", "view")),
		Edit:     key.NewBinding(key.WithKeys("f4"), key.WithHelp("F4", "edit")),
		Copy:     key.NewBinding(key.WithKeys("f5"), key.WithHelp("F5", "copy")),
		Move:     key.NewBinding(key.WithKeys("f6"), key.WithHelp("F6", "move")),
		MakeDir:  key.NewBinding(key.WithKeys("f7"), key.WithHelp("F7", "mkdir")),
		Delete:   key.NewBinding(key.WithKeys("f8", "delete"), key.WithHelp("F8", "delete")),
		Rename:   key.NewBinding(key.WithKeys("f2", "ctrl+n"), key.WithHelp("F2", "rename")),
		Undo:     key.NewBinding(key.WithKeys("ctrl+z", "u"), key.WithHelp("^Z", "undo")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "cancel")),
		YankPath: key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("^Y", "copy path")),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Rename, k.View, k.Edit, k.Copy, k.Move, k.MakeDir, k.Delete, k.Undo, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.GotoTop, k.GotoBottom, k.Enter, k.GoBack},
		{k.SwitchPanel, k.Jump, k.Drives, k.Refresh, k.ToggleHidden, k.CycleSort, k.ReverseSort, k.CycleTheme},
		{k.Select, k.SelectPattern, k.InvertSelected, k.ClearSelection, k.YankPath},
		{k.View, k.Edit, k.Copy, k.Move, k.MakeDir, k.Delete, k.Rename, k.Undo, k.Cancel, k.Quit},
	}
}
