package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Select     key.Binding
	New        key.Binding
	Edit       key.Binding
	Delete     key.Binding
	Complete   key.Binding
	ToggleItem key.Binding
	Open       key.Binding
	Back       key.Binding
	Confirm    key.Binding
	Deny       key.Binding
	Next       key.Binding
	Prev       key.Binding
	Left       key.Binding
	Right      key.Binding
	Save       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		New:        key.NewBinding(key.WithKeys("n", "a"), key.WithHelp("n", "new")),
		Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Complete:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete")),
		ToggleItem: key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle item")),
		Open:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open alert")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Confirm:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		Deny:       key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		Next:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:       key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Left:       key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "change")),
		Right:      key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "change")),
		Save:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// listKeys is the help view for the list screen.
type listKeys keyMap

func (k listKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.New, k.Select, k.Complete, k.Delete, k.Help, k.Quit}
}

func (k listKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.New, k.Edit, k.Complete, k.Delete},
		{k.Open, k.Help, k.Quit},
	}
}

type detailKeys keyMap

func (k detailKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.ToggleItem, k.Complete, k.Edit, k.Delete, k.Back}
}

func (k detailKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.ToggleItem}, {k.Complete, k.Edit, k.Delete, k.Back}}
}

type formKeys keyMap

func (k formKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Left, k.Save, k.Back}
}

func (k formKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev}, {k.Left, k.Right}, {k.Save, k.Back}}
}
