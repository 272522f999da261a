package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds every binding used by the views
type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Enter key.Binding
	Back  key.Binding
	Tab   key.Binding
	Quit  key.Binding
	Help  key.Binding

	New      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Save     key.Binding
	Comment  key.Binding
	Refresh  key.Binding
	Switcher key.Binding

	// board
	NextStatus     key.Binding
	FilterStatus   key.Binding
	FilterPriority key.Binding
	FilterAssignee key.Binding
	ClearFilters   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev column")),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next column")),
		Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("↵", "select")),
		Back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Tab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),

		New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Comment:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "comment")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Switcher: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "organizations")),

		NextStatus:     key.NewBinding(key.WithKeys(" ", "m"), key.WithHelp("space", "move")),
		FilterStatus:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status filter")),
		FilterPriority: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "priority filter")),
		FilterAssignee: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "assignee filter")),
		ClearFilters:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear filters")),
	}
}
