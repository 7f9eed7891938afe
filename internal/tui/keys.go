package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the grid bindings. Edit controls see keys before these do.
type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Edit       key.Binding
	Search     key.Binding
	Filter     key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	PageSize   key.Binding
	Sort       key.Binding
	SortDir    key.Binding
	Language   key.Binding
	EntryType  key.Binding
	VoteUp     key.Binding
	VoteDown   key.Binding
	Unvote     key.Binding
	Comments   key.Binding
	Retry      key.Binding
	Reload     key.Binding
	Help       key.Binding
	Quit       key.Binding
	ForceQuit  key.Binding
	NewComment key.Binding
	Back       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:       key.NewBinding(key.WithKeys("left", "shift+tab"), key.WithHelp("←", "prev column")),
		Right:      key.NewBinding(key.WithKeys("right", "tab"), key.WithHelp("→", "next column")),
		Edit:       key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter/e", "edit cell")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Filter:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter page")),
		NextPage:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next page")),
		PrevPage:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev page")),
		PageSize:   key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "page size")),
		Sort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort by column")),
		SortDir:    key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "flip sort")),
		Language:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "language")),
		EntryType:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "type")),
		VoteUp:     key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "upvote")),
		VoteDown:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "downvote")),
		Unvote:     key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "withdraw vote")),
		Comments:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "comments")),
		Retry:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry save")),
		Reload:     key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c")),
		NewComment: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add comment")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Search, k.NextPage, k.PrevPage, k.Retry, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Edit},
		{k.Search, k.Filter, k.Language, k.EntryType, k.Sort, k.SortDir},
		{k.NextPage, k.PrevPage, k.PageSize, k.Reload},
		{k.VoteUp, k.VoteDown, k.Unvote, k.Comments, k.Retry, k.Help, k.Quit},
	}
}
