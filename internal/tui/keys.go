package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings with built-in help text.
type KeyMap struct {
	// Global
	Quit      key.Binding
	ForceQuit key.Binding
	Help      key.Binding
	Escape    key.Binding
	Logout    key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	Back     key.Binding
	NextList key.Binding

	// Pagination
	PrevPage  key.Binding
	NextPage  key.Binding
	FirstPage key.Binding
	LastPage  key.Binding
	JumpPage  key.Binding // 1-9 select a button in the page window

	// Actions
	Search key.Binding
	Retry  key.Binding
	Rocket key.Binding

	// Carousel
	PrevImage key.Binding
	NextImage key.Binding

	// Login form
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("escape", "esc"),
			key.WithHelp("esc", "clear search"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "logout"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Back: key.NewBinding(
			key.WithKeys("escape", "esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		NextList: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "launches/rockets"),
		),

		PrevPage: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next page"),
		),
		FirstPage: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first page"),
		),
		LastPage: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last page"),
		),
		JumpPage: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "pick page"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		Rocket: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open rocket"),
		),

		PrevImage: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "prev image"),
		),
		NextImage: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "next image"),
		),

		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "sign in"),
		),
	}
}

// listHelp adapts the key map to bubbles/help for list pages.
type listHelp struct{ k KeyMap }

func (h listHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Search, h.k.PrevPage, h.k.NextPage, h.k.JumpPage, h.k.Enter, h.k.NextList, h.k.Help, h.k.Quit}
}

func (h listHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{h.k.Up, h.k.Down, h.k.Enter, h.k.NextList},
		{h.k.PrevPage, h.k.NextPage, h.k.FirstPage, h.k.LastPage, h.k.JumpPage},
		{h.k.Search, h.k.Escape, h.k.Retry},
		{h.k.Logout, h.k.Help, h.k.Quit},
	}
}

// detailHelp adapts the key map to bubbles/help for detail pages.
type detailHelp struct {
	k        KeyMap
	carousel bool
	rocket   bool
}

func (h detailHelp) ShortHelp() []key.Binding {
	b := []key.Binding{h.k.Back, h.k.Retry}
	if h.rocket {
		b = append(b, h.k.Rocket)
	}
	if h.carousel {
		b = append(b, h.k.PrevImage, h.k.NextImage)
	}
	return append(b, h.k.Quit)
}

func (h detailHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}
