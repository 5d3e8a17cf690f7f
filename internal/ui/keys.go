package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding

	// View switching
	ViewFavorites   key.Binding
	ViewContacts    key.Binding
	ViewDiagnostics key.Binding

	// Catalog filters
	Search        key.Binding
	CycleLocation key.Binding
	CycleCategory key.Binding
	MoreBedrooms  key.Binding
	FewerBedrooms key.Binding
	MoreBaths     key.Binding
	FewerBaths    key.Binding
	PriceDown     key.Binding
	PriceUp       key.Binding
	CycleSort     key.Binding
	ResetFilters  key.Binding

	// Listing actions
	ToggleFavorite key.Binding
	OpenDetail     key.Binding
	Inquire        key.Binding
	Reload         key.Binding
	PrevImage      key.Binding
	NextImage      key.Binding

	// Diagnostics
	CycleLevel key.Binding

	// Navigation
	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding

	// Forms
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next view"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous view"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back to catalog"),
		),

		// View switching
		ViewFavorites: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "Favorites"),
		),
		ViewContacts: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "Contacts"),
		),
		ViewDiagnostics: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "Diagnostics"),
		),

		// Catalog filters
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search"),
		),
		CycleLocation: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Cycle location"),
		),
		CycleCategory: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Cycle type"),
		),
		MoreBedrooms: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b/B", "Min bedrooms up/down"),
		),
		FewerBedrooms: key.NewBinding(
			key.WithKeys("B"),
		),
		MoreBaths: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a/A", "Min bathrooms up/down"),
		),
		FewerBaths: key.NewBinding(
			key.WithKeys("A"),
		),
		PriceDown: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[/]", "Max price down/up"),
		),
		PriceUp: key.NewBinding(
			key.WithKeys("]"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Cycle sort"),
		),
		ResetFilters: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reset filters"),
		),

		// Listing actions
		ToggleFavorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Toggle favorite"),
		),
		OpenDetail: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open listing"),
		),
		Inquire: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "Apply now"),
		),
		Reload: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Reload"),
		),
		PrevImage: key.NewBinding(
			key.WithKeys("left", "p"),
			key.WithHelp("←/p", "Previous image"),
		),
		NextImage: key.NewBinding(
			key.WithKeys("right", "n"),
			key.WithHelp("→/n", "Next image"),
		),

		// Diagnostics
		CycleLevel: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Cycle log level"),
		),

		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "Half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "Half page down"),
		),

		// Forms
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "Next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "Previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "Submit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Navigation
		{k.Tab, k.Escape, k.ViewFavorites, k.ViewContacts, k.ViewDiagnostics},
		{k.Up, k.Down, k.Top, k.Bottom, k.HalfPageDown, k.HalfPageUp},
		// Catalog
		{k.Search, k.CycleLocation, k.CycleCategory, k.MoreBedrooms, k.MoreBaths, k.PriceDown, k.CycleSort, k.ResetFilters},
		// Listing
		{k.OpenDetail, k.ToggleFavorite, k.Inquire, k.PrevImage, k.NextImage, k.Reload},
		// Diagnostics
		{k.CycleLevel},
		// General
		{k.CycleTheme, k.Help, k.Quit},
	}
}
