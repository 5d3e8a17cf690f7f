package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nestingglobal/nestview/internal/listing"
)

// favoriteEntry is one saved id, resolved against the current snapshot.
type favoriteEntry struct {
	id      string
	listing listing.Listing
	listed  bool
}

// favoriteEntries resolves saved ids in sorted order. Ids whose listing was
// deleted stay in the list, marked as no longer listed.
func (m Model) favoriteEntries() []favoriteEntry {
	ids := m.favs.IDs()
	index := make(map[string]listing.Listing, len(m.snapshot.Listings))
	for _, item := range m.snapshot.Listings {
		if _, seen := index[item.ID]; !seen {
			index[item.ID] = item
		}
	}
	out := make([]favoriteEntry, len(ids))
	for i, id := range ids {
		item, ok := index[id]
		out[i] = favoriteEntry{id: id, listing: item, listed: ok}
	}
	return out
}

// handleFavoritesKey processes keyboard input for the favorites view.
func (m Model) handleFavoritesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.favoriteEntries()
	count := len(entries)
	if count == 0 {
		return m, nil
	}
	if m.favRow >= count {
		m.favRow = count - 1
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.favRow < count-1 {
			m.favRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.favRow > 0 {
			m.favRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.favRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.favRow = count - 1
	case key.Matches(msg, m.keys.ToggleFavorite):
		m.favs.Toggle(entries[m.favRow].id)
		if m.favRow >= count-1 {
			m.favRow = max(count-2, 0)
		}
	case key.Matches(msg, m.keys.OpenDetail):
		if entries[m.favRow].listed {
			return m, m.openDetail(entries[m.favRow].id)
		}
	case key.Matches(msg, m.keys.Inquire):
		if entries[m.favRow].listed {
			m.openInquiry(entries[m.favRow].listing)
		}
	}
	return m, nil
}

// renderFavorites renders the saved listings.
func (m Model) renderFavorites() string {
	entries := m.favoriteEntries()
	height := m.contentHeight()
	if len(entries) == 0 {
		return m.renderEmpty("No Favorites Yet", "Press f on a listing to save it.", height)
	}

	width := m.width - 2
	bgColor := m.theme.FocusBg
	styles := m.theme.Styles()

	rows := height - 2
	start := scrollWindow(m.favRow, len(entries), rows)
	end := min(start+rows, len(entries))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		e := entries[i]
		selected := i == m.favRow
		rowBg := ternary(selected, m.theme.SelectionBg, bgColor)
		bg := NewBgStyle(rowBg)

		var content string
		if e.listed {
			content = m.formatListingRow(e.listing, width, rowBg, selected)
		} else {
			style := styles.FaintText
			if selected {
				style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
			}
			content = bg.Render("♥", styles.Favorite) + bg.Space() +
				bg.Render(fmt.Sprintf("%s · no longer listed", e.id), style.Italic(true))
		}
		lines = append(lines, lipgloss.NewStyle().Background(lipgloss.Color(rowBg)).Width(width).Render(content))
	}

	title := fmt.Sprintf("Favorites (%d)", len(entries))
	return m.renderTitledBox(title, strings.Join(lines, "\n"), m.width, height, true)
}
