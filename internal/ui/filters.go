package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nestingglobal/nestview/internal/query"
)

// recompute re-derives the visible catalog from the snapshot and the current
// spec, keeping the selection on the same listing when it is still visible.
func (m *Model) recompute() {
	selectedID := ""
	if item, ok := m.selectedListing(); ok {
		selectedID = item.ID
	}

	visible, err := query.Apply(m.snapshot.Listings, m.spec)
	if err != nil {
		// Only a malformed spec lands here.
		m.queryErr = err
		m.visible = nil
		m.selectedRow = 0
		m.logger.Error("catalog query rejected", "error", err)
		return
	}
	m.queryErr = nil
	m.visible = visible

	if selectedID != "" {
		for i, item := range visible {
			if item.ID == selectedID {
				m.selectedRow = i
				return
			}
		}
	}
	if m.selectedRow >= len(visible) {
		m.selectedRow = max(len(visible)-1, 0)
	}
}

// resetFilters restores the default spec and clears the search box.
func (m *Model) resetFilters() {
	m.spec = query.DefaultSpec()
	m.searchActive = false
	m.searchInput.SetValue("")
	m.searchInput.Blur()
	m.selectedRow = 0
	m.recompute()
}

// handleFilterKey applies a filter binding. It reports whether msg was one.
func (m *Model) handleFilterKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searchActive = true
		m.searchInput.SetValue(m.spec.Search)
		m.searchInput.CursorEnd()
		return m.searchInput.Focus(), true

	case key.Matches(msg, m.keys.CycleLocation):
		m.spec.Location = query.NextOption(m.spec.Location, query.Locations(m.snapshot.Listings))

	case key.Matches(msg, m.keys.CycleCategory):
		m.spec.Category = query.NextOption(m.spec.Category, query.CategoryOptions())

	case key.Matches(msg, m.keys.MoreBedrooms):
		m.spec.MinBedrooms = stepRoomFilter(m.spec.MinBedrooms, 1)

	case key.Matches(msg, m.keys.FewerBedrooms):
		m.spec.MinBedrooms = stepRoomFilter(m.spec.MinBedrooms, -1)

	case key.Matches(msg, m.keys.MoreBaths):
		m.spec.MinBathrooms = stepRoomFilter(m.spec.MinBathrooms, 1)

	case key.Matches(msg, m.keys.FewerBaths):
		m.spec.MinBathrooms = stepRoomFilter(m.spec.MinBathrooms, -1)

	case key.Matches(msg, m.keys.PriceDown):
		m.spec.MaxPrice = stepPrice(m.spec.MaxPrice, -1)

	case key.Matches(msg, m.keys.PriceUp):
		m.spec.MaxPrice = stepPrice(m.spec.MaxPrice, 1)

	case key.Matches(msg, m.keys.CycleSort):
		m.spec.Sort = m.spec.Sort.Next()

	case key.Matches(msg, m.keys.ResetFilters):
		m.resetFilters()
		return nil, true

	default:
		return nil, false
	}

	m.recompute()
	return nil, true
}

// handleSearchInput routes keys to the search box while it has focus. The
// query applies as the user types.
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchActive = false
		m.searchInput.Blur()
		return m, nil
	case "esc":
		m.searchActive = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.spec.Search = ""
		m.recompute()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if next := strings.TrimSpace(m.searchInput.Value()); next != m.spec.Search {
		m.spec.Search = next
		m.recompute()
	}
	return m, cmd
}

// stepRoomFilter moves a room minimum through Any, 1 .. 5+ and wraps.
func stepRoomFilter(current, step int) int {
	n := MaxRoomFilter + 1
	return ((current+step)%n + n) % n
}

// stepPrice moves the price ceiling by one step within its bounds.
func stepPrice(current float64, dir int) float64 {
	next := current + float64(dir*query.PriceStep)
	if next < query.MinPriceCeiling {
		return query.MinPriceCeiling
	}
	if next > query.DefaultPriceCeiling {
		return query.DefaultPriceCeiling
	}
	return next
}

// filtersActive reports whether any filter differs from its default.
func (m Model) filtersActive() bool {
	return m.spec != query.DefaultSpec()
}

// renderFilterBar renders the one-line summary of the current spec.
func (m Model) renderFilterBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)
	sep := bg.Spaces(2)

	field := func(label, value string, active bool) string {
		style := styles.Text
		if active {
			style = styles.AccentText.Bold(true)
		}
		return bg.Label(label, value, styles, style)
	}

	def := query.DefaultSpec()
	parts := []string{
		field("Location", m.spec.Location, m.spec.Location != def.Location),
		field("Type", m.spec.Category, m.spec.Category != def.Category),
		field("Beds", roomFilterLabel(m.spec.MinBedrooms), m.spec.MinBedrooms != def.MinBedrooms),
		field("Baths", roomFilterLabel(m.spec.MinBathrooms), m.spec.MinBathrooms != def.MinBathrooms),
		field("Price", formatPriceCeiling(m.spec.MaxPrice), m.spec.MaxPrice != def.MaxPrice),
		field("Sort", m.spec.Sort.String(), m.spec.Sort != def.Sort),
	}

	if m.searchActive {
		parts = append(parts, bg.Render("Search:", styles.AccentText)+bg.Space()+m.searchInput.View())
	} else if m.spec.Search != "" {
		parts = append(parts, field("Search", `"`+m.spec.Search+`"`, true))
	}

	return bg.FillLine(strings.Join(parts, sep), m.width)
}
