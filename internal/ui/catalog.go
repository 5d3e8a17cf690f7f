package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nestingglobal/nestview/internal/listing"
	"github.com/nestingglobal/nestview/internal/query"
)

// selectedListing returns the highlighted catalog row.
func (m Model) selectedListing() (listing.Listing, bool) {
	if m.selectedRow < 0 || m.selectedRow >= len(m.visible) {
		return listing.Listing{}, false
	}
	return m.visible[m.selectedRow], true
}

// handleCatalogKey processes keyboard input for the catalog view.
func (m Model) handleCatalogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if cmd, ok := m.handleFilterKey(msg); ok {
		return m, cmd
	}

	if key.Matches(msg, m.keys.Reload) {
		return m, m.reload()
	}

	count := len(m.visible)
	if count == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < count-1 {
			m.selectedRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = count - 1
	case key.Matches(msg, m.keys.HalfPageDown):
		m.selectedRow = min(m.selectedRow+m.listHeight()/2, count-1)
	case key.Matches(msg, m.keys.HalfPageUp):
		m.selectedRow = max(m.selectedRow-m.listHeight()/2, 0)
	case key.Matches(msg, m.keys.ToggleFavorite):
		if item, ok := m.selectedListing(); ok {
			m.favs.Toggle(item.ID)
		}
	case key.Matches(msg, m.keys.OpenDetail):
		if item, ok := m.selectedListing(); ok {
			return m, m.openDetail(item.ID)
		}
	case key.Matches(msg, m.keys.Inquire):
		if item, ok := m.selectedListing(); ok {
			m.openInquiry(item)
		}
	}

	return m, nil
}

// listHeight is the number of rows the catalog list can show.
func (m Model) listHeight() int {
	// header, cmdbar, filter bar, box borders
	return max(m.height-5, 1)
}

// renderCatalog renders the filter bar and the list + preview split.
func (m Model) renderCatalog() string {
	contentHeight := max(m.contentHeight()-1, 3)
	filterBar := m.renderFilterBar()

	if m.queryErr != nil {
		styles := m.theme.Styles()
		return filterBar + "\n" + lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center,
			styles.DangerText.Render("Invalid filter: "+m.queryErr.Error()))
	}

	if len(m.visible) == 0 {
		if (m.snapshot.Loading || m.reloading) && len(m.snapshot.Listings) == 0 {
			return filterBar + "\n" + m.renderEmpty("Loading properties...", "", contentHeight)
		}
		hint := "Try adjusting your filters (r resets them)."
		if !m.filtersActive() {
			hint = "The catalog is empty. Press R to reload."
		}
		return filterBar + "\n" + m.renderEmpty("No Properties Found", hint, contentHeight)
	}

	var listWidth int
	if m.width >= LayoutExtraWideWidth {
		listWidth = m.width * 45 / 100
	} else {
		listWidth = m.width * 55 / 100
	}
	previewWidth := m.width - listWidth

	listTitle := m.catalogTitle()
	listContent := m.renderCatalogList(listWidth-2, contentHeight-2, m.theme.FocusBg)
	listPane := m.renderTitledBox(listTitle, listContent, listWidth, contentHeight, true)

	previewBg := m.theme.SurfaceAlt
	var previewContent string
	if item, ok := m.selectedListing(); ok {
		previewContent = m.renderListingSummary(item, previewWidth-4, previewBg)
	}
	if featured := m.renderFeatured(previewWidth-4, previewBg); featured != "" {
		previewContent += "\n\n" + featured
	}
	previewPane := m.renderTitledBox("Preview", previewContent, previewWidth, contentHeight, false)

	return filterBar + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)
}

// catalogTitle returns the list pane title with counts.
func (m Model) catalogTitle() string {
	total := len(m.snapshot.Listings)
	if len(m.visible) == total {
		return fmt.Sprintf("Properties (%d)", total)
	}
	return fmt.Sprintf("Properties (%d of %d)", len(m.visible), total)
}

// renderCatalogList renders the visible slice of rows.
func (m Model) renderCatalogList(width, height int, bgColor string) string {
	start := scrollWindow(m.selectedRow, len(m.visible), height)
	end := min(start+height, len(m.visible))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		selected := i == m.selectedRow
		rowBg := ternary(selected, m.theme.SelectionBg, bgColor)
		content := m.formatListingRow(m.visible[i], width, rowBg, selected)
		lines = append(lines, lipgloss.NewStyle().
			Background(lipgloss.Color(rowBg)).
			Width(width).
			Render(content))
	}
	return strings.Join(lines, "\n")
}

// formatListingRow formats one listing as "♥ Title · Location  AED price".
// Selected rows use SelectionText everywhere for contrast.
func (m Model) formatListingRow(item listing.Listing, width int, bgColor string, selected bool) string {
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()

	price := formatPrice(item.Price)
	status := string(item.Status)

	var favStyle, titleStyle, sepStyle, locStyle, priceStyle, statusStyle lipgloss.Style
	if selected {
		selText := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		favStyle, titleStyle, sepStyle, locStyle, priceStyle, statusStyle = selText, selText.Bold(true), selText, selText, selText, selText
	} else {
		favStyle = styles.Favorite
		titleStyle = styles.Text
		sepStyle = styles.FaintText
		locStyle = styles.MutedText
		priceStyle = styles.AccentText
		statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.colorForStatus(item.Status)))
	}

	fav := " "
	if m.favs.IsFavorite(item.ID) {
		fav = "♥"
	}

	fixed := 2 + 3 + len([]rune(price)) + 1
	if status != "" {
		fixed += len([]rune(status)) + 1
	}
	room := max(width-fixed, 10)
	titleWidth := room * 3 / 5
	locWidth := room - titleWidth

	row := bg.Render(fav, favStyle) + bg.Space() +
		bg.Render(truncate(item.Title, titleWidth), titleStyle) +
		bg.Render(" · ", sepStyle) +
		bg.Render(truncate(item.Location, locWidth), locStyle) + bg.Space() +
		bg.Render(price, priceStyle)
	if status != "" {
		row += bg.Space() + bg.Render(status, statusStyle)
	}
	return row
}

// featuredListings returns the first FeaturedLimit featured listings.
func featuredListings(items []listing.Listing) []listing.Listing {
	featured := query.Featured(items)
	return featured[:min(len(featured), FeaturedLimit)]
}

// renderFeatured renders the featured strip under the preview. It is empty
// when nothing in the catalog is featured.
func (m Model) renderFeatured(width int, bgColor string) string {
	featured := featuredListings(m.snapshot.Listings)
	if len(featured) == 0 {
		return ""
	}
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)
	star := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colorForStatus(listing.StatusFeatured)))

	lines := []string{bg.Render("Featured Properties", styles.AccentText.Bold(true))}
	for _, item := range featured {
		price := formatPrice(item.Price)
		titleWidth := max(width-len([]rune(price))-3, 8)
		lines = append(lines, bg.Render("★", star)+bg.Space()+
			bg.Render(truncate(item.Title, titleWidth), styles.Text)+bg.Space()+
			bg.Render(price, styles.MutedText))
	}
	return strings.Join(lines, "\n")
}

// categoryStyle dims categories outside the fixed set.
func categoryStyle(c listing.Category, styles Styles) lipgloss.Style {
	if c.Known() {
		return styles.Text
	}
	return styles.FaintText
}

// colorForStatus returns the theme color for a listing status.
func (m Model) colorForStatus(status listing.Status) string {
	if color, ok := m.theme.StatusColors[string(status)]; ok {
		return color
	}
	return m.theme.Muted
}

// renderListingSummary renders the compact preview of a listing.
func (m Model) renderListingSummary(item listing.Listing, width int, bgColor string) string {
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)

	var lines []string
	title := bg.Render(truncate(item.Title, width), styles.Text.Bold(true))
	if m.favs.IsFavorite(item.ID) {
		title += bg.Space() + bg.Render("♥", styles.Favorite)
	}
	lines = append(lines, title)

	if item.Status != "" {
		lines = append(lines, m.theme.Styles().StatusStyle(string(item.Status)).Render(string(item.Status)))
	}
	lines = append(lines,
		bg.Render(truncate(item.Location, width), styles.MutedText),
		"",
		bg.Render(formatPrice(item.Price), styles.AccentText.Bold(true)),
		bg.Join([]string{
			bg.Render(formatRooms(item.Bedrooms, "bd"), styles.Text),
			bg.Render(formatRooms(item.Bathrooms, "ba"), styles.Text),
			bg.Render(formatArea(item.Area), styles.Text),
		}, " · "),
		bg.Label("Type", string(item.Category), styles, categoryStyle(item.Category, styles)),
		"",
	)

	if desc := oneLine(item.Description); desc != "" {
		wrapped := lipgloss.NewStyle().Width(width).Render(desc)
		for i, line := range strings.Split(wrapped, "\n") {
			if i == 4 {
				lines = append(lines, bg.Render("…", styles.FaintText))
				break
			}
			lines = append(lines, bg.Render(line, styles.MutedText))
		}
		lines = append(lines, "")
	}

	lines = append(lines, bg.Render("enter for details · i to apply", styles.FaintText))
	return strings.Join(lines, "\n")
}
