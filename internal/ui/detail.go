package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nestingglobal/nestview/internal/listing"
	"github.com/nestingglobal/nestview/internal/query"
)

// openDetail shows the full page for one listing.
func (m *Model) openDetail(id string) tea.Cmd {
	m.detailID = id
	m.galleryIdx = 0
	cmd := m.setView(ViewDetail)
	m.detailViewport.GotoTop()
	return cmd
}

// detailListing resolves the listing shown in detail through the store, so
// the page reflects pushes that arrived after the last snapshot. With
// duplicate ids the newest entry wins.
func (m Model) detailListing() (listing.Listing, bool) {
	if m.store != nil {
		return m.store.Lookup(m.detailID)
	}
	for _, item := range m.snapshot.Listings {
		if item.ID == m.detailID {
			return item, true
		}
	}
	return listing.Listing{}, false
}

func (m *Model) initDetailViewport() {
	m.detailViewport = viewport.New(max(m.width-4, 1), max(m.contentHeight()-2, 1))
}

// updateDetailViewport refreshes the detail content after a snapshot or
// selection change.
func (m *Model) updateDetailViewport() {
	if !m.ready {
		return
	}
	m.detailViewport.Width = max(m.width-4, 1)
	m.detailViewport.Height = max(m.contentHeight()-2, 1)
	m.detailViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	item, ok := m.detailListing()
	if !ok {
		m.similar = nil
		m.detailViewport.SetContent("")
		return
	}
	m.similar = query.Similar(m.snapshot.Listings, item, SimilarLimit)
	if m.galleryIdx >= len(item.Images) {
		m.galleryIdx = max(len(item.Images)-1, 0)
	}
	m.detailViewport.SetContent(m.renderDetailContent(item, m.detailViewport.Width, m.theme.FocusBg))
}

// handleDetailKey processes keyboard input for the detail view.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item, ok := m.detailListing()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.PrevImage):
		if m.galleryIdx > 0 {
			m.galleryIdx--
			m.updateDetailViewport()
		}
		return m, nil
	case key.Matches(msg, m.keys.NextImage):
		if m.galleryIdx < len(item.Images)-1 {
			m.galleryIdx++
			m.updateDetailViewport()
		}
		return m, nil
	case key.Matches(msg, m.keys.ToggleFavorite):
		m.favs.Toggle(item.ID)
		m.updateDetailViewport()
		return m, nil
	case key.Matches(msg, m.keys.Inquire):
		m.openInquiry(item)
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.detailViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.detailViewport.GotoBottom()
		return m, nil
	}

	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		idx := int(s[0] - '1')
		if idx < len(m.similar) {
			return m, m.openDetail(m.similar[idx].ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

// renderDetail renders the detail view.
func (m Model) renderDetail() string {
	item, ok := m.detailListing()
	if !ok {
		return m.renderEmpty("Property Not Found", "It may have been removed. Press esc to return.", m.contentHeight())
	}
	return m.renderTitledBox(item.Title, m.detailViewport.View(), m.width, m.contentHeight(), true)
}

// renderDetailContent renders the full listing page.
func (m Model) renderDetailContent(item listing.Listing, width int, bgColor string) string {
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)

	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteString("\n")
	}
	section := func(title string) {
		line("")
		line(bg.Render(title, styles.AccentText.Bold(true)))
	}

	heading := bg.Render(item.Title, styles.Text.Bold(true))
	if m.favs.IsFavorite(item.ID) {
		heading += bg.Space() + bg.Render("♥ Saved", styles.Favorite)
	}
	line(heading)
	if item.Status != "" {
		line(m.theme.Styles().StatusStyle(string(item.Status)).Render(string(item.Status)))
	}
	line(bg.Render(item.Location, styles.MutedText))
	line("")
	line(bg.Render(formatPrice(item.Price), styles.AccentText.Bold(true)))
	line(bg.Join([]string{
		bg.Label("Bedrooms", formatRooms(item.Bedrooms, ""), styles, styles.Text),
		bg.Label("Bathrooms", formatRooms(item.Bathrooms, ""), styles, styles.Text),
		bg.Label("Area", formatArea(item.Area), styles, styles.Text),
	}, "  "))
	line(bg.Join([]string{
		bg.Label("Type", string(item.Category), styles, categoryStyle(item.Category, styles)),
		bg.Label("Listed", formatDate(item.CreatedAt), styles, styles.Text),
		bg.Label("ID", item.ID, styles, styles.FaintText),
	}, "  "))

	section("Gallery")
	if len(item.Images) == 0 {
		line(bg.Render("No images", styles.FaintText))
	} else {
		line(bg.Render(fmt.Sprintf("Image %d of %d", m.galleryIdx+1, len(item.Images)), styles.Text) +
			bg.Space() + bg.Render("←/→", styles.FaintText))
		line(bg.Render(truncateMiddle(item.Images[m.galleryIdx], width), styles.InfoText))
	}

	section("Description")
	if desc := strings.TrimSpace(item.Description); desc != "" {
		wrapped := lipgloss.NewStyle().Width(max(width-1, 10)).Render(desc)
		for _, l := range strings.Split(wrapped, "\n") {
			line(bg.Render(l, styles.Text))
		}
	} else {
		line(bg.Render("No description", styles.FaintText))
	}

	section("Amenities")
	if len(item.Amenities) == 0 {
		line(bg.Render("None listed", styles.FaintText))
	}
	for _, a := range item.Amenities {
		line(bg.Render("• "+a, styles.Text))
	}

	section("Agent")
	if item.Agent.Name == "" {
		line(bg.Render("Unassigned", styles.FaintText))
	} else {
		line(bg.Render(item.Agent.Name, styles.Text))
		if item.Agent.Image != "" {
			line(bg.Render(truncateMiddle(item.Agent.Image, width), styles.FaintText))
		}
	}

	section("Location")
	line(bg.Render(formatCoordinates(item), styles.Text))

	section("Similar Properties")
	if len(m.similar) == 0 {
		line(bg.Render("No similar properties", styles.FaintText))
	}
	for i, s := range m.similar {
		line(bg.Render(fmt.Sprintf("%d", i+1), styles.WarningText) + bg.Space() +
			bg.Render(truncate(s.Title, width/2), styles.Text) + bg.Render(" · ", styles.FaintText) +
			bg.Render(formatPrice(s.Price), styles.AccentText))
	}

	return strings.TrimRight(b.String(), "\n")
}
