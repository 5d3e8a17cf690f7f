package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nestingglobal/nestview/internal/catalog"
	"github.com/nestingglobal/nestview/internal/query"
)

const logoText = "nestview"

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth
	sep := bg.Spaces(2)

	parts := []string{
		bg.Render(logoText, styles.Logo),
		m.connectionIndicator(styles, bg),
	}

	stats := query.Summarize(m.snapshot.Listings)
	if compact {
		parts = append(parts, bg.Label("P:", fmt.Sprintf("%d", stats.Total), styles, styles.Text))
	} else {
		parts = append(parts, bg.Label("Properties:", fmt.Sprintf("%d", stats.Total), styles, styles.Text))
	}

	if stats.Featured > 0 {
		featured := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StatusColors["Featured"]))
		parts = append(parts, bg.Label(ternary(compact, "★", "Featured:"), fmt.Sprintf("%d", stats.Featured), styles, featured))
	}

	favStyle := styles.MutedText
	if m.favs.Len() > 0 {
		favStyle = styles.Favorite
	}
	parts = append(parts, bg.Render("♥", favStyle)+bg.Space()+bg.Render(fmt.Sprintf("%d", m.favs.Len()), favStyle))

	if ts := formatTimestamp(m.lastUpdated, time.Now()); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	if warn := m.formatErrorWarning(compact, styles, bg); warn != "" {
		parts = append(parts, warn)
	}

	if m.flash != "" {
		parts = append(parts, bg.Render(m.flash, styles.WarningText))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

// connectionIndicator summarizes where the catalog came from and whether the
// remote is reachable.
func (m Model) connectionIndicator(styles Styles, bg BgStyle) string {
	snap := m.snapshot
	switch {
	case snap.Loading || m.reloading:
		return bg.Render("● SYNCING", styles.WarningText.Bold(true))
	case snap.IsOffline():
		return bg.Render("● OFFLINE", styles.DangerText)
	}
	switch snap.Source {
	case catalog.SourceLive:
		return bg.Render("● LIVE", styles.SuccessText)
	case catalog.SourceRemote:
		return bg.Render("● ONLINE", styles.SuccessText)
	case catalog.SourceCache:
		return bg.Render("● CACHED", styles.InfoText)
	default:
		return bg.Render("● WAITING", styles.MutedText)
	}
}

// formatErrorWarning shows the most recent remote failure, if any.
func (m Model) formatErrorWarning(compact bool, styles Styles, bg BgStyle) string {
	err := m.snapshot.LastError
	if err == nil {
		return ""
	}
	limit := 60
	if compact {
		limit = 24
	}
	return bg.Render(classifyError(err), styles.DangerText.Bold(true)) + bg.Space() +
		bg.Render(truncate(err.Error(), limit), styles.DangerText)
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewDetail:
		commands = []cmd{
			{"←/→", "Images"},
			{"f", "Favorite"},
			{"i", "Apply"},
			{"1-3", "Similar"},
			{"j/k", "Scroll"},
			{"esc", "Back"},
			{"?", "More"},
		}
	case ViewFavorites:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"enter", "Open"},
			{"f", "Remove"},
			{"esc", "Catalog"},
			{"Tab", "Views"},
			{"?", "More"},
		}
	case ViewContacts:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"R", "Refresh"},
			{"esc", "Catalog"},
			{"Tab", "Views"},
			{"?", "More"},
		}
	case ViewDiagnostics:
		commands = []cmd{
			{"L", "Level " + levelLabel(m.logLevel)},
			{"j/k", "Scroll"},
			{"G", "Bottom"},
			{"R", "Reload catalog"},
			{"esc", "Catalog"},
			{"?", "More"},
		}
	default: // ViewCatalog
		commands = []cmd{
			{"/", "Search"},
			{"l", "Location"},
			{"c", "Type"},
			{"b/a", "Beds/Baths"},
			{"[/]", "Price"},
			{"s", "Sort"},
			{"r", "Reset"},
			{"f", "Favorite"},
			{"enter", "Open"},
			{"i", "Apply"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	if m.currentView == ViewCatalog && m.spec.Search != "" && !m.searchActive {
		segments = append(segments, bg.Render("/"+truncate(m.spec.Search, 18), styles.AccentText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}
