package ui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nestingglobal/nestview/internal/logtail"
)

type logsLoadedMsg struct {
	entries []logtail.Entry
	err     error
}

var levelCycle = []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}

func levelLabel(l slog.Level) string {
	switch {
	case l <= slog.LevelDebug:
		return "DEBUG"
	case l <= slog.LevelInfo:
		return "INFO"
	case l <= slog.LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

func nextLevel(l slog.Level) slog.Level {
	for i, lvl := range levelCycle {
		if lvl == l {
			return levelCycle[(i+1)%len(levelCycle)]
		}
	}
	return slog.LevelInfo
}

func (m *Model) initLogViewport() {
	// header, cmdbar, status line and the box borders
	m.logViewport = viewport.New(max(m.width-4, 1), max(m.height-5, 1))
}

// refreshLogs re-reads the tail of the log file, at most once per
// LogRefreshInterval.
func (m *Model) refreshLogs() tea.Cmd {
	if m.logPath == "" || m.logLoading {
		return nil
	}
	if !m.logReadAt.IsZero() && time.Since(m.logReadAt) < LogRefreshInterval {
		return nil
	}
	m.logLoading = true
	m.logReadAt = time.Now()
	path := m.logPath
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogTailLines)
		if err != nil {
			return logsLoadedMsg{err: err}
		}
		return logsLoadedMsg{entries: logtail.ParseAll(lines)}
	}
}

func (m *Model) handleLogsLoaded(msg logsLoadedMsg) {
	m.logLoading = false
	m.logErr = msg.err
	if msg.err == nil {
		m.logEntries = msg.entries
	}
	m.updateLogViewport()
}

// updateLogViewport re-renders log lines at the current level. The view
// stays pinned to the bottom unless the user scrolled up.
func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}
	follow := m.logViewport.AtBottom() || m.logViewport.TotalLineCount() == 0
	m.logViewport.Width = max(m.width-4, 1)
	m.logViewport.Height = max(m.height-5, 1)
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	m.logViewport.SetContent(m.renderLogContent())
	if follow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) renderLogContent() string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	bg := NewBgStyle(m.theme.FocusBg)
	entries := logtail.Filter(m.logEntries, m.logLevel)
	if len(entries) == 0 {
		return bg.Render("No log lines at this level", styles.FaintText)
	}
	width := max(m.width-4, 10)
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = bg.Render(truncate(e.Raw, width), m.levelStyle(e, styles))
	}
	return strings.Join(lines, "\n")
}

func (m Model) levelStyle(e logtail.Entry, styles Styles) lipgloss.Style {
	if !e.Known {
		return styles.MutedText
	}
	switch {
	case e.Level >= slog.LevelError:
		return styles.DangerText
	case e.Level >= slog.LevelWarn:
		return styles.WarningText
	case e.Level <= slog.LevelDebug:
		return styles.FaintText
	default:
		return styles.Text
	}
}

// handleDiagnosticsKey processes keyboard input for the diagnostics view.
func (m Model) handleDiagnosticsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.CycleLevel):
		m.logLevel = nextLevel(m.logLevel)
		m.updateLogViewport()
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		return m, m.reload()
	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

// renderDiagnostics renders the catalog status line and the log tail.
func (m Model) renderDiagnostics() string {
	bg := NewBgStyle(m.theme.Background)
	styles := m.theme.Styles().WithBackground(m.theme.Background)

	snap := m.snapshot
	parts := []string{
		bg.Label("Catalog", fmt.Sprintf("v%d", snap.Version), styles, styles.Text),
		bg.Label("Source", ternary(snap.Source != "", string(snap.Source), "none"), styles, styles.Text),
		bg.Label("Listings", fmt.Sprintf("%d", len(snap.Listings)), styles, styles.Text),
		bg.Label("Failures", fmt.Sprintf("%d", snap.ConsecutiveFailures), styles,
			ternaryStyle(snap.ConsecutiveFailures > 0, styles.DangerText, styles.Text)),
	}
	if snap.LastError != nil {
		parts = append(parts, bg.Render(truncate(snap.LastError.Error(), 60), styles.DangerText))
	}
	status := bg.FillLine(bg.Join(parts, "  "), m.width)

	title := "Log · " + levelLabel(m.logLevel) + "+"
	var body string
	switch {
	case m.logPath == "":
		body = styles.FaintText.Render("Logging to the terminal; no log file to show.")
	case m.logErr != nil:
		body = styles.DangerText.Render("Reading " + m.logPath + ": " + m.logErr.Error())
	default:
		title += " · " + truncateMiddle(m.logPath, max(m.width/3, 20))
		body = m.logViewport.View()
	}

	box := m.renderTitledBox(title, body, m.width, max(m.contentHeight()-1, 3), true)
	return status + "\n" + box
}

func ternaryStyle(cond bool, a, b lipgloss.Style) lipgloss.Style {
	if cond {
		return a
	}
	return b
}
