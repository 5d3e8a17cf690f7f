package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nestingglobal/nestview/internal/nestapi"
)

type contactsLoadedMsg struct {
	contacts []nestapi.Contact
	err      error
}

// contactColumn describes one column of the contacts table.
type contactColumn struct {
	title string
	width int
	value func(nestapi.Contact) string
}

func contactColumns(total int) []contactColumn {
	cols := []contactColumn{
		{title: "ID", width: 8, value: nestapi.Contact.ShortID},
		{title: "Full Name", width: 20, value: func(c nestapi.Contact) string { return c.FullName }},
		{title: "Email", width: 26, value: func(c nestapi.Contact) string { return c.Email }},
		{title: "Phone", width: 16, value: func(c nestapi.Contact) string { return c.PhoneNumber }},
		{title: "Message", width: 0, value: func(c nestapi.Contact) string { return c.Message }},
		{title: "Date", width: 10, value: func(c nestapi.Contact) string { return formatDate(c.CreatedAt) }},
	}
	if total < LayoutCompactWidth {
		// Drop phone on narrow terminals.
		cols = append(cols[:3], cols[4:]...)
	}
	used := 0
	for _, c := range cols {
		used += c.width + 1
	}
	for i := range cols {
		if cols[i].width == 0 {
			cols[i].width = max(total-used-2, 10)
		}
	}
	return cols
}

// refreshContacts fetches the submitted contacts.
func (m *Model) refreshContacts() tea.Cmd {
	if m.contactsLoading {
		return nil
	}
	m.contactsLoading = true
	return fetchContactsCmd(m.ctx, m.api)
}

func fetchContactsCmd(ctx context.Context, api ContactsAPI) tea.Cmd {
	return func() tea.Msg {
		if api == nil {
			return contactsLoadedMsg{err: errNoAPI}
		}
		ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
		defer cancel()
		contacts, err := api.FetchContacts(ctx)
		return contactsLoadedMsg{contacts: contacts, err: err}
	}
}

func (m *Model) handleContactsLoaded(msg contactsLoadedMsg) {
	m.contactsLoading = false
	if msg.err != nil {
		m.contactsErr = msg.err
		m.logger.Warn("fetching contacts failed", "error", msg.err)
		return
	}
	m.contactsErr = nil
	m.contactsLoaded = true
	m.contacts = msg.contacts
	if m.contactRow >= len(m.contacts) {
		m.contactRow = max(len(m.contacts)-1, 0)
	}
}

// prependContact adds a contact announced by the push channel. A contact
// already present is not added twice.
func (m *Model) prependContact(c nestapi.Contact) {
	if c.ID != "" {
		for _, existing := range m.contacts {
			if existing.ID == c.ID {
				return
			}
		}
	}
	m.contacts = append([]nestapi.Contact{c}, m.contacts...)
	if m.currentView == ViewContacts && len(m.contacts) > 1 {
		m.contactRow++
	}
	m.setFlash("New contact from " + ternary(c.FullName != "", c.FullName, "a visitor"))
}

// handleContactsKey processes keyboard input for the contacts view.
func (m Model) handleContactsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Reload) {
		return m, m.refreshContacts()
	}

	count := len(m.contacts)
	if count == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.contactRow < count-1 {
			m.contactRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.contactRow > 0 {
			m.contactRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.contactRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.contactRow = count - 1
	}
	return m, nil
}

// renderContacts renders the contacts table.
func (m Model) renderContacts() string {
	height := m.contentHeight()
	styles := m.theme.Styles()

	if len(m.contacts) == 0 {
		switch {
		case m.contactsLoading:
			return m.renderEmpty("Loading contacts...", "", height)
		case m.contactsErr != nil:
			return m.renderEmpty("Contacts Unavailable", classifyError(m.contactsErr)+": "+truncate(m.contactsErr.Error(), 60)+"  (R to retry)", height)
		default:
			return m.renderEmpty("No Contacts", "Submitted inquiries appear here.", height)
		}
	}

	width := m.width - 2
	bgColor := m.theme.FocusBg
	cols := contactColumns(width)

	headerBg := NewBgStyle(bgColor)
	headerCells := make([]string, len(cols))
	for i, c := range cols {
		headerCells[i] = fitColumn(c.title, c.width)
	}
	lines := []string{headerBg.FillLine(headerBg.Render(strings.Join(headerCells, " "), styles.AccentText.Bold(true)), width)}

	rows := height - 3
	start := scrollWindow(m.contactRow, len(m.contacts), rows)
	end := min(start+rows, len(m.contacts))
	for i := start; i < end; i++ {
		contact := m.contacts[i]
		selected := i == m.contactRow
		rowBg := ternary(selected, m.theme.SelectionBg, bgColor)
		bg := NewBgStyle(rowBg)

		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = fitColumn(c.value(contact), c.width)
		}
		style := styles.Text
		if selected {
			style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		}
		lines = append(lines, bg.FillLine(bg.Render(strings.Join(cells, " "), style), width))
	}

	title := fmt.Sprintf("Contacts (%d)", len(m.contacts))
	if m.contactsLoading {
		title += " · refreshing"
	} else if m.contactsErr != nil {
		title += " · " + classifyError(m.contactsErr)
	}
	return m.renderTitledBox(title, strings.Join(lines, "\n"), m.width, height, true)
}
