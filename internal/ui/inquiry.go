package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nestingglobal/nestview/internal/listing"
	"github.com/nestingglobal/nestview/internal/nestapi"
)

// inquiryState is the submission lifecycle of the inquiry form.
type inquiryState int

const (
	inquiryIdle inquiryState = iota
	inquirySubmitting
	inquirySuccess
	inquiryError
)

func (s inquiryState) String() string {
	switch s {
	case inquirySubmitting:
		return "submitting"
	case inquirySuccess:
		return "success"
	case inquiryError:
		return "error"
	default:
		return "idle"
	}
}

const (
	fieldName = iota
	fieldEmail
	fieldPhone
	fieldMessage
	fieldCount
)

var fieldLabels = [fieldCount]string{"Full Name", "Email Address", "Phone Number", "Message"}

type inquiryResultMsg struct {
	err error
}

// submitFunc sends an inquiry and reports the outcome as an inquiryResultMsg.
type submitFunc func(nestapi.Inquiry) tea.Cmd

// inquiryModal is the "Apply Now" form for one listing.
type inquiryModal struct {
	propertyID    string
	propertyTitle string
	inputs        [fieldCount]textinput.Model
	focus         int
	state         inquiryState
	err           error
	submit        submitFunc
}

func newInquiryModal(item listing.Listing, submit submitFunc) *inquiryModal {
	m := &inquiryModal{
		propertyID:    item.ID,
		propertyTitle: item.Title,
		submit:        submit,
	}
	placeholders := [fieldCount]string{"Jane Doe", "jane@example.com", "+971 50 000 0000", "I'd like to arrange a viewing"}
	limits := [fieldCount]int{80, 120, 32, 500}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = limits[i]
		ti.Width = InquiryWidth - 8
		m.inputs[i] = ti
	}
	m.inputs[fieldName].Focus()
	return m
}

// openInquiry shows the inquiry modal for item.
func (m *Model) openInquiry(item listing.Listing) {
	ctx, api := m.ctx, m.api
	m.modal = newInquiryModal(item, func(in nestapi.Inquiry) tea.Cmd {
		return submitInquiryCmd(ctx, api, in)
	})
}

func submitInquiryCmd(ctx context.Context, api ContactsAPI, in nestapi.Inquiry) tea.Cmd {
	return func() tea.Msg {
		if api == nil {
			return inquiryResultMsg{err: errNoAPI}
		}
		ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
		defer cancel()
		return inquiryResultMsg{err: api.SubmitInquiry(ctx, in)}
	}
}

func (m *inquiryModal) inquiry() nestapi.Inquiry {
	return nestapi.Inquiry{
		FullName:    strings.TrimSpace(m.inputs[fieldName].Value()),
		Email:       strings.TrimSpace(m.inputs[fieldEmail].Value()),
		PhoneNumber: strings.TrimSpace(m.inputs[fieldPhone].Value()),
		Message:     strings.TrimSpace(m.inputs[fieldMessage].Value()),
		PropertyID:  m.propertyID,
	}
}

// reset returns the form to idle with empty fields.
func (m *inquiryModal) reset() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.focus = fieldName
	m.inputs[fieldName].Focus()
	m.state = inquiryIdle
	m.err = nil
}

func (m *inquiryModal) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = (i%fieldCount + fieldCount) % fieldCount
	return m.inputs[m.focus].Focus()
}

// trySubmit validates and, when valid, moves to submitting.
func (m *inquiryModal) trySubmit() tea.Cmd {
	in := m.inquiry()
	if err := in.Validate(); err != nil {
		m.state = inquiryError
		m.err = err
		if errors.Is(err, nestapi.ErrNameRequired) {
			return m.setFocus(fieldName)
		}
		return m.setFocus(fieldEmail)
	}
	m.state = inquirySubmitting
	m.err = nil
	if m.submit == nil {
		return nil
	}
	return m.submit(in)
}

// Update implements Modal.
func (m *inquiryModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case inquiryResultMsg:
		if m.state != inquirySubmitting {
			return m, nil, false
		}
		if msg.err != nil {
			m.state = inquiryError
			m.err = msg.err
		} else {
			m.state = inquirySuccess
			m.err = nil
		}
		return m, nil, false

	case tea.KeyMsg:
		if key.Matches(msg, keys.Escape) || msg.String() == "ctrl+c" {
			m.reset()
			return m, nil, true
		}

		switch m.state {
		case inquirySuccess:
			if msg.String() == "enter" {
				m.reset()
				return m, nil, true
			}
			return m, nil, false
		case inquirySubmitting:
			return m, nil, false
		}

		switch {
		case key.Matches(msg, keys.Submit):
			return m, m.trySubmit(), false
		case msg.String() == "enter":
			if m.focus == fieldCount-1 {
				return m, m.trySubmit(), false
			}
			return m, m.setFocus(m.focus + 1), false
		case key.Matches(msg, keys.NextField):
			return m, m.setFocus(m.focus + 1), false
		case key.Matches(msg, keys.PrevField):
			return m, m.setFocus(m.focus - 1), false
		}

		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd, false
	}
	return m, nil, false
}

// View implements Modal.
func (m *inquiryModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder

	if m.state == inquirySuccess {
		b.WriteString(styles.SuccessText.Render("Application Sent!"))
		b.WriteString("\n\n")
		b.WriteString(styles.Text.Render("Thank you for your interest. A member of our team will contact you shortly to proceed with your application."))
		b.WriteString("\n\n")
		b.WriteString(styles.MutedText.Render("enter or esc to close"))
		return placeModal(theme, b.String(), InquiryWidth, width, height)
	}

	b.WriteString(styles.Text.Bold(true).Render("Apply Now"))
	b.WriteString("\n")
	if m.propertyTitle != "" {
		b.WriteString(styles.AccentText.Render(truncate(m.propertyTitle, InquiryWidth-6)))
		b.WriteString("\n")
	}
	b.WriteString(styles.MutedText.Render("Begin your journey to securing a world-class property."))
	b.WriteString("\n\n")

	for i, input := range m.inputs {
		label := fieldLabels[i]
		if i == fieldName || i == fieldEmail {
			label += " *"
		}
		labelStyle := styles.MutedText
		if i == m.focus {
			labelStyle = styles.AccentText.Bold(true)
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString("\n")
		b.WriteString(input.View())
		b.WriteString("\n\n")
	}

	switch m.state {
	case inquirySubmitting:
		b.WriteString(styles.WarningText.Render("Submitting..."))
	case inquiryError:
		b.WriteString(styles.DangerText.Render(m.errorText()))
	default:
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			styles.AccentText.Render("enter"), styles.MutedText.Render(" next  "),
			styles.AccentText.Render("ctrl+s"), styles.MutedText.Render(" submit  "),
			styles.AccentText.Render("esc"), styles.MutedText.Render(" cancel"),
		))
	}

	return placeModal(theme, b.String(), InquiryWidth, width, height)
}

func (m *inquiryModal) errorText() string {
	if m.err == nil {
		return "Something went wrong. Please try again."
	}
	if errors.Is(m.err, nestapi.ErrNameRequired) || errors.Is(m.err, nestapi.ErrEmailInvalid) {
		return m.err.Error()
	}
	return "Submission failed (" + classifyError(m.err) + "). Please try again."
}
