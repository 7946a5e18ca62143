// Package composer is the notification form used for broadcasts and
// event notifications.
package composer

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/campus-inbox/internal/compose"
	"github.com/nhle/campus-inbox/internal/keys"
	"github.com/nhle/campus-inbox/internal/model"
	"github.com/nhle/campus-inbox/internal/theme"
	"github.com/nhle/campus-inbox/internal/validate"
)

// SubmittedMsg is sent when a submit attempt finished. Sent mirrors
// Outcome.Sent so parents can refresh the list showing the target.
type SubmittedMsg struct {
	Target  string
	Outcome compose.Outcome
}

const (
	fieldTitle = iota
	fieldMessage
)

var urgencies = []model.Urgency{model.UrgencyLow, model.UrgencyNormal, model.UrgencyHigh}

// Model is the composer form.
type Model struct {
	sender        *compose.Sender
	target        compose.Target
	keys          *keys.KeyMap
	title         textinput.Model
	message       textarea.Model
	urgency       model.Urgency
	threadEnabled bool
	focused       int
	submitting    bool
	status        string
	sent          bool
	width         int
}

// New creates a composer sending to target.
func New(sender *compose.Sender, target compose.Target, k *keys.KeyMap, width int) Model {
	ti := textinput.New()
	ti.Placeholder = "Notification title"
	ti.Prompt = ""
	ti.CharLimit = 255
	ti.Width = width - 8

	ta := textarea.New()
	ta.Placeholder = "Message (visible to recipients)"
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.SetWidth(width - 8)
	ta.SetHeight(3)

	return Model{
		sender:  sender,
		target:  target,
		keys:    k,
		title:   ti,
		message: ta,
		urgency: model.UrgencyNormal,
		width:   width,
	}
}

// SetTarget switches where the next submit goes and clears the status.
func (m *Model) SetTarget(t compose.Target) {
	m.target = t
	m.status = ""
	m.sent = false
}

// Draft returns the form contents as typed.
func (m Model) Draft() model.NotificationDraft {
	return model.NotificationDraft{
		Title:         m.title.Value(),
		Message:       m.message.Value(),
		Urgency:       m.urgency,
		ThreadEnabled: m.threadEnabled,
	}
}

// CanSubmit reports whether the submit action is enabled.
func (m Model) CanSubmit() bool {
	return !m.submitting && compose.CanSubmit(m.Draft())
}

// Status returns the inline status line of the last submit.
func (m Model) Status() string {
	return m.status
}

// Focus focuses the title field.
func (m *Model) Focus() tea.Cmd {
	m.focused = fieldTitle
	m.message.Blur()
	return m.title.Focus()
}

// Blur removes focus from both fields.
func (m *Model) Blur() {
	m.title.Blur()
	m.message.Blur()
}

// clear empties the text fields and the discussion flag. Urgency is kept.
func (m *Model) clear() {
	m.title.Reset()
	m.message.Reset()
	m.threadEnabled = false
}

// Update handles messages for the composer.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SubmittedMsg:
		if m.target == nil || msg.Target != m.target.String() {
			return m, nil
		}
		m.submitting = false
		m.status = msg.Outcome.Status
		m.sent = msg.Outcome.Sent
		if msg.Outcome.Sent {
			m.clear()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m.updateFocused(msg)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.NextField):
		if m.focused == fieldTitle {
			m.focused = fieldMessage
			m.title.Blur()
			cmd := m.message.Focus()
			return m, cmd
		}
		m.focused = fieldTitle
		m.message.Blur()
		cmd := m.title.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.CycleUrgency):
		m.urgency = nextUrgency(m.urgency)
		return m, nil

	case key.Matches(msg, m.keys.ToggleThread):
		m.threadEnabled = !m.threadEnabled
		return m, nil
	}

	if m.submitting {
		return m, nil
	}
	return m.updateFocused(msg)
}

func (m Model) updateFocused(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focused == fieldTitle {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.message, cmd = m.message.Update(msg)
	}
	return m, cmd
}

// submit sends the draft. A blank draft never reaches the sender's
// target; the broadcast flavour still reports it with a toast.
func (m Model) submit() (Model, tea.Cmd) {
	if m.submitting || m.target == nil {
		return m, nil
	}

	draft := m.Draft()
	if !compose.CanSubmit(draft) {
		m.status = compose.InvalidStatus
		m.sent = false
		if m.target.Labels().InvalidToast != "" {
			m.sender.Submit(context.Background(), m.target, draft)
		}
		return m, nil
	}

	m.submitting = true
	m.status = ""
	sender, target := m.sender, m.target
	return m, func() tea.Msg {
		return SubmittedMsg{
			Target:  target.String(),
			Outcome: sender.Submit(context.Background(), target, draft),
		}
	}
}

func nextUrgency(u model.Urgency) model.Urgency {
	u = u.Normalize()
	for i, v := range urgencies {
		if v == u {
			return urgencies[(i+1)%len(urgencies)]
		}
	}
	return model.UrgencyNormal
}

// View renders the composer.
func (m Model) View() string {
	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)

	fieldErrs := validate.FieldErrors(compose.Validate(m.Draft()))

	lines := []string{
		labelStyle.Render("Title"),
		m.title.View(),
	}
	if msg := fieldErrs.Field("title"); msg != "" {
		lines = append(lines, theme.ErrorTextStyle.Render(msg))
	}
	lines = append(lines, "", labelStyle.Render("Message"), m.message.View())
	if msg := fieldErrs.Field("message"); msg != "" {
		lines = append(lines, theme.ErrorTextStyle.Render(msg))
	}

	check := "[ ]"
	if m.threadEnabled {
		check = "[x]"
	}
	options := lipgloss.JoinHorizontal(lipgloss.Top,
		"Urgency: ",
		theme.UrgencyStyle(string(m.urgency)).Render(titleCase(string(m.urgency))),
		"   ",
		check+" Enable discussion",
	)
	lines = append(lines, "", options, "", m.renderButton())

	if m.status != "" {
		style := theme.ErrorTextStyle
		if m.sent {
			style = theme.SuccessTextStyle
		}
		lines = append(lines, style.Render(m.status))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderButton() string {
	if m.target == nil {
		return ""
	}
	labels := m.target.Labels()
	if m.submitting {
		return theme.DisabledButtonStyle.Render(labels.Submitting)
	}
	if !m.CanSubmit() {
		return theme.DisabledButtonStyle.Render(labels.Submit)
	}
	return theme.ButtonStyle.Render(labels.Submit)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return s[:1] + strings.ToLower(s[1:])
}

// HelpBindings returns the bindings specific to the composer.
func (m Model) HelpBindings() []key.Binding {
	return []key.Binding{m.keys.Submit, m.keys.NextField, m.keys.CycleUrgency, m.keys.ToggleThread}
}

// SetWidth updates the field widths.
func (m *Model) SetWidth(width int) {
	m.width = width
	m.title.Width = width - 8
	m.message.SetWidth(width - 8)
}
