// Package login is the sign-in form shown before anything else and
// whenever the backend rejects the stored token.
package login

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/campus-inbox/internal/api"
	"github.com/nhle/campus-inbox/internal/theme"
	"github.com/nhle/campus-inbox/internal/validate"
)

// Authenticator exchanges credentials for a token and stores it.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// LoggedInMsg is sent after a login attempt.
type LoggedInMsg struct {
	Token string
	Err   error
}

// credentials holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Model is the login form.
type Model struct {
	auth       Authenticator
	form       *huh.Form
	creds      *credentials
	submitting bool
	err        string
	notice     string
	width      int
	height     int
}

// New creates a login form.
func New(auth Authenticator, width, height int) Model {
	return Model{
		auth:   auth,
		creds:  &credentials{},
		width:  width,
		height: height,
	}
}

// Start resets the form, keeping the last username. notice is shown
// above the form, e.g. why the user was signed out.
func (m *Model) Start(notice string) tea.Cmd {
	m.creds.Password = ""
	m.submitting = false
	m.err = ""
	m.notice = notice
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the login form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if res, ok := msg.(LoggedInMsg); ok {
		m.submitting = false
		if res.Err == nil {
			m.err = ""
			return m, nil
		}
		m.err = Describe(res.Err)
		m.creds.Password = ""
		m.form = m.buildForm()
		return m, m.form.Init()
	}

	if m.form == nil || m.submitting {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.submit()
	case huh.StateAborted:
		m.form = m.buildForm()
		return m, m.form.Init()
	}
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	in := credentials{
		Username: strings.TrimSpace(m.creds.Username),
		Password: m.creds.Password,
	}
	if err := validate.Struct(in); err != nil {
		m.err = err.Error()
		m.form = m.buildForm()
		return m, m.form.Init()
	}

	m.submitting = true
	m.err = ""
	auth := m.auth
	return m, func() tea.Msg {
		token, err := auth.Login(context.Background(), in.Username, in.Password)
		return LoggedInMsg{Token: token, Err: err}
	}
}

// Describe turns a login failure into the text shown under the form.
func Describe(err error) string {
	var authErr *api.AuthError
	var statusErr *api.StatusError
	switch {
	case errors.As(err, &authErr) && authErr.StatusCode == http.StatusUnauthorized:
		return "Invalid password. Please try again."
	case api.IsNotFound(err):
		return "User not found."
	case errors.As(err, &authErr), errors.As(err, &statusErr):
		return "Login failed. Please try again."
	default:
		return "Network error. Please check your connection."
	}
}

// View renders the login form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	parts := []string{titleStyle.Render("Sign in to Campus Inbox")}
	if m.notice != "" {
		parts = append(parts, theme.DimmedStyle.Render(m.notice))
	}
	parts = append(parts, m.form.View())
	switch {
	case m.submitting:
		parts = append(parts, theme.HelpStyle.Render("Signing in..."))
	case m.err != "":
		parts = append(parts, theme.ErrorTextStyle.Render(m.err))
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&m.creds.Username).
				Validate(validateRequired("Username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.creds.Password).
				Validate(validateRequired("Password")),
		),
	).WithWidth(m.formWidth()).WithShowHelp(true)
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 30), 60)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
