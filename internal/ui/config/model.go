// Package config is the settings view: it shows the effective
// configuration and edits the values a user is likely to change.
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/campus-inbox/internal/keys"
	"github.com/nhle/campus-inbox/internal/model"
	"github.com/nhle/campus-inbox/internal/theme"
)

// Mode is the current state of the settings view.
type Mode int

const (
	ModeSummary Mode = iota
	ModeForm
	ModeSaving
)

// SaveFunc persists cfg to path.
type SaveFunc func(path string, cfg *model.AppConfig) error

// SavedMsg is sent after the settings were written.
type SavedMsg struct {
	Config *model.AppConfig
	Err    error
}

// CloseMsg signals the parent to leave the view.
type CloseMsg struct{}

// formValues holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formValues struct {
	baseURL       string
	pollInterval  string
	toastTimeout  string
	theme         string
	logLevel      string
	snapshotInbox bool
}

// Model is the settings view.
type Model struct {
	mode    Mode
	path    string
	cfg     *model.AppConfig
	save    SaveFunc
	keys    *keys.KeyMap
	form    *huh.Form
	values  *formValues
	spinner spinner.Model
	status  string
	failed  bool
	width   int
	height  int
}

// New creates a settings view for the config file at path.
func New(path string, cfg *model.AppConfig, save SaveFunc, k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		mode:    ModeSummary,
		path:    path,
		cfg:     cfg,
		save:    save,
		keys:    k,
		values:  &formValues{},
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// Init resets the view to the summary.
func (m *Model) Init() tea.Cmd {
	m.mode = ModeSummary
	m.status = ""
	return nil
}

// Config returns the configuration currently shown.
func (m Model) Config() *model.AppConfig {
	return m.cfg
}

// Editing reports whether the form has focus.
func (m Model) Editing() bool {
	return m.mode == ModeForm
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SavedMsg:
		m.mode = ModeSummary
		if msg.Err != nil {
			m.failed = true
			m.status = fmt.Sprintf("Error saving settings: %v", msg.Err)
			return m, nil
		}
		m.failed = false
		m.cfg = msg.Config
		m.status = "Settings saved. Server and polling changes apply on restart."
		return m, nil

	case spinner.TickMsg:
		if m.mode == ModeSaving {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode == ModeSummary {
			return m.handleSummaryKeys(msg)
		}
	}

	if m.mode == ModeForm {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleSummaryKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }
	case key.Matches(msg, m.keys.Select), msg.String() == "e":
		m.mode = ModeForm
		m.status = ""
		m.form = m.buildForm()
		return m, m.form.Init()
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		cfg, err := m.apply()
		if err != nil {
			m.mode = ModeSummary
			m.failed = true
			m.status = err.Error()
			return m, nil
		}
		m.mode = ModeSaving
		return m, tea.Batch(m.spinner.Tick, m.saveConfig(cfg))
	case huh.StateAborted:
		m.mode = ModeSummary
		return m, nil
	}
	return m, cmd
}

// apply copies the form values onto a copy of the current config.
func (m Model) apply() (*model.AppConfig, error) {
	cfg := *m.cfg

	poll, err := strconv.Atoi(strings.TrimSpace(m.values.pollInterval))
	if err != nil {
		return nil, fmt.Errorf("poll interval: %w", err)
	}
	timeout, err := strconv.Atoi(strings.TrimSpace(m.values.toastTimeout))
	if err != nil {
		return nil, fmt.Errorf("toast timeout: %w", err)
	}

	cfg.Server.BaseURL = strings.TrimRight(strings.TrimSpace(m.values.baseURL), "/")
	cfg.Inbox.PollIntervalSec = poll
	cfg.Inbox.Snapshot = m.values.snapshotInbox
	cfg.Display.ToastTimeoutMs = timeout
	cfg.Display.Theme = m.values.theme
	cfg.Log.Level = m.values.logLevel
	return &cfg, nil
}

func (m Model) saveConfig(cfg *model.AppConfig) tea.Cmd {
	save, path := m.save, m.path
	return func() tea.Msg {
		if err := save(path, cfg); err != nil {
			return SavedMsg{Err: err}
		}
		return SavedMsg{Config: cfg}
	}
}

func (m *Model) buildForm() *huh.Form {
	*m.values = formValues{
		baseURL:       m.cfg.Server.BaseURL,
		pollInterval:  strconv.Itoa(m.cfg.Inbox.PollIntervalSec),
		toastTimeout:  strconv.Itoa(m.cfg.Display.ToastTimeoutMs),
		theme:         m.cfg.Display.Theme,
		logLevel:      m.cfg.Log.Level,
		snapshotInbox: m.cfg.Inbox.Snapshot,
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Server URL").
				Placeholder("http://localhost:8080").
				Value(&m.values.baseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Inbox poll interval (seconds)").
				Value(&m.values.pollInterval).
				Validate(validatePositive("Poll interval")),
			huh.NewConfirm().
				Title("Keep an offline copy of the inbox?").
				Value(&m.values.snapshotInbox),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Theme").
				Options(huh.NewOptions("default", "mono")...).
				Value(&m.values.theme),
			huh.NewInput().
				Title("Toast duration (ms)").
				Value(&m.values.toastTimeout).
				Validate(validatePositive("Toast duration")),
			huh.NewSelect[string]().
				Title("Log level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&m.values.logLevel),
		),
	).WithWidth(min(max(m.width-4, 30), 70)).WithShowHelp(true)
}

// View renders the settings view.
func (m Model) View() string {
	switch m.mode {
	case ModeForm:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	case ModeSaving:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.spinner.View() + " Saving settings...")
	default:
		return m.viewSummary()
	}
}

func (m Model) viewSummary() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	labelStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(22)

	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")

	rows := [][2]string{
		{"Server URL", m.cfg.Server.BaseURL},
		{"Request timeout", m.cfg.Server.RequestTimeout().String()},
		{"Poll interval", m.cfg.Inbox.PollInterval().String()},
		{"Offline inbox copy", strconv.FormatBool(m.cfg.Inbox.Snapshot)},
		{"Theme", m.cfg.Display.Theme},
		{"Toast duration", fmt.Sprintf("%dms", m.cfg.Display.ToastTimeoutMs)},
		{"Log level", m.cfg.Log.Level},
		{"Log file", m.cfg.Log.File},
		{"Config file", m.path},
	}
	for _, r := range rows {
		b.WriteString(labelStyle.Render(r[0]))
		b.WriteString(r[1])
		b.WriteString("\n")
	}

	if m.status != "" {
		style := theme.SuccessTextStyle
		if m.failed {
			style = theme.ErrorTextStyle
		}
		b.WriteString("\n")
		b.WriteString(style.Render(m.status))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("e edit | esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// HelpBindings returns the bindings specific to this view.
func (m Model) HelpBindings() [][]key.Binding {
	edit := key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit"))
	return [][]key.Binding{{edit, m.keys.Back}}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(min(max(width-4, 30), 70))
	}
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., http://localhost:8080)")
	}
	return nil
}

func validatePositive(fieldName string) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive number", fieldName)
		}
		return nil
	}
}
