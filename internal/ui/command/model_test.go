package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	msg, err := Parse("inbox")
	require.NoError(t, err)
	require.Equal(t, Inbox, msg.Name)

	msg, err = Parse("  EVENT 42 ")
	require.NoError(t, err)
	require.Equal(t, Event, msg.Name)
	require.Equal(t, int64(42), msg.EventID)

	msg, err = Parse("dash")
	require.NoError(t, err)
	require.Equal(t, Dashboard, msg.Name)
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"", "launch", "event", "event abc", "event -1"} {
		_, err := Parse(input)
		require.Error(t, err, "input %q", input)
	}
}

func TestEnterEmitsCommand(t *testing.T) {
	m := New(80, 24)
	for _, r := range "refresh" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.Equal(t, CommandMsg{Name: Refresh}, cmd())
	require.Contains(t, m.View(), "Command Palette")
}

func TestEnterWithUnknownCommandShowsError(t *testing.T) {
	m := New(80, 24)
	for _, r := range "zzz" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.Contains(t, m.View(), "unknown command")
}
