package discussion

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/nhle/campus-inbox/internal/keys"
	"github.com/nhle/campus-inbox/internal/model"
	"github.com/nhle/campus-inbox/internal/thread"
	"github.com/nhle/campus-inbox/internal/toast"
)

type fakeAPI struct {
	messages []model.ThreadMessage
	posts    []string
	postErr  error
	fetched  []int64
}

func (f *fakeAPI) CreateThread(_ context.Context, _ int64, title string) (model.Thread, error) {
	return model.Thread{ID: 11, Title: title}, nil
}

func (f *fakeAPI) FetchThreadMessages(_ context.Context, threadID int64) ([]model.ThreadMessage, error) {
	f.fetched = append(f.fetched, threadID)
	return f.messages, nil
}

func (f *fakeAPI) PostThreadMessage(_ context.Context, _ int64, content string) (int64, error) {
	if f.postErr != nil {
		return 0, f.postErr
	}
	f.posts = append(f.posts, content)
	f.messages = append(f.messages, model.ThreadMessage{ID: int64(len(f.messages) + 1), Author: "me", Content: content})
	return int64(len(f.messages)), nil
}

type recorder struct {
	toasts []toast.Toast
}

func (r *recorder) Publish(t toast.Toast) { r.toasts = append(r.toasts, t) }

// openResult runs only the thread-opening half of the command returned
// by Open; the other half is the cursor blink.
func openResult(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	require.NotEmpty(t, batch)
	return batch[0]()
}

func openModel(t *testing.T, api *fakeAPI) (Model, *recorder) {
	t.Helper()
	rec := &recorder{}
	m := New(thread.NewDiscussion(api, nil), keys.DefaultKeyMap(), rec, 100, 30)

	cmd := m.Open(model.Delivery{DeliveryID: 5, ID: 1, Title: "Hello", ThreadEnabled: true})
	m, _ = m.Update(openResult(t, cmd))
	return m, rec
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestOpenShowsEmptyState(t *testing.T) {
	api := &fakeAPI{}
	m, rec := openModel(t, api)

	require.Equal(t, []int64{11}, api.fetched)
	require.Contains(t, m.View(), EmptyText)
	require.Contains(t, m.View(), "Thread #11")
	require.Empty(t, rec.toasts)
}

func TestOpenRendersMessages(t *testing.T) {
	api := &fakeAPI{messages: []model.ThreadMessage{{ID: 1, Author: "alice", Content: "When does it start?"}}}
	m, _ := openModel(t, api)

	view := m.View()
	require.Contains(t, view, "alice")
	require.Contains(t, view, "When does it start?")
	require.NotContains(t, view, EmptyText)
}

func TestWhitespaceReplyMakesNoRequest(t *testing.T) {
	api := &fakeAPI{}
	m, _ := openModel(t, api)

	m = typeText(m, "   ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.Empty(t, api.posts)
}

func TestReplyPostsAndReloads(t *testing.T) {
	api := &fakeAPI{}
	m, _ := openModel(t, api)

	m = typeText(m, "  hi there ")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.Contains(t, m.View(), "Sending...")

	m, _ = m.Update(cmd())
	require.Equal(t, []string{"hi there"}, api.posts)
	require.Equal(t, []int64{11, 11}, api.fetched)
	require.Contains(t, m.View(), "hi there")
	require.NotContains(t, m.View(), "Sending...")
}

func TestReplyFailureKeepsInputAndToasts(t *testing.T) {
	api := &fakeAPI{postErr: errors.New("boom")}
	m, rec := openModel(t, api)

	m = typeText(m, "hello")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(cmd())

	require.Len(t, rec.toasts, 1)
	require.Equal(t, "Failed to send message", rec.toasts[0].Text)
	require.Contains(t, m.View(), "hello")
}

func TestDisabledOpenToasts(t *testing.T) {
	rec := &recorder{}
	m := New(thread.NewDiscussion(&fakeAPI{}, nil), keys.DefaultKeyMap(), rec, 100, 30)

	m, _ = m.Update(OpenedMsg{Err: thread.ErrDiscussionDisabled})
	require.Len(t, rec.toasts, 1)
	require.Equal(t, "Discussion is not enabled for this notification", rec.toasts[0].Text)
}

func TestBackClosesDiscussion(t *testing.T) {
	m, _ := openModel(t, &fakeAPI{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, CloseMsg{}, cmd())
}
