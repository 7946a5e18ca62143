package sync

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nhle/campus-inbox/internal/api"
)

type fakeLoader struct {
	mu     gosync.Mutex
	loads  int
	err    error
	unread int
}

func (f *fakeLoader) Load(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.err
}

func (f *fakeLoader) UnreadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unread
}

func TestPollerLoadsImmediatelyAndOnRefresh(t *testing.T) {
	loader := &fakeLoader{unread: 3}
	p := New(loader, time.Hour, nil)
	t.Cleanup(p.Stop)

	cmd := p.Start()
	require.NotNil(t, cmd)
	require.Nil(t, p.Start(), "second start is a no-op")

	first, ok := cmd().(InboxSyncedMsg)
	require.True(t, ok)
	require.Equal(t, 3, first.Unread)
	require.False(t, first.Manual)
	require.NoError(t, first.Error)

	p.Refresh()
	second, ok := p.WaitForNextResult()().(InboxSyncedMsg)
	require.True(t, ok)
	require.True(t, second.Manual)

	require.Equal(t, SyncIdle, p.Status().State)
	require.NoError(t, p.Status().Error)
}

func TestPollerReportsAuthFailure(t *testing.T) {
	loader := &fakeLoader{err: &api.AuthError{StatusCode: 401}}
	p := New(loader, time.Hour, nil)
	t.Cleanup(p.Stop)

	msg := p.Start()().(InboxSyncedMsg)
	require.Error(t, msg.Error)
	require.True(t, msg.AuthFailed)
	require.Equal(t, SyncError, p.Status().State)
}

func TestPollerPlainFailureIsNotAuth(t *testing.T) {
	loader := &fakeLoader{err: errors.New("connection refused")}
	p := New(loader, time.Hour, nil)
	t.Cleanup(p.Stop)

	msg := p.Start()().(InboxSyncedMsg)
	require.Error(t, msg.Error)
	require.False(t, msg.AuthFailed)
}

func TestPollerTicks(t *testing.T) {
	loader := &fakeLoader{}
	p := New(loader, 10*time.Millisecond, nil)
	t.Cleanup(p.Stop)

	p.Start()()
	p.WaitForNextResult()()

	loader.mu.Lock()
	defer loader.mu.Unlock()
	require.GreaterOrEqual(t, loader.loads, 2)
}

func TestPollerRestartsAfterStop(t *testing.T) {
	loader := &fakeLoader{}
	p := New(loader, time.Hour, nil)
	t.Cleanup(p.Stop)

	p.Start()()
	p.Stop()
	p.Stop()

	cmd := p.Start()
	require.NotNil(t, cmd)
	_, ok := cmd().(InboxSyncedMsg)
	require.True(t, ok)

	loader.mu.Lock()
	defer loader.mu.Unlock()
	require.Equal(t, 2, loader.loads)
}

// blockingLoader holds every load until its context ends.
type blockingLoader struct {
	started chan struct{}
	done    chan error
}

func (b *blockingLoader) Load(ctx context.Context) error {
	b.started <- struct{}{}
	<-ctx.Done()
	b.done <- ctx.Err()
	return ctx.Err()
}

func (b *blockingLoader) UnreadCount() int { return 0 }

func TestStopCancelsLoadInFlight(t *testing.T) {
	loader := &blockingLoader{started: make(chan struct{}, 1), done: make(chan error, 1)}
	p := New(loader, time.Hour, nil)

	require.NotNil(t, p.Start())
	<-loader.started
	p.Stop()

	select {
	case err := <-loader.done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("load was not cancelled by Stop")
	}

	time.Sleep(20 * time.Millisecond)
	require.Empty(t, p.resultCh, "a cancelled load publishes no result")
	require.Equal(t, SyncIdle, p.Status().State)
}
