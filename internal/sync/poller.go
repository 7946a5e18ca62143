// Package sync reloads the inbox in the background and reports each
// result to the Bubble Tea runtime.
package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/campus-inbox/internal/api"
)

// SyncState represents the current state of the inbox sync.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

// SyncStatus is the state of the most recent sync. The time of the last
// successful load is kept by the inbox itself.
type SyncStatus struct {
	State SyncState
	Error error
}

// InboxSyncedMsg is a tea.Msg sent when an inbox load completes.
type InboxSyncedMsg struct {
	Unread int
	Error  error

	// AuthFailed is set when the load failed because the token was
	// rejected.
	AuthFailed bool

	// Manual is set for loads started by Refresh.
	Manual bool
}

// Loader is the inbox being kept fresh.
type Loader interface {
	Load(ctx context.Context) error
	UnreadCount() int
}

// fetchTimeout is the maximum time allowed for a single load.
const fetchTimeout = 30 * time.Second

// defaultInterval applies when the configured interval is not positive.
const defaultInterval = 60 * time.Second

// Poller reloads the inbox on an interval and on demand.
type Poller struct {
	inbox    Loader
	interval time.Duration
	logger   *zap.Logger

	status    SyncStatus
	resultCh  chan InboxSyncedMsg
	triggerCh chan struct{}
	cancel    context.CancelFunc
	mu        gosync.Mutex
	running   bool
}

// New creates a Poller for inbox.
func New(inbox Loader, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		inbox:     inbox,
		interval:  interval,
		logger:    logger,
		resultCh:  make(chan InboxSyncedMsg, 16),
		triggerCh: make(chan struct{}, 1),
	}
}

// Start returns a tea.Cmd that starts the polling goroutine and waits
// for its first result. Calling Start on a running poller returns nil.
// A stopped poller may be started again.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.mu.Unlock()

	go p.poll(ctx)

	return p.waitForResult()
}

// Stop halts the polling goroutine and cancels a load in flight. A
// cancelled load publishes no result.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	p.cancel()
	p.running = false
	p.status = SyncStatus{State: SyncIdle}
}

// Refresh asks for an immediate reload. Requests made while one is
// already pending are coalesced.
func (p *Poller) Refresh() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

// Status returns the state of the most recent sync.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) poll(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.load(ctx, false)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.load(ctx, false)
		case <-p.triggerCh:
			p.load(ctx, true)
			ticker.Reset(p.interval)
		}
	}
}

// load performs one inbox load and publishes the result unless the
// poller was stopped meanwhile.
func (p *Poller) load(ctx context.Context, manual bool) {
	if ctx.Err() != nil {
		return
	}
	p.setStatus(SyncRunning, nil)

	loadCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	err := p.inbox.Load(loadCtx)
	if ctx.Err() != nil {
		p.logger.Debug("inbox sync cancelled", zap.Bool("manual", manual))
		return
	}

	msg := InboxSyncedMsg{
		Unread: p.inbox.UnreadCount(),
		Error:  err,
		Manual: manual,
	}
	if err != nil {
		p.setStatus(SyncError, err)
		msg.AuthFailed = api.IsAuth(err)
		p.logger.Debug("inbox sync failed", zap.Bool("manual", manual), zap.Error(err))
	} else {
		p.setStatus(SyncIdle, nil)
	}

	p.sendResult(msg)
}

func (p *Poller) setStatus(state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status = SyncStatus{State: state, Error: err}
}

// sendResult sends a result without blocking.
func (p *Poller) sendResult(msg InboxSyncedMsg) {
	select {
	case p.resultCh <- msg:
	default:
		p.logger.Debug("dropping inbox sync result")
	}
}

func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next sync
// result. Call it after handling each InboxSyncedMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
