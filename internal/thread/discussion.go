// Package thread manages the discussion attached to a single
// notification: creating or reusing its thread, listing messages and
// posting replies.
package thread

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/nhle/campus-inbox/internal/model"
)

var (
	// ErrDiscussionDisabled is returned by Open for notifications that do
	// not allow replies. No request is made.
	ErrDiscussionDisabled = errors.New("discussion is not enabled for this notification")

	// ErrEmptyReply is returned by SendReply for blank content. No request
	// is made.
	ErrEmptyReply = errors.New("reply is empty")

	// ErrNoThread is returned when replying or refreshing before a thread
	// has been opened.
	ErrNoThread = errors.New("no discussion is open")

	// ErrSuperseded is returned when Close or a newer Open replaced the
	// discussion while a request was in flight. Its result was dropped.
	ErrSuperseded = errors.New("discussion was replaced")
)

// State is the lifecycle of a Discussion.
type State int

const (
	StateIdle State = iota
	StateCreatingThread
	StateLoadingMessages
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCreatingThread:
		return "creating-thread"
	case StateLoadingMessages:
		return "loading-messages"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// API is the subset of the backend client a discussion needs.
type API interface {
	CreateThread(ctx context.Context, notificationID int64, title string) (model.Thread, error)
	FetchThreadMessages(ctx context.Context, threadID int64) ([]model.ThreadMessage, error)
	PostThreadMessage(ctx context.Context, threadID int64, content string) (int64, error)
}

// Discussion is the view-model of one open thread. Each Open or Close
// starts a new generation; results of older generations are discarded.
type Discussion struct {
	api    API
	logger *zap.Logger

	mu         sync.RWMutex
	generation uint64
	state      State
	delivery   model.Delivery
	thread     model.Thread
	messages   []model.ThreadMessage
	err        error
}

// NewDiscussion returns an idle discussion.
func NewDiscussion(api API, logger *zap.Logger) *Discussion {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discussion{api: api, logger: logger}
}

// Open creates or reuses the thread of d and loads its messages.
func (s *Discussion) Open(ctx context.Context, d model.Delivery) error {
	if !d.ThreadEnabled {
		return ErrDiscussionDisabled
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.state = StateCreatingThread
	s.delivery = d
	s.thread = model.Thread{}
	s.messages = nil
	s.err = nil
	s.mu.Unlock()

	th, err := s.api.CreateThread(ctx, d.ID, d.Title)
	if err != nil {
		return s.fail(gen, fmt.Errorf("opening discussion: %w", err))
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return ErrSuperseded
	}
	s.thread = th
	s.state = StateLoadingMessages
	s.mu.Unlock()

	return s.load(ctx, gen, th.ID)
}

// SendReply posts the trimmed content to the open thread and then reloads
// the full message list. The new message is never appended locally. sent
// reports whether the server accepted the message, even if the reload
// afterwards failed.
func (s *Discussion) SendReply(ctx context.Context, content string) (sent bool, err error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return false, ErrEmptyReply
	}

	gen, threadID, ok := s.current()
	if !ok {
		return false, ErrNoThread
	}

	if _, err := s.api.PostThreadMessage(ctx, threadID, content); err != nil {
		s.logger.Warn("posting reply", zap.Int64("thread_id", threadID), zap.Error(err))
		return false, fmt.Errorf("sending reply: %w", err)
	}

	return true, s.load(ctx, gen, threadID)
}

// Refresh reloads the messages of the open thread.
func (s *Discussion) Refresh(ctx context.Context) error {
	gen, threadID, ok := s.current()
	if !ok {
		return ErrNoThread
	}
	return s.load(ctx, gen, threadID)
}

// Close abandons the discussion. In-flight results are dropped.
func (s *Discussion) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.state = StateIdle
	s.delivery = model.Delivery{}
	s.thread = model.Thread{}
	s.messages = nil
	s.err = nil
}

// State returns the current lifecycle state.
func (s *Discussion) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Delivery returns the notification the discussion was opened for.
func (s *Discussion) Delivery() model.Delivery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.delivery
}

// Thread returns the open thread; its ID is zero until created.
func (s *Discussion) Thread() model.Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.thread
}

// Messages returns a copy of the loaded messages in server order.
func (s *Discussion) Messages() []model.ThreadMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.messages)
}

// Err returns the error that moved the discussion to StateFailed.
func (s *Discussion) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// current returns the generation and thread id when a thread exists.
func (s *Discussion) current() (uint64, int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.thread.ID == 0 {
		return 0, 0, false
	}
	return s.generation, s.thread.ID, true
}

func (s *Discussion) load(ctx context.Context, gen uint64, threadID int64) error {
	msgs, err := s.api.FetchThreadMessages(ctx, threadID)
	if err != nil {
		return s.fail(gen, fmt.Errorf("loading messages: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return ErrSuperseded
	}
	s.messages = msgs
	s.state = StateReady
	s.err = nil
	return nil
}

func (s *Discussion) fail(gen uint64, err error) error {
	s.logger.Warn("discussion request failed", zap.Error(err))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return ErrSuperseded
	}
	s.state = StateFailed
	s.messages = nil
	s.err = err
	return err
}
