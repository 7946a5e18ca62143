// Package inbox holds the current user's notification deliveries and
// applies read and mute changes once the server has acknowledged them.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/nhle/campus-inbox/internal/model"
	"github.com/nhle/campus-inbox/internal/store"
)

// maxParallelMarks bounds concurrent mark-read requests in MarkAllRead.
const maxParallelMarks = 8

// ErrSuperseded is returned by Load when Reset ran while the request was
// in flight. The response was discarded.
var ErrSuperseded = errors.New("inbox load superseded by reset")

// API is the subset of the backend client the inbox needs.
type API interface {
	FetchInbox(ctx context.Context) ([]model.Delivery, error)
	MarkDeliveryRead(ctx context.Context, deliveryID int64) error
	MuteDelivery(ctx context.Context, deliveryID int64, mute bool) error
}

// BulkResult reports the outcome of MarkAllRead.
type BulkResult struct {
	Attempted int
	Succeeded []int64
	Failed    []int64

	// Err aggregates the individual failures, nil when none failed.
	Err error
}

// Partial reports whether some but not all requests failed.
func (r BulkResult) Partial() bool {
	return len(r.Failed) > 0 && len(r.Succeeded) > 0
}

// Store is the in-memory inbox. It is safe for concurrent use.
type Store struct {
	api      API
	snapshot store.Snapshot
	logger   *zap.Logger

	mu       sync.RWMutex
	items    []model.Delivery
	loaded   bool
	syncedAt time.Time

	// gen is bumped by Reset; a Load only commits if it is unchanged.
	gen uint64

	// snapMu orders snapshot writes against Reset.
	snapMu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithSnapshot persists every successful load and acknowledged change to
// snap, and lets Warm read it back.
func WithSnapshot(snap store.Snapshot) Option {
	return func(s *Store) {
		s.snapshot = snap
	}
}

// WithLogger sets the logger for failures that are not shown to the user.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore returns an empty inbox backed by api.
func NewStore(api API, opts ...Option) *Store {
	s := &Store{
		api:    api,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Warm fills an inbox that has not loaded yet from the snapshot. It
// reports whether anything was restored.
func (s *Store) Warm(ctx context.Context) bool {
	if s.snapshot == nil {
		return false
	}

	items, err := s.snapshot.GetDeliveries(ctx)
	if err != nil {
		s.logger.Warn("reading inbox snapshot", zap.Error(err))
		return false
	}

	synced, err := s.snapshot.LastSynced(ctx)
	if err != nil {
		s.logger.Warn("reading inbox snapshot time", zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded || len(items) == 0 {
		return false
	}
	s.items = items
	s.syncedAt = synced
	return true
}

// Load fetches the inbox and replaces the local list with the result.
// On failure the list is emptied and the error returned. A response that
// arrives after Reset is dropped and ErrSuperseded returned.
func (s *Store) Load(ctx context.Context) error {
	gen := s.generation()
	items, err := s.api.FetchInbox(ctx)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		s.logger.Debug("dropping inbox load after reset")
		return ErrSuperseded
	}
	s.loaded = true
	if err != nil {
		s.items = nil
	} else {
		s.items = items
		s.syncedAt = time.Now()
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("loading inbox", zap.Error(err))
		return fmt.Errorf("loading inbox: %w", err)
	}

	s.saveSnapshot(ctx, gen, items)
	return nil
}

func (s *Store) saveSnapshot(ctx context.Context, gen uint64, items []model.Delivery) {
	if s.snapshot == nil {
		return
	}

	s.snapMu.Lock()
	defer s.snapMu.Unlock()

	if s.generation() != gen {
		return
	}
	if err := s.snapshot.ReplaceDeliveries(ctx, items); err != nil {
		s.logger.Warn("saving inbox snapshot", zap.Error(err))
	}
}

// Reset forgets the current list, e.g. after the user signs out. The
// snapshot is cleared as well, and loads still in flight are discarded.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	s.gen++
	s.items = nil
	s.loaded = false
	s.syncedAt = time.Time{}
	s.mu.Unlock()

	if s.snapshot == nil {
		return
	}

	s.snapMu.Lock()
	defer s.snapMu.Unlock()

	if err := s.snapshot.ReplaceDeliveries(ctx, nil); err != nil {
		s.logger.Warn("clearing inbox snapshot", zap.Error(err))
	}
}

func (s *Store) generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Items returns a copy of the current list in server order.
func (s *Store) Items() []model.Delivery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Loaded reports whether Load has completed at least once.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// SyncedAt returns when the list was last replaced by the server, or by
// the snapshot on a warm start. It is zero before either happened.
func (s *Store) SyncedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.syncedAt
}

// UnreadCount returns the number of unread deliveries. It is the single
// count behind the header badge and the list summary.
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countUnread(s.items)
}

func countUnread(items []model.Delivery) int {
	n := 0
	for _, d := range items {
		if !d.Read {
			n++
		}
	}
	return n
}

// MarkRead marks d read on the server and, once acknowledged, locally.
// Deliveries without an id are ignored.
func (s *Store) MarkRead(ctx context.Context, d model.Delivery) error {
	if d.DeliveryID == 0 {
		return nil
	}
	if err := s.api.MarkDeliveryRead(ctx, d.DeliveryID); err != nil {
		s.logger.Warn("marking delivery read", zap.Int64("delivery_id", d.DeliveryID), zap.Error(err))
		return err
	}

	s.update(ctx, d.DeliveryID, func(item *model.Delivery) { item.Read = true })
	return nil
}

// ToggleMute requests the opposite of d.Muted and, once acknowledged,
// stores that requested value locally.
func (s *Store) ToggleMute(ctx context.Context, d model.Delivery) error {
	if d.DeliveryID == 0 {
		return nil
	}
	want := !d.Muted
	if err := s.api.MuteDelivery(ctx, d.DeliveryID, want); err != nil {
		s.logger.Warn("toggling mute", zap.Int64("delivery_id", d.DeliveryID), zap.Bool("mute", want), zap.Error(err))
		return err
	}

	s.update(ctx, d.DeliveryID, func(item *model.Delivery) { item.Muted = want })
	return nil
}

// MarkAllRead issues one mark-read request per unread delivery and flips
// only those the server acknowledged.
func (s *Store) MarkAllRead(ctx context.Context) BulkResult {
	var unread []int64
	for _, d := range s.Items() {
		if !d.Read && d.DeliveryID != 0 {
			unread = append(unread, d.DeliveryID)
		}
	}

	result := BulkResult{Attempted: len(unread)}
	if len(unread) == 0 {
		return result
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, maxParallelMarks)
	)
	for _, id := range unread {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			err := s.api.MarkDeliveryRead(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, id)
				result.Err = multierr.Append(result.Err, fmt.Errorf("delivery %d: %w", id, err))
				return
			}
			result.Succeeded = append(result.Succeeded, id)
		}(id)
	}
	wg.Wait()

	slices.Sort(result.Succeeded)
	slices.Sort(result.Failed)

	for _, id := range result.Succeeded {
		s.update(ctx, id, func(item *model.Delivery) { item.Read = true })
	}
	if result.Err != nil {
		s.logger.Warn("marking all read",
			zap.Int("failed", len(result.Failed)),
			zap.Int("attempted", result.Attempted),
			zap.Error(result.Err),
		)
	}
	return result
}

// update applies fn to every local item with deliveryID and mirrors the
// new flags into the snapshot.
func (s *Store) update(ctx context.Context, deliveryID int64, fn func(*model.Delivery)) {
	s.mu.Lock()
	var changed *model.Delivery
	for i := range s.items {
		if s.items[i].DeliveryID == deliveryID {
			fn(&s.items[i])
			d := s.items[i]
			changed = &d
		}
	}
	s.mu.Unlock()

	if changed == nil || s.snapshot == nil {
		return
	}
	if err := s.snapshot.SetDeliveryFlags(ctx, deliveryID, changed.Read, changed.Muted); err != nil {
		s.logger.Warn("updating inbox snapshot", zap.Int64("delivery_id", deliveryID), zap.Error(err))
	}
}
