package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nhle/campus-inbox/internal/model"
	"github.com/nhle/campus-inbox/internal/store"
	"github.com/nhle/campus-inbox/tests/testutil"
)

func sampleInbox() []model.Delivery {
	created := model.NewTimestamp(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	return []model.Delivery{
		{DeliveryID: 6, ID: 2, Title: "Newer", Message: "b", Origin: model.OriginEvent, Urgency: model.UrgencyHigh, ThreadEnabled: true, CreatedAt: created},
		{DeliveryID: 5, ID: 1, Title: "Older", Message: "a", Origin: model.OriginGlobal, Urgency: model.UrgencyLow, Read: true},
	}
}

func TestReplaceDeliveriesKeepsOrder(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceDeliveries(ctx, sampleInbox()))

	got, err := s.GetDeliveries(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, int64(6), got[0].DeliveryID)
	require.Equal(t, model.UrgencyHigh, got[0].Urgency)
	require.True(t, got[0].ThreadEnabled)
	require.True(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC).Equal(got[0].CreatedAt.Time))
	require.Equal(t, int64(5), got[1].DeliveryID)
	require.True(t, got[1].Read)
	require.True(t, got[1].CreatedAt.IsZero())
}

func TestReplaceDeliveriesDiscardsPreviousSnapshot(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceDeliveries(ctx, sampleInbox()))
	require.NoError(t, s.ReplaceDeliveries(ctx, []model.Delivery{{DeliveryID: 9, ID: 4, Title: "Only"}}))

	got, err := s.GetDeliveries(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Only", got[0].Title)

	require.NoError(t, s.ReplaceDeliveries(ctx, nil))
	got, err = s.GetDeliveries(ctx)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSetDeliveryFlags(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.ReplaceDeliveries(ctx, sampleInbox()))

	require.NoError(t, s.SetDeliveryFlags(ctx, 6, true, true))
	require.NoError(t, s.SetDeliveryFlags(ctx, 404, true, false))

	got, err := s.GetDeliveries(ctx)
	require.NoError(t, err)
	require.True(t, got[0].Read)
	require.True(t, got[0].Muted)
}

func TestLastSynced(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	synced, err := s.LastSynced(ctx)
	require.NoError(t, err)
	require.True(t, synced.IsZero())

	before := time.Now().Add(-time.Second)
	require.NoError(t, s.ReplaceDeliveries(ctx, sampleInbox()))

	synced, err = s.LastSynced(ctx)
	require.NoError(t, err)
	require.True(t, synced.After(before))
}

func TestSnapshotSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap", "inbox.db")
	ctx := context.Background()

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.ReplaceDeliveries(ctx, sampleInbox()))
	require.NoError(t, s.Close())

	reopened, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	got, err := reopened.GetDeliveries(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
}
