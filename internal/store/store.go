package store

import (
	"context"
	"time"

	"github.com/nhle/campus-inbox/internal/model"
)

// Snapshot persists the last fetched inbox so the next start can render
// it before the first request completes.
type Snapshot interface {
	// ReplaceDeliveries discards the stored inbox and stores items in
	// their given order.
	ReplaceDeliveries(ctx context.Context, items []model.Delivery) error
	GetDeliveries(ctx context.Context) ([]model.Delivery, error)

	// SetDeliveryFlags records an acknowledged read or mute change.
	SetDeliveryFlags(ctx context.Context, deliveryID int64, read, muted bool) error

	// LastSynced returns when the inbox was last replaced, or the zero
	// time if it never was.
	LastSynced(ctx context.Context) (time.Time, error)
}
