package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/campus-inbox/internal/model"
)

const inboxSyncName = "inbox"

// SQLiteStore implements Snapshot using a local SQLite database.
type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating snapshot directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Every pooled connection to ":memory:" would be a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// deliveryRow is the column layout of the deliveries table.
type deliveryRow struct {
	Position       int    `db:"position"`
	DeliveryID     int64  `db:"delivery_id"`
	NotificationID int64  `db:"notification_id"`
	Title          string `db:"title"`
	Message        string `db:"message"`
	Origin         string `db:"origin"`
	Urgency        string `db:"urgency"`
	ThreadEnabled  bool   `db:"thread_enabled"`
	Read           bool   `db:"read"`
	Muted          bool   `db:"muted"`
	CreatedAtMs    int64  `db:"created_at_ms"`
}

func toRow(pos int, d model.Delivery) deliveryRow {
	row := deliveryRow{
		Position:       pos,
		DeliveryID:     d.DeliveryID,
		NotificationID: d.ID,
		Title:          d.Title,
		Message:        d.Message,
		Origin:         string(d.Origin),
		Urgency:        string(d.Urgency.Normalize()),
		ThreadEnabled:  d.ThreadEnabled,
		Read:           d.Read,
		Muted:          d.Muted,
	}
	if !d.CreatedAt.IsZero() {
		row.CreatedAtMs = d.CreatedAt.UnixMilli()
	}
	return row
}

func (r deliveryRow) toDelivery() model.Delivery {
	d := model.Delivery{
		DeliveryID:    r.DeliveryID,
		ID:            r.NotificationID,
		Title:         r.Title,
		Message:       r.Message,
		Origin:        model.Origin(r.Origin),
		Urgency:       model.Urgency(r.Urgency),
		ThreadEnabled: r.ThreadEnabled,
		Read:          r.Read,
		Muted:         r.Muted,
	}
	if r.CreatedAtMs != 0 {
		d.CreatedAt = model.NewTimestamp(time.UnixMilli(r.CreatedAtMs).UTC())
	}
	return d
}

// ReplaceDeliveries swaps the stored inbox for items inside one
// transaction. Items without a delivery id cannot be keyed and are skipped.
func (s *SQLiteStore) ReplaceDeliveries(ctx context.Context, items []model.Delivery) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM deliveries"); err != nil {
		return fmt.Errorf("clearing deliveries: %w", err)
	}

	const query = `
		INSERT OR REPLACE INTO deliveries (
			position, delivery_id, notification_id,
			title, message, origin, urgency,
			thread_enabled, read, muted, created_at_ms
		) VALUES (
			:position, :delivery_id, :notification_id,
			:title, :message, :origin, :urgency,
			:thread_enabled, :read, :muted, :created_at_ms
		)`

	stmt, err := tx.PrepareNamedContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for i, d := range items {
		if d.DeliveryID == 0 {
			continue
		}
		if _, err := stmt.ExecContext(ctx, toRow(i, d)); err != nil {
			return fmt.Errorf("storing delivery %d: %w", d.DeliveryID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO sync_state (name, synced_at_ms) VALUES (?, ?)",
		inboxSyncName, s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("recording sync time: %w", err)
	}

	return tx.Commit()
}

// GetDeliveries returns the stored inbox in its original order.
func (s *SQLiteStore) GetDeliveries(ctx context.Context) ([]model.Delivery, error) {
	var rows []deliveryRow
	err := s.db.SelectContext(ctx, &rows, "SELECT * FROM deliveries ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("querying deliveries: %w", err)
	}

	items := make([]model.Delivery, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.toDelivery())
	}
	return items, nil
}

// SetDeliveryFlags updates the read and muted flags of one stored
// delivery. Unknown ids are ignored.
func (s *SQLiteStore) SetDeliveryFlags(ctx context.Context, deliveryID int64, read, muted bool) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE deliveries SET read = ?, muted = ? WHERE delivery_id = ?",
		boolToInt(read), boolToInt(muted), deliveryID,
	)
	if err != nil {
		return fmt.Errorf("updating delivery %d: %w", deliveryID, err)
	}
	return nil
}

// LastSynced returns the time of the last ReplaceDeliveries.
func (s *SQLiteStore) LastSynced(ctx context.Context) (time.Time, error) {
	var syncedAtMs int64
	err := s.db.GetContext(ctx, &syncedAtMs,
		"SELECT synced_at_ms FROM sync_state WHERE name = ?", inboxSyncName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("reading sync time: %w", err)
	}
	return time.UnixMilli(syncedAtMs), nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
