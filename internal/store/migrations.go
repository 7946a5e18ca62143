package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS deliveries (
	position        INTEGER NOT NULL,
	delivery_id     INTEGER PRIMARY KEY,
	notification_id INTEGER NOT NULL,
	title           TEXT NOT NULL DEFAULT '',
	message         TEXT NOT NULL DEFAULT '',
	origin          TEXT NOT NULL DEFAULT '',
	urgency         TEXT NOT NULL DEFAULT 'NORMAL',
	thread_enabled  INTEGER NOT NULL DEFAULT 0 CHECK(thread_enabled IN (0, 1)),
	read            INTEGER NOT NULL DEFAULT 0 CHECK(read IN (0, 1)),
	muted           INTEGER NOT NULL DEFAULT 0 CHECK(muted IN (0, 1)),
	created_at_ms   INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_deliveries_position ON deliveries(position);

CREATE TABLE IF NOT EXISTS sync_state (
	name         TEXT PRIMARY KEY,
	synced_at_ms INTEGER NOT NULL
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
