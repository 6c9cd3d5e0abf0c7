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

CREATE TABLE IF NOT EXISTS notifications (
	id          TEXT PRIMARY KEY,
	type        TEXT NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	message     TEXT NOT NULL,
	metadata    TEXT NOT NULL DEFAULT '{}',
	read        INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS requests (
	id          TEXT PRIMARY KEY,
	number      TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'draft',
	priority    INTEGER NOT NULL DEFAULT 3,
	department  TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	items       TEXT NOT NULL DEFAULT '[]',
	total       REAL NOT NULL DEFAULT 0,
	requester   TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
	id            TEXT PRIMARY KEY,
	number        TEXT NOT NULL DEFAULT '',
	request_id    TEXT NOT NULL DEFAULT '',
	supplier_id   TEXT NOT NULL DEFAULT '',
	supplier_name TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT 'pending',
	total         REAL NOT NULL DEFAULT 0,
	expected_at   DATETIME,
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read);
CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at);
CREATE INDEX IF NOT EXISTS idx_requests_status ON requests(status);
CREATE INDEX IF NOT EXISTS idx_requests_department ON requests(department);
CREATE INDEX IF NOT EXISTS idx_requests_updated_at ON requests(updated_at);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
CREATE INDEX IF NOT EXISTS idx_orders_request_id ON orders(request_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_notifications_type_created
	ON notifications(type, created_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
