package storage

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // registers the SQLite driver
)

// The schema is embedded in the binary; no migration files at runtime.
const schema = `
CREATE TABLE IF NOT EXISTS assignment_events (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    city          TEXT NOT NULL,
    country       TEXT NOT NULL,
    provider      TEXT NOT NULL,
    image_id      TEXT NOT NULL,
    source_url    TEXT NOT NULL DEFAULT '',
    filename      TEXT NOT NULL DEFAULT '',
    success       BOOLEAN NOT NULL DEFAULT 0,
    error_message TEXT,
    duration_ms   INTEGER,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_events_city_country ON assignment_events(city, country);
CREATE INDEX IF NOT EXISTS idx_events_provider ON assignment_events(provider);
`

// NewDatabase opens the SQLite audit database and runs migrations.
// WAL mode allows reads during writes; busy_timeout waits on lock contention
// instead of failing outright.
func NewDatabase(dbPath string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000", dbPath)

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Open is lazy; Ping actually establishes the connection.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}
