// Package store is the sqlite persistence layer: the activity log,
// undo history, and scheduled deletions, plus size statistics and the
// storage-cap enforcement the maintenance loop relies on.
package store

import (
	"database/sql"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/acrellin/filebutler/pkg/errors"
)

// TimeFormat is the sortable timestamp format used in every table.
// Lexicographic comparison of these strings matches time order, which
// the due-deletion query depends on.
const TimeFormat = "2006-01-02 15:04:05"

const schema = `
CREATE TABLE IF NOT EXISTS activity_log (
    id          TEXT PRIMARY KEY,
    file_path   TEXT NOT NULL,
    file_name   TEXT NOT NULL,
    action      TEXT NOT NULL,
    rule_name   TEXT,
    folder_id   TEXT,
    timestamp   TEXT NOT NULL,
    result      TEXT NOT NULL,
    details     TEXT
);

CREATE TABLE IF NOT EXISTS undo_history (
    id              TEXT PRIMARY KEY,
    original_path   TEXT NOT NULL,
    current_path    TEXT,
    action          TEXT NOT NULL,
    timestamp       TEXT NOT NULL,
    expires_at      TEXT NOT NULL,
    restored        INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS scheduled_deletions (
    id              TEXT PRIMARY KEY,
    file_path       TEXT NOT NULL UNIQUE,
    folder_id       TEXT NOT NULL,
    rule_name       TEXT NOT NULL,
    file_name       TEXT NOT NULL,
    extension       TEXT,
    size_bytes      INTEGER,
    scheduled_at    TEXT NOT NULL,
    delete_after    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_activity_timestamp ON activity_log(timestamp);
CREATE INDEX IF NOT EXISTS idx_activity_folder ON activity_log(folder_id);
CREATE INDEX IF NOT EXISTS idx_undo_expires ON undo_history(expires_at);
CREATE INDEX IF NOT EXISTS idx_sched_del_after ON scheduled_deletions(delete_after);
CREATE INDEX IF NOT EXISTS idx_sched_del_folder ON scheduled_deletions(folder_id);
`

// Store wraps a single sqlite connection. All operations serialize
// through it, so they must be kept short.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrStoreOpen, "cannot open database %s", path)
	}

	// Single connection, all operations serialize through it.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrStoreOpen, "cannot initialize schema")
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the on-disk location of the database file.
func (s *Store) Path() string {
	return s.path
}

// FileSize returns the on-disk size of the database file in bytes.
func (s *Store) FileSize() int64 {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// FormatTime renders a timestamp in the store's sortable format (UTC).
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ParseTime parses a timestamp previously written by FormatTime.
func ParseTime(s string) (time.Time, error) {
	return time.ParseInLocation(TimeFormat, s, time.UTC)
}
