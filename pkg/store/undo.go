package store

import (
	"database/sql"
	"time"

	"github.com/acrellin/filebutler/pkg/errors"
)

// InsertUndo records a recoverable action.
func (s *Store) InsertUndo(u UndoEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO undo_history (id, original_path, current_path, action, timestamp, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.OriginalPath, u.CurrentPath, u.Action, u.Timestamp, u.ExpiresAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrStoreQuery, "insert undo")
	}
	return nil
}

// GetUndoEntries returns unrestored undo entries, newest first.
func (s *Store) GetUndoEntries() ([]UndoEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, original_path, COALESCE(current_path, ''), action, timestamp, expires_at, restored
		 FROM undo_history WHERE restored = 0 ORDER BY timestamp DESC`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrStoreQuery, "get undo entries")
	}
	defer rows.Close()

	var out []UndoEntry
	for rows.Next() {
		var u UndoEntry
		if err := rows.Scan(&u.ID, &u.OriginalPath, &u.CurrentPath, &u.Action,
			&u.Timestamp, &u.ExpiresAt, &u.Restored); err != nil {
			return nil, errors.Wrap(err, errors.ErrStoreQuery, "scan undo entry")
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrStoreQuery, "scan undo entries")
	}
	return out, nil
}

// GetUndoEntry looks one undo entry up by id.
func (s *Store) GetUndoEntry(id string) (*UndoEntry, error) {
	var u UndoEntry
	err := s.db.QueryRow(
		`SELECT id, original_path, COALESCE(current_path, ''), action, timestamp, expires_at, restored
		 FROM undo_history WHERE id = ?`, id,
	).Scan(&u.ID, &u.OriginalPath, &u.CurrentPath, &u.Action, &u.Timestamp, &u.ExpiresAt, &u.Restored)
	if err == sql.ErrNoRows {
		return nil, errors.Newf(errors.ErrNotFound, "undo entry %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrStoreQuery, "get undo entry")
	}
	return &u, nil
}

// MarkRestored flags an undo entry as consumed by a restore.
func (s *Store) MarkRestored(id string) error {
	if _, err := s.db.Exec(`UPDATE undo_history SET restored = 1 WHERE id = ?`, id); err != nil {
		return errors.Wrap(err, errors.ErrStoreQuery, "mark restored")
	}
	return nil
}

// PruneExpiredUndo deletes unrestored entries past their expiry.
// Returns the number of rows removed.
func (s *Store) PruneExpiredUndo(now time.Time) (int64, error) {
	res, err := s.db.Exec(
		`DELETE FROM undo_history WHERE expires_at < ? AND restored = 0`, FormatTime(now))
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrStoreQuery, "prune expired undo")
	}
	return res.RowsAffected()
}
