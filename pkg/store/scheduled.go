package store

import (
	"database/sql"
	"time"

	"github.com/acrellin/filebutler/pkg/errors"
)

const scheduledColumns = `id, file_path, folder_id, rule_name, file_name,
	COALESCE(extension, ''), COALESCE(size_bytes, 0), scheduled_at, delete_after`

// UpsertScheduledDeletion inserts a scheduled deletion unless one
// already exists for the same file path, in which case nothing changes
// and the original schedule is kept. Returns true when a new row was
// inserted.
func (s *Store) UpsertScheduledDeletion(sd ScheduledDeletion) (bool, error) {
	res, err := s.db.Exec(
		`INSERT INTO scheduled_deletions
		   (id, file_path, folder_id, rule_name, file_name, extension, size_bytes, scheduled_at, delete_after)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(file_path) DO NOTHING`,
		sd.ID, sd.FilePath, sd.FolderID, sd.RuleName, sd.FileName,
		sd.Extension, sd.SizeBytes, sd.ScheduledAt, sd.DeleteAfter,
	)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrStoreQuery, "upsert scheduled deletion")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrStoreQuery, "upsert scheduled deletion")
	}
	return rows > 0, nil
}

// IsScheduled reports whether the file path already has a pending
// deletion.
func (s *Store) IsScheduled(filePath string) bool {
	var count int64
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM scheduled_deletions WHERE file_path = ?`, filePath,
	).Scan(&count)
	return err == nil && count > 0
}

// GetScheduledDeletions returns all pending deletions, soonest first.
func (s *Store) GetScheduledDeletions() ([]ScheduledDeletion, error) {
	rows, err := s.db.Query(
		`SELECT ` + scheduledColumns + `
		 FROM scheduled_deletions ORDER BY delete_after ASC`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrStoreQuery, "get scheduled deletions")
	}
	return scanScheduled(rows)
}

// GetDueDeletions returns deletions whose delete_after has passed.
// The boundary is inclusive: delete_after == now is due.
func (s *Store) GetDueDeletions(now time.Time) ([]ScheduledDeletion, error) {
	rows, err := s.db.Query(
		`SELECT `+scheduledColumns+`
		 FROM scheduled_deletions WHERE delete_after <= ? ORDER BY delete_after ASC`,
		FormatTime(now))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrStoreQuery, "get due deletions")
	}
	return scanScheduled(rows)
}

// CancelScheduledDeletion removes a pending deletion by id.
func (s *Store) CancelScheduledDeletion(id string) error {
	if _, err := s.db.Exec(`DELETE FROM scheduled_deletions WHERE id = ?`, id); err != nil {
		return errors.Wrap(err, errors.ErrStoreQuery, "cancel scheduled deletion")
	}
	return nil
}

// RemoveScheduledDeletionByPath removes a pending deletion by file
// path, used once the deletion has executed or the target vanished.
func (s *Store) RemoveScheduledDeletionByPath(filePath string) error {
	if _, err := s.db.Exec(`DELETE FROM scheduled_deletions WHERE file_path = ?`, filePath); err != nil {
		return errors.Wrap(err, errors.ErrStoreQuery, "remove scheduled deletion")
	}
	return nil
}

func scanScheduled(rows *sql.Rows) ([]ScheduledDeletion, error) {
	defer rows.Close()
	var out []ScheduledDeletion
	for rows.Next() {
		var sd ScheduledDeletion
		if err := rows.Scan(&sd.ID, &sd.FilePath, &sd.FolderID, &sd.RuleName,
			&sd.FileName, &sd.Extension, &sd.SizeBytes, &sd.ScheduledAt, &sd.DeleteAfter); err != nil {
			return nil, errors.Wrap(err, errors.ErrStoreQuery, "scan scheduled deletion")
		}
		out = append(out, sd)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrStoreQuery, "scan scheduled deletions")
	}
	return out, nil
}
