package store

import (
	"fmt"

	"github.com/acrellin/filebutler/pkg/errors"
)

// pruneBatchSize is how many rows one size-enforcement pass deletes
// before re-checking the file size.
const pruneBatchSize = 500

var statTables = []string{"activity_log", "undo_history", "scheduled_deletions"}

// TableStats returns row counts for every table.
func (s *Store) TableStats() ([]TableStat, error) {
	stats := make([]TableStat, 0, len(statTables))
	for _, table := range statTables {
		var count int64
		if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
			return nil, errors.Wrapf(err, errors.ErrStoreQuery, "count %s", table)
		}
		stats = append(stats, TableStat{TableName: table, RowCount: count})
	}
	return stats, nil
}

// ClearTable removes all rows from one of the known tables and
// reclaims the space.
func (s *Store) ClearTable(table string) (int64, error) {
	if !allowedTable(table) {
		return 0, errors.Newf(errors.ErrInvalidInput, "table %q not allowed", table)
	}
	res, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", table))
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrStoreQuery, "clear %s", table)
	}
	deleted, _ := res.RowsAffected()
	s.Vacuum()
	return deleted, nil
}

// EnforceSizeLimit prunes the oldest activity rows, then if still
// over the cap the oldest undo rows, in batches of 500 until the
// database file fits under maxBytes or there is nothing left to
// delete, then reclaims the space. maxBytes == 0 means unlimited.
// Returns the total number of rows deleted.
func (s *Store) EnforceSizeLimit(maxBytes int64) (int64, error) {
	if maxBytes == 0 || s.FileSize() <= maxBytes {
		return 0, nil
	}

	var total int64
	for _, stmt := range []string{
		`DELETE FROM activity_log WHERE id IN
		   (SELECT id FROM activity_log ORDER BY timestamp ASC LIMIT ?)`,
		`DELETE FROM undo_history WHERE id IN
		   (SELECT id FROM undo_history ORDER BY timestamp ASC LIMIT ?)`,
	} {
		for s.FileSize() > maxBytes {
			res, err := s.db.Exec(stmt, pruneBatchSize)
			if err != nil {
				return total, errors.Wrap(err, errors.ErrStoreQuery, "enforce size limit")
			}
			deleted, _ := res.RowsAffected()
			if deleted == 0 {
				break
			}
			total += deleted
		}
	}

	s.Vacuum()
	return total, nil
}

// Vacuum reclaims on-disk space. Failures are ignored: the data is
// already gone, only the file stays larger.
func (s *Store) Vacuum() {
	_, _ = s.db.Exec("VACUUM")
}

func allowedTable(table string) bool {
	for _, t := range statTables {
		if t == table {
			return true
		}
	}
	return false
}
