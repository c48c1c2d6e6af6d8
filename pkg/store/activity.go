package store

import (
	"time"

	"github.com/acrellin/filebutler/pkg/errors"
)

// InsertActivity appends a row to the activity log.
func (s *Store) InsertActivity(a ActivityEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO activity_log
		   (id, file_path, file_name, action, rule_name, folder_id, timestamp, result, details)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.FilePath, a.FileName, a.Action, a.RuleName, a.FolderID,
		a.Timestamp, a.Result, a.Details,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrStoreQuery, "insert activity")
	}
	return nil
}

// GetActivityLog returns log rows, newest first, optionally filtered
// to one folder.
func (s *Store) GetActivityLog(limit, offset int, folderID string) ([]ActivityEntry, error) {
	query := `SELECT id, file_path, file_name, action,
	            COALESCE(rule_name, ''), COALESCE(folder_id, ''),
	            timestamp, result, COALESCE(details, '')
	          FROM activity_log`
	args := []interface{}{}
	if folderID != "" {
		query += ` WHERE folder_id = ?`
		args = append(args, folderID)
	}
	query += ` ORDER BY timestamp DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrStoreQuery, "get activity log")
	}
	defer rows.Close()

	var out []ActivityEntry
	for rows.Next() {
		var a ActivityEntry
		if err := rows.Scan(&a.ID, &a.FilePath, &a.FileName, &a.Action,
			&a.RuleName, &a.FolderID, &a.Timestamp, &a.Result, &a.Details); err != nil {
			return nil, errors.Wrap(err, errors.ErrStoreQuery, "scan activity")
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrStoreQuery, "scan activity log")
	}
	return out, nil
}

// PruneOldLogs deletes activity rows older than the cutoff. Returns
// the number of rows removed.
func (s *Store) PruneOldLogs(before time.Time) (int64, error) {
	res, err := s.db.Exec(
		`DELETE FROM activity_log WHERE timestamp < ?`, FormatTime(before))
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrStoreQuery, "prune old logs")
	}
	return res.RowsAffected()
}

// RuleExecutionStats returns, per rule in the folder, the last
// successful run and the number of successful runs since the given
// time.
func (s *Store) RuleExecutionStats(folderID string, since time.Time) ([]RuleStats, error) {
	rows, err := s.db.Query(
		`SELECT rule_name, MAX(timestamp),
		        SUM(CASE WHEN timestamp >= ? THEN 1 ELSE 0 END)
		 FROM activity_log
		 WHERE folder_id = ? AND rule_name IS NOT NULL AND rule_name != '' AND result = 'success'
		 GROUP BY rule_name`,
		FormatTime(since), folderID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrStoreQuery, "rule execution stats")
	}
	defer rows.Close()

	var out []RuleStats
	for rows.Next() {
		var st RuleStats
		if err := rows.Scan(&st.RuleName, &st.LastExecuted, &st.Executions); err != nil {
			return nil, errors.Wrap(err, errors.ErrStoreQuery, "scan rule stats")
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrStoreQuery, "scan rule stats")
	}
	return out, nil
}
