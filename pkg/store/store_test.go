package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testDeletion(path string, deleteAfter time.Time) ScheduledDeletion {
	return ScheduledDeletion{
		ID:          uuid.NewString(),
		FilePath:    path,
		FolderID:    "folder-1",
		RuleName:    "old downloads",
		FileName:    filepath.Base(path),
		Extension:   "pdf",
		SizeBytes:   1234,
		ScheduledAt: FormatTime(time.Now()),
		DeleteAfter: FormatTime(deleteAfter),
	}
}

func TestUpsertScheduledDeletionIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()

	first := testDeletion("/watch/old.pdf", now.Add(7*24*time.Hour))
	inserted, err := s.UpsertScheduledDeletion(first)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Second upsert for the same path: no-op, original schedule kept.
	second := testDeletion("/watch/old.pdf", now.Add(30*24*time.Hour))
	inserted, err = s.UpsertScheduledDeletion(second)
	require.NoError(t, err)
	assert.False(t, inserted)

	all, err := s.GetScheduledDeletions()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, first.DeleteAfter, all[0].DeleteAfter)
}

func TestIsScheduled(t *testing.T) {
	s := openTestStore(t)
	assert.False(t, s.IsScheduled("/watch/a.pdf"))

	_, err := s.UpsertScheduledDeletion(testDeletion("/watch/a.pdf", time.Now()))
	require.NoError(t, err)
	assert.True(t, s.IsScheduled("/watch/a.pdf"))
}

func TestGetDueDeletionsBoundary(t *testing.T) {
	s := openTestStore(t)
	now := time.Now().Truncate(time.Second)

	_, err := s.UpsertScheduledDeletion(testDeletion("/watch/due.pdf", now))
	require.NoError(t, err)
	_, err = s.UpsertScheduledDeletion(testDeletion("/watch/later.pdf", now.Add(time.Second)))
	require.NoError(t, err)

	// delete_after == now is due; now+1s is not.
	due, err := s.GetDueDeletions(now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "/watch/due.pdf", due[0].FilePath)
}

func TestCancelAndRemoveScheduledDeletion(t *testing.T) {
	s := openTestStore(t)
	sd := testDeletion("/watch/a.pdf", time.Now())
	_, err := s.UpsertScheduledDeletion(sd)
	require.NoError(t, err)

	require.NoError(t, s.CancelScheduledDeletion(sd.ID))
	assert.False(t, s.IsScheduled("/watch/a.pdf"))

	sd2 := testDeletion("/watch/b.pdf", time.Now())
	_, err = s.UpsertScheduledDeletion(sd2)
	require.NoError(t, err)
	require.NoError(t, s.RemoveScheduledDeletionByPath("/watch/b.pdf"))
	assert.False(t, s.IsScheduled("/watch/b.pdf"))
}

func TestActivityLogRoundTrip(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()

	for i, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		err := s.InsertActivity(ActivityEntry{
			ID:        uuid.NewString(),
			FilePath:  "/watch/" + name,
			FileName:  name,
			Action:    "moved",
			RuleName:  "docs",
			FolderID:  "folder-1",
			Timestamp: FormatTime(now.Add(time.Duration(i) * time.Second)),
			Result:    "success",
		})
		require.NoError(t, err)
	}

	entries, err := s.GetActivityLog(10, 0, "")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "c.pdf", entries[0].FileName, "newest first")

	// Folder filter.
	entries, err = s.GetActivityLog(10, 0, "folder-2")
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Pagination.
	entries, err = s.GetActivityLog(2, 2, "folder-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.pdf", entries[0].FileName)
}

func TestPruneOldLogs(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()

	old := ActivityEntry{ID: uuid.NewString(), FilePath: "/x", FileName: "x",
		Action: "moved", Timestamp: FormatTime(now.Add(-48 * time.Hour)), Result: "success"}
	recent := ActivityEntry{ID: uuid.NewString(), FilePath: "/y", FileName: "y",
		Action: "moved", Timestamp: FormatTime(now), Result: "success"}
	require.NoError(t, s.InsertActivity(old))
	require.NoError(t, s.InsertActivity(recent))

	pruned, err := s.PruneOldLogs(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	entries, err := s.GetActivityLog(10, 0, "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "y", entries[0].FileName)
}

func TestRuleExecutionStats(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()

	insert := func(rule, result string, ts time.Time) {
		require.NoError(t, s.InsertActivity(ActivityEntry{
			ID: uuid.NewString(), FilePath: "/x", FileName: "x", Action: "moved",
			RuleName: rule, FolderID: "f1", Timestamp: FormatTime(ts), Result: result,
		}))
	}
	insert("docs", "success", now.Add(-time.Hour))
	insert("docs", "success", now.Add(-10*24*time.Hour))
	insert("docs", "error", now)
	insert("pics", "success", now.Add(-2*time.Hour))

	stats, err := s.RuleExecutionStats("f1", now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, stats, 2)

	byName := map[string]RuleStats{}
	for _, st := range stats {
		byName[st.RuleName] = st
	}
	assert.Equal(t, int64(1), byName["docs"].Executions, "only successes inside the window count")
	assert.Equal(t, int64(1), byName["pics"].Executions)
	assert.Equal(t, FormatTime(now.Add(-time.Hour)), byName["docs"].LastExecuted)
}

func TestUndoLifecycle(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()

	u := UndoEntry{
		ID:           uuid.NewString(),
		OriginalPath: "/watch/gone.pdf",
		CurrentPath:  "/staging/abc_gone.pdf",
		Action:       "auto_delete",
		Timestamp:    FormatTime(now),
		ExpiresAt:    FormatTime(now.Add(7 * 24 * time.Hour)),
	}
	require.NoError(t, s.InsertUndo(u))

	entries, err := s.GetUndoEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/watch/gone.pdf", entries[0].OriginalPath)
	assert.False(t, entries[0].Restored)

	got, err := s.GetUndoEntry(u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.CurrentPath, got.CurrentPath)

	require.NoError(t, s.MarkRestored(u.ID))
	entries, err = s.GetUndoEntries()
	require.NoError(t, err)
	assert.Empty(t, entries, "restored entries are hidden")

	_, err = s.GetUndoEntry("missing")
	assert.Error(t, err)
}

func TestPruneExpiredUndo(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()

	expired := UndoEntry{ID: uuid.NewString(), OriginalPath: "/a", Action: "auto_delete",
		Timestamp: FormatTime(now.Add(-8 * 24 * time.Hour)), ExpiresAt: FormatTime(now.Add(-24 * time.Hour))}
	active := UndoEntry{ID: uuid.NewString(), OriginalPath: "/b", Action: "auto_delete",
		Timestamp: FormatTime(now), ExpiresAt: FormatTime(now.Add(7 * 24 * time.Hour))}
	require.NoError(t, s.InsertUndo(expired))
	require.NoError(t, s.InsertUndo(active))

	pruned, err := s.PruneExpiredUndo(now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	entries, err := s.GetUndoEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/b", entries[0].OriginalPath)
}

func TestTableStats(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.InsertActivity(ActivityEntry{
		ID: uuid.NewString(), FilePath: "/x", FileName: "x", Action: "moved",
		Timestamp: FormatTime(time.Now()), Result: "success",
	}))

	stats, err := s.TableStats()
	require.NoError(t, err)
	counts := map[string]int64{}
	for _, st := range stats {
		counts[st.TableName] = st.RowCount
	}
	assert.Equal(t, int64(1), counts["activity_log"])
	assert.Equal(t, int64(0), counts["undo_history"])
	assert.Equal(t, int64(0), counts["scheduled_deletions"])
}

func TestClearTable(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.InsertActivity(ActivityEntry{
		ID: uuid.NewString(), FilePath: "/x", FileName: "x", Action: "moved",
		Timestamp: FormatTime(time.Now()), Result: "success",
	}))

	deleted, err := s.ClearTable("activity_log")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = s.ClearTable("sqlite_master")
	assert.Error(t, err, "unknown tables are rejected")
}

func TestEnforceSizeLimitUnlimited(t *testing.T) {
	s := openTestStore(t)
	deleted, err := s.EnforceSizeLimit(0)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestFormatParseTime(t *testing.T) {
	now := time.Date(2026, 8, 26, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "2026-08-26 15:04:05", FormatTime(now))

	parsed, err := ParseTime("2026-08-26 15:04:05")
	require.NoError(t, err)
	assert.True(t, now.Equal(parsed))
}
