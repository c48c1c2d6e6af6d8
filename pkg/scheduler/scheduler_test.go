package scheduler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acrellin/filebutler/pkg/config"
	"github.com/acrellin/filebutler/pkg/store"
	"github.com/acrellin/filebutler/pkg/trash"
)

func newTestScheduler(t *testing.T) (*Scheduler, *store.Store, *trash.Trash) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	tr := trash.New(t.TempDir())
	return New(s, tr), s, tr
}

func scheduleFile(t *testing.T, s *store.Store, path string, deleteAfter time.Time) store.ScheduledDeletion {
	t.Helper()
	sd := store.ScheduledDeletion{
		ID:          uuid.NewString(),
		FilePath:    path,
		FolderID:    "f1",
		RuleName:    "stale",
		FileName:    filepath.Base(path),
		ScheduledAt: store.FormatTime(time.Now().Add(-24 * time.Hour)),
		DeleteAfter: store.FormatTime(deleteAfter),
	}
	inserted, err := s.UpsertScheduledDeletion(sd)
	require.NoError(t, err)
	require.True(t, inserted)
	return sd
}

func TestProcessDueDeletions(t *testing.T) {
	sched, s, tr := newTestScheduler(t)
	watch := t.TempDir()
	now := time.Now()

	due := filepath.Join(watch, "due.log")
	require.NoError(t, os.WriteFile(due, []byte("x"), 0644))
	scheduleFile(t, s, due, now.Add(-time.Hour))

	later := filepath.Join(watch, "later.log")
	require.NoError(t, os.WriteFile(later, []byte("x"), 0644))
	scheduleFile(t, s, later, now.Add(time.Hour))

	deleted := sched.ProcessDueDeletions()
	assert.Equal(t, 1, deleted)

	assert.NoFileExists(t, due)
	assert.FileExists(t, later)
	assert.False(t, s.IsScheduled(due))
	assert.True(t, s.IsScheduled(later))

	// The deletion is recoverable: one undo entry pointing at the
	// staged file.
	undos, err := s.GetUndoEntries()
	require.NoError(t, err)
	require.Len(t, undos, 1)
	assert.Equal(t, due, undos[0].OriginalPath)
	assert.Equal(t, tr.Dir(), filepath.Dir(undos[0].CurrentPath))
	assert.FileExists(t, undos[0].CurrentPath)

	entries, err := s.GetActivityLog(10, 0, "f1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, store.ActionDeleted, entries[0].Action)
	assert.Equal(t, store.ResultSuccess, entries[0].Result)
}

func TestProcessDueDeletionsVanishedFile(t *testing.T) {
	sched, s, _ := newTestScheduler(t)
	gone := filepath.Join(t.TempDir(), "gone.log")
	scheduleFile(t, s, gone, time.Now().Add(-time.Hour))

	deleted := sched.ProcessDueDeletions()
	assert.Zero(t, deleted, "a vanished file is not a deletion")
	assert.False(t, s.IsScheduled(gone), "stale schedule is dropped")

	entries, err := s.GetActivityLog(10, 0, "")
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is logged for vanished files")
}

func TestRestoreUndo(t *testing.T) {
	sched, s, _ := newTestScheduler(t)
	watch := t.TempDir()

	path := filepath.Join(watch, "keep.pdf")
	require.NoError(t, os.WriteFile(path, []byte("important"), 0644))
	scheduleFile(t, s, path, time.Now().Add(-time.Hour))
	require.Equal(t, 1, sched.ProcessDueDeletions())

	undos, err := s.GetUndoEntries()
	require.NoError(t, err)
	require.Len(t, undos, 1)

	restored, err := sched.RestoreUndo(undos[0].ID)
	require.NoError(t, err)
	assert.Equal(t, path, restored)
	assert.FileExists(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "important", string(data))

	// Consumed: gone from the list, cannot restore twice.
	undos, err = s.GetUndoEntries()
	require.NoError(t, err)
	assert.Empty(t, undos)
	_, err = sched.RestoreUndo("missing")
	assert.Error(t, err)
}

func TestCancelDeletion(t *testing.T) {
	sched, s, _ := newTestScheduler(t)
	watch := t.TempDir()

	path := filepath.Join(watch, "keep.log")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	sd := scheduleFile(t, s, path, time.Now().Add(-time.Hour))

	require.NoError(t, sched.CancelDeletion(sd.ID))
	assert.False(t, s.IsScheduled(path))

	assert.Zero(t, sched.ProcessDueDeletions())
	assert.FileExists(t, path)
}

func TestRunScheduledCleanup(t *testing.T) {
	sched, s, tr := newTestScheduler(t)
	now := time.Now()

	// An expired undo entry with a staged file still on disk.
	staged := filepath.Join(tr.Dir(), "abc_old.pdf")
	require.NoError(t, os.MkdirAll(tr.Dir(), 0755))
	require.NoError(t, os.WriteFile(staged, []byte("x"), 0644))
	require.NoError(t, s.InsertUndo(store.UndoEntry{
		ID: uuid.NewString(), OriginalPath: "/watch/old.pdf", CurrentPath: staged,
		Action:    "auto_delete",
		Timestamp: store.FormatTime(now.Add(-9 * 24 * time.Hour)),
		ExpiresAt: store.FormatTime(now.Add(-2 * 24 * time.Hour)),
	}))

	// An activity row past the retention window.
	require.NoError(t, s.InsertActivity(store.ActivityEntry{
		ID: uuid.NewString(), FilePath: "/x", FileName: "x", Action: store.ActionMoved,
		Timestamp: store.FormatTime(now.Add(-40 * 24 * time.Hour)), Result: store.ResultSuccess,
	}))

	// A schedule whose file no longer exists.
	scheduleFile(t, s, filepath.Join(t.TempDir(), "vanished.log"), now.Add(time.Hour))

	sched.RunScheduledCleanup(config.Settings{LogRetentionDays: 30, MaxStorageMB: 2048})

	assert.NoFileExists(t, staged, "expired staged file is removed")

	undos, err := s.GetUndoEntries()
	require.NoError(t, err)
	assert.Empty(t, undos)

	entries, err := s.GetActivityLog(10, 0, "")
	require.NoError(t, err)
	assert.Empty(t, entries)

	scheduled, err := s.GetScheduledDeletions()
	require.NoError(t, err)
	assert.Empty(t, scheduled, "schedules for vanished files are collected")
}

func TestDailyDeletionFiresOncePerDay(t *testing.T) {
	// Drives the loop's gate: fires at or after the configured hour,
	// then not again until the day changes.
	sched, s, _ := newTestScheduler(t)
	watch := t.TempDir()

	path := filepath.Join(watch, "old.log")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	scheduleFile(t, s, path, time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC))

	lastDay := 0
	fire := func(now time.Time, hour int) bool {
		if !sched.shouldRunDeletions(now, hour, lastDay) {
			return false
		}
		sched.now = func() time.Time { return now }
		sched.ProcessDueDeletions()
		lastDay = now.YearDay()
		return true
	}

	assert.False(t, fire(time.Date(2026, 8, 26, 2, 0, 0, 0, time.UTC), 3), "before the hour")
	assert.True(t, fire(time.Date(2026, 8, 26, 3, 5, 0, 0, time.UTC), 3))
	assert.False(t, fire(time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC), 3), "already ran today")
	assert.True(t, fire(time.Date(2026, 8, 27, 3, 5, 0, 0, time.UTC), 3), "next day fires again")

	assert.NoFileExists(t, path)
}
