package organizer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acrellin/filebutler/pkg/config"
	"github.com/acrellin/filebutler/pkg/rules"
	"github.com/acrellin/filebutler/pkg/store"
	"github.com/acrellin/filebutler/pkg/trash"
)

func newTestOrganizer(t *testing.T) *Organizer {
	t.Helper()
	svc, err := config.NewService(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	st, err := store.Open(filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return New(svc, st, trash.New(t.TempDir()))
}

func addPDFFolder(t *testing.T, o *Organizer, watch string) string {
	t.Helper()
	folderID, err := o.Config().AddFolder(rules.WatchedFolder{Path: watch, Enabled: true})
	require.NoError(t, err)
	_, err = o.Config().AddRule(folderID, rules.Rule{
		Name: "pdfs", Enabled: true, ConditionText: "*.pdf",
		Action: rules.Action{Type: rules.ActionMove, Destination: filepath.Join(watch, "docs")},
	})
	require.NoError(t, err)
	return folderID
}

func TestScanNow(t *testing.T) {
	o := newTestOrganizer(t)
	watch := t.TempDir()
	folderID := addPDFFolder(t, o, watch)

	require.NoError(t, os.WriteFile(filepath.Join(watch, "a.pdf"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(watch, "b.txt"), []byte("x"), 0644))

	assert.Equal(t, 1, o.ScanNow())
	assert.FileExists(t, filepath.Join(watch, "docs", "a.pdf"))

	entries, err := o.Store().GetActivityLog(10, 0, folderID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.pdf", entries[0].FileName)
}

func TestRunDeletions(t *testing.T) {
	o := newTestOrganizer(t)
	watch := t.TempDir()
	folderID, err := o.Config().AddFolder(rules.WatchedFolder{Path: watch, Enabled: true})
	require.NoError(t, err)
	_, err = o.Config().AddRule(folderID, rules.Rule{
		Name: "stale", Enabled: true, ConditionText: "*.log",
		Action: rules.Action{Type: rules.ActionDelete, AfterDays: 0},
	})
	require.NoError(t, err)

	target := filepath.Join(watch, "old.log")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0644))

	// Scan schedules, an immediate run deletes (after_days 0 is due now).
	assert.Equal(t, 1, o.ScanNow())
	assert.FileExists(t, target)
	assert.Equal(t, 1, o.RunDeletions())
	assert.NoFileExists(t, target)

	undos, err := o.Store().GetUndoEntries()
	require.NoError(t, err)
	require.Len(t, undos, 1)
	assert.Equal(t, target, undos[0].OriginalPath)
}

func TestWatcherLifecycle(t *testing.T) {
	o := newTestOrganizer(t)
	watch := t.TempDir()
	addPDFFolder(t, o, watch)

	require.NoError(t, o.StartWatching())
	assert.True(t, o.IsWatching())
	o.StopWatching()
	assert.False(t, o.IsWatching())
}

func TestHandleFileUsesCurrentConfig(t *testing.T) {
	o := newTestOrganizer(t)
	watch := t.TempDir()
	folderID := addPDFFolder(t, o, watch)

	target := filepath.Join(watch, "a.pdf")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0644))

	// The folder was disabled after the watcher picked up the event.
	snap := o.Config().Snapshot()
	stale := snap.FindFolder(folderID)
	require.NotNil(t, stale)
	require.NoError(t, o.Config().SetFolderEnabled(folderID, false))

	o.handleFile(target, stale)
	assert.FileExists(t, target, "disabled folders are not acted on")

	require.NoError(t, o.Config().SetFolderEnabled(folderID, true))
	o.handleFile(target, stale)
	assert.FileExists(t, filepath.Join(watch, "docs", "a.pdf"))
}

func TestRunStopsOnCancel(t *testing.T) {
	o := newTestOrganizer(t)
	watch := t.TempDir()
	addPDFFolder(t, o, watch)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- o.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
	assert.False(t, o.IsWatching())
}
