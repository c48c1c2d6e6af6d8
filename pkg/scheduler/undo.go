package scheduler

import (
	"path/filepath"

	"github.com/google/uuid"

	"github.com/acrellin/filebutler/pkg/errors"
	"github.com/acrellin/filebutler/pkg/store"
)

// RestoreUndo moves a staged deletion back to its original path and
// marks the undo entry as consumed. Returns the restored path.
func (s *Scheduler) RestoreUndo(id string) (string, error) {
	entry, err := s.store.GetUndoEntry(id)
	if err != nil {
		return "", err
	}
	if entry.Restored {
		return "", errors.Newf(errors.ErrInvalidInput, "undo entry %s was already restored", id)
	}
	if entry.CurrentPath == "" {
		return "", errors.Newf(errors.ErrInvalidInput, "undo entry %s has no staged file", id)
	}

	if err := s.trash.Restore(entry.CurrentPath, entry.OriginalPath); err != nil {
		return "", err
	}
	if err := s.store.MarkRestored(id); err != nil {
		return "", err
	}

	logErr := s.store.InsertActivity(store.ActivityEntry{
		ID:        uuid.NewString(),
		FilePath:  entry.OriginalPath,
		FileName:  filepath.Base(entry.OriginalPath),
		Action:    store.ActionRestored,
		Timestamp: store.FormatTime(s.now()),
		Result:    store.ResultSuccess,
		Details:   "restored from " + entry.CurrentPath,
	})
	if logErr != nil {
		s.logger.Error().Err(logErr).Msg("could not write activity log")
	}

	s.logger.Info().Str("path", entry.OriginalPath).Msg("file restored")
	return entry.OriginalPath, nil
}

// CancelDeletion removes a pending schedule so the file stays.
func (s *Scheduler) CancelDeletion(id string) error {
	return s.store.CancelScheduledDeletion(id)
}
