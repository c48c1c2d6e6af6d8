// Package scheduler drives the deferred work: staging due deletions
// into the trash, pruning expired undo entries and old logs, enforcing
// the database size cap, and the background maintenance loop that runs
// all of it on a timer.
package scheduler

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/acrellin/filebutler/pkg/config"
	"github.com/acrellin/filebutler/pkg/logging"
	"github.com/acrellin/filebutler/pkg/store"
	"github.com/acrellin/filebutler/pkg/trash"
)

// UndoExpiryDays is how long a staged deletion stays recoverable.
const UndoExpiryDays = 7

// Scheduler executes due deletions and periodic maintenance.
type Scheduler struct {
	store  *store.Store
	trash  *trash.Trash
	logger zerolog.Logger
	now    func() time.Time
}

// New returns a Scheduler backed by the given store and trash.
func New(s *store.Store, tr *trash.Trash) *Scheduler {
	return &Scheduler{
		store:  s,
		trash:  tr,
		logger: logging.GetLogger("scheduler"),
		now:    time.Now,
	}
}

// ProcessDueDeletions stages every due file into the trash and records
// an undo entry for each. Files that vanished on their own are dropped
// from the schedule silently. A failed staging keeps its schedule so
// the next pass retries. Returns the number of files deleted.
func (s *Scheduler) ProcessDueDeletions() int {
	now := s.now()
	due, err := s.store.GetDueDeletions(now)
	if err != nil {
		s.logger.Error().Err(err).Msg("could not list due deletions")
		return 0
	}

	deleted := 0
	for _, sd := range due {
		if _, statErr := os.Stat(sd.FilePath); statErr != nil {
			// Gone already, nothing to delete.
			if err := s.store.RemoveScheduledDeletionByPath(sd.FilePath); err != nil {
				s.logger.Error().Err(err).Str("path", sd.FilePath).Msg("could not drop stale schedule")
			}
			continue
		}

		stagedPath, putErr := s.trash.Put(sd.FilePath)
		if putErr != nil {
			s.logger.Error().Err(putErr).Str("path", sd.FilePath).Msg("could not stage file for deletion")
			s.logActivity(sd, store.ResultError, putErr.Error())
			continue
		}

		if err := s.store.RemoveScheduledDeletionByPath(sd.FilePath); err != nil {
			s.logger.Error().Err(err).Str("path", sd.FilePath).Msg("could not remove completed schedule")
		}

		undoErr := s.store.InsertUndo(store.UndoEntry{
			ID:           uuid.NewString(),
			OriginalPath: sd.FilePath,
			CurrentPath:  stagedPath,
			Action:       "auto_delete",
			Timestamp:    store.FormatTime(now),
			ExpiresAt:    store.FormatTime(now.Add(UndoExpiryDays * 24 * time.Hour)),
		})
		if undoErr != nil {
			s.logger.Error().Err(undoErr).Str("path", sd.FilePath).Msg("could not record undo entry")
		}

		s.logActivity(sd, store.ResultSuccess, "staged as "+stagedPath)
		s.logger.Info().Str("path", sd.FilePath).Str("rule", sd.RuleName).Msg("file deleted")
		deleted++
	}
	return deleted
}

// RunScheduledCleanup is the periodic maintenance pass: it removes
// expired undo entries along with their staged files, prunes activity
// rows past the retention window, enforces the database size cap, and
// drops schedules whose files no longer exist.
func (s *Scheduler) RunScheduledCleanup(settings config.Settings) {
	now := s.now()

	// Staged files of expired undo entries are permanently removed
	// before their rows are pruned.
	if entries, err := s.store.GetUndoEntries(); err == nil {
		nowStr := store.FormatTime(now)
		for _, u := range entries {
			if u.ExpiresAt < nowStr && u.CurrentPath != "" {
				if err := s.trash.Remove(u.CurrentPath); err != nil {
					s.logger.Error().Err(err).Str("path", u.CurrentPath).Msg("could not remove expired staged file")
				}
			}
		}
	}
	if pruned, err := s.store.PruneExpiredUndo(now); err != nil {
		s.logger.Error().Err(err).Msg("could not prune expired undo entries")
	} else if pruned > 0 {
		s.logger.Debug().Int64("count", pruned).Msg("expired undo entries pruned")
	}

	if settings.LogRetentionDays > 0 {
		cutoff := now.Add(-time.Duration(settings.LogRetentionDays) * 24 * time.Hour)
		if pruned, err := s.store.PruneOldLogs(cutoff); err != nil {
			s.logger.Error().Err(err).Msg("could not prune old logs")
		} else if pruned > 0 {
			s.logger.Debug().Int64("count", pruned).Msg("old activity rows pruned")
		}
	}

	if settings.MaxStorageMB > 0 {
		maxBytes := settings.MaxStorageMB * 1024 * 1024
		if pruned, err := s.store.EnforceSizeLimit(maxBytes); err != nil {
			s.logger.Error().Err(err).Msg("could not enforce storage limit")
		} else if pruned > 0 {
			s.logger.Info().Int64("rows", pruned).Int64("max_mb", settings.MaxStorageMB).
				Msg("pruned rows to keep database under the size cap")
		}
	}

	s.collectStaleSchedules()
	s.logger.Debug().Time("at", now).Msg("scheduled cleanup completed")
}

// collectStaleSchedules drops schedules whose files were moved or
// deleted out from under the engine.
func (s *Scheduler) collectStaleSchedules() {
	scheduled, err := s.store.GetScheduledDeletions()
	if err != nil {
		s.logger.Error().Err(err).Msg("could not list scheduled deletions")
		return
	}
	for _, sd := range scheduled {
		if _, statErr := os.Stat(sd.FilePath); statErr == nil {
			continue
		}
		if err := s.store.RemoveScheduledDeletionByPath(sd.FilePath); err != nil {
			s.logger.Error().Err(err).Str("path", sd.FilePath).Msg("could not drop stale schedule")
		} else {
			s.logger.Debug().Str("path", sd.FilePath).Msg("dropped schedule for vanished file")
		}
	}
}

// Loop runs maintenance until the context is cancelled. Each tick,
// spaced by the configured scan interval (clamped to one minute), runs
// onTick (usually a folder rescan) and the cleanup pass. Once per day,
// at the first tick at or after the configured hour, due deletions are
// processed.
func (s *Scheduler) Loop(ctx context.Context, svc *config.Service, onTick func()) {
	lastDeletionDay := 0
	for {
		settings := svc.Settings()
		interval := settings.ScanIntervalMinutes
		if interval < 1 {
			interval = 1
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(interval) * time.Minute):
		}

		if onTick != nil {
			onTick()
		}
		s.RunScheduledCleanup(settings)

		now := s.now()
		if s.shouldRunDeletions(now, settings.DeletionTimeHour, lastDeletionDay) {
			s.logger.Info().Int("hour", now.Hour()).Int("configured", settings.DeletionTimeHour).
				Msg("running daily scheduled deletions")
			s.ProcessDueDeletions()
			lastDeletionDay = now.YearDay()
		}
	}
}

// shouldRunDeletions is the daily gate: at or past the configured
// hour, and not yet fired on this calendar day.
func (s *Scheduler) shouldRunDeletions(now time.Time, hour, lastFiredDay int) bool {
	return now.Hour() >= hour && lastFiredDay != now.YearDay()
}

func (s *Scheduler) logActivity(sd store.ScheduledDeletion, result, details string) {
	err := s.store.InsertActivity(store.ActivityEntry{
		ID:        uuid.NewString(),
		FilePath:  sd.FilePath,
		FileName:  sd.FileName,
		Action:    store.ActionDeleted,
		RuleName:  sd.RuleName,
		FolderID:  sd.FolderID,
		Timestamp: store.FormatTime(s.now()),
		Result:    result,
		Details:   details,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("could not write activity log")
	}
}
