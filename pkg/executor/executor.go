// Package executor carries out the action of a winning rule: moving the
// file to its destination or recording a scheduled deletion. Every
// outcome, success or failure, lands in the activity log.
package executor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/acrellin/filebutler/pkg/errors"
	"github.com/acrellin/filebutler/pkg/logging"
	"github.com/acrellin/filebutler/pkg/rules"
	"github.com/acrellin/filebutler/pkg/store"
)

// Result describes what happened to one file. Skipped marks a no-op
// outcome: the file matched but nothing new happened, as with a
// deletion that is already on the schedule.
type Result struct {
	FilePath string
	FileName string
	Action   string
	RuleName string
	Success  bool
	Skipped  bool
	Details  string
}

// Executor applies rule actions and records them.
type Executor struct {
	store  *store.Store
	logger zerolog.Logger
	now    func() time.Time
}

// New returns an Executor backed by the given store.
func New(s *store.Store) *Executor {
	return &Executor{
		store:  s,
		logger: logging.GetLogger("executor"),
		now:    time.Now,
	}
}

// Execute applies the matched rule's action to the file and logs the
// outcome. A failed action comes back as an error Result and the file
// is left where it is.
func (e *Executor) Execute(path string, m *rules.Match, folder *rules.WatchedFolder) Result {
	switch m.Rule.Action.Type {
	case rules.ActionMove:
		return e.executeMove(path, m, folder)
	case rules.ActionDelete:
		return e.executeDelete(path, m, folder)
	default:
		return Result{
			FilePath: path,
			FileName: filepath.Base(path),
			RuleName: m.Rule.Name,
			Details:  fmt.Sprintf("unknown action type %q", m.Rule.Action.Type),
		}
	}
}

func (e *Executor) executeMove(path string, m *rules.Match, folder *rules.WatchedFolder) Result {
	res := Result{
		FilePath: path,
		FileName: filepath.Base(path),
		Action:   store.ActionMoved,
		RuleName: m.Rule.Name,
	}

	newPath, err := MoveFile(path, m.Rule.Action.Destination)
	if err != nil {
		e.logger.Error().Err(err).Str("path", path).Str("rule", m.Rule.Name).Msg("move failed")
		res.Details = err.Error()
		e.logActivity(res, folder.ID, store.ResultError)
		return res
	}

	e.logger.Info().Str("from", path).Str("to", newPath).Str("rule", m.Rule.Name).Msg("file moved")
	res.Success = true
	res.Details = "moved to " + newPath
	e.logActivity(res, folder.ID, store.ResultSuccess)
	return res
}

func (e *Executor) executeDelete(path string, m *rules.Match, folder *rules.WatchedFolder) Result {
	res := Result{
		FilePath: path,
		FileName: filepath.Base(path),
		Action:   store.ActionScheduled,
		RuleName: m.Rule.Name,
	}

	inserted, err := e.ScheduleDelete(path, m.Rule, folder.ID)
	if err != nil {
		e.logger.Error().Err(err).Str("path", path).Str("rule", m.Rule.Name).Msg("could not schedule deletion")
		res.Details = err.Error()
		e.logActivity(res, folder.ID, store.ResultError)
		return res
	}

	res.Success = true
	if !inserted {
		// Already scheduled: the original timer stays, nothing to log.
		res.Skipped = true
		res.Details = "already scheduled"
		return res
	}

	e.logger.Info().Str("path", path).Int("after_days", m.Rule.Action.AfterDays).
		Str("rule", m.Rule.Name).Msg("deletion scheduled")
	res.Details = fmt.Sprintf("deletion scheduled in %d day(s)", m.Rule.Action.AfterDays)
	e.logActivity(res, folder.ID, store.ResultSuccess)
	return res
}

// ScheduleDelete records a deferred deletion for the file. Returns
// false when the path is already scheduled; the existing entry and its
// delete_after stay untouched.
func (e *Executor) ScheduleDelete(path string, rule *rules.Rule, folderID string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", path)
	}

	now := e.now()
	sd := store.ScheduledDeletion{
		ID:          uuid.NewString(),
		FilePath:    path,
		FolderID:    folderID,
		RuleName:    rule.Name,
		FileName:    filepath.Base(path),
		Extension:   strings.TrimPrefix(filepath.Ext(path), "."),
		SizeBytes:   info.Size(),
		ScheduledAt: store.FormatTime(now),
		DeleteAfter: store.FormatTime(now.Add(time.Duration(rule.Action.AfterDays) * 24 * time.Hour)),
	}
	return e.store.UpsertScheduledDeletion(sd)
}

func (e *Executor) logActivity(res Result, folderID, outcome string) {
	err := e.store.InsertActivity(store.ActivityEntry{
		ID:        uuid.NewString(),
		FilePath:  res.FilePath,
		FileName:  res.FileName,
		Action:    res.Action,
		RuleName:  res.RuleName,
		FolderID:  folderID,
		Timestamp: store.FormatTime(e.now()),
		Result:    outcome,
		Details:   res.Details,
	})
	if err != nil {
		e.logger.Error().Err(err).Msg("could not write activity log")
	}
}

// EnsureDir creates the directory, checking first that its volume
// root still exists. A detached external drive surfaces as
// ErrVolumeGone instead of a misleading create failure.
func EnsureDir(path string) error {
	root := filepath.VolumeName(path)
	if root == "" {
		root = string(filepath.Separator)
	} else {
		root += string(filepath.Separator)
	}
	if _, err := os.Stat(root); err != nil {
		return errors.Newf(errors.ErrVolumeGone, "volume %q does not exist", root)
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create directory %s", path)
	}
	return nil
}

// MoveFile moves the file into the destination directory, creating it
// if needed. Name collisions get a " (n)" suffix before the extension,
// counting up from 1. Returns the final path.
func MoveFile(path, destDir string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileNotFound, "cannot stat %s", path)
	}
	if err := EnsureDir(destDir); err != nil {
		return "", err
	}

	destPath := availableName(destDir, filepath.Base(path))
	if err := os.Rename(path, destPath); err != nil {
		// Cross-volume moves cannot rename.
		if copyErr := copyThenRemove(path, destPath); copyErr != nil {
			return "", errors.Wrapf(copyErr, errors.ErrFileMove, "cannot move %s to %s", path, destDir)
		}
	}
	return destPath, nil
}

// availableName returns the first non-colliding path for fileName in
// dir: the name itself, then "name (1).ext", "name (2).ext", and so on.
func availableName(dir, fileName string) string {
	candidate := filepath.Join(dir, fileName)
	if _, err := os.Stat(candidate); os.IsNotExist(err) {
		return candidate
	}

	ext := filepath.Ext(fileName)
	stem := strings.TrimSuffix(fileName, ext)
	for n := 1; ; n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

func copyThenRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return os.Remove(src)
}
