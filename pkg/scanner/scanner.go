// Package scanner walks watched folders and runs every file through
// the rule matcher. It covers files that appeared while the engine was
// not running, complementing the live watcher.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/acrellin/filebutler/pkg/config"
	"github.com/acrellin/filebutler/pkg/executor"
	"github.com/acrellin/filebutler/pkg/logging"
	"github.com/acrellin/filebutler/pkg/rules"
)

// Scanner matches and executes rules over the current folder contents.
type Scanner struct {
	exec   *executor.Executor
	logger zerolog.Logger
}

// New returns a Scanner that hands matches to exec.
func New(exec *executor.Executor) *Scanner {
	return &Scanner{
		exec:   exec,
		logger: logging.GetLogger("scanner"),
	}
}

// ScanAll scans every enabled folder. Returns the number of files
// acted on.
func (s *Scanner) ScanAll(cfg config.Config) int {
	total := 0
	for i := range cfg.Folders {
		if !cfg.Folders[i].Enabled {
			continue
		}
		total += s.ScanFolder(&cfg.Folders[i])
	}
	s.logger.Info().Int("actions", total).Msg("folder scan completed")
	return total
}

// ScanFolder scans one folder. The walk descends into subdirectories
// only when the folder or one of its rules asks for it. A missing or
// unreadable folder is logged and skipped, never fatal. Returns the
// number of files acted on.
func (s *Scanner) ScanFolder(folder *rules.WatchedFolder) int {
	if _, err := os.Stat(folder.Path); err != nil {
		s.logger.Warn().Str("path", folder.Path).Msg("watched folder does not exist, skipping")
		return 0
	}

	if folder.NeedsRecursion() {
		return s.scanRecursive(folder)
	}
	return s.scanTopLevel(folder)
}

func (s *Scanner) scanTopLevel(folder *rules.WatchedFolder) int {
	entries, err := os.ReadDir(folder.Path)
	if err != nil {
		s.logger.Error().Err(err).Str("path", folder.Path).Msg("cannot read watched folder")
		return 0
	}

	acted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if s.processFile(filepath.Join(folder.Path, entry.Name()), folder) {
			acted++
		}
	}
	return acted
}

func (s *Scanner) scanRecursive(folder *rules.WatchedFolder) int {
	acted := 0
	err := filepath.WalkDir(folder.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("skipping unreadable entry")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if s.processFile(path, folder) {
			acted++
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Str("path", folder.Path).Msg("folder walk failed")
	}
	return acted
}

// processFile matches one file and executes the winning rule, if any.
// A panic while handling one file must not take down the whole scan.
func (s *Scanner) processFile(path string, folder *rules.WatchedFolder) (acted bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("path", path).Msg("recovered while processing file")
			acted = false
		}
	}()

	m, ok := rules.MatchFile(path, folder)
	if !ok {
		return false
	}
	res := s.exec.Execute(path, m, folder)
	return res.Success && !res.Skipped
}
