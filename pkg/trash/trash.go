// Package trash implements the recoverable staging area scheduled
// deletions go through: instead of a hard delete, files are moved into
// an app-owned staging directory under a unique name and can be
// restored until their undo entry expires.
package trash

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/acrellin/filebutler/pkg/errors"
	"github.com/acrellin/filebutler/pkg/logging"
)

// Trash stages deleted files inside a single directory.
type Trash struct {
	stagingDir string
}

// New returns a Trash backed by the given staging directory.
func New(stagingDir string) *Trash {
	return &Trash{stagingDir: stagingDir}
}

// Dir returns the staging directory.
func (t *Trash) Dir() string {
	return t.stagingDir
}

// Put moves the file into the staging area under a uuid-prefixed name
// and returns the staged path. Rename is tried first; cross-volume
// staging falls back to copy-then-remove.
func (t *Trash) Put(filePath string) (string, error) {
	if err := os.MkdirAll(t.stagingDir, 0755); err != nil {
		return "", errors.Wrap(err, errors.ErrDirCreate, "cannot create trash staging dir")
	}

	stagedName := uuid.NewString() + "_" + filepath.Base(filePath)
	stagedPath := filepath.Join(t.stagingDir, stagedName)

	if err := os.Rename(filePath, stagedPath); err != nil {
		if copyErr := copyThenRemove(filePath, stagedPath); copyErr != nil {
			logger := logging.GetLogger("trash")
			logger.Error().Err(copyErr).Str("path", filePath).Msg("failed to stage file for deletion")
			return "", errors.Wrapf(copyErr, errors.ErrFileMove, "cannot stage %s", filePath)
		}
	}

	return stagedPath, nil
}

// Restore moves a staged file back to its original path, creating
// parent directories as needed. Restoring onto an existing file is
// refused rather than overwriting it.
func (t *Trash) Restore(stagedPath, originalPath string) error {
	if _, err := os.Stat(stagedPath); err != nil {
		return errors.Wrapf(err, errors.ErrFileNotFound, "staged file %s is gone", stagedPath)
	}
	if _, err := os.Stat(originalPath); err == nil {
		return errors.Newf(errors.ErrAlreadyExists, "cannot restore: %s already exists", originalPath)
	}
	if parent := filepath.Dir(originalPath); parent != "" {
		if err := os.MkdirAll(parent, 0755); err != nil {
			return errors.Wrap(err, errors.ErrDirCreate, "cannot recreate original directory")
		}
	}
	if err := os.Rename(stagedPath, originalPath); err != nil {
		if copyErr := copyThenRemove(stagedPath, originalPath); copyErr != nil {
			return errors.Wrapf(copyErr, errors.ErrFileMove, "cannot restore %s", originalPath)
		}
	}
	return nil
}

// Remove permanently deletes a staged file, used when its undo entry
// expires.
func (t *Trash) Remove(stagedPath string) error {
	err := os.Remove(stagedPath)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot remove staged file %s", stagedPath)
	}
	return nil
}

// Size returns the total size in bytes of all staged files.
func (t *Trash) Size() int64 {
	entries, err := os.ReadDir(t.stagingDir)
	if err != nil {
		return 0
	}
	var total int64
	for _, entry := range entries {
		if info, err := entry.Info(); err == nil && !info.IsDir() {
			total += info.Size()
		}
	}
	return total
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
