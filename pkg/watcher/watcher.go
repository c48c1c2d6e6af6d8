// Package watcher reacts to live filesystem changes in watched
// folders. Events are debounced per path so files still being written
// (a browser download, an unzip in progress) are only processed once
// they settle.
package watcher

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/acrellin/filebutler/pkg/config"
	"github.com/acrellin/filebutler/pkg/errors"
	"github.com/acrellin/filebutler/pkg/logging"
	"github.com/acrellin/filebutler/pkg/rules"
)

// DefaultDebounce is how long a path must stay quiet before its event
// fires. Long enough for typical downloads to finish writing.
const DefaultDebounce = 3 * time.Second

// Handler processes one settled file belonging to a watched folder.
type Handler func(path string, folder *rules.WatchedFolder)

// Watcher wraps fsnotify with per-path debouncing and folder routing.
type Watcher struct {
	handler  Handler
	debounce time.Duration
	logger   zerolog.Logger
	addWatch func(fsw *fsnotify.Watcher, path string) error

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	folders []rules.WatchedFolder
	pending map[string]*time.Timer
	running bool
}

// New returns a stopped Watcher that hands settled files to handler.
func New(handler Handler) *Watcher {
	return &Watcher{
		handler:  handler,
		debounce: DefaultDebounce,
		logger:   logging.GetLogger("watcher"),
		addWatch: func(fsw *fsnotify.Watcher, path string) error { return fsw.Add(path) },
		pending:  make(map[string]*time.Timer),
	}
}

// SetDebounce overrides the debounce interval. Only effective before
// Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Start begins watching every enabled folder in the configuration.
// Folders needing subdirectory coverage are registered recursively.
// A folder that is missing or cannot be registered is logged and left
// unwatched; the rest keep working. A previous session is stopped
// first, so Start doubles as restart after a config change.
func (w *Watcher) Start(cfg config.Config) error {
	w.Stop()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrWatchStart, "cannot create filesystem watcher")
	}

	folders := cfg.EnabledFolders()
	for i := range folders {
		folder := &folders[i]
		if _, statErr := os.Stat(folder.Path); statErr != nil {
			w.logger.Warn().Str("path", folder.Path).Msg("watched folder does not exist, skipping")
			continue
		}

		if err := w.register(fsw, folder); err != nil {
			w.logger.Warn().Err(err).Str("path", folder.Path).Msg("cannot watch folder, skipping")
			continue
		}
		w.logger.Info().Str("path", folder.Path).Bool("recursive", folder.NeedsRecursion()).Msg("watching")
	}

	w.mu.Lock()
	w.fsw = fsw
	w.folders = folders
	w.pending = make(map[string]*time.Timer)
	w.running = true
	w.mu.Unlock()

	go w.loop(fsw)
	return nil
}

// Stop halts watching and discards pending events. Safe to call on a
// stopped watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.running = false
	for _, timer := range w.pending {
		timer.Stop()
	}
	w.pending = make(map[string]*time.Timer)
	_ = w.fsw.Close()
	w.fsw = nil
	w.logger.Info().Msg("file watcher stopped")
}

// IsRunning reports whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) loop(fsw *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(fsw, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}

	// A new directory inside a recursively watched folder must be
	// registered too.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if folder := w.routeDir(event.Name); folder != nil && folder.NeedsRecursion() {
				if err := w.addRecursive(fsw, event.Name); err != nil {
					w.logger.Warn().Err(err).Str("path", event.Name).Msg("cannot watch new subdirectory")
				}
			}
			return
		}
	}

	w.scheduleEvent(event.Name)
}

// scheduleEvent (re)arms the debounce timer for a path. Repeated
// events while a file is being written keep pushing the timer back.
func (w *Watcher) scheduleEvent(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.fireEvent(path)
	})
}

func (w *Watcher) fireEvent(path string) {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	folder := w.routeFile(path)
	w.mu.Unlock()

	if folder == nil {
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	w.handler(path, folder)
}

// routeFile finds the watched folder a file belongs to. Non-recursive
// folders only own their direct children; recursive ones own their
// whole subtree. The deepest matching folder wins.
func (w *Watcher) routeFile(path string) *rules.WatchedFolder {
	var best *rules.WatchedFolder
	for i := range w.folders {
		folder := &w.folders[i]
		if folder.NeedsRecursion() {
			if !hasPathPrefix(path, folder.Path) {
				continue
			}
		} else if filepath.Dir(path) != filepath.Clean(folder.Path) {
			continue
		}
		if best == nil || len(folder.Path) > len(best.Path) {
			best = folder
		}
	}
	return best
}

// routeDir finds the folder owning a directory path, for registering
// new subdirectories. Callers hold no lock; folders is read-only after
// Start.
func (w *Watcher) routeDir(path string) *rules.WatchedFolder {
	w.mu.Lock()
	defer w.mu.Unlock()
	var best *rules.WatchedFolder
	for i := range w.folders {
		folder := &w.folders[i]
		if !hasPathPrefix(path, folder.Path) {
			continue
		}
		if best == nil || len(folder.Path) > len(best.Path) {
			best = folder
		}
	}
	return best
}

// register adds one folder's watch. Failures are per folder; the
// caller logs them and moves on.
func (w *Watcher) register(fsw *fsnotify.Watcher, folder *rules.WatchedFolder) error {
	if folder.NeedsRecursion() {
		return w.addRecursive(fsw, folder.Path)
	}
	return w.addWatch(fsw, folder.Path)
}

func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		return w.addWatch(fsw, path)
	})
}

func hasPathPrefix(path, prefix string) bool {
	path = filepath.Clean(path)
	prefix = filepath.Clean(prefix)
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+string(filepath.Separator))
}
