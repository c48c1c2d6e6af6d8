// Package organizer wires the engine together: configuration, store,
// trash, scanner, scheduler, and live watcher behind one service used
// by the CLI.
package organizer

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/acrellin/filebutler/pkg/config"
	"github.com/acrellin/filebutler/pkg/executor"
	"github.com/acrellin/filebutler/pkg/logging"
	"github.com/acrellin/filebutler/pkg/rules"
	"github.com/acrellin/filebutler/pkg/scanner"
	"github.com/acrellin/filebutler/pkg/scheduler"
	"github.com/acrellin/filebutler/pkg/store"
	"github.com/acrellin/filebutler/pkg/trash"
	"github.com/acrellin/filebutler/pkg/watcher"
)

// Organizer is the assembled engine.
type Organizer struct {
	cfg    *config.Service
	store  *store.Store
	trash  *trash.Trash
	exec   *executor.Executor
	scan   *scanner.Scanner
	sched  *scheduler.Scheduler
	watch  *watcher.Watcher
	logger zerolog.Logger
}

// New assembles an Organizer on top of an opened store and trash.
func New(cfg *config.Service, st *store.Store, tr *trash.Trash) *Organizer {
	exec := executor.New(st)
	o := &Organizer{
		cfg:    cfg,
		store:  st,
		trash:  tr,
		exec:   exec,
		scan:   scanner.New(exec),
		sched:  scheduler.New(st, tr),
		logger: logging.GetLogger("organizer"),
	}
	o.watch = watcher.New(o.handleFile)
	return o
}

// Config returns the configuration service.
func (o *Organizer) Config() *config.Service { return o.cfg }

// Store returns the backing store.
func (o *Organizer) Store() *store.Store { return o.store }

// Trash returns the deletion staging area.
func (o *Organizer) Trash() *trash.Trash { return o.trash }

// Scheduler returns the deletion scheduler.
func (o *Organizer) Scheduler() *scheduler.Scheduler { return o.sched }

// ScanNow scans all enabled folders once. Returns the number of files
// acted on.
func (o *Organizer) ScanNow() int {
	cfg := o.cfg.Snapshot()
	return o.scan.ScanAll(cfg)
}

// RunDeletions processes due deletions immediately, outside the daily
// schedule. Returns the number of files deleted.
func (o *Organizer) RunDeletions() int {
	return o.sched.ProcessDueDeletions()
}

// StartWatching starts (or restarts) the live watcher over the current
// configuration.
func (o *Organizer) StartWatching() error {
	return o.watch.Start(o.cfg.Snapshot())
}

// StopWatching halts the live watcher.
func (o *Organizer) StopWatching() {
	o.watch.Stop()
}

// IsWatching reports whether the live watcher is active.
func (o *Organizer) IsWatching() bool {
	return o.watch.IsRunning()
}

// Run is the long-lived mode: an initial scan, the live watcher, and
// the maintenance loop, until the context is cancelled.
func (o *Organizer) Run(ctx context.Context) error {
	o.ScanNow()
	if err := o.StartWatching(); err != nil {
		return err
	}
	defer o.StopWatching()

	o.logger.Info().Msg("organizer running")
	o.sched.Loop(ctx, o.cfg, func() { o.ScanNow() })
	return nil
}

// handleFile processes one settled file from the watcher. The folder
// is re-resolved against the current configuration so rule edits made
// after the watcher started still apply.
func (o *Organizer) handleFile(path string, folder *rules.WatchedFolder) {
	cfg := o.cfg.Snapshot()
	current := cfg.FindFolder(folder.ID)
	if current == nil || !current.Enabled {
		return
	}

	m, ok := rules.MatchFile(path, current)
	if !ok {
		return
	}
	res := o.exec.Execute(path, m, current)
	if res.Success {
		o.logger.Info().Str("file", res.FileName).Str("action", res.Action).
			Str("rule", res.RuleName).Msg("handled file event")
	}
}
