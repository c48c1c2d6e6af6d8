// Package filebutler implements the command line interface: watching,
// scanning, managing folders and rules, and inspecting the engine's
// history.
package filebutler

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/acrellin/filebutler/internal/version"
	"github.com/acrellin/filebutler/pkg/config"
	"github.com/acrellin/filebutler/pkg/logging"
	"github.com/acrellin/filebutler/pkg/organizer"
	"github.com/acrellin/filebutler/pkg/paths"
	"github.com/acrellin/filebutler/pkg/store"
	"github.com/acrellin/filebutler/pkg/trash"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:     "filebutler",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)

	rootCmd.AddCommand(
		newScanCmd(),
		newWatchCmd(),
		newRunDeletionsCmd(),
		newSchedulesCmd(),
		newUndoCmd(),
		newActivityCmd(),
		newFoldersCmd(),
		newRulesCmd(),
		newConfigCmd(),
		newStatsCmd(),
		newCleanupCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("filebutler version %s\n", version.Version)
			fmt.Printf("  commit: %s\n", version.Commit)
			fmt.Printf("  built:  %s\n", version.Date)
		},
	}
}

// app bundles the opened engine pieces for one command invocation.
type app struct {
	cfg *config.Service
	db  *store.Store
	org *organizer.Organizer
}

// openApp loads the configuration and opens the store.
func openApp() (*app, error) {
	cfg, err := config.NewService(paths.ConfigFilePath())
	if err != nil {
		return nil, err
	}
	db, err := store.Open(paths.DatabasePath())
	if err != nil {
		return nil, err
	}
	org := organizer.New(cfg, db, trash.New(paths.TrashStagingPath()))
	return &app{cfg: cfg, db: db, org: org}, nil
}

func (a *app) Close() {
	_ = a.db.Close()
}
