package filebutler

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: MsgScanShort,
		Long: `Scan walks every enabled watched folder once and applies the first
matching rule to each file. Use it to catch up after adding rules or
after files arrived while filebutler was not running.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			acted := a.org.ScanNow()
			if acted == 0 {
				pterm.Info.Println("Nothing to do, all folders are tidy")
			} else {
				pterm.Success.Printfln("Applied rules to %d file(s)", acted)
			}
			return nil
		},
	}
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: MsgWatchShort,
		Long: `Watch runs the engine in the foreground: an initial scan, a live
filesystem watcher with debouncing, and the periodic maintenance loop
with the daily deletion pass. Stop it with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pterm.Info.Println("Watching folders, press Ctrl-C to stop")
			return a.org.Run(ctx)
		},
	}
}
