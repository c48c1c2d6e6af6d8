package filebutler

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newCleanupCmd() *cobra.Command {
	var clearTable string

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: MsgCleanupShort,
		Long: `Cleanup runs the maintenance pass immediately: expired undo entries
and their staged files are removed, activity rows past the retention
window are pruned, the database size cap is enforced, and schedules
for vanished files are dropped. The watch loop runs the same pass
periodically on its own.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if clearTable != "" {
				deleted, err := a.db.ClearTable(clearTable)
				if err != nil {
					return err
				}
				pterm.Success.Printfln("Cleared %d row(s) from %s", deleted, clearTable)
				return nil
			}

			a.org.Scheduler().RunScheduledCleanup(a.cfg.Settings())
			pterm.Success.Println("Maintenance pass completed")
			return nil
		},
	}

	cmd.Flags().StringVar(&clearTable, "clear-table", "",
		"Instead of the maintenance pass, wipe one table (activity_log, undo_history, scheduled_deletions)")
	return cmd
}
