package filebutler

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newRunDeletionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run-deletions",
		Short: MsgRunDeletionsShort,
		Long: `Run-deletions processes every scheduled deletion whose grace period
has passed, without waiting for the daily pass. Deleted files are
staged and stay restorable with "filebutler undo" for seven days.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			deleted := a.org.RunDeletions()
			if deleted == 0 {
				pterm.Info.Println("No deletions are due")
			} else {
				pterm.Success.Printfln("Deleted %d file(s), recoverable via \"filebutler undo\"", deleted)
			}
			return nil
		},
	}
}

func newSchedulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedules",
		Short: MsgSchedulesShort,
	}
	cmd.AddCommand(newSchedulesListCmd(), newSchedulesCancelCmd())
	return cmd
}

func newSchedulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending scheduled deletions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			scheduled, err := a.db.GetScheduledDeletions()
			if err != nil {
				return err
			}
			if len(scheduled) == 0 {
				pterm.Info.Println("No pending deletions")
				return nil
			}

			data := pterm.TableData{{"ID", "File", "Rule", "Delete after"}}
			for _, sd := range scheduled {
				data = append(data, []string{sd.ID, sd.FilePath, sd.RuleName, sd.DeleteAfter})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}
}

func newSchedulesCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a pending scheduled deletion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.org.Scheduler().CancelDeletion(args[0]); err != nil {
				return err
			}
			pterm.Success.Println("Deletion cancelled")
			return nil
		},
	}
}
