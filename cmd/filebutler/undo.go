package filebutler

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newUndoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo",
		Short: MsgUndoShort,
		Long: `Deleted files are staged, not destroyed: for seven days after a
scheduled deletion runs, the file can be put back exactly where it
was. "undo list" shows what is recoverable, "undo restore" brings a
file back.`,
	}
	cmd.AddCommand(newUndoListCmd(), newUndoRestoreCmd())
	return cmd
}

func newUndoListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recoverable deletions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.db.GetUndoEntries()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				pterm.Info.Println("Nothing to restore")
				return nil
			}

			data := pterm.TableData{{"ID", "Original path", "Deleted at", "Expires"}}
			for _, u := range entries {
				data = append(data, []string{u.ID, u.OriginalPath, u.Timestamp, u.ExpiresAt})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}
}

func newUndoRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore a deleted file to its original location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			restored, err := a.org.Scheduler().RestoreUndo(args[0])
			if err != nil {
				return err
			}
			pterm.Success.Printfln("Restored %s", restored)
			return nil
		},
	}
}
