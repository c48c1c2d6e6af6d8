package filebutler

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newActivityCmd() *cobra.Command {
	var (
		limit    int
		offset   int
		folderID string
	)

	cmd := &cobra.Command{
		Use:   "activity",
		Short: MsgActivityShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.db.GetActivityLog(limit, offset, folderID)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				pterm.Info.Println("No activity recorded")
				return nil
			}

			data := pterm.TableData{{"Time", "File", "Action", "Rule", "Result"}}
			for _, e := range entries {
				data = append(data, []string{e.Timestamp, e.FileName, e.Action, e.RuleName, e.Result})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of entries to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "Entries to skip, for paging")
	cmd.Flags().StringVar(&folderID, "folder", "", "Only show activity for this folder id")
	return cmd
}
