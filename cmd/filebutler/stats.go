package filebutler

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/acrellin/filebutler/pkg/errors"
)

func newStatsCmd() *cobra.Command {
	var folderID string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: MsgStatsShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			tables, err := a.db.TableStats()
			if err != nil {
				return err
			}

			data := pterm.TableData{{"Table", "Rows"}}
			for _, st := range tables {
				data = append(data, []string{st.TableName, fmt.Sprintf("%d", st.RowCount)})
			}
			if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
				return err
			}

			pterm.Info.Printfln("Database size: %.1f MB, staged deletions: %.1f MB",
				float64(a.db.FileSize())/(1024*1024),
				float64(a.org.Trash().Size())/(1024*1024))

			if folderID == "" {
				return nil
			}

			snap := a.cfg.Snapshot()
			if snap.FindFolder(folderID) == nil {
				return errors.Newf(errors.ErrFolderNotFound, "folder %s not found", folderID)
			}
			since := time.Now().Add(-7 * 24 * time.Hour)
			stats, err := a.db.RuleExecutionStats(folderID, since)
			if err != nil {
				return err
			}
			if len(stats) == 0 {
				pterm.Info.Println("No rule executions in the last 7 days")
				return nil
			}

			ruleData := pterm.TableData{{"Rule", "Last run", "Runs (7d)"}}
			for _, st := range stats {
				ruleData = append(ruleData, []string{st.RuleName, st.LastExecuted, fmt.Sprintf("%d", st.Executions)})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(ruleData).Render()
		},
	}

	cmd.Flags().StringVar(&folderID, "folder", "", "Also show per-rule execution stats for this folder id")
	return cmd
}
