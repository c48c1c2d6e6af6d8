package filebutler

import (
	"fmt"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/acrellin/filebutler/pkg/rules"
)

func newFoldersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: MsgFoldersShort,
	}
	cmd.AddCommand(
		newFoldersListCmd(),
		newFoldersAddCmd(),
		newFoldersRemoveCmd(),
		newFoldersEnableCmd(true),
		newFoldersEnableCmd(false),
	)
	return cmd
}

func newFoldersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List watched folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := a.cfg.Snapshot()
			if len(cfg.Folders) == 0 {
				pterm.Info.Println("No folders are watched yet, add one with \"filebutler folders add\"")
				return nil
			}

			data := pterm.TableData{{"ID", "Path", "Enabled", "Recursive", "Rules"}}
			for _, f := range cfg.Folders {
				data = append(data, []string{
					f.ID, f.Path,
					fmt.Sprintf("%t", f.Enabled),
					fmt.Sprintf("%t", f.NeedsRecursion()),
					fmt.Sprintf("%d", len(f.Rules)),
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}
}

func newFoldersAddCmd() *cobra.Command {
	var (
		subdirs   bool
		whitelist []string
	)

	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Start watching a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			id, err := a.cfg.AddFolder(rules.WatchedFolder{
				Path:                path,
				Enabled:             true,
				WatchSubdirectories: subdirs,
				Whitelist:           whitelist,
			})
			if err != nil {
				return err
			}
			pterm.Success.Printfln("Watching %s (id %s)", path, id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&subdirs, "subdirs", false, "Also watch subdirectories")
	cmd.Flags().StringSliceVar(&whitelist, "whitelist", nil, "Glob patterns for files to never touch")
	return cmd
}

func newFoldersRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Stop watching a folder and drop its rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.cfg.RemoveFolder(args[0]); err != nil {
				return err
			}
			pterm.Success.Println("Folder removed")
			return nil
		},
	}
}

func newFoldersEnableCmd(enable bool) *cobra.Command {
	use, short := "enable <id>", "Enable a watched folder"
	if !enable {
		use, short = "disable <id>", "Disable a watched folder without losing its rules"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.cfg.SetFolderEnabled(args[0], enable); err != nil {
				return err
			}
			pterm.Success.Println("Folder updated")
			return nil
		},
	}
}
