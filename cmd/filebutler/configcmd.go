package filebutler

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/acrellin/filebutler/pkg/paths"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
	}
	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigPathCmd(),
		newConfigExportCmd(),
		newConfigImportCmd(),
	)
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			return a.cfg.ExportYAML(cmd.OutOrStdout())
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), paths.ConfigFilePath())
		},
	}
}

func newConfigExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Export folders, rules, and settings to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			if err := a.cfg.ExportYAML(f); err != nil {
				return err
			}
			pterm.Success.Printfln("Configuration exported to %s", args[0])
			return nil
		},
	}
}

func newConfigImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the configuration with a previously exported YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			if err := a.cfg.ImportYAML(f); err != nil {
				return err
			}
			pterm.Success.Println("Configuration imported")
			return nil
		},
	}
}
