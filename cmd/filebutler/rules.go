package filebutler

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/acrellin/filebutler/pkg/errors"
	"github.com/acrellin/filebutler/pkg/rules"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: MsgRulesShort,
		Long: `Rules pair a condition with an action. Conditions use globs, regexes,
and AND/OR/NOT, e.g.:

    *.pdf AND *invoice*
    (/^\d{4}/ OR draft*) AND NOT *final*

Actions either move matching files to a destination directory or
schedule them for deletion after a number of days. Within a folder,
rule order is priority: the first match wins.`,
	}
	cmd.AddCommand(
		newRulesListCmd(),
		newRulesAddCmd(),
		newRulesRemoveCmd(),
		newRulesEnableCmd(true),
		newRulesEnableCmd(false),
		newRulesReorderCmd(),
		newRulesTestCmd(),
	)
	return cmd
}

func newRulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <folder-id>",
		Short: "List a folder's rules in priority order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := a.cfg.Snapshot()
			folder := cfg.FindFolder(args[0])
			if folder == nil {
				return errors.Newf(errors.ErrFolderNotFound, "folder %s not found", args[0])
			}
			if len(folder.Rules) == 0 {
				pterm.Info.Println("No rules in this folder")
				return nil
			}

			data := pterm.TableData{{"#", "ID", "Name", "Condition", "Action", "Enabled"}}
			for i, r := range folder.Rules {
				action := string(r.Action.Type)
				switch r.Action.Type {
				case rules.ActionMove:
					action = "move to " + r.Action.Destination
				case rules.ActionDelete:
					action = fmt.Sprintf("delete after %d day(s)", r.Action.AfterDays)
				}
				data = append(data, []string{
					fmt.Sprintf("%d", i+1), r.ID, r.Name, r.ConditionText, action,
					fmt.Sprintf("%t", r.Enabled),
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}
}

func newRulesAddCmd() *cobra.Command {
	var (
		name       string
		condition  string
		moveTo     string
		deleteDays int
		subdirs    bool
		whitelist  []string
	)

	cmd := &cobra.Command{
		Use:   "add <folder-id>",
		Short: "Add a rule to a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (moveTo == "") == (deleteDays < 0) {
				return errors.New(errors.ErrInvalidInput,
					"exactly one of --move-to or --delete-after-days is required")
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			action := rules.Action{Type: rules.ActionMove, Destination: moveTo}
			if moveTo == "" {
				action = rules.Action{Type: rules.ActionDelete, AfterDays: deleteDays}
			}

			id, err := a.cfg.AddRule(args[0], rules.Rule{
				Name:                name,
				Enabled:             true,
				ConditionText:       condition,
				Action:              action,
				Whitelist:           whitelist,
				MatchSubdirectories: subdirs,
			})
			if err != nil {
				return err
			}
			pterm.Success.Printfln("Rule %q added (id %s)", name, id)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Rule name")
	cmd.Flags().StringVar(&condition, "condition", "*", "Condition, e.g. '*.pdf AND NOT *draft*'")
	cmd.Flags().StringVar(&moveTo, "move-to", "", "Move matching files to this directory")
	cmd.Flags().IntVar(&deleteDays, "delete-after-days", -1, "Schedule matching files for deletion after N days")
	cmd.Flags().BoolVar(&subdirs, "subdirs", false, "Match against the folder-relative path instead of the file name")
	cmd.Flags().StringSliceVar(&whitelist, "whitelist", nil, "Glob patterns this rule must skip")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newRulesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <folder-id> <rule-id>",
		Short: "Remove a rule from a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.cfg.RemoveRule(args[0], args[1]); err != nil {
				return err
			}
			pterm.Success.Println("Rule removed")
			return nil
		},
	}
}

func newRulesEnableCmd(enable bool) *cobra.Command {
	use, short := "enable", "Enable a rule"
	if !enable {
		use, short = "disable", "Disable a rule without removing it"
	}
	return &cobra.Command{
		Use:   use + " <folder-id> <rule-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.cfg.SetRuleEnabled(args[0], args[1], enable); err != nil {
				return err
			}
			pterm.Success.Printfln("Rule %sd", use)
			return nil
		},
	}
}

func newRulesReorderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <folder-id> <rule-id>...",
		Short: "Set rule priority by listing every rule id in the new order",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.cfg.ReorderRules(args[0], args[1:]); err != nil {
				return err
			}
			pterm.Success.Println("Rules reordered")
			return nil
		},
	}
}

func newRulesTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <folder-id> <filename>",
		Short: "Show which rule would match a file name, without touching anything",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := a.cfg.Snapshot()
			folder := cfg.FindFolder(args[0])
			if folder == nil {
				return errors.Newf(errors.ErrFolderNotFound, "folder %s not found", args[0])
			}

			m, ok := rules.MatchFile(args[1], folder)
			if !ok {
				pterm.Info.Printfln("No rule matches %q", args[1])
				return nil
			}
			pterm.Success.Printfln("Rule %q matches (condition: %s)", m.Rule.Name, m.Rule.ConditionText)
			return nil
		},
	}
}
