package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mateconpizza/tabkeep/internal/config"
	"github.com/mateconpizza/tabkeep/internal/record"
	"github.com/mateconpizza/tabkeep/internal/vault"
)

var tabData vault.TabData

var tabCmd = &cobra.Command{
	Use:   "tab",
	Short: "Track the tabs open in the browser",
}

var tabOpenCmd = &cobra.Command{
	Use:   "open URL",
	Short: "Record a tab showing URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		v, err := openVault(ctx)
		if err != nil {
			return err
		}
		defer v.Close()

		d := tabData
		d.URL = args[0]
		t, err := v.GetOrCreateCurrentTab(ctx, d)
		if err != nil {
			return err
		}

		id, err := v.GetOrCreateURL(ctx, vault.Candidate{URL: d.URL, Title: d.Title, Favicon: d.Favicon}, record.Uncategorized)
		if err != nil {
			return err
		}

		tabID := d.TabID
		if _, err := v.RecordOpenEvent(ctx, id, &tabID); err != nil {
			return err
		}

		if config.App.Flags.JSON {
			return printJSON(cmd.OutOrStdout(), t)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s (%d tabs)\n", id, t.URL, t.OpenCount)

		return nil
	},
}

var tabCloseCmd = &cobra.Command{
	Use:   "close URL",
	Short: "Record the close of a tab showing URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		v, err := openVault(ctx)
		if err != nil {
			return err
		}
		defer v.Close()

		if _, err := v.RemoveTabFromCurrentTab(ctx, args[0], tabData.TabID); err != nil {
			return err
		}

		u, err := v.URLByURL(ctx, args[0])
		if err != nil {
			return err
		}

		if u == nil {
			return fmt.Errorf("%w: %q", vault.ErrUnknownURL, args[0])
		}

		_, err = v.RecordCloseEvent(ctx, u.ID, 0)

		return err
	},
}

var tabWindowCloseCmd = &cobra.Command{
	Use:   "window-close WINDOW_ID",
	Short: "Drop a closed window from every tracked tab",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		windowID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %q", record.ErrInvalidID, args[0])
		}

		v, err := openVault(cmd.Context())
		if err != nil {
			return err
		}
		defer v.Close()

		n, err := v.RemoveWindowFromCurrentTabs(cmd.Context(), windowID)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "updated %d tabs\n", n)

		return nil
	},
}

var tabFindCmd = &cobra.Command{
	Use:   "find TAB_ID",
	Short: "Show the tracked record holding a tab id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tabID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %q", record.ErrInvalidID, args[0])
		}

		v, err := openVault(cmd.Context())
		if err != nil {
			return err
		}
		defer v.Close()

		t, err := v.FindCurrentTabByTabID(cmd.Context(), tabID)
		if err != nil {
			return err
		}

		if t == nil {
			return fmt.Errorf("%w: tab %d", errRecordNotFound, tabID)
		}

		if config.App.Flags.JSON {
			return printJSON(cmd.OutOrStdout(), t)
		}

		return printCurrentTabs(cmd.OutOrStdout(), []*record.CurrentTab{t})
	},
}

var tabListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the tracked tabs",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		v, err := openVault(cmd.Context())
		if err != nil {
			return err
		}
		defer v.Close()

		ts, err := v.AllCurrentTabs(cmd.Context())
		if err != nil {
			return err
		}

		if config.App.Flags.JSON {
			return printJSON(cmd.OutOrStdout(), ts)
		}

		return printCurrentTabs(cmd.OutOrStdout(), ts)
	},
}

func init() {
	of := tabOpenCmd.Flags()
	of.Int64Var(&tabData.TabID, "tab", 0, "browser tab id")
	of.Int64Var(&tabData.WindowID, "window", 0, "browser window id")
	of.StringVar(&tabData.Title, "title", "", "page title")
	of.StringVar(&tabData.Favicon, "favicon", "", "favicon url")

	tabCloseCmd.Flags().Int64Var(&tabData.TabID, "tab", 0, "browser tab id")
	tabCmd.PersistentFlags().BoolVarP(&config.App.Flags.JSON, "json", "j", false, "output in JSON format")

	tabCmd.AddCommand(tabOpenCmd, tabCloseCmd, tabWindowCloseCmd, tabFindCmd, tabListCmd)
	Root.AddCommand(tabCmd)
}
