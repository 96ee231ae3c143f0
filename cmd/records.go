package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mateconpizza/tabkeep/internal/config"
	"github.com/mateconpizza/tabkeep/internal/db"
	"github.com/mateconpizza/tabkeep/internal/record"
	"github.com/mateconpizza/tabkeep/internal/sys"
	"github.com/mateconpizza/tabkeep/internal/vault"
)

var (
	listAll  bool
	openCopy bool
)

var errRecordNotFound = errors.New("record not found")

// lookup resolves a record by id or url.
func lookup(cmd *cobra.Command, v *vault.Vault, arg string) (*record.URL, error) {
	var (
		u   *record.URL
		err error
	)

	if id, convErr := strconv.ParseInt(arg, 10, 64); convErr == nil {
		u, err = v.URLByID(cmd.Context(), id)
	} else {
		u, err = v.URLByURL(cmd.Context(), arg)
	}

	if err != nil {
		return nil, err
	}

	if u == nil {
		return nil, fmt.Errorf("%w: %q", errRecordNotFound, arg)
	}

	return u, nil
}

var listCmd = &cobra.Command{
	Use:               "list",
	Aliases:           []string{"ls"},
	Short:             "List saved records",
	Args:              cobra.NoArgs,
	PersistentPreRunE: RequireDatabase,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cats, err := parseCategories(config.App.Flags.Categories)
		if err != nil {
			return err
		}

		if listAll {
			cats = []record.Category{record.Uncategorized, record.Ignore, record.Useful, record.Important}
		}

		v, err := openVault(cmd.Context())
		if err != nil {
			return err
		}
		defer v.Close()

		us, err := v.AllSavedTabs(cats)
		if err != nil {
			return err
		}

		if config.App.Flags.JSON {
			return printJSON(cmd.OutOrStdout(), us)
		}

		return printURLs(cmd.OutOrStdout(), us)
	},
}

var categoryCmd = &cobra.Command{
	Use:               "category URL CATEGORY",
	Short:             "Set the category of a url",
	Args:              cobra.ExactArgs(2),
	PersistentPreRunE: RequireDatabase,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := record.ParseCategory(args[1])
		if err != nil {
			return err
		}

		v, err := openVault(cmd.Context())
		if err != nil {
			return err
		}
		defer v.Close()

		ok, err := v.UpdateURLCategory(cmd.Context(), args[0], c)
		if err != nil {
			return err
		}

		if !ok {
			return fmt.Errorf("%w: %q", errRecordNotFound, args[0])
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], c)

		return nil
	},
}

var openCmd = &cobra.Command{
	Use:               "open ID|URL",
	Short:             "Open a record in the default browser",
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: RequireDatabase,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVault(cmd.Context())
		if err != nil {
			return err
		}
		defer v.Close()

		u, err := lookup(cmd, v, args[0])
		if err != nil {
			return err
		}

		if openCopy {
			if err := sys.CopyClipboard(u.URL); err != nil {
				return err
			}
		} else if err := sys.OpenInBrowser(u.URL); err != nil {
			return err
		}

		if _, err := v.UpdateLastAccessed(cmd.Context(), u.URL); err != nil {
			return err
		}

		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:               "rm ID|URL",
	Aliases:           []string{"remove"},
	Short:             "Delete a record and its sessions",
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: RequireDatabase,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVault(cmd.Context())
		if err != nil {
			return err
		}
		defer v.Close()

		u, err := lookup(cmd, v, args[0])
		if err != nil {
			return err
		}

		if _, err := v.DeleteURL(cmd.Context(), u.ID); err != nil {
			return err
		}

		d, err := db.NewArtifactStore(v.Store()).DeleteArtifactsForURL(cmd.Context(), u.URL)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "deleted %q (predictions: %d, training data: %d)\n",
			u.URL, d.Predictions, d.TrainingData)

		return nil
	},
}

var backupCmd = &cobra.Command{
	Use:               "backup",
	Short:             "Write a copy of the database to the backup directory",
	Args:              cobra.NoArgs,
	PersistentPreRunE: RequireDatabase,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := db.New(config.App.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		p, err := store.Backup(cmd.Context(), config.App.Path.Backup)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), p)

		return nil
	},
}

func init() {
	listCmd.Flags().StringSliceVarP(&config.App.Flags.Categories, "category", "c", nil, "categories to list")
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "include uncategorized records")
	listCmd.Flags().BoolVarP(&config.App.Flags.JSON, "json", "j", false, "output in JSON format")
	openCmd.Flags().BoolVar(&openCopy, "copy", false, "copy the url to the clipboard instead")

	Root.AddCommand(listCmd, categoryCmd, openCmd, removeCmd, backupCmd)
}
