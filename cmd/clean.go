package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mateconpizza/tabkeep/internal/config"
	"github.com/mateconpizza/tabkeep/internal/sys"
	"github.com/mateconpizza/tabkeep/internal/sys/terminal"
	"github.com/mateconpizza/tabkeep/internal/vault"
)

var (
	cleanUncategorized bool
	cleanOlderThan     string
	cleanVacuum        bool
)

var cleanCmd = &cobra.Command{
	Use:               "clean",
	Short:             "Delete aged Ignore records or every uncategorized record",
	Args:              cobra.NoArgs,
	PersistentPreRunE: RequireDatabase,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.App
		retention := time.Duration(cfg.File.Retention)
		if cleanOlderThan != "" {
			d, err := config.ParseDuration(cleanOlderThan)
			if err != nil {
				return err
			}
			retention = d
		}

		q := fmt.Sprintf("delete Ignore records not accessed in %s?", retention)
		if cleanUncategorized {
			q = "delete every uncategorized record?"
		}

		if !cfg.Flags.Force && !terminal.Confirm(os.Stdin, cmd.ErrOrStderr(), q, "n") {
			return sys.ErrActionAborted
		}

		v, err := openVault(cmd.Context())
		if err != nil {
			return err
		}
		defer v.Close()

		w := cmd.OutOrStdout()
		if cleanUncategorized {
			n, err := v.CleanupUncategorizedRecords(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "urls deleted: %d\n", n)

			return vacuum(cmd, v, n)
		}

		res, err := v.CleanupOldURLs(cmd.Context(), retention)
		if err != nil {
			return err
		}
		printCleanup(w, res)

		return vacuum(cmd, v, res.URLsDeleted)
	},
}

// vacuum repacks the database when records were deleted.
func vacuum(cmd *cobra.Command, v *vault.Vault, deleted int) error {
	if deleted == 0 || !cleanVacuum {
		return nil
	}

	return v.Store().Vacuum(cmd.Context())
}

func init() {
	f := cleanCmd.Flags()
	f.BoolVarP(&cleanUncategorized, "uncategorized", "u", false, "delete every uncategorized record")
	f.StringVar(&cleanOlderThan, "older-than", "", "retention, defaults to the configured one (e.g. 30d)")
	f.BoolVar(&cleanVacuum, "vacuum", true, "repack the database after deleting")
	cleanCmd.MarkFlagsMutuallyExclusive("uncategorized", "older-than")
	Root.AddCommand(cleanCmd)
}
