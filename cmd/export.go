package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mateconpizza/tabkeep/internal/config"
	"github.com/mateconpizza/tabkeep/internal/db"
	"github.com/mateconpizza/tabkeep/internal/port"
	"github.com/mateconpizza/tabkeep/internal/sys/files"
	"github.com/mateconpizza/tabkeep/internal/vault"
)

var (
	exportOutput string
	exportML     bool
)

var exportCmd = &cobra.Command{
	Use:               "export",
	Short:             "Export saved records as CSV",
	Args:              cobra.NoArgs,
	PersistentPreRunE: RequireDatabase,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cats, err := parseCategories(config.App.Flags.Categories)
		if err != nil {
			return err
		}

		v, err := openVault(cmd.Context())
		if err != nil {
			return err
		}
		defer v.Close()

		var w io.Writer = cmd.OutOrStdout()
		if exportOutput != "" {
			f, err := files.Touch(files.ExpandHomeDir(exportOutput), config.App.Flags.Force)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}

		var ml port.MLSource
		if exportML {
			ml = db.NewArtifactStore(v.Store())
		}

		// nil exports every saved category.
		var urls []*vault.SavedURL
		if len(cats) > 0 {
			if urls, err = v.SavedURLs(cats, true); err != nil {
				return err
			}
		}

		if err := port.ExportCSV(cmd.Context(), w, v, urls, ml); err != nil {
			return err
		}

		if exportOutput != "" {
			fmt.Fprintf(os.Stderr, "exported to %q\n", exportOutput)
		}

		return nil
	},
}

func init() {
	f := exportCmd.Flags()
	f.StringVarP(&exportOutput, "output", "o", "", "write to file instead of stdout")
	f.BoolVar(&exportML, "ml", false, "include ML prediction columns")
	f.StringSliceVarP(&config.App.Flags.Categories, "category", "c", nil, "categories to export")
	Root.AddCommand(exportCmd)
}
