package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mateconpizza/tabkeep/internal/config"
	"github.com/mateconpizza/tabkeep/internal/port"
	"github.com/mateconpizza/tabkeep/internal/rules"
)

var (
	importRulesFile string
	importDetails   bool
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import records from a CSV file",
	Long: `Import records from a CSV file.

The header must name a title and a url column. Rows with an unknown
category are matched against the configured rules; rows still without a
category are reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rs := config.App.File.Rules
		if importRulesFile != "" {
			data, err := os.ReadFile(importRulesFile)
			if err != nil {
				return fmt.Errorf("reading rules: %w", err)
			}

			extra, err := rules.Load(data)
			if err != nil {
				return err
			}
			rs = append(extra, rs...)
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("%w", err)
		}
		defer f.Close()

		v, err := openVault(cmd.Context())
		if err != nil {
			return err
		}
		defer v.Close()

		res, err := port.ImportCSV(cmd.Context(), v, f, port.Settings{Rules: rs})
		if err != nil {
			return fmt.Errorf("import %q: %w", args[0], err)
		}

		w := cmd.OutOrStdout()
		if config.App.Flags.JSON {
			return printJSON(w, res)
		}

		if importDetails {
			for _, d := range res.Details {
				fmt.Fprintf(w, "%5d  %-20s  %-13s  %s\n", d.Line, d.Status, d.Category, d.URL)
			}
		}

		fmt.Fprintf(w, "imported: %d (by rules: %d)\n", res.Imported, res.CategorizedByRules)
		fmt.Fprintf(w, "duplicates: %d\n", res.Duplicates)
		fmt.Fprintf(w, "needs categorization: %d\n", res.NeedsCategorization)
		for _, e := range res.Errors {
			fmt.Fprintf(w, "error: %s\n", e)
		}

		return nil
	},
}

func init() {
	f := importCmd.Flags()
	f.StringVarP(&importRulesFile, "rules", "r", "", "YAML file with categorization rules")
	f.BoolVarP(&importDetails, "details", "d", false, "print the outcome of every row")
	f.BoolVarP(&config.App.Flags.JSON, "json", "j", false, "output in JSON format")
	Root.AddCommand(importCmd)
}
