// Package cmd implements the tk command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mateconpizza/tabkeep/internal/config"
)

// Root is the tk command.
var Root = &cobra.Command{
	Use:           config.App.Cmd,
	Short:         config.App.Info.Title,
	Long:          config.App.Info.Desc,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Usage()
	},
}

// Execute runs the root command.
func Execute() {
	if err := Root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", config.App.Cmd, err)
		os.Exit(1)
	}
}

func initRootFlags(c *cobra.Command) {
	cfg := config.App
	f := c.PersistentFlags()
	f.StringVarP(&cfg.DBName, "name", "n", config.MainDBName, "database name")
	f.CountVarP(&cfg.Flags.Verbose, "verbose", "v", "verbosity level, repeat for more")
	f.BoolVar(&cfg.Flags.Force, "force", false, "force action | don't ask confirmation")
	c.CompletionOptions.HiddenDefaultCmd = true
}
