package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mateconpizza/tabkeep/internal/config"
	"github.com/mateconpizza/tabkeep/internal/sys/files"
)

var configInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the loaded configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.App
		w := cmd.OutOrStdout()

		if configInit {
			p := cfg.Path.ConfigFile
			if files.Exists(p) && !cfg.Flags.Force {
				return fmt.Errorf("%w: %q", files.ErrFileExists, p)
			}

			if err := files.MkdirAll(cfg.Path.Data); err != nil {
				return err
			}

			if err := config.Write(p, config.Defaults()); err != nil {
				return err
			}
			fmt.Fprintln(w, p)

			return nil
		}

		if config.App.Flags.JSON {
			return printJSON(w, cfg)
		}

		fmt.Fprintf(w, "# %s\n", cfg.Path.ConfigFile)

		return yaml.NewEncoder(w).Encode(cfg.File)
	},
}

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "write the default configuration file")
	configCmd.Flags().BoolVarP(&config.App.Flags.JSON, "json", "j", false, "output in JSON format")
	Root.AddCommand(configCmd)
}
