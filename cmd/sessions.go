package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mateconpizza/tabkeep/internal/config"
	"github.com/mateconpizza/tabkeep/internal/vault"
)

var (
	sessionsLimit int
	sessionsAt    int64
)

var sessionsCmd = &cobra.Command{
	Use:               "sessions",
	Short:             "List the most recent close sessions",
	Args:              cobra.NoArgs,
	PersistentPreRunE: RequireDatabase,
	RunE: func(cmd *cobra.Command, _ []string) error {
		v, err := openVault(cmd.Context())
		if err != nil {
			return err
		}
		defer v.Close()

		w := cmd.OutOrStdout()
		if sessionsAt > 0 {
			us, err := v.TabsClosedAt(cmd.Context(), sessionsAt)
			if err != nil {
				return err
			}

			if config.App.Flags.JSON {
				return printJSON(w, us)
			}

			saved := make([]*vault.SavedURL, 0, len(us))
			for _, u := range us {
				saved = append(saved, &vault.SavedURL{URL: u, LastCloseTime: sessionsAt})
			}

			return printURLs(w, saved)
		}

		ss, err := v.RecentSessions(cmd.Context(), sessionsLimit)
		if err != nil {
			return err
		}

		if config.App.Flags.JSON {
			return printJSON(w, ss)
		}

		if len(ss) == 0 {
			fmt.Fprintln(w, "no sessions")
			return nil
		}

		return printSessions(w, ss)
	},
}

func init() {
	f := sessionsCmd.Flags()
	f.IntVarP(&sessionsLimit, "limit", "l", 10, "number of sessions")
	f.Int64Var(&sessionsAt, "at", 0, "list the urls closed at this close time (unix ms)")
	f.BoolVarP(&config.App.Flags.JSON, "json", "j", false, "output in JSON format")
	Root.AddCommand(sessionsCmd)
}
