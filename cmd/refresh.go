package cmd

import (
	"fmt"

	"github.com/mateconpizza/rotato"
	"github.com/spf13/cobra"

	"github.com/mateconpizza/tabkeep/internal/record"
	"github.com/mateconpizza/tabkeep/internal/scraper"
	"github.com/mateconpizza/tabkeep/internal/sys/terminal"
)

var refreshWorkers int

// refreshCmd fills in the titles and favicons the browser did not report.
var refreshCmd = &cobra.Command{
	Use:               "refresh [ID|URL...]",
	Short:             "Fetch missing titles and favicons",
	PersistentPreRunE: RequireDatabase,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		v, err := openVault(ctx)
		if err != nil {
			return err
		}
		defer v.Close()

		var us []*record.URL
		if len(args) > 0 {
			for _, a := range args {
				u, err := lookup(cmd, v, a)
				if err != nil {
					return err
				}
				us = append(us, u)
			}
		} else {
			all, err := v.AllURLs()
			if err != nil {
				return err
			}

			for _, u := range all {
				if u.Title == "" || u.Favicon == "" {
					us = append(us, u)
				}
			}
		}

		if len(us) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "nothing to refresh")
			return nil
		}

		urls := make([]string, 0, len(us))
		for _, u := range us {
			urls = append(urls, u.URL)
		}

		var sp *rotato.Rotato
		if !terminal.IsPiped() {
			sp = rotato.New(
				rotato.WithMesg(fmt.Sprintf("fetching %d pages...", len(urls))),
				rotato.WithMesgColor(rotato.ColorBrightGreen),
				rotato.WithSpinnerColor(rotato.ColorGray),
			)
			sp.Start()
		}

		res := scraper.New(scraper.WithWorkers(refreshWorkers)).FetchAll(ctx, urls)
		if sp != nil {
			sp.Done()
		}

		var updated, failed int
		for i, r := range res {
			if r.Err != nil {
				failed++
				continue
			}

			u := us[i]
			if u.Title == "" && r.Page.Title != "" {
				if _, err := v.UpdateURLTitle(ctx, u.URL, r.Page.Title); err != nil {
					return err
				}
			}

			if u.Favicon == "" && r.Page.Favicon != "" {
				if _, err := v.UpdateURLFavicon(ctx, u.URL, r.Page.Favicon); err != nil {
					return err
				}
			}
			updated++
		}

		fmt.Fprintf(cmd.OutOrStdout(), "refreshed %d, failed %d\n", updated, failed)

		return nil
	},
}

func init() {
	refreshCmd.Flags().IntVarP(&refreshWorkers, "workers", "w", 8, "concurrent fetches")
	Root.AddCommand(refreshCmd)
}
