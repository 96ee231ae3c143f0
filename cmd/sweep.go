package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mateconpizza/tabkeep/internal/config"
	"github.com/mateconpizza/tabkeep/internal/scheduler"
)

var sweepEvery string

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the retention sweep periodically until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.App.File
		interval := time.Duration(cfg.SweepInterval)
		if sweepEvery != "" {
			d, err := config.ParseDuration(sweepEvery)
			if err != nil {
				return err
			}
			interval = d
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		v, err := openVault(ctx)
		if err != nil {
			return err
		}
		defer v.Close()

		s, err := scheduler.New(v, time.Duration(cfg.Retention), interval)
		if err != nil {
			return err
		}

		if err := s.Start(ctx); err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "sweeping every %s, retention %s (ctrl-c to stop)\n", interval, cfg.Retention)
		<-ctx.Done()

		if err := s.Stop(); err != nil {
			return err
		}

		if last, runs := s.Last(); last != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "sweeps run: %d\n", runs)
			printCleanup(cmd.OutOrStdout(), last)
		}

		return nil
	},
}

func init() {
	sweepCmd.Flags().StringVar(&sweepEvery, "every", "", "interval between sweeps, defaults to the configured one")
	Root.AddCommand(sweepCmd)
}
