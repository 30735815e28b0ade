package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/output"
	"github.com/chrisdamba/trafficsim/internal/simulator"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	seedVehicles int
	seedWindow   time.Duration
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate backdated traffic samples for testing and dashboards",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		ctx := context.Background()
		sink, err := output.NewSink(ctx, cfg)
		if err != nil {
			return fmt.Errorf("error creating sink: %w", err)
		}
		defer sink.Close()

		sim, err := simulator.New(ctx, cfg, sink)
		if err != nil {
			return err
		}

		bar := progressbar.Default(int64(seedVehicles), "seeding")
		sim.GenerateBatchData(ctx, seedVehicles, seedWindow, func(int) {
			bar.Add(1)
		})
		return bar.Finish()
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedVehicles, "vehicles", 100, "Number of vehicles to backfill")
	seedCmd.Flags().DurationVar(&seedWindow, "window", time.Hour, "How far back the generated samples reach")
	rootCmd.AddCommand(seedCmd)
}
