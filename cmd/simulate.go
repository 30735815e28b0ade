package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/output"
	"github.com/chrisdamba/trafficsim/internal/simulator"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the traffic simulation until interrupted",
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

		sim.Start()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		log.WithField("signal", sig).Info("shutting down")

		sim.Stop()

		status := sim.Status()
		log.WithFields(log.Fields{
			"active_vehicles": status.ActiveVehicles,
			"routes":          status.Routes,
		}).Info("final simulation status")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
}
