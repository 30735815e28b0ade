package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/chrisdamba/trafficsim/internal/analytics"
	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/output"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var purgeOlderThan time.Duration

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run congestion detection and travel-time estimation over stored samples",
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

		if purgeOlderThan > 0 {
			removed, err := sink.PurgeOlderThan(ctx, purgeOlderThan)
			if err != nil {
				return fmt.Errorf("error purging old data: %w", err)
			}
			log.WithField("rows", removed).Info("purged old records")
		}

		analyzer := analytics.NewAnalyzer(cfg, sink)
		report, err := analyzer.RunFullAnalysis(ctx)
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	},
}

func init() {
	analyzeCmd.Flags().DurationVar(&purgeOlderThan, "purge-older-than", 0, "Delete samples and congestion points older than this before analysing")
	rootCmd.AddCommand(analyzeCmd)
}
