package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "trafficsim",
	Short: "Simulates vehicle traffic and derives congestion metrics",
	Long: `trafficsim is a CLI tool that simulates vehicle traffic on a fixed set of
routes, persists the generated movement data, and derives congestion and
travel-time metrics from it.`,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.json)")

	rootCmd.PersistentFlags().Int64("seed", 0, "Random seed for simulation (0 seeds from the clock)")
	rootCmd.PersistentFlags().Int("route-count", 10, "Number of routes to generate")
	rootCmd.PersistentFlags().Duration("tick-interval", 5*time.Second, "Wall-clock interval between simulation steps")
	rootCmd.PersistentFlags().Float64("spawn-rate", 0.3, "Probability of spawning a vehicle per route per tick")
	rootCmd.PersistentFlags().Float64("despawn-rate", 0.1, "Probability of a vehicle leaving the simulation per tick")
	rootCmd.PersistentFlags().Int("max-vehicles-per-route", 20, "Vehicle cap per route")
	rootCmd.PersistentFlags().String("output", "postgres", "Persistence sink: postgres, sqlite or memory")
	rootCmd.PersistentFlags().String("sqlite-path", "trafficsim.db", "Database file for the sqlite sink")
	rootCmd.PersistentFlags().Bool("kafka-enabled", false, "Mirror traffic samples to Kafka")
	rootCmd.PersistentFlags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")
	rootCmd.PersistentFlags().String("kafka-topic", "traffic_samples", "Kafka topic for traffic samples")

	viper.BindPFlag("seed", rootCmd.PersistentFlags().Lookup("seed"))
	viper.BindPFlag("route_count", rootCmd.PersistentFlags().Lookup("route-count"))
	viper.BindPFlag("tick_interval", rootCmd.PersistentFlags().Lookup("tick-interval"))
	viper.BindPFlag("spawn_rate", rootCmd.PersistentFlags().Lookup("spawn-rate"))
	viper.BindPFlag("despawn_rate", rootCmd.PersistentFlags().Lookup("despawn-rate"))
	viper.BindPFlag("max_vehicles_per_route", rootCmd.PersistentFlags().Lookup("max-vehicles-per-route"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("sqlite_path", rootCmd.PersistentFlags().Lookup("sqlite-path"))
	viper.BindPFlag("kafka_enabled", rootCmd.PersistentFlags().Lookup("kafka-enabled"))
	viper.BindPFlag("kafka_broker_list", rootCmd.PersistentFlags().Lookup("kafka-broker-list"))
	viper.BindPFlag("kafka_topic", rootCmd.PersistentFlags().Lookup("kafka-topic"))
}

func initConfig() {
	// .env is optional; it carries database credentials for local runs.
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "Loaded environment from .env")
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if os.Getenv("TRAFFICSIM_DEBUG") != "" {
		log.SetLevel(log.DebugLevel)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
