package models

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// RushWindow is an inclusive hour-of-day window during which rush-hour
// traffic rules apply.
type RushWindow struct {
	StartHour int `mapstructure:"start_hour"`
	EndHour   int `mapstructure:"end_hour"`
}

// Contains reports whether the hour falls inside the window.
func (w RushWindow) Contains(hour int) bool {
	return hour >= w.StartHour && hour <= w.EndHour
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type Config struct {
	Seed int64 `mapstructure:"seed"`

	// Simulation engine
	RouteCount           int           `mapstructure:"route_count"`
	TickInterval         time.Duration `mapstructure:"tick_interval"`
	VirtualTimeDelta     float64       `mapstructure:"virtual_time_delta_hours"`
	MaxVehiclesPerRoute  int           `mapstructure:"max_vehicles_per_route"`
	SpawnRate            float64       `mapstructure:"spawn_rate"`
	RushHourSpawnRate    float64       `mapstructure:"rush_hour_spawn_rate"`
	DespawnRate          float64       `mapstructure:"despawn_rate"`
	SpeedVariationFactor float64       `mapstructure:"speed_variation_factor"`
	ArrivalThreshold     float64       `mapstructure:"arrival_threshold"`
	MinSpeed             float64       `mapstructure:"min_speed"`
	StopTimeout          time.Duration `mapstructure:"stop_timeout"`

	// Congestion modulation
	CongestionProbability float64      `mapstructure:"congestion_probability"`
	CongestionMultiplier  float64      `mapstructure:"congestion_multiplier"`
	RushWindows           []RushWindow `mapstructure:"rush_windows"`

	// Analytics
	MinVehiclesForCongestion int           `mapstructure:"min_vehicles_for_congestion"`
	CongestionCellSize       float64       `mapstructure:"congestion_area_radius"`
	HighCongestionSpeed      float64       `mapstructure:"high_congestion_speed_threshold"`
	MediumCongestionSpeed    float64       `mapstructure:"medium_congestion_speed_threshold"`
	HighCongestionCount      int           `mapstructure:"high_congestion_vehicle_count"`
	MediumCongestionCount    int           `mapstructure:"medium_congestion_vehicle_count"`
	CongestionWindow         time.Duration `mapstructure:"congestion_window"`
	TravelTimeWindow         time.Duration `mapstructure:"travel_time_window"`
	MinTravelDistanceKm      float64       `mapstructure:"min_travel_distance_km"`
	RetentionDays            int           `mapstructure:"retention_days"`

	// Output
	Output          string         `mapstructure:"output"`
	SQLitePath      string         `mapstructure:"sqlite_path"`
	Database        DatabaseConfig `mapstructure:"database"`
	KafkaEnabled    bool           `mapstructure:"kafka_enabled"`
	KafkaBrokerList string         `mapstructure:"kafka_broker_list"`
	KafkaTopic      string         `mapstructure:"kafka_topic"`
}

// DefaultConfig returns the configuration used when no file or flags override
// it. Tests construct their fixtures from this.
func DefaultConfig() *Config {
	return &Config{
		Seed:                     0,
		RouteCount:               10,
		TickInterval:             5 * time.Second,
		VirtualTimeDelta:         0.1,
		MaxVehiclesPerRoute:      20,
		SpawnRate:                0.3,
		RushHourSpawnRate:        0.5,
		DespawnRate:              0.1,
		SpeedVariationFactor:     0.2,
		ArrivalThreshold:         50,
		MinSpeed:                 5,
		StopTimeout:              10 * time.Second,
		CongestionProbability:    0.3,
		CongestionMultiplier:     0.6,
		RushWindows:              []RushWindow{{StartHour: 7, EndHour: 9}, {StartHour: 17, EndHour: 19}},
		MinVehiclesForCongestion: 5,
		CongestionCellSize:       100,
		HighCongestionSpeed:      30,
		MediumCongestionSpeed:    50,
		HighCongestionCount:      10,
		MediumCongestionCount:    7,
		CongestionWindow:         1 * time.Hour,
		TravelTimeWindow:         24 * time.Hour,
		MinTravelDistanceKm:      0.1,
		RetentionDays:            7,
		Output:                   "postgres",
		SQLitePath:               "trafficsim.db",
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			DBName:  "traffic_db",
			SSLMode: "disable",
		},
		KafkaBrokerList: "localhost:9092",
		KafkaTopic:      "traffic_samples",
	}
}

// LoadConfig initialises and reads the configuration using Viper. Flag and
// environment values override file values; file values override defaults.
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("examples")
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing default config file is fine; an explicit one must exist.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := DefaultConfig()
	decoderConfigOption := viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			dc.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := viper.Unmarshal(config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	if len(config.RushWindows) == 0 {
		config.RushWindows = DefaultConfig().RushWindows
	}

	return config, nil
}
