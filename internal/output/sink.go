package output

import (
	"context"
	"fmt"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
)

// Sink is the persistence collaborator consumed by the engine and the
// analytics components. Every call may fail; failures are returned to the
// caller, never raised as a panic.
type Sink interface {
	// InsertRoutes bulk-inserts the route catalog, ignoring duplicates.
	InsertRoutes(ctx context.Context, routes []models.Route) error
	// UpsertVehicle writes the latest state of a vehicle, idempotent per ID.
	UpsertVehicle(ctx context.Context, vehicle *models.Vehicle) error
	// AppendTrafficSample records one append-only time-series observation.
	AppendTrafficSample(ctx context.Context, sample models.TrafficSample) error
	// InsertCongestionPoint records one detected congestion point.
	InsertCongestionPoint(ctx context.Context, point models.CongestionPoint) error
	// RecentTraffic returns samples newer than now-since, joined with route
	// metadata, newest first.
	RecentTraffic(ctx context.Context, since time.Duration) ([]models.TrafficSample, error)
	// RecentCongestion returns congestion points newer than now-since, joined
	// with route metadata, newest first.
	RecentCongestion(ctx context.Context, since time.Duration) ([]models.CongestionPoint, error)
	// RouteStatistics returns per-route aggregate speed stats over the window.
	RouteStatistics(ctx context.Context, window time.Duration) ([]models.RouteStats, error)
	// PurgeOlderThan deletes traffic and congestion rows older than now-age
	// and returns the number of rows removed.
	PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error)
	Close() error
}

// SampleFromVehicle derives the traffic sample persisted alongside a vehicle
// state update.
func SampleFromVehicle(v *models.Vehicle) models.TrafficSample {
	return models.TrafficSample{
		VehicleID:   v.ID,
		VehicleType: v.Type,
		RouteID:     v.RouteID,
		Speed:       v.CurrentSpeed,
		Position:    v.Position,
		Timestamp:   v.LastUpdate,
	}
}

// NewSink builds the sink selected by cfg.Output, optionally wrapped with the
// Kafka sample publisher.
func NewSink(ctx context.Context, cfg *models.Config) (Sink, error) {
	var (
		sink Sink
		err  error
	)
	switch cfg.Output {
	case "postgres":
		sink, err = NewPostgresSink(ctx, &cfg.Database)
	case "sqlite":
		sink, err = NewSQLiteSink(cfg.SQLitePath)
	case "memory":
		sink = NewMemorySink()
	default:
		return nil, fmt.Errorf("unknown output destination %q", cfg.Output)
	}
	if err != nil {
		return nil, err
	}

	if cfg.KafkaEnabled {
		sink, err = NewKafkaPublisher(sink, cfg)
		if err != nil {
			return nil, err
		}
	}
	return sink, nil
}
