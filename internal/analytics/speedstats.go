package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/montanaflynn/stats"
)

// SpeedDistribution summarises observed speeds overall, per vehicle category
// and per route. With no samples in the window it returns an empty
// distribution, not an error.
func (a *Analyzer) SpeedDistribution(ctx context.Context, window time.Duration) (models.SpeedDistribution, error) {
	dist := models.SpeedDistribution{
		ByType:  make(map[models.VehicleType]models.GroupSpeedStats),
		ByRoute: make(map[string]models.GroupSpeedStats),
	}

	samples, err := a.sink.RecentTraffic(ctx, window)
	if err != nil {
		return dist, fmt.Errorf("failed to fetch recent traffic: %w", err)
	}
	if len(samples) == 0 {
		return dist, nil
	}

	speeds := make([]float64, len(samples))
	for i, s := range samples {
		speeds[i] = s.Speed
	}
	dist.Overall.Mean, _ = stats.Mean(speeds)
	dist.Overall.Median, _ = stats.Median(speeds)
	dist.Overall.Std, _ = stats.StdDevP(speeds)
	dist.Overall.Min, _ = stats.Min(speeds)
	dist.Overall.Max, _ = stats.Max(speeds)

	byType := make(map[models.VehicleType][]float64)
	for _, s := range samples {
		byType[s.VehicleType] = append(byType[s.VehicleType], s.Speed)
	}
	for vehicleType, typeSpeeds := range byType {
		mean, _ := stats.Mean(typeSpeeds)
		dist.ByType[vehicleType] = models.GroupSpeedStats{Mean: mean, Count: len(typeSpeeds)}
	}

	for routeID, routeSamples := range groupByRoute(samples) {
		routeSpeeds := make([]float64, len(routeSamples))
		for i, s := range routeSamples {
			routeSpeeds[i] = s.Speed
		}
		mean, _ := stats.Mean(routeSpeeds)
		dist.ByRoute[routeID] = models.GroupSpeedStats{
			Mean:  mean,
			Count: len(routeSamples),
			Name:  routeSamples[0].RouteName,
		}
	}

	return dist, nil
}

// HourlySummary aggregates traffic flow per hour of day: average speed, speed
// spread, record count and distinct vehicles.
func (a *Analyzer) HourlySummary(ctx context.Context, window time.Duration) ([]models.HourlyTrafficSummary, error) {
	samples, err := a.sink.RecentTraffic(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent traffic: %w", err)
	}
	if len(samples) == 0 {
		return []models.HourlyTrafficSummary{}, nil
	}

	type hourBucket struct {
		speeds   []float64
		vehicles map[string]struct{}
	}
	buckets := make(map[int]*hourBucket)
	for _, s := range samples {
		hour := s.Timestamp.Hour()
		bucket, ok := buckets[hour]
		if !ok {
			bucket = &hourBucket{vehicles: make(map[string]struct{})}
			buckets[hour] = bucket
		}
		bucket.speeds = append(bucket.speeds, s.Speed)
		bucket.vehicles[s.VehicleID] = struct{}{}
	}

	summaries := make([]models.HourlyTrafficSummary, 0, len(buckets))
	for hour, bucket := range buckets {
		mean, _ := stats.Mean(bucket.speeds)
		std, _ := stats.StdDevP(bucket.speeds)
		summaries = append(summaries, models.HourlyTrafficSummary{
			Hour:           hour,
			AvgSpeed:       mean,
			SpeedStd:       std,
			TotalRecords:   len(bucket.speeds),
			UniqueVehicles: len(bucket.vehicles),
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Hour < summaries[j].Hour })
	return summaries, nil
}
