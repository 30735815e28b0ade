package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/montanaflynn/stats"
)

// EstimateTravelTimes reconstructs per-vehicle traveled distance from recent
// samples and aggregates estimated travel times per route. Routes without a
// contributing vehicle are omitted; no data at all yields an empty slice.
func (a *Analyzer) EstimateTravelTimes(ctx context.Context, window time.Duration) ([]models.TravelTimeSummary, error) {
	samples, err := a.sink.RecentTraffic(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent traffic: %w", err)
	}
	if len(samples) == 0 {
		a.log.Warn("no traffic data available for travel time analysis")
		return []models.TravelTimeSummary{}, nil
	}

	var summaries []models.TravelTimeSummary
	for routeID, routeSamples := range groupByRoute(samples) {
		routeName := routeSamples[0].RouteName

		var travelTimes []float64
		for _, vehicleSamples := range groupByVehicle(routeSamples) {
			if minutes, ok := a.estimateVehicleTravelTime(vehicleSamples); ok {
				travelTimes = append(travelTimes, minutes)
			}
		}
		if len(travelTimes) == 0 {
			continue
		}

		mean, _ := stats.Mean(travelTimes)
		min, _ := stats.Min(travelTimes)
		max, _ := stats.Max(travelTimes)
		std, _ := stats.StdDevP(travelTimes)
		summaries = append(summaries, models.TravelTimeSummary{
			RouteID:    routeID,
			RouteName:  routeName,
			AvgMinutes: mean,
			MinMinutes: min,
			MaxMinutes: max,
			StdMinutes: std,
			SampleSize: len(travelTimes),
		})
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].RouteID < summaries[j].RouteID })
	return summaries, nil
}

// estimateVehicleTravelTime needs at least two samples and a strictly
// positive mean speed. Distance is the sum of consecutive Euclidean deltas
// converted to kilometres, floored to avoid division artifacts for
// near-stationary vehicles.
func (a *Analyzer) estimateVehicleTravelTime(vehicleSamples []models.TrafficSample) (float64, bool) {
	if len(vehicleSamples) < 2 {
		return 0, false
	}
	sort.Slice(vehicleSamples, func(i, j int) bool {
		return vehicleSamples[i].Timestamp.Before(vehicleSamples[j].Timestamp)
	})

	speeds := make([]float64, len(vehicleSamples))
	for i, s := range vehicleSamples {
		speeds[i] = s.Speed
	}
	meanSpeed, _ := stats.Mean(speeds)
	if meanSpeed <= 0 {
		return 0, false
	}

	var distanceKm float64
	for i := 1; i < len(vehicleSamples); i++ {
		distanceKm += vehicleSamples[i-1].Position.DistanceTo(vehicleSamples[i].Position) / models.PositionUnitsPerKm
	}
	if distanceKm < a.cfg.MinTravelDistanceKm {
		distanceKm = a.cfg.MinTravelDistanceKm
	}

	return distanceKm / meanSpeed * 60, true
}

func groupByVehicle(samples []models.TrafficSample) map[string][]models.TrafficSample {
	grouped := make(map[string][]models.TrafficSample)
	for _, s := range samples {
		grouped[s.VehicleID] = append(grouped[s.VehicleID], s)
	}
	return grouped
}
