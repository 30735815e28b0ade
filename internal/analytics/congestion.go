package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/montanaflynn/stats"
)

// DetectCongestionPoints pulls recent samples, tiles each route's bounding
// rectangle into square cells and classifies every sufficiently populated
// cell. Detected points are persisted through the sink; a storage failure
// for one point is logged and does not abort detection.
func (a *Analyzer) DetectCongestionPoints(ctx context.Context, window time.Duration) ([]models.CongestionPoint, error) {
	samples, err := a.sink.RecentTraffic(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent traffic: %w", err)
	}
	if len(samples) == 0 {
		a.log.Warn("no traffic data available for congestion analysis")
		return []models.CongestionPoint{}, nil
	}

	var points []models.CongestionPoint
	for _, routeSamples := range groupByRoute(samples) {
		if len(routeSamples) < a.cfg.MinVehiclesForCongestion {
			continue
		}
		points = append(points, a.analyzeRouteCongestion(routeSamples)...)
	}

	for _, point := range points {
		if err := a.sink.InsertCongestionPoint(ctx, point); err != nil {
			a.log.WithError(err).Error("error storing congestion point")
		}
	}

	a.log.WithField("points", len(points)).Info("congestion detection completed")
	return points, nil
}

// analyzeRouteCongestion grids one route's samples. Cells are squares of side
// cfg.CongestionCellSize aligned to the minimum corner of the bounding box.
func (a *Analyzer) analyzeRouteCongestion(routeSamples []models.TrafficSample) []models.CongestionPoint {
	routeID := routeSamples[0].RouteID
	cellSize := a.cfg.CongestionCellSize

	xMin, yMin := routeSamples[0].Position.X, routeSamples[0].Position.Y
	xMax, yMax := xMin, yMin
	for _, s := range routeSamples[1:] {
		if s.Position.X < xMin {
			xMin = s.Position.X
		}
		if s.Position.X > xMax {
			xMax = s.Position.X
		}
		if s.Position.Y < yMin {
			yMin = s.Position.Y
		}
		if s.Position.Y > yMax {
			yMax = s.Position.Y
		}
	}

	type cellKey struct{ ix, iy int }
	cells := make(map[cellKey][]float64)
	for _, s := range routeSamples {
		key := cellKey{
			ix: int((s.Position.X - xMin) / cellSize),
			iy: int((s.Position.Y - yMin) / cellSize),
		}
		cells[key] = append(cells[key], s.Speed)
	}

	now := timeNow()
	var points []models.CongestionPoint
	for key, speeds := range cells {
		if len(speeds) < a.cfg.MinVehiclesForCongestion {
			continue
		}
		avgSpeed, _ := stats.Mean(speeds)
		level := a.classifyCongestion(avgSpeed, len(speeds))
		if level == models.CongestionNone {
			continue
		}
		points = append(points, models.CongestionPoint{
			Location: models.Point{
				X: xMin + (float64(key.ix)+0.5)*cellSize,
				Y: yMin + (float64(key.iy)+0.5)*cellSize,
			},
			Level:        level,
			AverageSpeed: avgSpeed,
			VehicleCount: len(speeds),
			Timestamp:    now,
			RouteID:      routeID,
		})
	}
	return points
}

// classifyCongestion evaluates the level checks in precedence order: a cell
// that satisfies both the high and low conditions reports high.
func (a *Analyzer) classifyCongestion(avgSpeed float64, vehicleCount int) models.CongestionLevel {
	switch {
	case avgSpeed <= a.cfg.HighCongestionSpeed && vehicleCount >= a.cfg.HighCongestionCount:
		return models.CongestionHigh
	case avgSpeed <= a.cfg.MediumCongestionSpeed && vehicleCount >= a.cfg.MediumCongestionCount:
		return models.CongestionMedium
	case vehicleCount >= a.cfg.MinVehiclesForCongestion:
		return models.CongestionLow
	default:
		return models.CongestionNone
	}
}
