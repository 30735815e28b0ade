package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer(t *testing.T) (*Analyzer, *output.MemorySink) {
	t.Helper()
	sink := output.NewMemorySink()
	require.NoError(t, sink.InsertRoutes(context.Background(), []models.Route{
		{ID: "route_01", Start: models.Point{X: 0, Y: 0}, End: models.Point{X: 1000, Y: 0}, Name: "Main Street", SpeedLimit: 60},
	}))
	return NewAnalyzer(models.DefaultConfig(), sink), sink
}

// addSamples appends count samples at the given position and speed, each from
// a distinct vehicle, timestamped now.
func addSamples(t *testing.T, sink *output.MemorySink, routeID string, pos models.Point, speed float64, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		require.NoError(t, sink.AppendTrafficSample(context.Background(), models.TrafficSample{
			VehicleID: fmt.Sprintf("%s_v%d", routeID, 1000+i),
			RouteID:   routeID,
			Speed:     speed,
			Position:  pos,
			Timestamp: time.Now(),
		}))
	}
}

func TestClassifyCongestionPrecedence(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t)

	tests := []struct {
		name     string
		avgSpeed float64
		count    int
		want     models.CongestionLevel
	}{
		{"slow and dense is high", 25, 12, models.CongestionHigh},
		{"moderate is medium", 45, 8, models.CongestionMedium},
		{"fast but present is low", 60, 5, models.CongestionLow},
		{"too few vehicles is none", 60, 4, models.CongestionNone},
		{"slow but sparse falls through to low", 25, 5, models.CongestionLow},
		{"high beats low when both match", 10, 15, models.CongestionHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, analyzer.classifyCongestion(tt.avgSpeed, tt.count))
		})
	}
}

func TestDetectCongestionPoints(t *testing.T) {
	analyzer, sink := newTestAnalyzer(t)

	// Twelve slow vehicles clustered in one cell.
	addSamples(t, sink, "route_01", models.Point{X: 120, Y: 40}, 20, 12)

	points, err := analyzer.DetectCongestionPoints(context.Background(), time.Hour)
	require.NoError(t, err)
	require.Len(t, points, 1)

	point := points[0]
	assert.Equal(t, models.CongestionHigh, point.Level)
	assert.Equal(t, 12, point.VehicleCount)
	assert.InDelta(t, 20, point.AverageSpeed, 1e-9)
	assert.Equal(t, "route_01", point.RouteID)

	// Detected points are persisted through the sink.
	stored, err := sink.RecentCongestion(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestDetectCongestionCellCenterIsMidpoint(t *testing.T) {
	analyzer, sink := newTestAnalyzer(t)

	// All samples share one position, so the bounding box collapses to that
	// point and the single cell spans [x, x+100) x [y, y+100).
	pos := models.Point{X: 250, Y: 330}
	addSamples(t, sink, "route_01", pos, 20, 10)

	points, err := analyzer.DetectCongestionPoints(context.Background(), time.Hour)
	require.NoError(t, err)
	require.Len(t, points, 1)

	assert.InDelta(t, pos.X+50, points[0].Location.X, 1e-9)
	assert.InDelta(t, pos.Y+50, points[0].Location.Y, 1e-9)
}

func TestDetectCongestionSkipsSparseRoutes(t *testing.T) {
	analyzer, sink := newTestAnalyzer(t)
	addSamples(t, sink, "route_01", models.Point{X: 100, Y: 100}, 10, 4)

	points, err := analyzer.DetectCongestionPoints(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestDetectCongestionNoData(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t)

	points, err := analyzer.DetectCongestionPoints(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestDetectCongestionSeparateCells(t *testing.T) {
	analyzer, sink := newTestAnalyzer(t)

	// Two clusters more than a cell apart produce two independent points.
	addSamples(t, sink, "route_01", models.Point{X: 0, Y: 0}, 20, 12)
	for i := 0; i < 8; i++ {
		require.NoError(t, sink.AppendTrafficSample(context.Background(), models.TrafficSample{
			VehicleID: fmt.Sprintf("route_01_v%d", 2000+i),
			RouteID:   "route_01",
			Speed:     45,
			Position:  models.Point{X: 450, Y: 0},
			Timestamp: time.Now(),
		}))
	}

	points, err := analyzer.DetectCongestionPoints(context.Background(), time.Hour)
	require.NoError(t, err)
	require.Len(t, points, 2)

	levels := map[models.CongestionLevel]bool{}
	for _, p := range points {
		levels[p.Level] = true
	}
	assert.True(t, levels[models.CongestionHigh])
	assert.True(t, levels[models.CongestionMedium])
}
