package output

import (
	"context"
	"testing"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMemorySink(t *testing.T) *MemorySink {
	t.Helper()
	sink := NewMemorySink()
	require.NoError(t, sink.InsertRoutes(context.Background(), []models.Route{
		{ID: "route_01", Name: "Main Street", SpeedLimit: 60},
	}))
	return sink
}

func TestMemorySinkInsertRoutesIgnoresDuplicates(t *testing.T) {
	sink := seedMemorySink(t)
	require.NoError(t, sink.InsertRoutes(context.Background(), []models.Route{
		{ID: "route_01", Name: "Renamed"},
	}))

	samples := []models.TrafficSample{{
		VehicleID: "route_01_v1000",
		RouteID:   "route_01",
		Speed:     50,
		Timestamp: time.Now(),
	}}
	for _, s := range samples {
		require.NoError(t, sink.AppendTrafficSample(context.Background(), s))
	}

	fetched, err := sink.RecentTraffic(context.Background(), time.Hour)
	require.NoError(t, err)
	require.Len(t, fetched, 1)
	assert.Equal(t, "Main Street", fetched[0].RouteName)
	assert.InDelta(t, 60, fetched[0].SpeedLimit, 1e-9)
}

func TestMemorySinkUpsertVehicleIsIdempotent(t *testing.T) {
	sink := seedMemorySink(t)
	v := &models.Vehicle{ID: "route_01_v1000", RouteID: "route_01", CurrentSpeed: 40, MaxSpeed: 100}
	require.NoError(t, sink.UpsertVehicle(context.Background(), v))
	v.CurrentSpeed = 55
	require.NoError(t, sink.UpsertVehicle(context.Background(), v))

	assert.Equal(t, 1, sink.VehicleCount())
}

func TestMemorySinkWindowFiltering(t *testing.T) {
	sink := seedMemorySink(t)
	require.NoError(t, sink.AppendTrafficSample(context.Background(), models.TrafficSample{
		VehicleID: "route_01_v1000", RouteID: "route_01", Speed: 50,
		Timestamp: time.Now().Add(-2 * time.Hour),
	}))
	require.NoError(t, sink.AppendTrafficSample(context.Background(), models.TrafficSample{
		VehicleID: "route_01_v1001", RouteID: "route_01", Speed: 60,
		Timestamp: time.Now(),
	}))

	recent, err := sink.RecentTraffic(context.Background(), time.Hour)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "route_01_v1001", recent[0].VehicleID)
}

func TestMemorySinkPurgeOlderThan(t *testing.T) {
	sink := seedMemorySink(t)
	require.NoError(t, sink.AppendTrafficSample(context.Background(), models.TrafficSample{
		VehicleID: "route_01_v1000", RouteID: "route_01", Speed: 50,
		Timestamp: time.Now().Add(-48 * time.Hour),
	}))
	require.NoError(t, sink.InsertCongestionPoint(context.Background(), models.CongestionPoint{
		RouteID: "route_01", Level: models.CongestionLow,
		Timestamp: time.Now().Add(-48 * time.Hour),
	}))
	require.NoError(t, sink.AppendTrafficSample(context.Background(), models.TrafficSample{
		VehicleID: "route_01_v1001", RouteID: "route_01", Speed: 60,
		Timestamp: time.Now(),
	}))

	removed, err := sink.PurgeOlderThan(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
	assert.Equal(t, 1, sink.SampleCount())
}

func TestMemorySinkRouteStatistics(t *testing.T) {
	sink := seedMemorySink(t)
	for i, speed := range []float64{30, 50, 70} {
		require.NoError(t, sink.AppendTrafficSample(context.Background(), models.TrafficSample{
			VehicleID: "route_01_v1000", RouteID: "route_01", Speed: speed,
			Position:  models.Point{X: float64(i), Y: 0},
			Timestamp: time.Now(),
		}))
	}

	stats, err := sink.RouteStatistics(context.Background(), time.Hour)
	require.NoError(t, err)
	require.Len(t, stats, 1)

	rs := stats[0]
	assert.Equal(t, "route_01", rs.RouteID)
	assert.InDelta(t, 50, rs.AvgSpeed, 1e-9)
	assert.InDelta(t, 30, rs.MinSpeed, 1e-9)
	assert.InDelta(t, 70, rs.MaxSpeed, 1e-9)
	assert.Equal(t, 3, rs.DataPoints)
	assert.Equal(t, 1, rs.UniqueVehicles)
}
