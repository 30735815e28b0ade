package simulator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingSink rejects every write so tick-level error isolation can be
// exercised; reads delegate to an empty memory sink.
type failingSink struct {
	*output.MemorySink
}

func (f *failingSink) UpsertVehicle(context.Context, *models.Vehicle) error {
	return errors.New("sink unreachable")
}

func (f *failingSink) AppendTrafficSample(context.Context, models.TrafficSample) error {
	return errors.New("sink unreachable")
}

func testConfig() *models.Config {
	cfg := models.DefaultConfig()
	cfg.Seed = 42
	cfg.TickInterval = time.Hour // ticks driven manually in tests
	cfg.StopTimeout = time.Second
	return cfg
}

func TestNewInitialisesCatalog(t *testing.T) {
	sink := output.NewMemorySink()
	sim, err := New(context.Background(), testConfig(), sink)
	require.NoError(t, err)

	status := sim.Status()
	assert.False(t, status.Running)
	assert.Equal(t, 10, status.Routes)
	assert.Zero(t, status.ActiveVehicles)
}

func TestNewFailsWhenRoutePersistenceFails(t *testing.T) {
	sink := &routeRejectingSink{MemorySink: output.NewMemorySink()}
	_, err := New(context.Background(), testConfig(), sink)
	assert.Error(t, err)
}

type routeRejectingSink struct {
	*output.MemorySink
}

func (r *routeRejectingSink) InsertRoutes(context.Context, []models.Route) error {
	return errors.New("sink unreachable")
}

func TestStartIsIdempotent(t *testing.T) {
	sim, err := New(context.Background(), testConfig(), output.NewMemorySink())
	require.NoError(t, err)

	sim.Start()
	defer sim.Stop()
	first := sim.stopCh

	sim.Start()
	assert.True(t, first == sim.stopCh, "second Start must not replace the worker")
	assert.True(t, sim.Status().Running)
}

func TestStopClearsRunningAndJoins(t *testing.T) {
	sim, err := New(context.Background(), testConfig(), output.NewMemorySink())
	require.NoError(t, err)

	sim.Start()
	require.True(t, sim.Status().Running)

	sim.Stop()
	assert.False(t, sim.Status().Running)

	select {
	case <-sim.doneCh:
	default:
		t.Fatal("worker did not exit after Stop")
	}

	// A second Stop on an idle simulator is a no-op.
	sim.Stop()
}

func TestStepAdvancesAndPersistsVehicles(t *testing.T) {
	sink := output.NewMemorySink()
	sim, err := New(context.Background(), testConfig(), sink)
	require.NoError(t, err)

	route := sim.catalog.Routes()[0]
	v := testVehicle(route.ID, 60, 120)
	v.Position = route.Start
	sim.registry.Add(v)

	sim.step(context.Background())

	assert.NotEqual(t, route.Start, v.Position)
	assert.GreaterOrEqual(t, sink.SampleCount(), 1)
	assert.GreaterOrEqual(t, sink.VehicleCount(), 1)
}

func TestStepSurvivesPersistenceFailures(t *testing.T) {
	sink := &failingSink{MemorySink: output.NewMemorySink()}
	cfg := testConfig()
	cfg.DespawnRate = 0
	cfg.ArrivalThreshold = 0
	sim, err := New(context.Background(), cfg, sink)
	require.NoError(t, err)

	route := sim.catalog.Routes()[0]
	v := testVehicle(route.ID, 60, 120)
	v.Position = route.Start
	sim.registry.Add(v)

	// The tick must complete despite every write failing.
	sim.step(context.Background())

	assert.True(t, sim.registry.Has(v.ID))
	assert.NotEqual(t, route.Start, v.Position)
}

func TestStepEnforcesSpeedInvariant(t *testing.T) {
	sim, err := New(context.Background(), testConfig(), output.NewMemorySink())
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 50; i++ {
		sim.step(ctx)
		for _, v := range sim.registry.Vehicles() {
			assert.GreaterOrEqual(t, v.CurrentSpeed, 0.0)
			assert.LessOrEqual(t, v.CurrentSpeed, v.MaxSpeed)
		}
	}
	for _, route := range sim.catalog.Routes() {
		assert.LessOrEqual(t, sim.registry.CountOnRoute(route.ID), sim.cfg.MaxVehiclesPerRoute)
	}
}

func TestRunLoopProducesSamples(t *testing.T) {
	sink := output.NewMemorySink()
	cfg := testConfig()
	cfg.TickInterval = 5 * time.Millisecond
	sim, err := New(context.Background(), cfg, sink)
	require.NoError(t, err)

	sim.Start()
	time.Sleep(150 * time.Millisecond)
	sim.Stop()

	assert.Greater(t, sink.SampleCount(), 0)
}
