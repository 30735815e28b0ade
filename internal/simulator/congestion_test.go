package simulator

import (
	"math/rand"
	"testing"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/stretchr/testify/assert"
)

func localTime(hour int) time.Time {
	return time.Date(2024, 3, 12, hour, 30, 0, 0, time.Local)
}

func TestIsRushHour(t *testing.T) {
	m := NewCongestionModulator(models.DefaultConfig(), rand.New(rand.NewSource(1)))

	assert.True(t, m.IsRushHour(localTime(7)))
	assert.True(t, m.IsRushHour(localTime(9)))
	assert.True(t, m.IsRushHour(localTime(17)))
	assert.True(t, m.IsRushHour(localTime(19)))
	assert.False(t, m.IsRushHour(localTime(6)))
	assert.False(t, m.IsRushHour(localTime(12)))
	assert.False(t, m.IsRushHour(localTime(22)))
}

func TestApplyDuringRushHour(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.CongestionProbability = 1 // every vehicle is affected
	m := NewCongestionModulator(cfg, rand.New(rand.NewSource(2)))
	registry := NewVehicleRegistry()

	v := testVehicle("route_01", 100, 120)
	registry.Add(v)

	spawnRate := m.Apply(registry, localTime(8))

	assert.Equal(t, cfg.RushHourSpawnRate, spawnRate)
	assert.InDelta(t, 60, v.CurrentSpeed, 1e-9)
}

func TestApplyFloorsAtMinimumSpeed(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.CongestionProbability = 1
	m := NewCongestionModulator(cfg, rand.New(rand.NewSource(3)))
	registry := NewVehicleRegistry()

	v := testVehicle("route_01", 6, 120)
	registry.Add(v)

	m.Apply(registry, localTime(18))
	assert.Equal(t, cfg.MinSpeed, v.CurrentSpeed)
}

func TestApplyOutsideRushHour(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.CongestionProbability = 1
	m := NewCongestionModulator(cfg, rand.New(rand.NewSource(4)))
	registry := NewVehicleRegistry()

	v := testVehicle("route_01", 80, 120)
	registry.Add(v)

	spawnRate := m.Apply(registry, localTime(13))

	assert.Equal(t, cfg.SpawnRate, spawnRate)
	// Multiplier is 1.0 outside rush hour, so the speed is untouched.
	assert.InDelta(t, 80, v.CurrentSpeed, 1e-9)
}

func TestApplyProbabilityZeroTouchesNothing(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.CongestionProbability = 0
	m := NewCongestionModulator(cfg, rand.New(rand.NewSource(5)))
	registry := NewVehicleRegistry()

	v := testVehicle("route_01", 100, 120)
	registry.Add(v)

	m.Apply(registry, localTime(8))
	assert.InDelta(t, 100, v.CurrentSpeed, 1e-9)
}
