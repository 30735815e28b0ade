package models

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRoutes(t *testing.T) {
	t.Run("produces distinct identifiers", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		routes := GenerateRoutes(10, rng)
		require.Len(t, routes, 10)

		seen := make(map[string]struct{})
		for _, route := range routes {
			_, dup := seen[route.ID]
			assert.False(t, dup, "duplicate route id %s", route.ID)
			seen[route.ID] = struct{}{}
		}
	})

	t.Run("speed limits come from the fixed set", func(t *testing.T) {
		rng := rand.New(rand.NewSource(2))
		for _, route := range GenerateRoutes(10, rng) {
			assert.Contains(t, []float64{50, 60, 80, 100}, route.SpeedLimit)
		}
	})

	t.Run("distance is derived from the endpoints", func(t *testing.T) {
		rng := rand.New(rand.NewSource(3))
		for _, route := range GenerateRoutes(10, rng) {
			assert.InDelta(t, route.Start.DistanceTo(route.End)/PositionUnitsPerKm, route.DistanceKm, 1e-9)
		}
	})

	t.Run("caps at the available route names", func(t *testing.T) {
		rng := rand.New(rand.NewSource(4))
		assert.Len(t, GenerateRoutes(25, rng), 10)
	})

	t.Run("deterministic for a fixed seed", func(t *testing.T) {
		a := GenerateRoutes(10, rand.New(rand.NewSource(5)))
		b := GenerateRoutes(10, rand.New(rand.NewSource(5)))
		assert.Equal(t, a, b)
	})
}

func TestPointDistanceTo(t *testing.T) {
	assert.InDelta(t, 5.0, Point{X: 0, Y: 0}.DistanceTo(Point{X: 3, Y: 4}), 1e-9)
	assert.Zero(t, Point{X: 7, Y: 7}.DistanceTo(Point{X: 7, Y: 7}))
}

func TestRushWindowContains(t *testing.T) {
	window := RushWindow{StartHour: 7, EndHour: 9}
	assert.True(t, window.Contains(7))
	assert.True(t, window.Contains(9))
	assert.False(t, window.Contains(6))
	assert.False(t, window.Contains(10))
}
