package simulator

import (
	"math/rand"
	"testing"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/stretchr/testify/assert"
)

func testVehicle(routeID string, speed, max float64) *models.Vehicle {
	return &models.Vehicle{
		ID:           routeID + "_v1000",
		Type:         models.VehicleTypeCar,
		CurrentSpeed: speed,
		MaxSpeed:     max,
		RouteID:      routeID,
		Position:     models.Point{X: 0, Y: 0},
	}
}

func TestAdvanceMovesAlongRoute(t *testing.T) {
	cfg := models.DefaultConfig()
	k := NewKinematics(cfg, rand.New(rand.NewSource(1)))
	route := models.Route{ID: "route_01", Start: models.Point{X: 0, Y: 0}, End: models.Point{X: 1000, Y: 0}}

	v := testVehicle("route_01", 60, 120)
	now := time.Now()
	k.Advance(v, route, now)

	// 60 km/h for 0.1 virtual hours is 6 km, i.e. 600 position units east.
	assert.InDelta(t, 600, v.Position.X, 1e-9)
	assert.InDelta(t, 0, v.Position.Y, 1e-9)
	assert.Equal(t, now, v.LastUpdate)
}

func TestAdvanceZeroLengthRoute(t *testing.T) {
	cfg := models.DefaultConfig()
	k := NewKinematics(cfg, rand.New(rand.NewSource(2)))
	point := models.Point{X: 500, Y: 500}
	route := models.Route{ID: "route_01", Start: point, End: point}

	v := testVehicle("route_01", 60, 120)
	v.Position = point
	k.Advance(v, route, time.Now())

	assert.Equal(t, point, v.Position)
}

func TestAdvanceSpeedStaysClamped(t *testing.T) {
	cfg := models.DefaultConfig()
	k := NewKinematics(cfg, rand.New(rand.NewSource(3)))
	route := models.Route{ID: "route_01", Start: models.Point{X: 0, Y: 0}, End: models.Point{X: 0, Y: 1000}}

	v := testVehicle("route_01", 100, 100)
	for i := 0; i < 1000; i++ {
		k.Advance(v, route, time.Now())
		assert.GreaterOrEqual(t, v.CurrentSpeed, 0.0)
		assert.LessOrEqual(t, v.CurrentSpeed, v.MaxSpeed)
	}
}

func TestAdvanceDeterministicForSeed(t *testing.T) {
	cfg := models.DefaultConfig()
	route := models.Route{ID: "route_01", Start: models.Point{X: 0, Y: 0}, End: models.Point{X: 1000, Y: 1000}}
	now := time.Now()

	a := testVehicle("route_01", 50, 100)
	b := testVehicle("route_01", 50, 100)
	NewKinematics(cfg, rand.New(rand.NewSource(9))).Advance(a, route, now)
	NewKinematics(cfg, rand.New(rand.NewSource(9))).Advance(b, route, now)

	assert.Equal(t, a, b)
}
