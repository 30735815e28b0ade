package factories

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
)

// vehicleProfile describes how a vehicle category is drawn: its share of the
// overall population and the range its maximum speed is sampled from.
type vehicleProfile struct {
	vehicleType models.VehicleType
	weight      float64
	minMaxSpeed float64
	maxMaxSpeed float64
}

// Ordered so that weighted selection is deterministic for a fixed seed.
var vehicleProfiles = []vehicleProfile{
	{models.VehicleTypeCar, 0.70, 80, 120},
	{models.VehicleTypeTruck, 0.15, 60, 90},
	{models.VehicleTypeBus, 0.10, 50, 80},
	{models.VehicleTypeMotorcycle, 0.05, 90, 140},
}

type VehicleFactory struct {
	rng *rand.Rand
}

func NewVehicleFactory(rng *rand.Rand) *VehicleFactory {
	return &VehicleFactory{rng: rng}
}

// NewVehicle creates a vehicle at the start of the given route with a
// weighted-random category and a speed sampled below its maximum.
func (f *VehicleFactory) NewVehicle(route models.Route, now time.Time) *models.Vehicle {
	profile := f.pickProfile()
	maxSpeed := profile.minMaxSpeed + f.rng.Float64()*(profile.maxMaxSpeed-profile.minMaxSpeed)

	return &models.Vehicle{
		ID:           fmt.Sprintf("%s_v%d", route.ID, 1000+f.rng.Intn(9000)),
		Type:         profile.vehicleType,
		CurrentSpeed: f.rng.Float64() * maxSpeed * 0.8,
		MaxSpeed:     maxSpeed,
		RouteID:      route.ID,
		Position:     route.Start,
		LastUpdate:   now,
	}
}

func (f *VehicleFactory) pickProfile() vehicleProfile {
	draw := f.rng.Float64()
	var cumulative float64
	for _, profile := range vehicleProfiles {
		cumulative += profile.weight
		if draw < cumulative {
			return profile
		}
	}
	return vehicleProfiles[len(vehicleProfiles)-1]
}
