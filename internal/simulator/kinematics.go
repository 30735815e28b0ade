package simulator

import (
	"math/rand"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
)

// Kinematics advances a single vehicle along its route for one virtual time
// step. It is deterministic for a fixed random source.
type Kinematics struct {
	cfg *models.Config
	rng *rand.Rand
}

func NewKinematics(cfg *models.Config, rng *rand.Rand) *Kinematics {
	return &Kinematics{cfg: cfg, rng: rng}
}

// Advance moves the vehicle along the straight line from route start to end
// by current_speed x virtual_time_delta, then perturbs its speed within
// +/-(speed_variation_factor x max_speed) and clamps to [0, max_speed].
func (k *Kinematics) Advance(v *models.Vehicle, route models.Route, now time.Time) {
	distanceKm := v.CurrentSpeed * k.cfg.VirtualTimeDelta
	distanceUnits := distanceKm * models.PositionUnitsPerKm

	dx := route.End.X - route.Start.X
	dy := route.End.Y - route.Start.Y
	length := route.Start.DistanceTo(route.End)
	if length > 0 {
		v.Position.X += dx / length * distanceUnits
		v.Position.Y += dy / length * distanceUnits
	}

	variation := (k.rng.Float64()*2 - 1) * v.MaxSpeed * k.cfg.SpeedVariationFactor
	speed := v.CurrentSpeed + variation
	if speed < 0 {
		speed = 0
	}
	if speed > v.MaxSpeed {
		speed = v.MaxSpeed
	}
	v.CurrentSpeed = speed
	v.LastUpdate = now
}
