package simulator

import (
	"math/rand"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
)

// CongestionModulator applies the time-of-day policy: during rush-hour
// windows the spawn rate rises and a fraction of vehicles have their speed
// suppressed by the congestion multiplier.
type CongestionModulator struct {
	cfg *models.Config
	rng *rand.Rand
}

func NewCongestionModulator(cfg *models.Config, rng *rand.Rand) *CongestionModulator {
	return &CongestionModulator{cfg: cfg, rng: rng}
}

func (m *CongestionModulator) IsRushHour(t time.Time) bool {
	hour := t.Hour()
	for _, window := range m.cfg.RushWindows {
		if window.Contains(hour) {
			return true
		}
	}
	return false
}

// Apply perturbs active vehicle speeds for this tick and returns the spawn
// rate the next tick should use.
func (m *CongestionModulator) Apply(registry *VehicleRegistry, now time.Time) float64 {
	spawnRate := m.cfg.SpawnRate
	multiplier := 1.0
	if m.IsRushHour(now) {
		spawnRate = m.cfg.RushHourSpawnRate
		multiplier = m.cfg.CongestionMultiplier
	}

	for _, v := range registry.Vehicles() {
		if m.rng.Float64() >= m.cfg.CongestionProbability {
			continue
		}
		v.CurrentSpeed *= multiplier
		if v.CurrentSpeed < m.cfg.MinSpeed {
			v.CurrentSpeed = m.cfg.MinSpeed
		}
	}
	return spawnRate
}
