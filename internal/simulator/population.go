package simulator

import (
	"math/rand"
	"time"

	"github.com/chrisdamba/trafficsim/internal/factories"
	"github.com/chrisdamba/trafficsim/internal/models"
	log "github.com/sirupsen/logrus"
)

// PopulationController decides which vehicles enter and leave the simulation.
type PopulationController struct {
	cfg     *models.Config
	rng     *rand.Rand
	factory *factories.VehicleFactory
	log     *log.Entry
}

func NewPopulationController(cfg *models.Config, rng *rand.Rand) *PopulationController {
	return &PopulationController{
		cfg:     cfg,
		rng:     rng,
		factory: factories.NewVehicleFactory(rng),
		log:     log.WithField("component", "population"),
	}
}

// Spawn creates at most one vehicle per route per tick: only when the route
// is under its vehicle cap and a random draw passes the active spawn rate.
// A drawn identifier that collides with an active vehicle skips the spawn;
// the identifier becomes available again once its holder despawns.
func (p *PopulationController) Spawn(registry *VehicleRegistry, catalog *RouteCatalog, spawnRate float64, now time.Time) []*models.Vehicle {
	var spawned []*models.Vehicle
	for _, route := range catalog.Routes() {
		if registry.CountOnRoute(route.ID) >= p.cfg.MaxVehiclesPerRoute {
			continue
		}
		if p.rng.Float64() >= spawnRate {
			continue
		}

		vehicle := p.factory.NewVehicle(route, now)
		if registry.Has(vehicle.ID) {
			continue
		}
		registry.Add(vehicle)
		spawned = append(spawned, vehicle)
		p.log.WithFields(log.Fields{
			"vehicle": vehicle.ID,
			"type":    vehicle.Type,
			"route":   route.Name,
		}).Debug("spawned vehicle")
	}
	return spawned
}

// Despawn removes vehicles that are close to their route's end point, that
// hit the random despawn draw, or whose route no longer exists.
func (p *PopulationController) Despawn(registry *VehicleRegistry, catalog *RouteCatalog) []string {
	var toRemove []string
	for _, v := range registry.Vehicles() {
		route, ok := catalog.Get(v.RouteID)
		if !ok {
			toRemove = append(toRemove, v.ID)
			continue
		}
		if v.Position.DistanceTo(route.End) < p.cfg.ArrivalThreshold || p.rng.Float64() < p.cfg.DespawnRate {
			toRemove = append(toRemove, v.ID)
		}
	}

	for _, id := range toRemove {
		registry.Remove(id)
		p.log.WithField("vehicle", id).Debug("removed vehicle")
	}
	return toRemove
}
