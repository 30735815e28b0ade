package simulator

import (
	"sync"

	"github.com/chrisdamba/trafficsim/internal/models"
)

// VehicleRegistry is the lock-guarded collection of active vehicles. All
// mutation happens on the tick worker; status queries come in concurrently
// from other goroutines, so every accessor synchronises.
type VehicleRegistry struct {
	mu       sync.RWMutex
	vehicles map[string]*models.Vehicle
}

func NewVehicleRegistry() *VehicleRegistry {
	return &VehicleRegistry{vehicles: make(map[string]*models.Vehicle)}
}

func (r *VehicleRegistry) Add(v *models.Vehicle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vehicles[v.ID] = v
}

func (r *VehicleRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.vehicles, id)
}

func (r *VehicleRegistry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.vehicles[id]
	return ok
}

func (r *VehicleRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.vehicles)
}

func (r *VehicleRegistry) CountOnRoute(routeID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, v := range r.vehicles {
		if v.RouteID == routeID {
			count++
		}
	}
	return count
}

func (r *VehicleRegistry) TypeCounts() map[models.VehicleType]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[models.VehicleType]int, len(models.VehicleTypes))
	for _, t := range models.VehicleTypes {
		counts[t] = 0
	}
	for _, v := range r.vehicles {
		counts[v.Type]++
	}
	return counts
}

// Vehicles returns the active vehicles. The returned pointers are shared with
// the registry; only the tick worker may mutate them.
func (r *VehicleRegistry) Vehicles() []*models.Vehicle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Vehicle, 0, len(r.vehicles))
	for _, v := range r.vehicles {
		out = append(out, v)
	}
	return out
}
