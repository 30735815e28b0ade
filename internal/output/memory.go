package output

import (
	"context"
	"sync"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
)

// MemorySink keeps everything in process memory. It backs dry runs and tests
// where no database is available.
type MemorySink struct {
	mu       sync.RWMutex
	routes   map[string]models.Route
	vehicles map[string]models.Vehicle
	samples  []models.TrafficSample
	points   []models.CongestionPoint
}

func NewMemorySink() *MemorySink {
	return &MemorySink{
		routes:   make(map[string]models.Route),
		vehicles: make(map[string]models.Vehicle),
	}
}

func (m *MemorySink) InsertRoutes(_ context.Context, routes []models.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, route := range routes {
		if _, ok := m.routes[route.ID]; ok {
			continue
		}
		m.routes[route.ID] = route
	}
	return nil
}

func (m *MemorySink) UpsertVehicle(_ context.Context, vehicle *models.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[vehicle.ID] = *vehicle
	return nil
}

func (m *MemorySink) AppendTrafficSample(_ context.Context, sample models.TrafficSample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, sample)
	return nil
}

func (m *MemorySink) InsertCongestionPoint(_ context.Context, point models.CongestionPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.points = append(m.points, point)
	return nil
}

func (m *MemorySink) RecentTraffic(_ context.Context, since time.Duration) ([]models.TrafficSample, error) {
	cutoff := time.Now().Add(-since)

	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.TrafficSample
	for _, s := range m.samples {
		if s.Timestamp.Before(cutoff) {
			continue
		}
		if route, ok := m.routes[s.RouteID]; ok {
			s.RouteName = route.Name
			s.SpeedLimit = route.SpeedLimit
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *MemorySink) RecentCongestion(_ context.Context, since time.Duration) ([]models.CongestionPoint, error) {
	cutoff := time.Now().Add(-since)

	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.CongestionPoint
	for _, p := range m.points {
		if p.Timestamp.Before(cutoff) {
			continue
		}
		if route, ok := m.routes[p.RouteID]; ok {
			p.RouteName = route.Name
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *MemorySink) RouteStatistics(_ context.Context, window time.Duration) ([]models.RouteStats, error) {
	cutoff := time.Now().Add(-window)

	m.mu.RLock()
	defer m.mu.RUnlock()
	byRoute := make(map[string]*models.RouteStats)
	seenVehicles := make(map[string]map[string]struct{})
	for _, s := range m.samples {
		if s.Timestamp.Before(cutoff) {
			continue
		}
		route, ok := m.routes[s.RouteID]
		if !ok {
			continue
		}
		rs, ok := byRoute[s.RouteID]
		if !ok {
			rs = &models.RouteStats{
				RouteID:    route.ID,
				RouteName:  route.Name,
				SpeedLimit: route.SpeedLimit,
				MinSpeed:   s.Speed,
				MaxSpeed:   s.Speed,
			}
			byRoute[s.RouteID] = rs
			seenVehicles[s.RouteID] = make(map[string]struct{})
		}
		rs.AvgSpeed += s.Speed
		if s.Speed < rs.MinSpeed {
			rs.MinSpeed = s.Speed
		}
		if s.Speed > rs.MaxSpeed {
			rs.MaxSpeed = s.Speed
		}
		rs.DataPoints++
		seenVehicles[s.RouteID][s.VehicleID] = struct{}{}
	}

	var out []models.RouteStats
	for routeID, rs := range byRoute {
		rs.AvgSpeed /= float64(rs.DataPoints)
		rs.UniqueVehicles = len(seenVehicles[routeID])
		out = append(out, *rs)
	}
	return out, nil
}

func (m *MemorySink) PurgeOlderThan(_ context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age)

	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	kept := m.samples[:0]
	for _, s := range m.samples {
		if s.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	m.samples = kept

	keptPoints := m.points[:0]
	for _, p := range m.points {
		if p.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		keptPoints = append(keptPoints, p)
	}
	m.points = keptPoints
	return removed, nil
}

func (m *MemorySink) Close() error {
	return nil
}

// VehicleCount reports how many distinct vehicles have been upserted.
func (m *MemorySink) VehicleCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vehicles)
}

// SampleCount reports how many traffic samples have been appended.
func (m *MemorySink) SampleCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.samples)
}
