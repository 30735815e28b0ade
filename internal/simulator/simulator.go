package simulator

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/output"
	log "github.com/sirupsen/logrus"
)

// Simulator owns the route catalog and vehicle registry and drives the tick
// loop on a single background worker. External callers interact through
// Start, Stop and Status, which are safe for concurrent use.
type Simulator struct {
	cfg        *models.Config
	sink       output.Sink
	catalog    *RouteCatalog
	registry   *VehicleRegistry
	kinematics *Kinematics
	population *PopulationController
	modulator  *CongestionModulator
	log        *log.Entry
	now        func() time.Time

	// spawnRate is only touched by the tick worker.
	spawnRate float64

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New builds a simulator, generates the route catalog and persists it. A
// failure to persist the catalog is fatal, unlike steady-state sink errors.
func New(ctx context.Context, cfg *models.Config, sink output.Sink) (*Simulator, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	routes := models.GenerateRoutes(cfg.RouteCount, rng)
	if err := sink.InsertRoutes(ctx, routes); err != nil {
		return nil, fmt.Errorf("error initializing routes: %w", err)
	}

	logger := log.WithField("component", "simulator")
	logger.WithField("routes", len(routes)).Info("initialized route catalog")

	return &Simulator{
		cfg:        cfg,
		sink:       sink,
		catalog:    NewRouteCatalog(routes),
		registry:   NewVehicleRegistry(),
		kinematics: NewKinematics(cfg, rng),
		population: NewPopulationController(cfg, rng),
		modulator:  NewCongestionModulator(cfg, rng),
		log:        logger,
		now:        time.Now,
		spawnRate:  cfg.SpawnRate,
	}, nil
}

// Start launches the tick worker. Starting an already-running simulator is a
// logged no-op.
func (s *Simulator) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.log.Warn("simulation is already running")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	s.log.WithField("interval", s.cfg.TickInterval).Info("starting traffic simulation")
	go s.run(s.stopCh, s.doneCh)
}

// Stop signals the worker and waits up to the configured timeout for it to
// exit. The join is best effort; an expired timeout is logged, not fatal.
func (s *Simulator) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()

	s.log.Info("stopping traffic simulation")
	select {
	case <-done:
	case <-time.After(s.cfg.StopTimeout):
		s.log.Warn("timed out waiting for simulation worker to exit")
	}
}

// Status returns a snapshot of the engine for external consumers.
func (s *Simulator) Status() models.SimulationStatus {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	return models.SimulationStatus{
		Running:        running,
		ActiveVehicles: s.registry.Len(),
		Routes:         s.catalog.Len(),
		VehicleTypes:   s.registry.TypeCounts(),
	}
}

// Catalog exposes the immutable route catalog.
func (s *Simulator) Catalog() *RouteCatalog {
	return s.catalog
}

func (s *Simulator) run(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	ctx := context.Background()
	for {
		select {
		case <-stopCh:
			s.log.Info("traffic simulation stopped")
			return
		case <-ticker.C:
			s.step(ctx)
		}
	}
}

// step executes one tick: advance and persist every vehicle, then spawn and
// despawn, then modulate congestion. A sink failure for one vehicle is logged
// and the tick continues.
func (s *Simulator) step(ctx context.Context) {
	now := s.now()

	for _, v := range s.registry.Vehicles() {
		route, ok := s.catalog.Get(v.RouteID)
		if !ok {
			// Orphaned vehicles are handled by Despawn below.
			continue
		}
		s.kinematics.Advance(v, route, now)

		if err := s.sink.UpsertVehicle(ctx, v); err != nil {
			s.log.WithError(err).WithField("vehicle", v.ID).Error("error persisting vehicle")
		}
		if err := s.sink.AppendTrafficSample(ctx, output.SampleFromVehicle(v)); err != nil {
			s.log.WithError(err).WithField("vehicle", v.ID).Error("error persisting traffic sample")
		}
	}

	s.population.Spawn(s.registry, s.catalog, s.spawnRate, now)
	s.population.Despawn(s.registry, s.catalog)
	s.spawnRate = s.modulator.Apply(s.registry, now)

	s.log.WithField("active_vehicles", s.registry.Len()).Debug("simulation step completed")
}
