package simulator

import (
	"context"
	"time"

	"github.com/chrisdamba/trafficsim/internal/output"
	log "github.com/sirupsen/logrus"
)

// GenerateBatchData backfills historical traffic samples for testing and
// dashboard bootstrap: numVehicles vehicles, each contributing 5-20 samples
// interpolated along a random route at timestamps spread over the window.
// Insert failures are logged per sample; progress is reported per vehicle.
func (s *Simulator) GenerateBatchData(ctx context.Context, numVehicles int, window time.Duration, progress func(int)) {
	s.log.WithFields(log.Fields{
		"vehicles": numVehicles,
		"window":   window,
	}).Info("generating batch data")

	routes := s.catalog.Routes()
	if len(routes) == 0 {
		return
	}
	rng := s.population.rng
	start := s.now().Add(-window)

	for i := 0; i < numVehicles; i++ {
		route := routes[rng.Intn(len(routes))]
		vehicle := s.population.factory.NewVehicle(route, start)

		numPoints := 5 + rng.Intn(16)
		for j := 0; j < numPoints; j++ {
			progressAlongRoute := float64(j) / float64(numPoints)
			vehicle.Position.X = route.Start.X + (route.End.X-route.Start.X)*progressAlongRoute
			vehicle.Position.Y = route.Start.Y + (route.End.Y-route.Start.Y)*progressAlongRoute
			vehicle.CurrentSpeed = vehicle.MaxSpeed * (0.3 + rng.Float64()*0.7)
			if vehicle.CurrentSpeed < s.cfg.MinSpeed {
				vehicle.CurrentSpeed = s.cfg.MinSpeed
			}
			vehicle.LastUpdate = start.Add(time.Duration(rng.Float64() * float64(window)))

			if err := s.sink.AppendTrafficSample(ctx, output.SampleFromVehicle(vehicle)); err != nil {
				s.log.WithError(err).Error("error inserting batch data")
			}
		}
		if progress != nil {
			progress(i + 1)
		}
	}

	s.log.Info("batch data generation completed")
}
