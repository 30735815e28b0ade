package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/output"
	log "github.com/sirupsen/logrus"
)

// timeNow is stubbed in tests that need deterministic detection timestamps.
var timeNow = time.Now

// Analyzer runs batch analytics over historical traffic samples. It is
// stateless and read-only apart from persisting derived congestion points,
// so its methods may run concurrently with the simulation and each other.
type Analyzer struct {
	cfg  *models.Config
	sink output.Sink
	log  *log.Entry
}

func NewAnalyzer(cfg *models.Config, sink output.Sink) *Analyzer {
	return &Analyzer{
		cfg:  cfg,
		sink: sink,
		log:  log.WithField("component", "analytics"),
	}
}

// RunFullAnalysis executes every analytic over its configured window and
// bundles the results into one report.
func (a *Analyzer) RunFullAnalysis(ctx context.Context) (*models.AnalysisReport, error) {
	a.log.Info("running full traffic analysis")

	points, err := a.DetectCongestionPoints(ctx, a.cfg.CongestionWindow)
	if err != nil {
		return nil, fmt.Errorf("error detecting congestion points: %w", err)
	}
	travelTimes, err := a.EstimateTravelTimes(ctx, a.cfg.TravelTimeWindow)
	if err != nil {
		return nil, fmt.Errorf("error calculating travel times: %w", err)
	}
	speedStats, err := a.SpeedDistribution(ctx, a.cfg.TravelTimeWindow)
	if err != nil {
		return nil, fmt.Errorf("error calculating speed distribution: %w", err)
	}
	hourly, err := a.HourlySummary(ctx, a.cfg.TravelTimeWindow)
	if err != nil {
		return nil, fmt.Errorf("error generating hourly summary: %w", err)
	}

	a.log.Info("full traffic analysis completed")
	return &models.AnalysisReport{
		Timestamp:        timeNow(),
		CongestionPoints: points,
		TravelTimes:      travelTimes,
		SpeedStats:       speedStats,
		HourlySummary:    hourly,
	}, nil
}

// groupByRoute partitions samples by their route identifier.
func groupByRoute(samples []models.TrafficSample) map[string][]models.TrafficSample {
	grouped := make(map[string][]models.TrafficSample)
	for _, s := range samples {
		grouped[s.RouteID] = append(grouped[s.RouteID], s)
	}
	return grouped
}
