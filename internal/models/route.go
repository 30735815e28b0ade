package models

import (
	"fmt"
	"math/rand"
)

// Route is a fixed straight-line segment between two points. Routes are
// immutable after creation and owned by the engine for the process lifetime.
type Route struct {
	ID         string  `json:"route_id"`
	Start      Point   `json:"start_point"`
	End        Point   `json:"end_point"`
	DistanceKm float64 `json:"distance_km"`
	Name       string  `json:"route_name"`
	SpeedLimit float64 `json:"speed_limit"`
}

var routeNames = []string{
	"Main Street", "Highway 1", "Broadway", "Park Avenue", "Industrial Road",
	"City Center", "Suburban Loop", "Airport Highway", "University Drive", "Shopping District",
}

var routeSpeedLimits = []float64{50, 60, 80, 100}

// GenerateRoutes builds the route catalog from the fixed name list. At most
// len(routeNames) routes are produced; endpoints are drawn from the city
// coordinate space using the supplied random source.
func GenerateRoutes(n int, rng *rand.Rand) []Route {
	if n > len(routeNames) {
		n = len(routeNames)
	}
	routes := make([]Route, 0, n)
	for i := 0; i < n; i++ {
		start := Point{X: rng.Float64() * CityExtent, Y: rng.Float64() * CityExtent}
		end := Point{X: rng.Float64() * CityExtent, Y: rng.Float64() * CityExtent}
		routes = append(routes, Route{
			ID:         fmt.Sprintf("route_%02d", i+1),
			Start:      start,
			End:        end,
			DistanceKm: start.DistanceTo(end) / PositionUnitsPerKm,
			Name:       routeNames[i],
			SpeedLimit: routeSpeedLimits[rng.Intn(len(routeSpeedLimits))],
		})
	}
	return routes
}
