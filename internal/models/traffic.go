package models

import "time"

// TrafficSample is one append-only positional observation of a vehicle.
// RouteName and SpeedLimit are populated on reads that join route metadata.
type TrafficSample struct {
	VehicleID   string      `json:"vehicle_id"`
	VehicleType VehicleType `json:"vehicle_type"`
	RouteID     string      `json:"route_id"`
	Speed       float64     `json:"speed"`
	Position    Point       `json:"position"`
	Timestamp   time.Time   `json:"timestamp"`
	RouteName   string      `json:"route_name,omitempty"`
	SpeedLimit  float64     `json:"speed_limit,omitempty"`
}

type CongestionLevel string

const (
	CongestionNone   CongestionLevel = "none"
	CongestionLow    CongestionLevel = "low"
	CongestionMedium CongestionLevel = "medium"
	CongestionHigh   CongestionLevel = "high"
)

// CongestionPoint is a derived, immutable record emitted at the centre of a
// congested grid cell.
type CongestionPoint struct {
	Location     Point           `json:"location"`
	Level        CongestionLevel `json:"congestion_level"`
	AverageSpeed float64         `json:"average_speed"`
	VehicleCount int             `json:"vehicle_count"`
	Timestamp    time.Time       `json:"timestamp"`
	RouteID      string          `json:"route_id"`
	RouteName    string          `json:"route_name,omitempty"`
}

// TravelTimeSummary aggregates estimated travel times across all vehicles
// that contributed an estimate for a route.
type TravelTimeSummary struct {
	RouteID    string  `json:"route_id"`
	RouteName  string  `json:"route_name"`
	AvgMinutes float64 `json:"avg_travel_time_minutes"`
	MinMinutes float64 `json:"min_travel_time_minutes"`
	MaxMinutes float64 `json:"max_travel_time_minutes"`
	StdMinutes float64 `json:"std_travel_time_minutes"`
	SampleSize int     `json:"sample_size"`
}

// RouteStats is the sink-side per-route speed aggregate.
type RouteStats struct {
	RouteID        string  `json:"route_id"`
	RouteName      string  `json:"route_name"`
	SpeedLimit     float64 `json:"speed_limit"`
	AvgSpeed       float64 `json:"avg_speed"`
	MinSpeed       float64 `json:"min_speed"`
	MaxSpeed       float64 `json:"max_speed"`
	DataPoints     int     `json:"data_points"`
	UniqueVehicles int     `json:"unique_vehicles"`
}

// SpeedStats describes the distribution of observed speeds.
type SpeedStats struct {
	Mean   float64 `json:"mean_speed"`
	Median float64 `json:"median_speed"`
	Std    float64 `json:"std_speed"`
	Min    float64 `json:"min_speed"`
	Max    float64 `json:"max_speed"`
}

// GroupSpeedStats is the per-category or per-route slice of a speed
// distribution.
type GroupSpeedStats struct {
	Mean  float64 `json:"mean_speed"`
	Count int     `json:"count"`
	Name  string  `json:"name,omitempty"`
}

// SpeedDistribution breaks observed speeds down overall, by vehicle category
// and by route.
type SpeedDistribution struct {
	Overall SpeedStats                      `json:"overall"`
	ByType  map[VehicleType]GroupSpeedStats `json:"by_vehicle_type"`
	ByRoute map[string]GroupSpeedStats      `json:"by_route"`
}

// HourlyTrafficSummary is the per-hour traffic flow aggregate.
type HourlyTrafficSummary struct {
	Hour           int     `json:"hour"`
	AvgSpeed       float64 `json:"avg_speed"`
	SpeedStd       float64 `json:"speed_std"`
	TotalRecords   int     `json:"total_records"`
	UniqueVehicles int     `json:"unique_vehicles"`
}

// AnalysisReport is the result of a full analytics run.
type AnalysisReport struct {
	Timestamp        time.Time              `json:"timestamp"`
	CongestionPoints []CongestionPoint      `json:"congestion_points"`
	TravelTimes      []TravelTimeSummary    `json:"travel_times"`
	SpeedStats       SpeedDistribution      `json:"speed_stats"`
	HourlySummary    []HourlyTrafficSummary `json:"hourly_summary"`
}

// SimulationStatus is the externally visible snapshot of the engine.
type SimulationStatus struct {
	Running        bool                `json:"running"`
	ActiveVehicles int                 `json:"active_vehicles"`
	Routes         int                 `json:"routes"`
	VehicleTypes   map[VehicleType]int `json:"vehicle_types"`
}
