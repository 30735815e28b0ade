package models

import "time"

type VehicleType string

const (
	VehicleTypeCar        VehicleType = "car"
	VehicleTypeTruck      VehicleType = "truck"
	VehicleTypeBus        VehicleType = "bus"
	VehicleTypeMotorcycle VehicleType = "motorcycle"
)

// VehicleTypes lists every known category in a fixed order.
var VehicleTypes = []VehicleType{
	VehicleTypeCar,
	VehicleTypeTruck,
	VehicleTypeBus,
	VehicleTypeMotorcycle,
}

// Vehicle is a currently simulated vehicle. Its identifier is unique among
// active vehicles; once the vehicle is removed the identifier may be reused.
// The invariant 0 <= CurrentSpeed <= MaxSpeed holds at all times.
type Vehicle struct {
	ID           string      `json:"vehicle_id"`
	Type         VehicleType `json:"vehicle_type"`
	CurrentSpeed float64     `json:"current_speed"`
	MaxSpeed     float64     `json:"max_speed"`
	RouteID      string      `json:"route_id"`
	Position     Point       `json:"position"`
	LastUpdate   time.Time   `json:"last_update"`
}
