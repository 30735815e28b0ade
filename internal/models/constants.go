package models

// PositionUnitsPerKm converts between simulation position units and
// kilometres. The kinematics step multiplies kilometre displacements by this
// factor and the travel-time estimator divides positional deltas by it, so
// the two conversions stay reciprocal.
const PositionUnitsPerKm = 100.0

// CityExtent is the side length of the square coordinate space that route
// endpoints are drawn from.
const CityExtent = 1000.0
