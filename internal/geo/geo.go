// Package geo provides the small amount of spherical geometry the discovery
// and notification paths need: haversine distance and radius clamping.
package geo

import "math"

const earthRadiusMeters = 6371000

// Radius bounds for nearby-event queries, in meters.
const (
	MinRadiusMeters     = 1000
	DefaultRadiusMeters = 5000
	MaxRadiusMeters     = 25000

	// NotifyRadiusMeters is how far a new event announcement travels.
	NotifyRadiusMeters = 3000
)

// Distance returns the great-circle distance in meters between two
// coordinate pairs, using the haversine formula.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// ClampRadius bounds a requested query radius to [MinRadiusMeters,
// MaxRadiusMeters]. A zero or negative radius becomes the default.
func ClampRadius(meters float64) float64 {
	if meters <= 0 {
		return DefaultRadiusMeters
	}
	if meters < MinRadiusMeters {
		return MinRadiusMeters
	}
	if meters > MaxRadiusMeters {
		return MaxRadiusMeters
	}
	return meters
}
