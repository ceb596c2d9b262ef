// Package geo defines the distance lookup port consumed by the scorer and
// the route sequencer. Implementations live under infra/geo.
package geo

import "context"

// Leg is the travel cost between two locations.
type Leg struct {
	Miles   float64 `json:"miles"`
	Minutes float64 `json:"minutes"`
}

// DistanceProvider resolves the travel distance and duration between two
// locations. Locations are opaque strings (addresses or position references);
// the provider decides how to interpret them.
type DistanceProvider interface {
	Distance(ctx context.Context, from, to string) (Leg, error)
}
