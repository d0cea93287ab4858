// Package geo resolves locations to coordinates and ranks issues by distance.
package geo

import "context"

// Point is a geographic coordinate pair in decimal degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Gateway resolves network addresses and postal location codes to coordinates.
// Implementations signal upstream failures with errs.ErrGateway.
type Gateway interface {
	// ResolveNetworkAddress maps an IP address to coordinates.
	ResolveNetworkAddress(ctx context.Context, addr string) (Point, error)
	// ResolveLocationCode maps a postal/area code to coordinates.
	ResolveLocationCode(ctx context.Context, code string) (Point, error)
}
