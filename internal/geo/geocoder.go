package geo

import "context"

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geocoder resolves free-text addresses to coordinates.
//
// A nil *Coordinates with a nil error means the address could not be
// resolved. Callers must treat that as "distance unknown", not as a
// failure of their own operation.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Coordinates, error)
}
