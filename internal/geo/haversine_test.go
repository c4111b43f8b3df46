package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	montauban := Coordinates{Latitude: 44.0221, Longitude: 1.3529}
	toulouse := Coordinates{Latitude: 43.6047, Longitude: 1.4442}

	d := DistanceKm(montauban, toulouse)
	// Great-circle Montauban -> Toulouse is about 47 km.
	assert.InDelta(t, 47.0, d, 1.5)
}

func TestDistanceKm_ZeroForSamePoint(t *testing.T) {
	p := Coordinates{Latitude: 43.9833, Longitude: 1.2667}
	assert.Equal(t, 0.0, DistanceKm(p, p))
}

func TestDistanceKm_Symmetric(t *testing.T) {
	a := Coordinates{Latitude: 48.8566, Longitude: 2.3522}
	b := Coordinates{Latitude: 43.2965, Longitude: 5.3698}
	assert.InDelta(t, DistanceKm(a, b), DistanceKm(b, a), 1e-9)
}

func TestDistanceKm_Reproducible(t *testing.T) {
	a := Coordinates{Latitude: 43.9833, Longitude: 1.2667}
	b := Coordinates{Latitude: 44.0221, Longitude: 1.3529}
	assert.Equal(t, DistanceKm(a, b), DistanceKm(a, b))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 15.35, Round2(15.345))
	assert.Equal(t, 15.34, Round2(15.344))
	assert.Equal(t, 0.0, Round2(0.004))
	assert.Equal(t, 10.0, Round2(10))
}
