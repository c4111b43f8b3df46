package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominatimGeocoder_Geocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "12 rue des Lilas, 82000 Montauban, France", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"44.0221","lon":"1.3529"}]`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoderWithOptions("test-agent", srv.URL, srv.Client())
	coords, err := g.Geocode(context.Background(), "12 rue des Lilas, 82000 Montauban, France")
	require.NoError(t, err)
	require.NotNil(t, coords)
	assert.Equal(t, 44.0221, coords.Latitude)
	assert.Equal(t, 1.3529, coords.Longitude)
}

func TestNominatimGeocoder_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoderWithOptions("test-agent", srv.URL, srv.Client())
	coords, err := g.Geocode(context.Background(), "nowhere at all")

	// An unknown address is not an error.
	require.NoError(t, err)
	assert.Nil(t, coords)
}

func TestNominatimGeocoder_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewNominatimGeocoderWithOptions("test-agent", srv.URL, srv.Client())
	_, err := g.Geocode(context.Background(), "12 rue des Lilas")
	assert.Error(t, err)
}

func TestNominatimGeocoder_EmptyAddress(t *testing.T) {
	g := NewNominatimGeocoder("test-agent")
	_, err := g.Geocode(context.Background(), "   ")
	assert.Error(t, err)
}

func TestNominatimGeocoder_MalformedCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"not-a-number","lon":"1.35"}]`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoderWithOptions("test-agent", srv.URL, srv.Client())
	_, err := g.Geocode(context.Background(), "12 rue des Lilas")
	assert.Error(t, err)
}
