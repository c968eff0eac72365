package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ricoshapp/stylehub/internal/config"
	"github.com/ricoshapp/stylehub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		NominatimBaseURL: baseURL,
		GeocodeUserAgent: "StyleHub/0.1 (test)",
		GeocodeTimeout:   2 * time.Second,
		GeoViewboxLeft:   -117.60,
		GeoViewboxTop:    33.50,
		GeoViewboxRight:  -116.08,
		GeoViewboxBottom: 32.50,
		GeoRegionHint:    "San Diego County, CA",
		GeoUmbrellaCity:  "San Diego",
	}
}

func TestForward_AppendsRegionHintAndViewbox(t *testing.T) {
	var gotQuery, gotViewbox, gotBounded string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotViewbox = r.URL.Query().Get("viewbox")
		gotBounded = r.URL.Query().Get("bounded")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"32.8328","lon":"-117.2713","address":{"city":"San Diego","suburb":"La Jolla","state":"California","postcode":"92037","country_code":"us"}}]`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(testConfig(srv.URL))
	rec, err := g.Forward(context.Background(), "7863 Girard Ave")
	require.NoError(t, err)

	assert.Equal(t, "7863 Girard Ave, San Diego County, CA", gotQuery)
	assert.Equal(t, "-117.6,33.5,-116.08,32.5", gotViewbox)
	assert.Equal(t, "1", gotBounded)

	require.NotNil(t, rec.Coordinate)
	assert.InDelta(t, 32.8328, rec.Coordinate.Lat, 1e-6)
	assert.InDelta(t, -117.2713, rec.Coordinate.Lng, 1e-6)
	// Umbrella city replaced by the finer suburb name.
	assert.Equal(t, "La Jolla", rec.City)
	assert.Equal(t, "US", rec.Country)
}

func TestForward_SkipsHintWhenQueryMentionsRegion(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`[{"lat":"32.7157","lon":"-117.1611","address":{"city":"San Diego","state":"California","country_code":"us"}}]`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(testConfig(srv.URL))
	_, err := g.Forward(context.Background(), "civic center san diego")
	require.NoError(t, err)
	assert.Equal(t, "civic center san diego", gotQuery)
}

func TestForward_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(testConfig(srv.URL))
	rec, err := g.Forward(context.Background(), "xyzzy nowhere")
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestForward_ProviderDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(testConfig(srv.URL))
	_, err := g.Forward(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrUnavailable)

	// Unreachable host surfaces the same way.
	srv.Close()
	_, err = g.Forward(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestForward_EmptyQuery(t *testing.T) {
	g := NewNominatimGeocoder(testConfig("http://127.0.0.1:1"))
	_, err := g.Forward(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReverse_NormalizesAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		w.Write([]byte(`{"lat":"32.7157","lon":"-117.1611","address":{"house_number":"1200","road":"Third Ave","city":"San Diego","county":"San Diego County","state":"California","postcode":"92101","country_code":"us"}}`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(testConfig(srv.URL))
	rec, err := g.Reverse(context.Background(), models.Coordinate{Lat: 32.7157, Lng: -117.1611})
	require.NoError(t, err)

	assert.Equal(t, "1200 Third Ave", rec.AddressLine1)
	// No suburb present, umbrella city name stands.
	assert.Equal(t, "San Diego", rec.City)
	assert.Equal(t, "San Diego County", rec.County)
	assert.Equal(t, "California", rec.State)
	assert.Equal(t, "92101", rec.PostalCode)
	require.NotNil(t, rec.Coordinate)
	assert.Equal(t, 32.7157, rec.Coordinate.Lat)
}

func TestReverse_PrefersNeighborhoodOverUmbrellaCity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"lat":"32.7994","lon":"-117.2446","address":{"city":"San Diego","neighbourhood":"Pacific Beach","state":"California","country_code":"us"}}`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(testConfig(srv.URL))
	rec, err := g.Reverse(context.Background(), models.Coordinate{Lat: 32.7994, Lng: -117.2446})
	require.NoError(t, err)
	assert.Equal(t, "Pacific Beach", rec.City)
}

func TestReverse_KeepsDistinctMunicipality(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"lat":"33.1959","lon":"-117.3795","address":{"city":"Oceanside","suburb":"Downtown","state":"California","country_code":"us"}}`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(testConfig(srv.URL))
	rec, err := g.Reverse(context.Background(), models.Coordinate{Lat: 33.1959, Lng: -117.3795})
	require.NoError(t, err)
	// Oceanside is not the umbrella city, so the suburb must not override it.
	assert.Equal(t, "Oceanside", rec.City)
}

func TestReverse_InvalidCoordinate(t *testing.T) {
	g := NewNominatimGeocoder(testConfig("http://127.0.0.1:1"))
	_, err := g.Reverse(context.Background(), models.Coordinate{Lat: 123, Lng: 0})
	assert.ErrorIs(t, err, ErrNotFound)
}
