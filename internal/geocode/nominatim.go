package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ricoshapp/stylehub/internal/config"
	"github.com/ricoshapp/stylehub/internal/models"
)

// Sentinel errors for geocoding outcomes. Callers degrade gracefully on both:
// a search without a resolvable origin falls back to an unfiltered result set.
var (
	// ErrNotFound means the provider answered but had no match for the query.
	ErrNotFound = errors.New("geocode: no match for query")
	// ErrUnavailable means the provider could not be reached or timed out.
	ErrUnavailable = errors.New("geocode: provider unavailable")
)

// IGeocoder defines the interface for forward/reverse geocoding.
type IGeocoder interface {
	Forward(ctx context.Context, query string) (*models.AddressRecord, error)
	Reverse(ctx context.Context, coord models.Coordinate) (*models.AddressRecord, error)
}

// nominatimResult is the subset of a Nominatim search/reverse response we use.
type nominatimResult struct {
	Lat     string           `json:"lat"`
	Lon     string           `json:"lon"`
	Address nominatimAddress `json:"address"`
}

// nominatimAddress tolerates the many optional subfields the provider emits.
type nominatimAddress struct {
	HouseNumber   string `json:"house_number"`
	Road          string `json:"road"`
	Neighbourhood string `json:"neighbourhood"`
	Suburb        string `json:"suburb"`
	Municipality  string `json:"municipality"`
	City          string `json:"city"`
	Town          string `json:"town"`
	Village       string `json:"village"`
	Locality      string `json:"locality"`
	Hamlet        string `json:"hamlet"`
	County        string `json:"county"`
	State         string `json:"state"`
	Postcode      string `json:"postcode"`
	CountryCode   string `json:"country_code"`
}

// nominatimGeocoder implements IGeocoder against a Nominatim instance.
type nominatimGeocoder struct {
	cfg        *config.Config
	httpClient *http.Client
}

// NewNominatimGeocoder creates a geocoder gateway bound to cfg.NominatimBaseURL.
// Every call carries cfg.GeocodeTimeout; there is no retry beyond the single attempt.
func NewNominatimGeocoder(cfg *config.Config) IGeocoder {
	return &nominatimGeocoder{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.GeocodeTimeout},
	}
}

// Forward resolves free text to an address with a coordinate.
// The query is enriched with the configured region hint (unless it already
// mentions it) and bounded to the configured viewbox so nearby places win over
// famous far-away ones.
func (g *nominatimGeocoder) Forward(ctx context.Context, query string) (*models.AddressRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNotFound
	}

	enriched := query
	if g.cfg.GeoRegionHint != "" && !mentionsRegion(query, g.cfg.GeoRegionHint) {
		enriched = query + ", " + g.cfg.GeoRegionHint
	}

	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")
	params.Set("q", enriched)
	params.Set("viewbox", fmt.Sprintf("%g,%g,%g,%g",
		g.cfg.GeoViewboxLeft, g.cfg.GeoViewboxTop, g.cfg.GeoViewboxRight, g.cfg.GeoViewboxBottom))
	params.Set("bounded", "1")

	var results []nominatimResult
	if err := g.get(ctx, "/search", params, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}

	first := results[0]
	lat, latErr := strconv.ParseFloat(first.Lat, 64)
	lng, lngErr := strconv.ParseFloat(first.Lon, 64)
	if latErr != nil || lngErr != nil {
		log.Printf("Nominatim returned unparseable coordinates for %q: lat=%q lon=%q", query, first.Lat, first.Lon)
		return nil, ErrNotFound
	}

	rec := g.normalize(first.Address)
	rec.Coordinate = &models.Coordinate{Lat: lat, Lng: lng}
	return rec, nil
}

// Reverse resolves a coordinate to the address around it.
func (g *nominatimGeocoder) Reverse(ctx context.Context, coord models.Coordinate) (*models.AddressRecord, error) {
	if !coord.Valid() {
		return nil, ErrNotFound
	}

	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coord.Lng, 'f', -1, 64))

	var result nominatimResult
	if err := g.get(ctx, "/reverse", params, &result); err != nil {
		return nil, err
	}

	rec := g.normalize(result.Address)
	rec.Coordinate = &models.Coordinate{Lat: coord.Lat, Lng: coord.Lng}
	return rec, nil
}

// get performs one HTTP round-trip and decodes the JSON body into out.
func (g *nominatimGeocoder) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := strings.TrimRight(g.cfg.NominatimBaseURL, "/") + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en-US")
	req.Header.Set("User-Agent", g.cfg.GeocodeUserAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Printf("Error calling Nominatim %s: %v", path, err)
		return ErrUnavailable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("Error reading Nominatim response body: %v", err)
		return ErrUnavailable
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("Nominatim %s returned non-OK status: %d - Body: %s", path, resp.StatusCode, string(body))
		return ErrUnavailable
	}

	if err := json.Unmarshal(body, out); err != nil {
		log.Printf("Error unmarshalling Nominatim response: %v - Body: %s", err, string(body))
		return ErrUnavailable
	}
	return nil
}

// normalize maps a raw provider address onto our canonical record.
//
// City selection prefers true municipalities. When the provider only offers the
// configured umbrella city (or nothing municipal at all) but a suburb or
// neighbourhood is present, that finer-grained name wins — "La Jolla" reads
// better than "San Diego" for local search. This is a tunable policy, keyed on
// cfg.GeoUmbrellaCity.
func (g *nominatimGeocoder) normalize(a nominatimAddress) *models.AddressRecord {
	street := strings.TrimSpace(strings.Join(nonEmpty(a.HouseNumber, a.Road), " "))

	city := firstNonEmpty(a.Municipality, a.City, a.Town, a.Village, a.Locality, a.Hamlet)
	if city == "" || city == g.cfg.GeoUmbrellaCity {
		if finer := firstNonEmpty(a.Suburb, a.Neighbourhood); finer != "" {
			city = finer
		}
	}

	return &models.AddressRecord{
		AddressLine1: street,
		City:         city,
		County:       a.County,
		State:        a.State,
		PostalCode:   a.Postcode,
		Country:      strings.ToUpper(a.CountryCode),
	}
}

// mentionsRegion reports whether the query already names the hint region,
// compared on the hint's leading token ("San Diego County, CA" -> "san diego").
func mentionsRegion(query, hint string) bool {
	lead := hint
	if i := strings.IndexAny(hint, ","); i > 0 {
		lead = hint[:i]
	}
	lead = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(lead), " County"))
	return lead != "" && strings.Contains(strings.ToLower(query), lead)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
