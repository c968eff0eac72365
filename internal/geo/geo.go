package geo

import (
	"math"
	"sort"

	"github.com/ricoshapp/stylehub/internal/models"
)

// EarthRadiusMiles is the mean Earth radius used for great-circle math.
const EarthRadiusMiles = 3958.8

// SearchOrigin is the ephemeral center+radius of a proximity search.
// Built per request, never persisted.
type SearchOrigin struct {
	Coordinate  models.Coordinate
	RadiusMiles float64
}

// DistanceMiles computes the great-circle distance between two points using
// the haversine formula. The sqrt argument is clamped to 1 so float overshoot
// near antipodal points cannot push asin out of its domain.
func DistanceMiles(a, b models.Coordinate) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	la1 := toRad(a.Lat)
	la2 := toRad(b.Lat)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(la1)*math.Cos(la2)*sinLng*sinLng

	return 2 * EarthRadiusMiles * math.Asin(math.Min(1, math.Sqrt(h)))
}

// FilterByProximity returns the subset of candidates whose coordinate lies
// within origin.RadiusMiles of the origin (boundary inclusive), ordered by
// ascending distance. Candidates without a valid coordinate are excluded.
// Ties keep the caller-supplied order (stable sort).
//
// A nil origin makes the filter a passthrough: the input slice is returned
// unchanged, preserving whatever ordering (typically recency) the caller built.
func FilterByProximity(origin *SearchOrigin, candidates []models.Listing) []models.Listing {
	if origin == nil {
		return candidates
	}

	type scored struct {
		listing  models.Listing
		distance float64
	}

	within := make([]scored, 0, len(candidates))
	for _, l := range candidates {
		c := l.Location.Coordinate
		if c == nil || !c.Valid() {
			continue
		}
		d := DistanceMiles(origin.Coordinate, *c)
		if d <= origin.RadiusMiles {
			within = append(within, scored{listing: l, distance: d})
		}
	}

	sort.SliceStable(within, func(i, j int) bool {
		return within[i].distance < within[j].distance
	})

	result := make([]models.Listing, len(within))
	for i, s := range within {
		result[i] = s.listing
	}
	return result
}
