package models

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Valid reports whether the coordinate is inside the representable range.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// AddressRecord is a normalized address as produced by the geocoder gateway.
// It is never persisted on its own; callers copy the fields they need onto a
// listing location or a search origin.
type AddressRecord struct {
	AddressLine1 string      `json:"address_line1,omitempty"`
	City         string      `json:"city,omitempty"`
	County       string      `json:"county,omitempty"`
	State        string      `json:"state,omitempty"`
	PostalCode   string      `json:"postal_code,omitempty"`
	Country      string      `json:"country,omitempty"` // ISO 3166-1 alpha-2, uppercase
	Coordinate   *Coordinate `json:"coordinate,omitempty"`
}
