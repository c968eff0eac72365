package models

import (
	"time"
)

// Compensation models offered on a listing.
const (
	CompBoothRent  = "booth_rent"
	CompCommission = "commission"
	CompHourly     = "hourly"
	CompHybrid     = "hybrid"
)

// ListingLocation is the address a listing is anchored to. The coordinate is
// what proximity search operates on; the text fields are display-only.
type ListingLocation struct {
	AddressLine1 string      `bson:"address_line1,omitempty" json:"address_line1,omitempty"`
	City         string      `bson:"city,omitempty" json:"city,omitempty"`
	County       string      `bson:"county,omitempty" json:"county,omitempty"`
	State        string      `bson:"state,omitempty" json:"state,omitempty"`
	PostalCode   string      `bson:"postal_code,omitempty" json:"postal_code,omitempty"`
	Country      string      `bson:"country,omitempty" json:"country,omitempty"`
	Coordinate   *Coordinate `bson:"coordinate,omitempty" json:"coordinate,omitempty"`
}

// ListingPhoto is a stored photo reference (S3 key or absolute URL).
type ListingPhoto struct {
	URL       string `bson:"url" json:"url"`
	SortOrder int    `bson:"sort_order" json:"sort_order"`
}

// Listing represents a job/booth posting.
//
// Ownership comes in two historical shapes: newer rows carry OwnerID directly,
// older rows only reference an employer profile whose user is the owner. Either
// field may be empty; resolution order is OwnerID first, then the profile.
type Listing struct {
	Base              `bson:",inline"`
	OwnerID           string          `bson:"owner_id,omitempty" json:"owner_id,omitempty"`
	EmployerProfileID string          `bson:"employer_profile_id,omitempty" json:"employer_profile_id,omitempty"`
	BusinessName      string          `bson:"business_name" json:"business_name"`
	Title             string          `bson:"title" json:"title"`
	ServiceRole       string          `bson:"service_role,omitempty" json:"service_role,omitempty"` // e.g. "barber", "tattoo_artist"
	CompModel         string          `bson:"comp_model,omitempty" json:"comp_model,omitempty"`
	PayMin            *float64        `bson:"pay_min,omitempty" json:"pay_min,omitempty"`
	PayMax            *float64        `bson:"pay_max,omitempty" json:"pay_max,omitempty"`
	PayUnit           string          `bson:"pay_unit,omitempty" json:"pay_unit,omitempty"` // e.g. "$/hr", "$/wk"
	PayVisible        bool            `bson:"pay_visible" json:"pay_visible"`
	EmploymentType    string          `bson:"employment_type,omitempty" json:"employment_type,omitempty"` // "w2", "c1099"
	Schedule          string          `bson:"schedule,omitempty" json:"schedule,omitempty"`               // "full_time", "part_time"
	ExperienceText    string          `bson:"experience_text,omitempty" json:"experience_text,omitempty"`
	ShiftDays         [7]bool         `bson:"shift_days" json:"shift_days"`
	ApprenticeOK      bool            `bson:"apprentice_ok" json:"apprentice_ok"`
	Perks             []string        `bson:"perks,omitempty" json:"perks,omitempty"`
	Description       string          `bson:"description,omitempty" json:"description,omitempty"`
	Photos            []ListingPhoto  `bson:"photos,omitempty" json:"photos,omitempty"`
	Location          ListingLocation `bson:"location" json:"location"`
	UpdatedAt         time.Time       `bson:"updated_at" json:"updated_at"`
	CreatedAt         time.Time       `bson:"created_at" json:"created_at"`
	Deleted           bool            `bson:"deleted" json:"-"` // Soft delete flag
}
