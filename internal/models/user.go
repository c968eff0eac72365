package models

import (
	"time"
)

// Role is the user-adjustable marketplace persona. It drives which side of the
// inbox a user sees by default; it is not an access-control boundary.
type Role string

const (
	RoleTalent   Role = "talent"
	RoleEmployer Role = "employer"
)

// ValidRole reports whether s names a known role.
func ValidRole(s string) bool {
	return s == string(RoleTalent) || s == string(RoleEmployer)
}

// User represents an account in the system.
type User struct {
	Base         `bson:",inline"`
	Username     string    `bson:"username" json:"username"`
	Email        string    `bson:"email,omitempty" json:"email,omitempty"`
	Name         string    `bson:"name,omitempty" json:"name,omitempty"`
	PasswordHash string    `bson:"password" json:"-"` // Store hash, not plaintext
	Role         Role      `bson:"role,omitempty" json:"role,omitempty"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	Deleted      bool      `bson:"deleted" json:"-"` // Soft delete flag
}

// EmployerProfile links a user to the shop they run. Listings may reference
// this profile instead of the user directly (older rows do).
type EmployerProfile struct {
	Base      `bson:",inline"`
	UserID    string    `bson:"user_id" json:"user_id"`
	ShopName  string    `bson:"shop_name" json:"shop_name"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// TalentProfile holds the service-provider side of an account.
type TalentProfile struct {
	Base              `bson:",inline"`
	UserID            string    `bson:"user_id" json:"user_id"`
	Roles             []string  `bson:"roles,omitempty" json:"roles,omitempty"` // e.g. "barber", "lash_tech"
	AvailabilityDays  [7]bool   `bson:"availability_days" json:"availability_days"`
	ZipCode           string    `bson:"zip_code,omitempty" json:"zip_code,omitempty"`
	TravelRadiusMiles float64   `bson:"travel_radius_miles,omitempty" json:"travel_radius_miles,omitempty"`
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
}
