package models

import (
	"time"
)

// Inquiry is a single, deduplicated contact request from a sender to a
// listing's owner. At most one inquiry exists per (sender_id, listing_id);
// repeat submissions update the contact fields of the existing row.
type Inquiry struct {
	Base      `bson:",inline"`
	SenderID  string    `bson:"sender_id" json:"sender_id"`
	ListingID string    `bson:"listing_id" json:"listing_id"`
	OwnerID   string    `bson:"owner_id" json:"owner_id"` // resolved at submission time
	Name      string    `bson:"name,omitempty" json:"name,omitempty"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Note      string    `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
	Notified  bool      `bson:"notified" json:"notified"` // false until the owner email task runs
}

// ContactFields is the mutable payload of an inquiry.
type ContactFields struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Note  string `json:"note,omitempty"`
}
