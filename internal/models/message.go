package models

import (
	"strings"
	"time"
)

// Message is a single direct message. Immutable once created.
// ListingID is empty when the conversation has no listing context.
type Message struct {
	Base        `bson:",inline"`
	SenderID    string    `bson:"sender_id" json:"sender_id"`
	RecipientID string    `bson:"recipient_id" json:"recipient_id"`
	ListingID   string    `bson:"listing_id,omitempty" json:"listing_id,omitempty"`
	Body        string    `bson:"body" json:"body"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// Thread is a derived, non-persisted grouping of messages by conversation
// counterpart and optional listing context. Rebuilt on every inbox read.
type Thread struct {
	Key           string   `json:"key"`
	CounterpartID string   `json:"counterpart_id"`
	ListingID     string   `json:"listing_id,omitempty"`
	Counterpart   *User    `json:"counterpart,omitempty"`
	Listing       *Listing `json:"listing,omitempty"`
	LastMessage   Message  `json:"last_message"`
}

const threadKeyNone = "none"

// ThreadKey builds the wire form of a thread identity: "<counterpartID>__<listingID|none>".
func ThreadKey(counterpartID, listingID string) string {
	if listingID == "" {
		listingID = threadKeyNone
	}
	return counterpartID + "__" + listingID
}

// ParseThreadKey splits a thread key back into its parts. The second return is
// empty when the thread has no listing context. ok is false for malformed keys.
func ParseThreadKey(key string) (counterpartID, listingID string, ok bool) {
	parts := strings.SplitN(key, "__", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	counterpartID = parts[0]
	if parts[1] != threadKeyNone {
		listingID = parts[1]
	}
	return counterpartID, listingID, true
}
