package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewIDHookFunc defines the signature for the NewID test hook.
// It returns an ID and a boolean indicating whether to override the default generation.
type NewIDHookFunc func() (id string, override bool)

// NewIDHook is a package-level variable that tests can set to override NewID behavior.
var NewIDHook NewIDHookFunc

// NewID returns a new random document ID. IDs are stored as plain strings in
// Mongo so they survive round-trips through JSON, URLs and thread keys.
func NewID() string {
	if NewIDHook != nil {
		if id, override := NewIDHook(); override {
			return id
		}
	}
	return uuid.NewString()
}

// ValidID reports whether s looks like an ID produced by NewID.
func ValidID(s string) bool {
	if s == "" {
		return false
	}
	_, err := uuid.Parse(strings.TrimSpace(s))
	return err == nil
}
