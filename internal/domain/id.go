package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID returns a fresh identifier in the canonical store format.
func NewID() string {
	return uuid.NewString()
}

// ValidateID checks that id is in the store's identifier format.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}
	// uuid.Parse also accepts braced and urn forms; only the 36-char form is stored.
	if _, err := uuid.Parse(id); err != nil || len(id) != 36 {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
