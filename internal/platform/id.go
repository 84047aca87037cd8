package platform

import "github.com/google/uuid"

// NewID returns a new deployment identifier.
func NewID() string {
	return uuid.New().String()
}
