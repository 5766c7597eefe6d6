package random

import (
	"github.com/mcoot/charsheet-go/internal/model"
)

// Random provides identifier generation that can be mocked for testing
type Random interface {
	// NewID returns a fresh identifier
	NewID() model.ID
}

// UUIDRandom implements Random with random UUIDs
type UUIDRandom struct{}

// New creates a new UUIDRandom
func New() *UUIDRandom {
	return &UUIDRandom{}
}

// NewID returns a fresh random identifier
func (r *UUIDRandom) NewID() model.ID {
	return model.GenerateID()
}
