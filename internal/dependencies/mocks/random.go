package mocks

import (
	"github.com/mcoot/charsheet-go/internal/dependencies/random"
	"github.com/mcoot/charsheet-go/internal/model"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	// IDResults is a queue of identifiers to return from NewID
	IDResults []string
	idIndex   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// NewID returns the next queued identifier, or a generated one if none remaining
func (r *MockRandom) NewID() model.ID {
	if r.idIndex >= len(r.IDResults) {
		return model.GenerateID()
	}
	id, err := model.NewID(r.IDResults[r.idIndex])
	r.idIndex++
	if err != nil {
		panic("mocks: queued blank id")
	}
	return id
}

// QueueID adds values to the NewID result queue
func (r *MockRandom) QueueID(values ...string) {
	r.IDResults = append(r.IDResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.IDResults = nil
	r.idIndex = 0
}
