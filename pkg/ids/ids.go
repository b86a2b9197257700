package ids

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator hands out identifiers for new records.
type Generator interface {
	GenerateID() string
}

// UUIDGenerator issues random v4 UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) GenerateID() string {
	return uuid.NewString()
}

// Sequence issues "<prefix>-1", "<prefix>-2", ... and is meant for tests.
type Sequence struct {
	Prefix string
	n      atomic.Int64
}

func (s *Sequence) GenerateID() string {
	return fmt.Sprintf("%s-%d", s.Prefix, s.n.Add(1))
}
