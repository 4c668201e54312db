package ports

import (
	"context"

	"github.com/aretw0/journey/pkg/domain"
)

// JourneyReader provides read access to validated journeys.
type JourneyReader interface {
	// Load retrieves a journey by ID.
	// Returns domain.ErrJourneyNotFound if the journey does not exist.
	Load(ctx context.Context, id string) (*domain.Journey, error)

	// List returns the IDs of all stored journeys.
	List(ctx context.Context) ([]string, error)
}

// JourneyStore persists journeys. Implementations must not share memory with
// their callers: a loaded journey can be mutated without affecting the store.
type JourneyStore interface {
	JourneyReader

	// Save creates or replaces the journey stored under j.ID.
	Save(ctx context.Context, j *domain.Journey) error

	// Delete removes a journey.
	// Returns domain.ErrJourneyNotFound if the journey does not exist.
	Delete(ctx context.Context, id string) error
}
