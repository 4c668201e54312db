package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/journey/pkg/domain"
)

// Store implements ports.JourneyStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Journey
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store, optionally seeded with journeys.
func NewStore(seed ...*domain.Journey) *Store {
	s := &Store{
		data: make(map[string]*domain.Journey, len(seed)),
	}
	for _, j := range seed {
		s.data[j.ID] = j.Clone()
	}
	return s
}

// Save persists the journey in memory.
func (s *Store) Save(ctx context.Context, j *domain.Journey) error {
	if j == nil || j.ID == "" {
		return domain.NewUsageError("save", "journey id must not be empty")
	}

	// Deep copy to ensure isolation, similar to serialization
	copied := j.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[j.ID] = copied
	return nil
}

// Load retrieves the journey from memory.
func (s *Store) Load(ctx context.Context, id string) (*domain.Journey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.data[id]
	if !ok {
		return nil, domain.ErrJourneyNotFound
	}

	// Copy on read so the caller can't mutate the store through the pointer
	return j.Clone(), nil
}

// Delete removes the journey.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[id]; !ok {
		return domain.ErrJourneyNotFound
	}
	delete(s.data, id)
	return nil
}

// List returns stored journey IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
