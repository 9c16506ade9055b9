package expectation

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"mockabis/internal/abis/models"
	"mockabis/pkg/platform/sentinel"
)

// InMemoryStore holds configured expectations keyed by biometric hash or reference id.
type InMemoryStore struct {
	mu           sync.RWMutex
	expectations map[string]models.Expectation
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		expectations: make(map[string]models.Expectation),
	}
}

func (s *InMemoryStore) Save(_ context.Context, exp models.Expectation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expectations[exp.ID] = exp
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*models.Expectation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exp, ok := s.expectations[id]
	if !ok {
		return nil, fmt.Errorf("expectation %s: %w", id, sentinel.ErrNotFound)
	}
	return &exp, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]models.Expectation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Expectation, 0, len(s.expectations))
	for _, exp := range s.expectations {
		out = append(out, exp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.expectations, id)
	return nil
}

func (s *InMemoryStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expectations = make(map[string]models.Expectation)
	return nil
}
