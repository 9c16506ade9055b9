package enrollment

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"mockabis/internal/abis/models"
	"mockabis/pkg/platform/sentinel"
)

// Error Contract:
// - Get returns ErrNotFound when no record exists for the reference id
// - Delete of a missing reference id succeeds
// - Infrastructure failures are returned wrapped with context

// InMemoryStore keeps enrollment records in a map guarded by one RWMutex.
// Writes and reads of the same id are linearizable; last writer wins.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.EnrollmentRecord
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]*models.EnrollmentRecord),
	}
}

func (s *InMemoryStore) Insert(_ context.Context, record *models.EnrollmentRecord) error {
	cp := cloneRecord(record)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ReferenceID] = cp
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, referenceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, referenceID)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, referenceID string) (*models.EnrollmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[referenceID]
	if !ok {
		return nil, fmt.Errorf("enrollment %s: %w", referenceID, sentinel.ErrNotFound)
	}
	return cloneRecord(record), nil
}

// GetMany returns the records that exist for the given ids; missing ids are skipped.
func (s *InMemoryStore) GetMany(_ context.Context, referenceIDs []string) ([]*models.EnrollmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.EnrollmentRecord, 0, len(referenceIDs))
	for _, id := range referenceIDs {
		if record, ok := s.records[id]; ok {
			out = append(out, cloneRecord(record))
		}
	}
	return out, nil
}

func (s *InMemoryStore) ReferenceIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// cloneRecord copies the record and its segments so callers never share
// backing arrays with the map.
func cloneRecord(record *models.EnrollmentRecord) *models.EnrollmentRecord {
	cp := *record
	cp.Biometrics = append([]models.BiometricSegment(nil), record.Biometrics...)
	return &cp
}
