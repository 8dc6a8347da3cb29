package vector

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hyperjump/vectorpipe/internal/models"
)

var (
	// ErrDimensionMismatch is returned when an entry's vector length differs from the store's.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrEmptyVector is returned when an entry carries no vector.
	ErrEmptyVector = errors.New("empty vector")
)

// Store is an append-only, in-memory collection of entries searched by brute-force
// cosine similarity. The dimension is fixed by the first entry added.
type Store struct {
	dimensions int
	entries    []*models.Entry
	mu         sync.RWMutex
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make([]*models.Entry, 0)}
}

// Add appends an entry. The first entry fixes the store dimension; later entries
// with a different dimension are rejected with ErrDimensionMismatch.
func (s *Store) Add(entry *models.Entry) error {
	if entry == nil || len(entry.Vector) == 0 {
		return ErrEmptyVector
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimensions == 0 {
		s.dimensions = len(entry.Vector)
	} else if len(entry.Vector) != s.dimensions {
		return fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(entry.Vector), s.dimensions)
	}
	s.entries = append(s.entries, entry)
	return nil
}

// Search ranks all entries against query. See Rank for ordering and threshold rules.
func (s *Store) Search(ctx context.Context, query []float32, k int, threshold float64) ([]models.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Rank(query, s.Entries(), threshold, k), nil
}

// Entries returns a snapshot of the stored entries in insertion order.
func (s *Store) Entries() []*models.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Size returns the number of entries in the store.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Dimensions returns the fixed vector dimension, or 0 while the store is empty.
func (s *Store) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimensions
}
