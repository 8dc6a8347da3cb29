package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperjump/vectorpipe/internal/models"
)

func TestStore_AddSearch(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	for _, e := range []*models.Entry{
		models.NewEntry("a", []float32{1, 0, 0}),
		models.NewEntry("b", []float32{0.9, 0.1, 0}),
		models.NewEntry("c", []float32{0, 1, 0}),
	} {
		if err := s.Add(e); err != nil {
			t.Fatal(err)
		}
	}
	if s.Size() != 3 {
		t.Errorf("Size=%d", s.Size())
	}
	if s.Dimensions() != 3 {
		t.Errorf("Dimensions=%d", s.Dimensions())
	}

	results, err := s.Search(ctx, []float32{1, 0, 0}, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Entry.Text != "a" {
		t.Errorf("top result should be a, got %s", results[0].Entry.Text)
	}
}

func TestStore_DimensionMismatch(t *testing.T) {
	s := NewStore()
	if err := s.Add(models.NewEntry("x", []float32{1, 0})); err != nil {
		t.Fatal(err)
	}
	err := s.Add(models.NewEntry("y", []float32{1, 0, 0}))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	if s.Size() != 1 {
		t.Errorf("rejected entry should not be stored, size=%d", s.Size())
	}
}

func TestStore_EmptyVector(t *testing.T) {
	s := NewStore()
	if err := s.Add(models.NewEntry("x", nil)); !errors.Is(err, ErrEmptyVector) {
		t.Fatalf("expected ErrEmptyVector, got %v", err)
	}
	if err := s.Add(nil); !errors.Is(err, ErrEmptyVector) {
		t.Fatalf("expected ErrEmptyVector for nil entry, got %v", err)
	}
}

func TestStore_SearchEmpty(t *testing.T) {
	results, err := NewStore().Search(context.Background(), []float32{1}, 5, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("empty store returned %d results", len(results))
	}
}

func TestStore_SearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewStore().Search(ctx, []float32{1}, 5, 0); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestStore_EntriesSnapshot(t *testing.T) {
	s := NewStore()
	_ = s.Add(models.NewEntry("a", []float32{1}))
	snap := s.Entries()
	_ = s.Add(models.NewEntry("b", []float32{1}))
	if len(snap) != 1 {
		t.Errorf("snapshot should not grow, len=%d", len(snap))
	}
}

func BenchmarkStoreSearch(b *testing.B) {
	s := NewStore()
	for _, e := range sampleEntries(1000, 384, 1) {
		_ = s.Add(e)
	}
	query := sampleVectors(1, 384, 2)[0]
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.Search(ctx, query, 10, 0)
	}
}
