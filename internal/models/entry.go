// Package models defines core data structures for stored entries, queries, and search matches.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one stored sentence and its embedding. Entries are immutable once
// appended to a store.
type Entry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Vector    []float32 `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEntry returns an entry with a fresh ID. The vector is copied so later
// mutation of the caller's slice cannot change the stored embedding.
func NewEntry(text string, vector []float32) *Entry {
	vec := make([]float32, len(vector))
	copy(vec, vector)
	return &Entry{
		ID:        uuid.New().String(),
		Text:      text,
		Vector:    vec,
		CreatedAt: time.Now(),
	}
}

// Dimensions returns the length of the entry's vector.
func (e *Entry) Dimensions() int {
	return len(e.Vector)
}
