// Package vector provides the in-memory entry store and cosine similarity ranking.
package vector

import (
	"math"

	"github.com/viant/vec/search"
)

// InnerProduct returns the inner product of two vectors, or 0 when their lengths differ.
func InnerProduct(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float32) float64 {
	if len(x) == 0 {
		return 0
	}
	return float64(search.Float32s(x).Magnitude())
}

// CosineSimilarity returns dot(a,b) / (|a|*|b|) in [-1, 1].
// Mismatched or empty vectors and zero-norm vectors score 0; it never fails.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	na, nb := L2Norm(a), L2Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	sim := InnerProduct(a, b) / (na * nb)
	if math.IsNaN(sim) {
		return 0
	}
	return math.Max(-1, math.Min(1, sim))
}
