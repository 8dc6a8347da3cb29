package vector

import (
	"sort"

	"github.com/hyperjump/vectorpipe/internal/models"
)

// Rank scores every entry against query and returns at most limit matches,
// best first. When threshold > 0, entries scoring below it are dropped.
// Equal scores keep insertion order (earliest entry first).
func Rank(query []float32, entries []*models.Entry, threshold float64, limit int) []models.Match {
	if limit <= 0 || len(entries) == 0 {
		return []models.Match{}
	}
	matches := make([]models.Match, 0, len(entries))
	for _, e := range entries {
		score := CosineSimilarity(query, e.Vector)
		if threshold > 0 && score < threshold {
			continue
		}
		matches = append(matches, models.Match{Entry: e, Score: score})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	for i := range matches {
		matches[i].Rank = i + 1
	}
	return matches
}
