package models

// Match is a single ranked search hit.
type Match struct {
	Entry *Entry  `json:"entry"`
	Score float64 `json:"score"` // cosine similarity
	Rank  int     `json:"rank"`  // 1-based position in the result list
}

// Texts returns the entry text of each match, in order.
func Texts(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Entry.Text
	}
	return out
}
