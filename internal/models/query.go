package models

import (
	"fmt"
	"strings"
)

// DefaultLimit is the result limit used when a query does not set one.
const DefaultLimit = 5

// SearchQuery represents a similarity search request.
type SearchQuery struct {
	Query    string  `json:"query"`
	Limit    int     `json:"limit,omitempty"`
	MinScore float64 `json:"min_score,omitempty"` // 0 or less disables threshold filtering
}

// Validate ensures the search query has valid fields and sets defaults.
// Returns an error if the query is blank; otherwise trims it and normalizes the limit.
func (q *SearchQuery) Validate() error {
	q.Query = strings.TrimSpace(q.Query)
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	return nil
}

// ThresholdActive reports whether MinScore filtering applies.
func (q *SearchQuery) ThresholdActive() bool {
	return q.MinScore > 0
}
