package models

import (
	"errors"
	"fmt"
)

// ErrInvalidQuery is returned when a search request cannot be served.
var ErrInvalidQuery = errors.New("invalid query")

// MaxQueryLimit caps the number of results a single request may ask for.
const MaxQueryLimit = 100

// SearchQuery is a ranking request.
type SearchQuery struct {
	Query string `json:"query"`
	// Limit overrides the configured number of final results when positive.
	Limit int `json:"limit,omitempty"`
	// Explain adds the per-signal breakdown and the query analysis to the response.
	Explain bool `json:"explain,omitempty"`
}

// Validate rejects negative limits and caps the limit. A blank query is
// valid; it ranks to an empty response flagged NoMeaningfulTerms.
func (q *SearchQuery) Validate() error {
	if q.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidQuery)
	}
	if q.Limit > MaxQueryLimit {
		q.Limit = MaxQueryLimit
	}
	return nil
}
