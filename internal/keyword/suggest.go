package keyword

import (
	"sort"
	"strings"
	"sync"

	"github.com/hyperjump/baheth/internal/arabic"
)

// TermCount is an indexed term with its document frequency.
type TermCount struct {
	Term  string
	Count uint64
}

// TermDictionary lists the terms of the index.
type TermDictionary interface {
	Terms() ([]TermCount, error)
}

// Suggestion is a spelling alternative for a query word.
type Suggestion struct {
	Term      string
	Distance  int
	Frequency uint64
	Score     float64
}

// Suggester proposes indexed terms close to query words that are missing
// from the index. The dictionary is loaded lazily and reloaded after
// Invalidate.
type Suggester struct {
	dict           TermDictionary
	maxDistance    int
	maxSuggestions int

	mu    sync.RWMutex
	terms []TermCount
	known map[string]struct{}
	valid bool
}

// SuggesterOption configures a Suggester.
type SuggesterOption func(*Suggester)

// WithMaxDistance sets the largest edit distance a suggestion may have.
func WithMaxDistance(d int) SuggesterOption {
	return func(s *Suggester) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// WithMaxSuggestions sets how many suggestions Suggest returns.
func WithMaxSuggestions(n int) SuggesterOption {
	return func(s *Suggester) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// NewSuggester creates a Suggester over dict.
func NewSuggester(dict TermDictionary, opts ...SuggesterOption) *Suggester {
	s := &Suggester{
		dict:           dict,
		maxDistance:    2,
		maxSuggestions: 5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Invalidate drops the loaded dictionary.
func (s *Suggester) Invalidate() {
	s.mu.Lock()
	s.valid = false
	s.mu.Unlock()
}

func (s *Suggester) load() error {
	s.mu.RLock()
	valid := s.valid
	s.mu.RUnlock()
	if valid {
		return nil
	}

	terms, err := s.dict.Terms()
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		known[t.Term] = struct{}{}
	}

	s.mu.Lock()
	s.terms = terms
	s.known = known
	s.valid = true
	s.mu.Unlock()
	return nil
}

// Known reports whether the folded word is an indexed term.
func (s *Suggester) Known(word string) bool {
	if err := s.load(); err != nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.known[arabic.Fold(word)]
	return ok
}

// Suggest returns indexed terms within the edit distance limit of word,
// best first. Frequent terms and phonetically close terms score higher.
func (s *Suggester) Suggest(word string) []Suggestion {
	if err := s.load(); err != nil {
		return nil
	}
	w := arabic.Fold(word)
	wl := arabic.Len(w)
	if wl < 2 {
		return nil
	}

	s.mu.RLock()
	terms := s.terms
	s.mu.RUnlock()

	var out []Suggestion
	for _, t := range terms {
		if t.Term == w {
			continue
		}
		diff := arabic.Len(t.Term) - wl
		if diff < -s.maxDistance || diff > s.maxDistance {
			continue
		}
		d := arabic.EditDistance(w, t.Term)
		if d > s.maxDistance {
			continue
		}
		score := float64(t.Count) / float64(d+1) * (0.5 + 0.5*arabic.PhoneticSimilarity(w, t.Term))
		out = append(out, Suggestion{Term: t.Term, Distance: d, Frequency: t.Count, Score: score})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Term < out[j].Term
	})
	if len(out) > s.maxSuggestions {
		out = out[:s.maxSuggestions]
	}
	return out
}

// Correct replaces every unknown word with its best suggestion. It reports
// whether anything changed.
func (s *Suggester) Correct(words []string) (string, bool) {
	corrected := make([]string, 0, len(words))
	changed := false
	for _, word := range words {
		if s.Known(word) {
			corrected = append(corrected, word)
			continue
		}
		if sugg := s.Suggest(word); len(sugg) > 0 {
			corrected = append(corrected, sugg[0].Term)
			changed = true
			continue
		}
		corrected = append(corrected, word)
	}
	return strings.Join(corrected, " "), changed
}
