// Package cli formats command output for the baheth CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/baheth/internal/indexer"
	"github.com/hyperjump/baheth/internal/models"
	"github.com/hyperjump/baheth/pkg/utils"
)

// OutputFormat selects how command results are written.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// excerptRunes bounds the text shown per result when no excerpt was built.
const excerptRunes = 300

const separator = "─────────────────────────────────────────────────────────"

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteSearchResults writes a search response to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	writeSearchResultsText(w, response)
	return nil
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	if response.Explain != nil {
		writeExplanation(w, response.Explain)
	}
	switch {
	case response.NoMeaningfulTerms:
		fmt.Fprintln(w, "\nThe query has no searchable terms.")
		return
	case response.NoMatches:
		fmt.Fprintln(w, "\nNo matching snippets.")
		if response.DidYouMean != "" {
			fmt.Fprintf(w, "Did you mean: %s\n", response.DidYouMean)
		}
		return
	}

	fmt.Fprintf(w, "\nFound %d results in %dms (%d candidates, %d duplicates removed",
		len(response.Results), response.QueryTime, response.Candidates, response.DuplicatesRemoved)
	if response.FuzzyUsed {
		fmt.Fprint(w, ", fuzzy matching used")
	}
	fmt.Fprint(w, ")\n\n")

	for _, result := range response.Results {
		writeOneResult(w, result)
	}
}

func writeOneResult(w io.Writer, result *models.SearchResult) {
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "Rank: %d | Score: %.4f (Combined: %.4f)\n", result.Rank, result.Score, result.CombinedScore)
	fmt.Fprintf(w, "ID: %d | File: %s | Page: %d\n", result.ID, result.FileID, result.PageIndex)
	if result.HasQuotes {
		fmt.Fprintln(w, "Contains quotes")
	}
	text := result.Excerpt
	if text == "" {
		text = utils.Truncate(result.TextSnippet, excerptRunes)
	}
	fmt.Fprintf(w, "\n%s\n", text)
	if s := result.Signals; s != nil {
		fmt.Fprintf(w, "\n  tfidf=%.3f keyword=%.3f proximity=%.3f phrase=%.3f context=%.3f answer=%.3f\n",
			s.TFIDF, s.Keyword, s.Proximity, s.Phrase, s.Context, s.AnswerType)
		fmt.Fprintf(w, "  definition=%.3f method=%.3f causality=%.3f concept=%.3f quote=%.3f impression=%.3f negation=%.3f\n",
			s.Definition, s.Method, s.Causality, s.Concept, s.Quote, s.Impression, s.Negation)
	}
	fmt.Fprintln(w)
}

func writeExplanation(w io.Writer, e *models.Explanation) {
	fmt.Fprintf(w, "Question type: %s\n", e.QuestionType)
	writeList(w, "Words", e.Words)
	writeList(w, "Key terms", e.KeyTerms)
	writeList(w, "Concepts", e.Concepts)
	writeList(w, "Ranked terms", e.RankedTerms)
	writeList(w, "Search terms", e.SearchTerms)
	writeList(w, "Expanded terms", e.ExpandedTerms)

	var needs []string
	for _, n := range []struct {
		on   bool
		name string
	}{
		{e.NeedsDefinition, "definition"},
		{e.NeedsMethod, "method"},
		{e.NeedsCausality, "causality"},
	} {
		if n.on {
			needs = append(needs, n.name)
		}
	}
	writeList(w, "Needs", needs)

	var hints []string
	for _, h := range []struct {
		on   bool
		name string
	}{
		{e.WantsQuotes, "quotes"},
		{e.WantsSummary, "summary"},
		{e.WantsComparison, "comparison"},
		{e.WantsList, "list"},
	} {
		if h.on {
			hints = append(hints, h.name)
		}
	}
	writeList(w, "Hints", hints)
	if e.DefinitionTerm != "" {
		fmt.Fprintf(w, "Definition term: %s\n", e.DefinitionTerm)
	}
	if e.MainSubject != "" {
		fmt.Fprintf(w, "Main subject: %s\n", e.MainSubject)
	}
	if e.MainVerb != "" {
		fmt.Fprintf(w, "Main verb: %s\n", e.MainVerb)
	}
}

func writeList(w io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s: %s\n", label, strings.Join(items, "، "))
}

// WriteStatus writes corpus statistics.
func WriteStatus(w io.Writer, status *models.StatusResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, status)
	}
	fmt.Fprintf(w, "Files:            %d\n", status.Files)
	fmt.Fprintf(w, "Snippets:         %d\n", status.Snippets)
	fmt.Fprintf(w, "Indexed snippets: %d\n", status.IndexedDocs)
	fmt.Fprintf(w, "Total documents:  %d\n", status.TotalDocuments)
	fmt.Fprintf(w, "Terms:            %d\n", status.Terms)
	fmt.Fprintf(w, "Disk usage:       %s\n", FormatBytes(status.DiskUsageBytes))
	return nil
}

// WriteIndexSummary writes the outcome of a directory run.
func WriteIndexSummary(w io.Writer, sum *indexer.Summary, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, sum)
	}
	fmt.Fprintf(w, "Indexed %d files (%d snippets), skipped %d unchanged, %d failed\n",
		sum.Indexed, sum.Snippets, sum.Skipped, sum.Failed)
	return nil
}

// WriteIndexResult writes the outcome of indexing one file.
func WriteIndexResult(w io.Writer, res *indexer.Result, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, res)
	}
	if res.Skipped {
		fmt.Fprintf(w, "Unchanged: %s (%s)\n", res.Path, res.FileID)
		return nil
	}
	fmt.Fprintf(w, "Indexed %s: %d snippets (%s)\n", res.Path, res.Snippets, res.FileID)
	return nil
}

// FormatBytes renders n with a binary unit.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
