package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/baheth/internal/indexer"
	"github.com/hyperjump/baheth/internal/models"
)

func sampleResponse() *models.SearchResponse {
	return &models.SearchResponse{
		Query:             "ما هو الصبر",
		QueryTime:         42,
		Candidates:        7,
		DuplicatesRemoved: 1,
		SearchID:          "abc",
		Results: []*models.SearchResult{
			{
				Snippet:       models.Snippet{ID: 3, FileID: "f1", PageIndex: 2, TextSnippet: strings.Repeat("الصبر ", 100)},
				Rank:          1,
				Score:         0.91,
				CombinedScore: 0.8,
				Excerpt:       "...الصبر عبارة عن حبس النفس...",
			},
			{
				Snippet: models.Snippet{ID: 4, FileID: "f2", PageIndex: 1, TextSnippet: "الصبر جميل"},
				Rank:    2,
				Score:   0.5,
				Signals: &models.Signals{Keyword: 0.95},
			},
		},
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{" JSON ", OutputJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSearchResults(&buf, sampleResponse(), OutputJSON))

	var decoded models.SearchResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "ما هو الصبر", decoded.Query)
	assert.Equal(t, int64(42), decoded.QueryTime)
	require.Len(t, decoded.Results, 2)
	assert.Equal(t, int64(3), decoded.Results[0].ID)
	assert.Contains(t, buf.String(), "الصبر", "Arabic is written unescaped")
}

func TestWriteSearchResults_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSearchResults(&buf, sampleResponse(), OutputText))
	out := buf.String()

	assert.Contains(t, out, "Found 2 results in 42ms (7 candidates, 1 duplicates removed)")
	assert.Contains(t, out, "Rank: 1 | Score: 0.9100 (Combined: 0.8000)")
	assert.Contains(t, out, "ID: 3 | File: f1 | Page: 2")
	assert.Contains(t, out, "...الصبر عبارة عن حبس النفس...")
	assert.Contains(t, out, "الصبر جميل")
	assert.Contains(t, out, "keyword=0.950")
	assert.Contains(t, out, "impression=0.000")
	assert.NotContains(t, out, strings.Repeat("الصبر ", 100))
}

func TestWriteSearchResults_TextStates(t *testing.T) {
	tests := []struct {
		name string
		resp *models.SearchResponse
		want []string
	}{
		{
			name: "no meaningful terms",
			resp: &models.SearchResponse{NoMeaningfulTerms: true},
			want: []string{"no searchable terms"},
		},
		{
			name: "no matches with suggestion",
			resp: &models.SearchResponse{NoMatches: true, DidYouMean: "الصبر"},
			want: []string{"No matching snippets.", "Did you mean: الصبر"},
		},
		{
			name: "fuzzy",
			resp: &models.SearchResponse{FuzzyUsed: true},
			want: []string{"fuzzy matching used"},
		},
		{
			name: "explain",
			resp: &models.SearchResponse{Explain: &models.Explanation{
				QuestionType:    "what",
				Words:           []string{"صبر"},
				RankedTerms:     []string{"الصبر", "صبر"},
				ExpandedTerms:   []string{"الصبر", "صبر", "الصابر"},
				NeedsDefinition: true,
				WantsQuotes:     true,
				WantsList:       true,
				DefinitionTerm:  "الصبر",
			}},
			want: []string{
				"Question type: what", "Words: صبر", "Ranked terms: الصبر، صبر",
				"Expanded terms: الصبر، صبر، الصابر", "Needs: definition",
				"Hints: quotes، list", "Definition term: الصبر",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteSearchResults(&buf, tt.resp, OutputText))
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestWriteStatus(t *testing.T) {
	st := &models.StatusResponse{Snippets: 10, Files: 2, Terms: 40, TotalDocuments: 10, IndexedDocs: 10, DiskUsageBytes: 2048}

	var buf bytes.Buffer
	require.NoError(t, WriteStatus(&buf, st, OutputText))
	assert.Contains(t, buf.String(), "Files:            2")
	assert.Contains(t, buf.String(), "Disk usage:       2.0 KiB")

	buf.Reset()
	require.NoError(t, WriteStatus(&buf, st, OutputJSON))
	var decoded models.StatusResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *st, decoded)
}

func TestWriteIndexOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteIndexSummary(&buf, &indexer.Summary{Indexed: 3, Skipped: 1, Failed: 1, Snippets: 12}, OutputText))
	assert.Equal(t, "Indexed 3 files (12 snippets), skipped 1 unchanged, 1 failed\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteIndexResult(&buf, &indexer.Result{FileID: "id", Path: "/a.txt", Snippets: 2}, OutputText))
	assert.Equal(t, "Indexed /a.txt: 2 snippets (id)\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteIndexResult(&buf, &indexer.Result{FileID: "id", Path: "/a.txt", Skipped: true}, OutputText))
	assert.Equal(t, "Unchanged: /a.txt (id)\n", buf.String())
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "0 B", FormatBytes(0))
	assert.Equal(t, "1023 B", FormatBytes(1023))
	assert.Equal(t, "1.5 KiB", FormatBytes(1536))
	assert.Equal(t, "3.0 MiB", FormatBytes(3*1024*1024))
}
