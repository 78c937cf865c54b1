package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"cvmatch/internal/types"
)

func sampleMatchResult() types.MatchResult {
	return types.MatchResult{
		CandidateName: "Ada Martin",
		JobTitle:      "Backend Engineer",
		Similarity:    0.82,
		SubScores: types.SubScores{
			TechnicalSkills: 0.9,
			Experience:      0.8,
			Education:       0.85,
			SoftSkills:      0.5,
		},
		OverallScore: 84.25,
		Explanation: types.Explanation{
			Strengths:       []string{"+ Has required skill: go"},
			Gaps:            []string{"- Missing skill: rust"},
			Recommendations: []string{"Good candidate with potential"},
			Narrative:       "Compatibility score: 84.25/100.",
		},
	}
}

func TestRegistryDispatch(t *testing.T) {
	registry := NewFormatterRegistry()

	tests := []struct {
		name   string
		data   any
		format string
		wants  []string
	}{
		{
			name:   "match text",
			data:   sampleMatchResult(),
			format: "text",
			wants:  []string{"=== MATCH RESULT ===", "Candidate: Ada Martin", "Overall Score: 84.25/100"},
		},
		{
			name:   "match markdown",
			data:   sampleMatchResult(),
			format: "markdown",
			wants:  []string{"# Match Result", "**Candidate:** Ada Martin", "| Technical Skills | 0.90 |"},
		},
		{
			name: "batch text",
			data: types.BatchMatchResult{
				Count:   1,
				Matches: []types.MatchResult{sampleMatchResult()},
				Errors:  []string{"candidate 3 (Bob): internal error"},
			},
			format: "text",
			wants:  []string{"=== BATCH MATCH RESULTS ===", "1. Ada Martin - 84.25/100", "=== ERRORS ==="},
		},
		{
			name: "batch markdown",
			data: types.BatchMatchResult{
				Count:   1,
				Matches: []types.MatchResult{sampleMatchResult()},
			},
			format: "markdown",
			wants:  []string{"# Batch Match Results", "| 1 | Ada Martin | 84.25 |"},
		},
		{
			name: "summary text",
			data: types.CandidateSummary{
				Summary:            "Ada Martin brings 5 years of experience.",
				MatchedSkills:      []string{"go"},
				InterviewQuestions: []string{"Walk me through a project where you used go."},
			},
			format: "text",
			wants:  []string{"=== CANDIDATE SUMMARY ===", "- go", "1. Walk me through a project"},
		},
		{
			name: "summary markdown",
			data: types.CandidateSummary{
				Summary:       "Ada Martin brings 5 years of experience.",
				MatchedSkills: []string{"go"},
			},
			format: "markdown",
			wants:  []string{"# Candidate Summary", "## Matched Skills"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := registry.Format(tt.data, tt.format)
			if err != nil {
				t.Fatalf("Format failed: %v", err)
			}
			for _, want := range tt.wants {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestJSONFormatterRoundTrip(t *testing.T) {
	registry := NewFormatterRegistry()

	got, err := registry.Format(sampleMatchResult(), "json")
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var decoded types.MatchResult
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.CandidateName != "Ada Martin" || decoded.OverallScore != 84.25 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestJSONFallbackForUnknownType(t *testing.T) {
	registry := NewFormatterRegistry()

	got, err := registry.Format(map[string]string{"key": "value"}, "json")
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if !strings.Contains(got, `"key": "value"`) {
		t.Errorf("output = %s", got)
	}
}

func TestUnknownFormat(t *testing.T) {
	registry := NewFormatterRegistry()

	_, err := registry.Format(sampleMatchResult(), "xml")
	if err == nil {
		t.Fatal("expected an error for an unregistered format")
	}
	if !strings.Contains(err.Error(), "no formatter found") {
		t.Errorf("error = %v", err)
	}
}

func TestMarkdownStripsExplanationPrefixes(t *testing.T) {
	registry := NewFormatterRegistry()

	got, err := registry.Format(sampleMatchResult(), "markdown")
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if !strings.Contains(got, "- Has required skill: go") {
		t.Errorf("strength prefix not stripped:\n%s", got)
	}
	if strings.Contains(got, "- + Has required skill") {
		t.Errorf("raw prefix leaked into markdown:\n%s", got)
	}
}

func TestDegradedNote(t *testing.T) {
	result := sampleMatchResult()
	result.Degraded = true
	registry := NewFormatterRegistry()

	text, err := registry.Format(result, "text")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "placeholder embeddings were used") {
		t.Errorf("text output missing degraded note:\n%s", text)
	}

	md, err := registry.Format(result, "markdown")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(md, "> Placeholder embeddings were used") {
		t.Errorf("markdown output missing degraded note:\n%s", md)
	}
}

func TestGetSupportedFormats(t *testing.T) {
	formats := NewFormatterRegistry().GetSupportedFormats()

	want := map[string]bool{"json": false, "text": false, "markdown": false}
	for _, format := range formats {
		if _, ok := want[format]; ok {
			want[format] = true
		}
	}
	for format, seen := range want {
		if !seen {
			t.Errorf("format %q not reported", format)
		}
	}
}
