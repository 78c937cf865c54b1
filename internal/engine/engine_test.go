package engine

import (
	"context"
	"log/slog"
	"testing"

	"cvmatch/internal/embedding"
	"cvmatch/internal/errors"
	"cvmatch/internal/types"
)

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	provider := embedding.NewPlaceholderProvider(8)
	logger := errors.NewLogger(slog.LevelError)
	return New(provider, logger, opts)
}

func TestMatchWithPlaceholderProvider(t *testing.T) {
	eng := newTestEngine(t, Options{})

	candidate := types.CandidateProfile{
		FullName:        "Ada Martin",
		Text:            "Backend engineer with Go and Python",
		TechnicalSkills: []string{"go", "python"},
		ExperienceYears: 5,
		Education:       "Master",
	}
	job := types.JobProfile{
		Title:                   "Backend Engineer",
		Text:                    "Go services team",
		RequiredSkills:          []string{"go", "python"},
		RequiredExperienceYears: 5,
		RequiredEducation:       "Bachelor",
	}

	result, err := eng.Match(context.Background(), candidate, job)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}

	if !result.Degraded {
		t.Error("placeholder embeddings should mark the result degraded")
	}
	// Both sides get the same placeholder vector
	if !floatEq(result.Similarity, 1.0) {
		t.Errorf("similarity = %v, want 1.0", result.Similarity)
	}
	if !floatEq(result.SubScores.TechnicalSkills, 1.0) {
		t.Errorf("skill score = %v, want 1.0", result.SubScores.TechnicalSkills)
	}
	if result.CandidateName != "Ada Martin" || result.JobTitle != "Backend Engineer" {
		t.Errorf("identity fields not carried through: %+v", result)
	}
	if result.Explanation.Narrative == "" {
		t.Error("explanation narrative should not be empty")
	}
}

func TestMatchWithSuppliedEmbeddings(t *testing.T) {
	eng := newTestEngine(t, Options{})

	vec := []float32{0.4, 0.1, 0.9, 0.2}
	candidate := types.CandidateProfile{FullName: "Ada Martin", Embedding: vec}
	job := types.JobProfile{Title: "Backend Engineer", Embedding: vec}

	result, err := eng.Match(context.Background(), candidate, job)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}

	if result.Degraded {
		t.Error("supplied real embeddings should not mark the result degraded")
	}
	if !floatEq(result.Similarity, 1.0) {
		t.Errorf("similarity = %v, want 1.0 for identical vectors", result.Similarity)
	}
}

func TestMatchCancelledContext(t *testing.T) {
	eng := newTestEngine(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.Match(ctx, types.CandidateProfile{}, types.JobProfile{})
	if err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
}

func TestEmbedText(t *testing.T) {
	eng := newTestEngine(t, Options{})

	t.Run("empty text degrades", func(t *testing.T) {
		vec, degraded := eng.EmbedText(context.Background(), "")
		if !degraded {
			t.Error("empty text should degrade to a placeholder")
		}
		if len(vec) != 8 {
			t.Errorf("vector length = %d, want 8", len(vec))
		}
	})

	t.Run("provider output flagged as placeholder", func(t *testing.T) {
		_, degraded := eng.EmbedText(context.Background(), "some text")
		if !degraded {
			t.Error("placeholder provider output should be flagged")
		}
	})
}

func TestBatchMatch(t *testing.T) {
	eng := newTestEngine(t, Options{BatchConcurrency: 2})

	job := types.JobProfile{
		Title:                   "Backend Engineer",
		RequiredSkills:          []string{"go", "python"},
		RequiredExperienceYears: 5,
	}
	candidates := []types.CandidateProfile{
		{FullName: "Weak Fit", TechnicalSkills: []string{"cobol"}, ExperienceYears: 1},
		{FullName: "Strong Fit", TechnicalSkills: []string{"go", "python"}, ExperienceYears: 6},
		{FullName: "Partial Fit", TechnicalSkills: []string{"go"}, ExperienceYears: 3},
	}

	batch := eng.BatchMatch(context.Background(), candidates, job, 0)

	if len(batch.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", batch.Errors)
	}
	if batch.Count != 3 || len(batch.Matches) != 3 {
		t.Fatalf("count = %d, matches = %d, want 3", batch.Count, len(batch.Matches))
	}

	if batch.Matches[0].CandidateName != "Strong Fit" {
		t.Errorf("first match = %q, want Strong Fit", batch.Matches[0].CandidateName)
	}
	for i := 1; i < len(batch.Matches); i++ {
		if batch.Matches[i-1].OverallScore < batch.Matches[i].OverallScore {
			t.Errorf("matches not sorted descending at index %d", i)
		}
	}
}

func TestBatchMatchTopK(t *testing.T) {
	eng := newTestEngine(t, Options{})

	job := types.JobProfile{RequiredSkills: []string{"go"}}
	candidates := []types.CandidateProfile{
		{FullName: "A", TechnicalSkills: []string{"go"}},
		{FullName: "B", TechnicalSkills: []string{"go"}},
		{FullName: "C", TechnicalSkills: []string{"go"}},
	}

	batch := eng.BatchMatch(context.Background(), candidates, job, 2)

	if batch.Count != 2 || len(batch.Matches) != 2 {
		t.Fatalf("topK not applied: count = %d", batch.Count)
	}
	// Equal scores fall back to name order
	if batch.Matches[0].CandidateName != "A" || batch.Matches[1].CandidateName != "B" {
		t.Errorf("tie-break order = %q, %q, want A, B",
			batch.Matches[0].CandidateName, batch.Matches[1].CandidateName)
	}
}

func TestBatchMatchCancelledContext(t *testing.T) {
	eng := newTestEngine(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	candidates := []types.CandidateProfile{
		{FullName: "A"},
		{FullName: "B"},
	}
	batch := eng.BatchMatch(ctx, candidates, types.JobProfile{}, 0)

	if len(batch.Errors) != len(candidates) {
		t.Errorf("errors = %d, want one per candidate", len(batch.Errors))
	}
	if batch.Count != 0 {
		t.Errorf("count = %d, want 0", batch.Count)
	}
}

func TestSummarizeViaEngine(t *testing.T) {
	eng := newTestEngine(t, Options{})

	candidate := types.CandidateProfile{
		FullName:        "Sam Diallo",
		TechnicalSkills: []string{"go"},
		ExperienceYears: 3,
	}
	job := types.JobProfile{RequiredSkills: []string{"go", "rust"}}

	summary := eng.Summarize(candidate, job)
	if summary == nil {
		t.Fatal("summary should not be nil")
	}
	if len(summary.MatchedSkills) != 1 || summary.MatchedSkills[0] != "go" {
		t.Errorf("matched skills = %v, want [go]", summary.MatchedSkills)
	}
	if len(summary.InterviewQuestions) == 0 {
		t.Error("summary should propose interview questions")
	}
}

func TestEngineAccessors(t *testing.T) {
	weights := Weights{Similarity: 1}
	eng := newTestEngine(t, Options{Weights: &weights})

	if eng.Dimension() != 8 {
		t.Errorf("dimension = %d, want 8", eng.Dimension())
	}
	if eng.Weights().Similarity != 1 {
		t.Errorf("weights not applied: %+v", eng.Weights())
	}
	if eng.Taxonomy() == nil {
		t.Error("taxonomy should default to built-in tables")
	}
	if stats := eng.CircuitBreakerStats(); stats != nil {
		t.Errorf("placeholder provider should report no breaker stats, got %v", stats)
	}
	info := eng.ModelInfo(context.Background())
	if info == nil || !info.Available {
		t.Errorf("model info = %+v, want available placeholder", info)
	}
}
