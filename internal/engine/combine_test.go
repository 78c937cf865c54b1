package engine

import (
	"testing"

	"cvmatch/internal/types"
)

func TestOverallScore(t *testing.T) {
	tests := []struct {
		name       string
		similarity float64
		scores     types.SubScores
		weights    Weights
		want       float64
	}{
		{
			name:       "default weights",
			similarity: 0.8,
			scores: types.SubScores{
				TechnicalSkills: 0.9,
				Experience:      1.0,
				Education:       0.8,
				SoftSkills:      0.5,
			},
			weights: DefaultWeights(),
			// 0.5*0.8 + 0.3*0.9 + 0.15*1.0 + 0.05*0.8 = 0.86
			want: 86.0,
		},
		{
			name:       "perfect scores",
			similarity: 1.0,
			scores: types.SubScores{
				TechnicalSkills: 1.0,
				Experience:      1.0,
				Education:       1.0,
				SoftSkills:      1.0,
			},
			weights: DefaultWeights(),
			want:    100.0,
		},
		{
			name:       "all zero inputs",
			similarity: 0,
			scores:     types.SubScores{},
			weights:    DefaultWeights(),
			want:       0.0,
		},
		{
			name:       "weights renormalized",
			similarity: 0.5,
			scores:     types.SubScores{TechnicalSkills: 1.0},
			weights:    Weights{Similarity: 1, Technical: 1},
			want:       75.0,
		},
		{
			name:       "zero weights fall back to raw sum",
			similarity: 0.9,
			scores:     types.SubScores{TechnicalSkills: 0.9},
			weights:    Weights{},
			want:       0.0,
		},
		{
			name:       "out of range similarity clamped",
			similarity: 1.5,
			scores:     types.SubScores{},
			weights:    Weights{Similarity: 1},
			want:       100.0,
		},
		{
			name:       "negative sub-score clamped",
			similarity: 0,
			scores:     types.SubScores{TechnicalSkills: -0.4},
			weights:    Weights{Technical: 1},
			want:       0.0,
		},
		{
			name:       "rounded to two decimals",
			similarity: 1.0 / 3.0,
			scores:     types.SubScores{},
			weights:    Weights{Similarity: 1},
			want:       33.33,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OverallScore(tt.similarity, tt.scores, tt.weights)
			if !floatEq(got, tt.want) {
				t.Errorf("OverallScore(%v, %+v, %+v) = %v, want %v",
					tt.similarity, tt.scores, tt.weights, got, tt.want)
			}
		})
	}
}

func TestDefaultWeights(t *testing.T) {
	w := DefaultWeights()
	if !floatEq(w.sum(), 1.0) {
		t.Errorf("default weights sum = %v, want 1.0", w.sum())
	}
	if w.SoftSkills != 0 {
		t.Errorf("soft skill weight = %v, want 0", w.SoftSkills)
	}
}
