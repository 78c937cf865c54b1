package engine

import (
	"math"

	"cvmatch/internal/types"
)

// Weights controls the contribution of each dimension to the overall score.
// They are renormalized by their sum, so any non-negative values work.
type Weights struct {
	Similarity float64 `json:"similarity"`
	Technical  float64 `json:"technical"`
	Experience float64 `json:"experience"`
	Education  float64 `json:"education"`
	SoftSkills float64 `json:"softSkills"`
}

// DefaultWeights favors semantic similarity and technical skills. Soft
// skills carry zero weight in the overall score but still appear in the
// sub-score breakdown and explanations.
func DefaultWeights() Weights {
	return Weights{
		Similarity: 0.5,
		Technical:  0.3,
		Experience: 0.15,
		Education:  0.05,
		SoftSkills: 0.0,
	}
}

func (w Weights) sum() float64 {
	return w.Similarity + w.Technical + w.Experience + w.Education + w.SoftSkills
}

// OverallScore combines the similarity and sub-scores into a single
// percentage on [0,100], rounded to two decimals. Inputs are clamped to
// [0,1] first so out-of-range values cannot leak into the total.
func OverallScore(similarity float64, scores types.SubScores, w Weights) float64 {
	total := w.sum()
	if total <= 0 {
		total = 1
	}

	weighted := w.Similarity*clamp01(similarity) +
		w.Technical*clamp01(scores.TechnicalSkills) +
		w.Experience*clamp01(scores.Experience) +
		w.Education*clamp01(scores.Education) +
		w.SoftSkills*clamp01(scores.SoftSkills)

	return round2(weighted / total * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
