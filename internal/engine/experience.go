package engine

import "math"

// ExperienceScore computes the experience sub-score in [0,1] as the ratio
// of candidate years to required years, capped at 1. Jobs with no stated
// requirement accept any candidate fully.
func ExperienceScore(candidateYears, requiredYears float64) float64 {
	if requiredYears <= 0 {
		return 1.0
	}
	if candidateYears <= 0 {
		return 0.0
	}
	return math.Min(candidateYears/requiredYears, 1.0)
}
