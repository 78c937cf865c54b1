package engine

import "math"

// FallbackSimilarity is returned when either embedding is unusable
// (empty, mismatched length, or zero magnitude). A neutral-positive
// constant keeps the pipeline total and lets the sub-scores dominate.
const FallbackSimilarity = 0.75

// CosineSimilarity returns the cosine of the angle between two equal-length
// vectors. Accumulation is done in float64 to limit rounding drift.
func CosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Similarity computes the semantic similarity between two embeddings,
// clamped to [0,1]. Unusable vector pairs yield FallbackSimilarity instead
// of an error so a single bad embedding cannot fail a match.
func Similarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return FallbackSimilarity
	}

	var normA, normB float64
	for i := range a {
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return FallbackSimilarity
	}

	return clamp01(CosineSimilarity(a, b))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
