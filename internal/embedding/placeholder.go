package embedding

import (
	"context"
	"math"
)

// PlaceholderComponent is the value every component of a placeholder vector
// carries. Placeholder vectors keep the pipeline total when no real
// embedding is available; their uniform shape makes them detectable so
// degraded results can be flagged.
const PlaceholderComponent = 0.1

// placeholderProbe is how many leading components IsPlaceholder inspects.
const placeholderProbe = 10

const placeholderTolerance = 0.001

// DefaultDimension is used when no dimensionality is configured.
const DefaultDimension = 768

// PlaceholderVector returns a degraded-mode vector of the given length.
func PlaceholderVector(dimension int) []float32 {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	vec := make([]float32, dimension)
	for i := range vec {
		vec[i] = PlaceholderComponent
	}
	return vec
}

// IsPlaceholder reports whether a vector looks like a placeholder. Only the
// leading components are checked; real embeddings vary within the first few
// components, so a uniform prefix is a reliable signal.
func IsPlaceholder(vec []float32) bool {
	if len(vec) == 0 {
		return false
	}
	probe := placeholderProbe
	if len(vec) < probe {
		probe = len(vec)
	}
	for _, v := range vec[:probe] {
		if math.Abs(float64(v)-PlaceholderComponent) > placeholderTolerance {
			return false
		}
	}
	return true
}

// PlaceholderProvider always returns placeholder vectors. It backs the
// "placeholder" provider setting and serves as the degraded-mode fallback
// when a real provider cannot be constructed.
type PlaceholderProvider struct {
	dimension int
}

var _ Provider = (*PlaceholderProvider)(nil)

func NewPlaceholderProvider(dimension int) *PlaceholderProvider {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &PlaceholderProvider{dimension: dimension}
}

func (p *PlaceholderProvider) Embed(_ context.Context, _ string) ([]float32, error) {
	return PlaceholderVector(p.dimension), nil
}

func (p *PlaceholderProvider) Dimension() int {
	return p.dimension
}

func (p *PlaceholderProvider) GetModelInfo(_ context.Context) *ModelInfo {
	return &ModelInfo{
		Name:        "placeholder",
		DisplayName: "Placeholder embeddings",
		Available:   true,
	}
}

func (p *PlaceholderProvider) Close() error {
	return nil
}
