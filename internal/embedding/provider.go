package embedding

import "context"

// Provider produces fixed-length text embeddings.
type Provider interface {
	// Embed returns the embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the length of vectors this provider produces.
	Dimension() int

	// GetModelInfo checks the readiness and availability of the backing model.
	GetModelInfo(ctx context.Context) *ModelInfo

	Close() error
}

// ModelInfo represents information about the embedding model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// StatsReporter is implemented by providers that expose circuit breaker
// statistics for the /stats endpoint.
type StatsReporter interface {
	GetCircuitBreakerStats() map[string]any
}
