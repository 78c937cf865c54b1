package embedding

import (
	"cvmatch/internal/config"
	"cvmatch/internal/errors"
)

// Service owns the configured embedding provider. Construction never fails:
// if the real provider cannot be built, the service degrades to placeholder
// vectors so scoring stays available.
type Service struct {
	Provider Provider
	Degraded bool

	logger *errors.Logger
}

// NewService builds the provider named in the configuration.
func NewService(cfg *config.EmbeddingConfig, logger *errors.Logger) *Service {
	svc := &Service{logger: logger}

	switch cfg.Provider {
	case "placeholder":
		svc.Provider = NewPlaceholderProvider(cfg.Dimension)
		svc.Degraded = true
		logger.Info("Using placeholder embedding provider", "dimension", cfg.Dimension)
	case "gemini":
		provider, err := NewGeminiProvider(cfg, logger)
		if err != nil {
			logger.Warn("Embedding provider unavailable, falling back to placeholder vectors",
				"provider", cfg.Provider,
				"error", err.Error())
			svc.Provider = NewPlaceholderProvider(cfg.Dimension)
			svc.Degraded = true
		} else {
			svc.Provider = provider
		}
	default:
		logger.Warn("Unknown embedding provider, falling back to placeholder vectors",
			"provider", cfg.Provider)
		svc.Provider = NewPlaceholderProvider(cfg.Dimension)
		svc.Degraded = true
	}

	return svc
}

// Close releases provider resources.
func (s *Service) Close() error {
	return s.Provider.Close()
}
