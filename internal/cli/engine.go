package cli

import (
	"cvmatch/internal/config"
	"cvmatch/internal/embedding"
	"cvmatch/internal/engine"
	"cvmatch/internal/errors"
)

// buildEngine assembles the scoring engine from the application configuration.
// The returned close function releases the embedding provider.
func buildEngine(cfg *config.Config, logger *errors.Logger) (*engine.Engine, func() error, error) {
	var taxonomy *engine.Taxonomy
	if cfg.Matching.SynonymsFile != "" || cfg.Matching.LadderFile != "" {
		loaded, err := engine.LoadTaxonomy(cfg.Matching.SynonymsFile, cfg.Matching.LadderFile)
		if err != nil {
			return nil, nil, errors.NewConfigError(errors.ErrCodeInvalidTaxonomy,
				"Failed to load taxonomy overrides", err)
		}
		taxonomy = loaded
	}

	weights := engine.Weights{
		Similarity: cfg.Matching.Weights.Similarity,
		Technical:  cfg.Matching.Weights.Technical,
		Experience: cfg.Matching.Weights.Experience,
		Education:  cfg.Matching.Weights.Education,
		SoftSkills: cfg.Matching.Weights.SoftSkills,
	}

	svc := embedding.NewService(&cfg.Embedding, logger)
	eng := engine.New(svc.Provider, logger, engine.Options{
		Weights:          &weights,
		Taxonomy:         taxonomy,
		BatchConcurrency: cfg.Matching.BatchConcurrency,
	})

	return eng, svc.Close, nil
}
