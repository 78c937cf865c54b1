package engine

import (
	"context"
	"fmt"
	"sort"

	"cvmatch/internal/embedding"
	"cvmatch/internal/errors"
	"cvmatch/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const defaultBatchConcurrency = 8

// Engine scores candidates against jobs. It holds no per-request state and
// is safe for concurrent use.
type Engine struct {
	provider         embedding.Provider
	taxonomy         *Taxonomy
	weights          Weights
	batchConcurrency int
	logger           *errors.Logger
}

// Options configures optional engine behavior. Zero values select defaults.
type Options struct {
	Weights          *Weights
	Taxonomy         *Taxonomy
	BatchConcurrency int
}

// New creates a scoring engine backed by the given embedding provider.
func New(provider embedding.Provider, logger *errors.Logger, opts Options) *Engine {
	weights := DefaultWeights()
	if opts.Weights != nil {
		weights = *opts.Weights
	}
	taxonomy := opts.Taxonomy
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy()
	}
	concurrency := opts.BatchConcurrency
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}

	return &Engine{
		provider:         provider,
		taxonomy:         taxonomy,
		weights:          weights,
		batchConcurrency: concurrency,
		logger:           logger,
	}
}

// Weights returns the configured combination weights.
func (e *Engine) Weights() Weights {
	return e.weights
}

// Taxonomy returns the engine's skill and degree taxonomy.
func (e *Engine) Taxonomy() *Taxonomy {
	return e.taxonomy
}

// DetailedScores computes all four sub-scores for a candidate/job pair.
func (e *Engine) DetailedScores(candidate types.CandidateProfile, job types.JobProfile) types.SubScores {
	return types.SubScores{
		TechnicalSkills: e.taxonomy.SkillScore(candidate.TechnicalSkills, job.RequiredSkills),
		Experience:      ExperienceScore(candidate.ExperienceYears, job.RequiredExperienceYears),
		Education:       e.taxonomy.EducationScore(candidate.Education, job.RequiredEducation),
		SoftSkills:      SoftSkillScore(candidate.SoftSkills, job.RequiredSoftSkills),
	}
}

// EmbedText embeds free text, degrading to a placeholder vector when the
// provider fails. The second return reports degradation; scoring proceeds
// either way.
func (e *Engine) EmbedText(ctx context.Context, text string) ([]float32, bool) {
	if text == "" {
		return embedding.PlaceholderVector(e.provider.Dimension()), true
	}

	vector, err := e.provider.Embed(ctx, text)
	if err != nil {
		e.logger.Warn("Embedding failed, using placeholder vector",
			"text_length", len(text),
			"error", err.Error())
		return embedding.PlaceholderVector(e.provider.Dimension()), true
	}
	return vector, embedding.IsPlaceholder(vector)
}

// resolveEmbedding prefers a caller-supplied vector over embedding the text.
func (e *Engine) resolveEmbedding(ctx context.Context, supplied []float32, text string) ([]float32, bool) {
	if len(supplied) > 0 {
		return supplied, embedding.IsPlaceholder(supplied)
	}
	return e.EmbedText(ctx, text)
}

// Match scores one candidate against one job. The pipeline is total for
// embedding failures; the result's Degraded flag reports any fallback.
func (e *Engine) Match(ctx context.Context, candidate types.CandidateProfile, job types.JobProfile) (*types.MatchResult, error) {
	tracer := otel.Tracer("cvmatch.engine")
	ctx, span := tracer.Start(ctx, "engine.match")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	jobVec, jobDegraded := e.resolveEmbedding(ctx, job.Embedding, job.Text)
	result := e.matchWithJobEmbedding(ctx, candidate, job, jobVec, jobDegraded)

	span.SetAttributes(
		attribute.Float64("match.overall_score", result.OverallScore),
		attribute.Bool("match.degraded", result.Degraded),
	)
	return result, nil
}

// matchWithJobEmbedding scores a candidate against a pre-embedded job.
func (e *Engine) matchWithJobEmbedding(ctx context.Context, candidate types.CandidateProfile, job types.JobProfile, jobVec []float32, jobDegraded bool) *types.MatchResult {
	candVec, candDegraded := e.resolveEmbedding(ctx, candidate.Embedding, candidate.Text)

	similarity := Similarity(candVec, jobVec)
	scores := e.DetailedScores(candidate, job)
	overall := OverallScore(similarity, scores, e.weights)
	explanation := e.taxonomy.Explain(candidate, job, scores)

	return &types.MatchResult{
		CandidateName: candidate.FullName,
		JobTitle:      job.Title,
		Similarity:    similarity,
		SubScores:     scores,
		OverallScore:  overall,
		Explanation:   explanation,
		Degraded:      candDegraded || jobDegraded,
	}
}

// BatchMatch scores many candidates against one job. The job is embedded
// once and shared across workers. A failing or panicking candidate is
// reported in Errors without aborting the batch. Results are sorted by
// overall score descending; topK > 0 caps the result list.
func (e *Engine) BatchMatch(ctx context.Context, candidates []types.CandidateProfile, job types.JobProfile, topK int) *types.BatchMatchResult {
	tracer := otel.Tracer("cvmatch.engine")
	ctx, span := tracer.Start(ctx, "engine.batch_match")
	defer span.End()

	span.SetAttributes(
		attribute.Int("batch.candidates", len(candidates)),
		attribute.Int("batch.top_k", topK),
	)

	jobVec, jobDegraded := e.resolveEmbedding(ctx, job.Embedding, job.Text)

	results := make([]*types.MatchResult, len(candidates))
	failures := make([]string, len(candidates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.batchConcurrency)
	for i, candidate := range candidates {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					failures[i] = fmt.Sprintf("candidate %d (%s): internal error: %v",
						i, candidate.FullName, r)
					e.logger.LogError(
						errors.NewInternalError(errors.ErrCodeScoringFailed,
							fmt.Sprintf("panic while scoring: %v", r), nil),
						"Recovered from panic while scoring candidate",
						"candidate_index", i)
				}
			}()

			if err := ctx.Err(); err != nil {
				failures[i] = fmt.Sprintf("candidate %d (%s): %v", i, candidate.FullName, err)
				return nil
			}

			results[i] = e.matchWithJobEmbedding(ctx, candidate, job, jobVec, jobDegraded)
			return nil
		})
	}
	// Workers never return errors; per-candidate failures land in the
	// failures slice instead.
	_ = g.Wait()

	batch := &types.BatchMatchResult{}
	for i := range candidates {
		if results[i] != nil {
			batch.Matches = append(batch.Matches, *results[i])
		}
		if failures[i] != "" {
			batch.Errors = append(batch.Errors, failures[i])
		}
	}

	sort.SliceStable(batch.Matches, func(a, b int) bool {
		if batch.Matches[a].OverallScore != batch.Matches[b].OverallScore {
			return batch.Matches[a].OverallScore > batch.Matches[b].OverallScore
		}
		return batch.Matches[a].CandidateName < batch.Matches[b].CandidateName
	})

	if topK > 0 && len(batch.Matches) > topK {
		batch.Matches = batch.Matches[:topK]
	}
	batch.Count = len(batch.Matches)

	span.SetAttributes(
		attribute.Int("batch.matched", batch.Count),
		attribute.Int("batch.failed", len(batch.Errors)),
	)
	return batch
}

// Summarize builds the executive summary for a candidate against a job.
func (e *Engine) Summarize(candidate types.CandidateProfile, job types.JobProfile) *types.CandidateSummary {
	scores := e.DetailedScores(candidate, job)
	summary := e.taxonomy.Summarize(candidate, job, scores)
	return &summary
}

// Dimension exposes the embedding dimensionality for diagnostics.
func (e *Engine) Dimension() int {
	return e.provider.Dimension()
}

// ModelInfo exposes the provider's model availability for health checks.
func (e *Engine) ModelInfo(ctx context.Context) *embedding.ModelInfo {
	return e.provider.GetModelInfo(ctx)
}

// CircuitBreakerStats exposes provider circuit breaker state when the
// provider reports it, nil otherwise.
func (e *Engine) CircuitBreakerStats() map[string]any {
	if reporter, ok := e.provider.(embedding.StatsReporter); ok {
		return reporter.GetCircuitBreakerStats()
	}
	return nil
}
