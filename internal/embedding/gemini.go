package embedding

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"time"

	"cvmatch/internal/config"
	cvmatchErrors "cvmatch/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

const modelCheckTimeout = 10 * time.Second

// GeminiProvider implements Provider backed by the Gemini embedding API
type GeminiProvider struct {
	client         *genai.Client
	config         *config.EmbeddingConfig
	circuitBreaker *EmbedCircuitBreaker
	modelBreaker   *ModelCircuitBreaker
	logger         *cvmatchErrors.Logger
}

// Ensure GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini embedding provider instance
func NewGeminiProvider(cfg *config.EmbeddingConfig, logger *cvmatchErrors.Logger) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, cvmatchErrors.NewEmbeddingError(cvmatchErrors.ErrCodeMissingAPIKey,
			"Embedding API key is required for the gemini provider", nil)
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, cvmatchErrors.NewEmbeddingError(cvmatchErrors.ErrCodeEmbeddingFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client:         client,
		config:         cfg,
		circuitBreaker: NewEmbedCircuitBreaker(cfg, logger),
		modelBreaker:   NewModelCircuitBreaker(cfg, logger),
		logger:         logger,
	}, nil
}

// Embed returns the embedding vector for the given text
func (g *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	tracer := otel.Tracer("cvmatch.embedding.gemini")
	ctx, span := tracer.Start(ctx, "gemini.embed_content")
	defer span.End()

	span.SetAttributes(
		attribute.String("embedding.provider", "gemini"),
		attribute.String("embedding.model", g.config.Model),
		attribute.Int("embedding.dimension", g.config.Dimension),
		attribute.Int("input.text_length", len(text)),
	)

	callCtx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	embedConfig := &genai.EmbedContentConfig{}
	if g.config.Dimension > 0 {
		embedConfig.OutputDimensionality = genai.Ptr(int32(g.config.Dimension))
	}

	result, err := g.circuitBreaker.Execute(func() (*genai.EmbedContentResponse, error) {
		return g.executeWithRetry(callCtx, func() (*genai.EmbedContentResponse, error) {
			return g.client.Models.EmbedContent(callCtx, g.config.Model, genai.Text(text), embedConfig)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, cvmatchErrors.NewEmbeddingError(cvmatchErrors.ErrCodeEmbeddingTimeout,
				"Embedding call timed out", err)
		}
		return nil, cvmatchErrors.NewEmbeddingError(cvmatchErrors.ErrCodeEmbeddingFailed,
			"Failed to generate embedding", err)
	}

	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		err := fmt.Errorf("empty embedding response")
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, cvmatchErrors.NewEmbeddingError(cvmatchErrors.ErrCodeEmbeddingFailed,
			"Embedding response contained no vectors", err)
	}

	vector := result.Embeddings[0].Values
	if g.config.Dimension > 0 && len(vector) != g.config.Dimension {
		err := fmt.Errorf("expected %d components, got %d", g.config.Dimension, len(vector))
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, cvmatchErrors.NewEmbeddingError(cvmatchErrors.ErrCodeEmbeddingFailed,
			"Embedding dimensionality mismatch", err)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return vector, nil
}

// Dimension returns the configured vector length
func (g *GeminiProvider) Dimension() int {
	if g.config.Dimension > 0 {
		return g.config.Dimension
	}
	return DefaultDimension
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	if model.DisplayName != "" {
		modelInfo.DisplayName = model.DisplayName
	}
	if model.Version != "" {
		modelInfo.Version = model.Version
	}

	return modelInfo
}

// executeWithRetry executes an embedding call with retry logic and exponential backoff
func (g *GeminiProvider) executeWithRetry(ctx context.Context, fn func() (*genai.EmbedContentResponse, error)) (*genai.EmbedContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying embedding call",
				"attempt", attempt,
				"max_retries", g.config.MaxRetries,
				"error", lastErr.Error())

			// Exponential backoff with jitter to prevent thundering herd
			baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
			jitterBig, _ := rand.Int(rand.Reader, jitterMax)
			jitter := time.Duration(jitterBig.Int64())
			backoff := min(baseDelay+jitter, 30*time.Second)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"error", err.Error())
			break
		}
	}

	return nil, fmt.Errorf("embedding call failed after %d retries: %w", g.config.MaxRetries, lastErr)
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"embedding_operations": g.circuitBreaker.GetStats(),
		"model_operations":     g.modelBreaker.GetModelStats(),
	}
	stats["overall_healthy"] = g.circuitBreaker.IsHealthy() && g.modelBreaker.IsModelHealthy()
	return stats
}

// Close implements Provider
func (g *GeminiProvider) Close() error {
	// The genai client holds no long-lived connections in this usage
	return nil
}
