package server

import (
	"time"

	"cvmatch/internal/config"
	"cvmatch/internal/engine"
	cvmatchErrors "cvmatch/internal/errors"
	"cvmatch/internal/types"
)

// MatchRequest represents the request body for the match endpoint
type MatchRequest struct {
	Candidate types.CandidateProfile `json:"candidate"`
	Job       types.JobProfile       `json:"job"`
}

// BatchMatchRequest represents the request body for the batch match endpoint
type BatchMatchRequest struct {
	Candidates []types.CandidateProfile `json:"candidates"`
	Job        types.JobProfile         `json:"job"`
	TopK       int                      `json:"topK,omitempty"`
}

// EmbedRequest represents the request body for the embed endpoint
type EmbedRequest struct {
	Text string `json:"text"`
}

// SimilarityRequest represents the request body for the similarity endpoint
type SimilarityRequest struct {
	A []float32 `json:"a"`
	B []float32 `json:"b"`
}

// SimilarityResponse is the similarity endpoint output
type SimilarityResponse struct {
	Similarity float64 `json:"similarity"`
	Fallback   bool    `json:"fallback"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Scoring engine shared across requests
	Engine *engine.Engine

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// Certificate management
	CertificateManager *CertificateManager

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *LimiterManager

	// Logger
	Logger *cvmatchErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, eng *engine.Engine, logger *cvmatchErrors.Logger) *Server {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *LimiterManager
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewLimiterManager(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		Engine:         eng,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
	}
}
