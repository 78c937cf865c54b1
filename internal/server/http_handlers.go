package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

const modelInfoTimeout = 5 * time.Second

// healthHandler reports service health including embedding model availability,
// circuit breaker state, and certificate status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status":  "healthy",
		"version": s.Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}

	ctx, cancel := context.WithTimeout(r.Context(), modelInfoTimeout)
	defer cancel()

	status := http.StatusOK

	info := s.Engine.ModelInfo(ctx)
	health["model"] = info
	if !info.Available {
		health["status"] = "degraded"
	}

	if stats := s.Engine.CircuitBreakerStats(); stats != nil {
		health["circuitBreaker"] = stats
	}

	if s.CertificateManager != nil {
		certHealth := map[string]any{}
		if expiry, err := s.CertificateManager.CheckExpiry(); err == nil {
			certHealth["expiresIn"] = expiry.String()
			if expiry < 7*24*time.Hour {
				certHealth["warning"] = "certificate expires within 7 days"
				health["status"] = "degraded"
			}
		} else {
			certHealth["error"] = err.Error()
		}
		health["certificates"] = certHealth
	}

	s.writeJSONResponse(w, status, health)
}

// statsHandler reports engine configuration and operational counters
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{
		"weights":            s.Engine.Weights(),
		"embeddingDimension": s.Engine.Dimension(),
		"topK":               s.AppConfig.Matching.TopK,
		"batchConcurrency":   s.AppConfig.Matching.BatchConcurrency,
	}

	if cbStats := s.Engine.CircuitBreakerStats(); cbStats != nil {
		stats["circuitBreaker"] = cbStats
	}

	if s.RateLimiter != nil {
		stats["rateLimit"] = map[string]any{
			"requestsPerMin": s.RateLimit.RequestsPerMin,
			"burstCapacity":  s.RateLimit.BurstCapacity,
			"activeLimiters": s.RateLimiter.Count(),
		}
	}

	if s.CertificateManager != nil {
		stats["certificates"] = s.CertificateManager.GetMetrics()
	}

	s.writeJSONResponse(w, http.StatusOK, stats)
}

// parseJSONRequest decodes the request body into dst, writing an error
// response and returning false on failure.
func (s *Server) parseJSONRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			s.writeErrorResponse(w, http.StatusRequestEntityTooLarge, "request_too_large",
				"request body exceeds the configured size limit")
			return false
		}
		s.writeErrorResponse(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}

	return true
}

// writeJSONResponse writes a JSON response with the given status code
func (s *Server) writeJSONResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.Logger.LogError(err, "Failed to encode JSON response")
	}
}

// writeErrorResponse writes a structured error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	s.writeJSONResponse(w, status, ErrorResponse{
		Error:   code,
		Message: message,
	})
}
