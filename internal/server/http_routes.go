package server

import (
	"net/http"
	"strings"

	"cvmatch/internal/observability"
)

// setupRoutes configures the HTTP routes and middleware chain
func (s *Server) setupRoutes(om *observability.Manager) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /match", s.createMatchHandler(om))
	mux.HandleFunc("POST /match/batch", s.createBatchMatchHandler(om))
	mux.HandleFunc("POST /summary", s.createSummaryHandler(om))
	mux.HandleFunc("POST /embed", s.createEmbedHandler(om))
	mux.HandleFunc("POST /similarity", s.createSimilarityHandler(om))
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)

	// Middleware order: tracing wraps everything, then rate limiting,
	// authentication, and finally the request size guard.
	var handler http.Handler = mux
	handler = s.requestSizeLimitMiddleware(handler)
	handler = s.authMiddleware(handler)
	handler = s.createRateLimitMiddleware(om)(handler)
	if om != nil {
		handler = om.HTTPMiddleware()(handler)
	}

	return handler
}

// authMiddleware validates API keys for protected endpoints
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Health checks stay open for load balancers
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		// No keys configured means authentication is disabled
		if len(s.APIKeys) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			authHeader := r.Header.Get("Authorization")
			if after, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
				apiKey = after
			}
		}

		if apiKey == "" {
			s.Logger.Warn("Request missing API key",
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr)
			s.writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "API key required")
			return
		}

		if !s.APIKeys[apiKey] {
			s.Logger.Warn("Request with invalid API key",
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
				"api_key", maskAPIKey(apiKey))
			s.writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestSizeLimitMiddleware enforces the maximum request body size
func (s *Server) requestSizeLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.MaxRequestSize > 0 && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
		}
		next.ServeHTTP(w, r)
	})
}

// createRateLimitMiddleware returns middleware that enforces rate limits
func (s *Server) createRateLimitMiddleware(om *observability.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.RateLimiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			// Health checks are exempt from rate limiting
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			key := s.getRateLimitKey(r)
			if !s.RateLimiter.Allow(key) {
				s.Logger.Warn("Rate limit exceeded",
					"key", maskRateLimitKey(key),
					"path", r.URL.Path)
				if om != nil {
					if metrics := om.GetMetrics(); metrics != nil {
						metrics.RecordRateLimitHit(r.Context(), key)
					}
				}
				w.Header().Set("Retry-After", "60")
				s.writeErrorResponse(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// maskAPIKey masks an API key for safe logging
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

// maskRateLimitKey masks API-key based rate limit keys for safe logging
func maskRateLimitKey(key string) string {
	if after, ok := strings.CutPrefix(key, "api:"); ok {
		return "api:" + maskAPIKey(after)
	}
	return key
}
