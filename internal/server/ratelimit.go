package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	cvmatchErrors "cvmatch/internal/errors"

	"golang.org/x/time/rate"
)

// LimiterManager manages per-client rate limiters
type LimiterManager struct {
	mu       sync.RWMutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	logger   *cvmatchErrors.Logger
	stopChan chan struct{}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiterManager creates a rate limiter manager
func NewLimiterManager(requestsPerMin, burstCapacity int, logger *cvmatchErrors.Logger) *LimiterManager {
	lm := &LimiterManager{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Limit(float64(requestsPerMin) / 60.0),
		burst:    burstCapacity,
		logger:   logger,
		stopChan: make(chan struct{}),
	}

	// Clean up stale limiters in the background
	go lm.cleanupLoop()

	return lm
}

// GetLimiter returns the rate limiter for the given key, creating one if needed
func (lm *LimiterManager) GetLimiter(key string) *rate.Limiter {
	lm.mu.RLock()
	entry, exists := lm.limiters[key]
	lm.mu.RUnlock()

	if exists {
		lm.mu.Lock()
		entry.lastSeen = time.Now()
		lm.mu.Unlock()
		return entry.limiter
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	// Double-check after acquiring write lock
	if entry, exists := lm.limiters[key]; exists {
		entry.lastSeen = time.Now()
		return entry.limiter
	}

	limiter := rate.NewLimiter(lm.rate, lm.burst)
	lm.limiters[key] = &limiterEntry{
		limiter:  limiter,
		lastSeen: time.Now(),
	}

	return limiter
}

// Allow reports whether a request for the given key may proceed
func (lm *LimiterManager) Allow(key string) bool {
	return lm.GetLimiter(key).Allow()
}

// cleanupLoop periodically removes limiters that have not been used recently
func (lm *LimiterManager) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lm.cleanup()
		case <-lm.stopChan:
			return
		}
	}
}

// cleanup removes limiters idle for more than 10 minutes
func (lm *LimiterManager) cleanup() {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	removed := 0
	for key, entry := range lm.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(lm.limiters, key)
			removed++
		}
	}

	if removed > 0 && lm.logger != nil {
		lm.logger.Debug("Cleaned up stale rate limiters",
			"removed", removed,
			"remaining", len(lm.limiters))
	}
}

// Stop stops the cleanup goroutine
func (lm *LimiterManager) Stop() {
	close(lm.stopChan)
}

// Count returns the number of tracked limiters
func (lm *LimiterManager) Count() int {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	return len(lm.limiters)
}

// getRateLimitKey determines the rate limiting key for a request
func (s *Server) getRateLimitKey(r *http.Request) string {
	if s.RateLimit.ByAPIKey {
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			authHeader := r.Header.Get("Authorization")
			if after, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
				apiKey = after
			}
		}
		if apiKey != "" {
			return "api:" + apiKey
		}
	}

	if s.RateLimit.ByIP {
		return "ip:" + getClientIP(r)
	}

	// Global bucket when neither dimension is enabled
	return "global"
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// X-Forwarded-For may contain a list; the first entry is the client
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
