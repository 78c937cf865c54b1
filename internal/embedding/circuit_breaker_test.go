package embedding

import (
	"errors"
	"testing"
	"time"

	"cvmatch/internal/config"

	"google.golang.org/genai"
)

func breakerConfig(enabled bool) *config.EmbeddingConfig {
	return &config.EmbeddingConfig{
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          enabled,
			MaxRequests:      3,
			Interval:         60 * time.Second,
			Timeout:          60 * time.Second,
			MinRequests:      3,
			FailureThreshold: 0.6,
		},
	}
}

func TestNewEmbedCircuitBreakerDisabled(t *testing.T) {
	cb := NewEmbedCircuitBreaker(breakerConfig(false), nil)
	if cb != nil {
		t.Fatal("disabled configuration should yield a nil breaker")
	}

	// A nil breaker executes the call directly
	want := &genai.EmbedContentResponse{}
	got, err := cb.Execute(func() (*genai.EmbedContentResponse, error) {
		return want, nil
	})
	if err != nil || got != want {
		t.Errorf("nil breaker Execute = %v, %v", got, err)
	}

	stats := cb.GetStats()
	if enabled, ok := stats["enabled"].(bool); !ok || enabled {
		t.Errorf("nil breaker stats = %v, want enabled false", stats)
	}
	if !cb.IsHealthy() {
		t.Error("nil breaker should report healthy")
	}
}

func TestNewEmbedCircuitBreakerEnabled(t *testing.T) {
	cb := NewEmbedCircuitBreaker(breakerConfig(true), nil)
	if cb == nil {
		t.Fatal("enabled configuration should yield a breaker")
	}

	stats := cb.GetStats()
	if name, _ := stats["name"].(string); name != "Embedding" {
		t.Errorf("breaker name = %q, want Embedding", name)
	}
	if state, _ := stats["state"].(string); state != "closed" {
		t.Errorf("initial state = %q, want closed", state)
	}
	if enabled, _ := stats["enabled"].(bool); !enabled {
		t.Error("stats should report enabled true")
	}
	if !cb.IsHealthy() {
		t.Error("fresh breaker should be healthy")
	}
}

func TestEmbedCircuitBreakerExecute(t *testing.T) {
	cb := NewEmbedCircuitBreaker(breakerConfig(true), nil)

	t.Run("success passes through", func(t *testing.T) {
		want := &genai.EmbedContentResponse{}
		got, err := cb.Execute(func() (*genai.EmbedContentResponse, error) {
			return want, nil
		})
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if got != want {
			t.Error("Execute should return the callback's response")
		}
	})

	t.Run("failure passes through", func(t *testing.T) {
		wantErr := errors.New("upstream unavailable")
		_, err := cb.Execute(func() (*genai.EmbedContentResponse, error) {
			return nil, wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Errorf("Execute error = %v, want %v", err, wantErr)
		}
		// A single failure below MinRequests must not trip the breaker
		if !cb.IsHealthy() {
			t.Error("breaker should stay closed below the request floor")
		}
	})
}

func TestModelCircuitBreaker(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		cb := NewModelCircuitBreaker(breakerConfig(false), nil)
		if cb != nil {
			t.Fatal("disabled configuration should yield a nil breaker")
		}
		if !cb.IsModelHealthy() {
			t.Error("nil breaker should report healthy")
		}
		stats := cb.GetModelStats()
		if enabled, _ := stats["enabled"].(bool); enabled {
			t.Errorf("nil breaker stats = %v", stats)
		}
	})

	t.Run("enabled", func(t *testing.T) {
		cb := NewModelCircuitBreaker(breakerConfig(true), nil)
		if cb == nil {
			t.Fatal("enabled configuration should yield a breaker")
		}

		want := &genai.Model{Name: "models/test"}
		got, err := cb.ExecuteModel(func() (*genai.Model, error) {
			return want, nil
		})
		if err != nil || got != want {
			t.Errorf("ExecuteModel = %v, %v", got, err)
		}

		stats := cb.GetModelStats()
		if name, _ := stats["name"].(string); name != "Embedding-Model" {
			t.Errorf("breaker name = %q, want Embedding-Model", name)
		}
	})
}
