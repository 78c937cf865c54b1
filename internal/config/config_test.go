package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:  "placeholder",
			Dimension: 768,
			Timeout:   30 * time.Second,
		},
		Matching: MatchingConfig{
			Weights: WeightsConfig{
				Similarity: 0.5,
				Technical:  0.3,
				Experience: 0.15,
				Education:  0.05,
			},
			BatchConcurrency: 8,
		},
		Server: ServerConfig{
			Port: "8080",
			TLS:  TLSConfig{Mode: "disabled"},
		},
		App: AppConfig{
			DefaultFormat:    "json",
			SupportedFormats: []string{"json", "text", "markdown"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid configuration",
			mutate: func(c *Config) {},
		},
		{
			name:    "unknown embedding provider",
			mutate:  func(c *Config) { c.Embedding.Provider = "openai" },
			wantErr: "invalid embedding provider",
		},
		{
			name:    "non-positive dimension",
			mutate:  func(c *Config) { c.Embedding.Dimension = 0 },
			wantErr: "dimension must be positive",
		},
		{
			name:    "non-positive timeout",
			mutate:  func(c *Config) { c.Embedding.Timeout = 0 },
			wantErr: "timeout must be positive",
		},
		{
			name:    "negative weight",
			mutate:  func(c *Config) { c.Matching.Weights.Technical = -0.1 },
			wantErr: "must be non-negative",
		},
		{
			name:    "non-positive batch concurrency",
			mutate:  func(c *Config) { c.Matching.BatchConcurrency = 0 },
			wantErr: "batchConcurrency must be positive",
		},
		{
			name:    "negative topK",
			mutate:  func(c *Config) { c.Matching.TopK = -1 },
			wantErr: "topK must not be negative",
		},
		{
			name:    "missing port",
			mutate:  func(c *Config) { c.Server.Port = "" },
			wantErr: "server port is required",
		},
		{
			name:    "default format not supported",
			mutate:  func(c *Config) { c.App.DefaultFormat = "xml" },
			wantErr: "invalid default format",
		},
		{
			name:    "TLS errors surface through Validate",
			mutate:  func(c *Config) { c.Server.TLS.Mode = "badmode" },
			wantErr: "invalid TLS mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTLSConfig(t *testing.T) {
	tests := []struct {
		name    string
		tls     TLSConfig
		wantErr string
	}{
		{
			name: "disabled mode skips all checks",
			tls:  TLSConfig{Mode: "disabled"},
		},
		{
			name: "server mode with files",
			tls:  TLSConfig{Mode: "server", CertFile: "cert.pem", KeyFile: "key.pem"},
		},
		{
			name: "server mode with content",
			tls:  TLSConfig{Mode: "server", CertContent: "PEM", KeyContent: "PEM"},
		},
		{
			name:    "server mode missing key",
			tls:     TLSConfig{Mode: "server", CertFile: "cert.pem"},
			wantErr: "certificate and key are required",
		},
		{
			name:    "server mode with both file and content",
			tls:     TLSConfig{Mode: "server", CertFile: "cert.pem", CertContent: "PEM", KeyFile: "key.pem"},
			wantErr: "cannot specify both certFile and certContent",
		},
		{
			name: "mutual mode with CA",
			tls: TLSConfig{
				Mode: "mutual", CertFile: "cert.pem", KeyFile: "key.pem", CAFile: "ca.pem",
			},
		},
		{
			name:    "mutual mode missing CA",
			tls:     TLSConfig{Mode: "mutual", CertFile: "cert.pem", KeyFile: "key.pem"},
			wantErr: "CA certificate is required",
		},
		{
			name: "mutual mode with both CA forms",
			tls: TLSConfig{
				Mode: "mutual", CertFile: "cert.pem", KeyFile: "key.pem",
				CAFile: "ca.pem", CAContent: "PEM",
			},
			wantErr: "cannot specify both caFile and caContent",
		},
		{
			name: "invalid client auth policy",
			tls: TLSConfig{
				Mode: "mutual", CertFile: "cert.pem", KeyFile: "key.pem",
				CAFile: "ca.pem", ClientAuthPolicy: "optional",
			},
			wantErr: "invalid clientAuthPolicy",
		},
		{
			name: "valid client auth policies",
			tls: TLSConfig{
				Mode: "mutual", CertFile: "cert.pem", KeyFile: "key.pem",
				CAFile: "ca.pem", ClientAuthPolicy: "verify",
			},
		},
		{
			name:    "invalid min version",
			tls:     TLSConfig{Mode: "server", CertFile: "cert.pem", KeyFile: "key.pem", MinVersion: "1.1"},
			wantErr: "invalid TLS minVersion",
		},
		{
			name: "min version 1.3 accepted",
			tls:  TLSConfig{Mode: "server", CertFile: "cert.pem", KeyFile: "key.pem", MinVersion: "1.3"},
		},
		{
			name:    "unknown mode",
			tls:     TLSConfig{Mode: "plaintext"},
			wantErr: "invalid TLS mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Server.TLS = tt.tls

			err := cfg.ValidateTLSConfig()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateTLSConfig() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}
