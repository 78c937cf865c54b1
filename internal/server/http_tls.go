package server

import (
	"crypto/tls"
	"fmt"

	"cvmatch/internal/observability"
)

// configureTLS builds the TLS configuration for the server based on the
// configured mode. Returns nil when TLS is disabled.
func (s *Server) configureTLS(om *observability.Manager, vaultClient VaultClientInterface) (*tls.Config, error) {
	switch s.TLSConfig.Mode {
	case "", "disabled":
		return nil, nil
	case "server", "mutual":
	default:
		return nil, fmt.Errorf("unsupported TLS mode: %s", s.TLSConfig.Mode)
	}

	manager := NewCertificateManager(&s.TLSConfig, &s.TLSConfig.AutoReload, vaultClient, om, s.Logger)
	if err := manager.Start(); err != nil {
		return nil, fmt.Errorf("failed to start certificate manager: %w", err)
	}
	s.CertificateManager = manager

	tlsConfig := &tls.Config{
		GetCertificate: manager.GetServerCertificate,
		MinVersion:     minTLSVersion(s.TLSConfig.MinVersion),
	}

	if s.TLSConfig.Mode == "mutual" {
		tlsConfig.ClientCAs = manager.GetCACertPool()
		tlsConfig.ClientAuth = clientAuthType(s.TLSConfig.ClientAuthPolicy)
		if s.TLSConfig.ClientAuthPolicy == "verify" {
			tlsConfig.VerifyPeerCertificate = manager.VerifyPeerCertificate
		}
	}

	return tlsConfig, nil
}

// minTLSVersion maps the configured version string to a tls constant
func minTLSVersion(version string) uint16 {
	switch version {
	case "1.3":
		return tls.VersionTLS13
	default:
		return tls.VersionTLS12
	}
}

// clientAuthType maps the configured client auth policy to a tls constant
func clientAuthType(policy string) tls.ClientAuthType {
	switch policy {
	case "request":
		return tls.RequestClientCert
	case "verify":
		return tls.RequireAnyClientCert
	default:
		return tls.RequireAndVerifyClientCert
	}
}
