package server

import "fmt"

// displayServerInfo prints a startup banner with the effective configuration
func (s *Server) displayServerInfo() {
	scheme := "http"
	if s.TLSConfig.Mode == "server" || s.TLSConfig.Mode == "mutual" {
		scheme = "https"
	}

	fmt.Printf("cvmatch server %s\n", s.Version)
	fmt.Printf("Listening on %s://%s:%s\n", scheme, s.Host, s.Port)

	fmt.Println("Endpoints:")
	fmt.Println("  POST /match       - score one candidate against a job")
	fmt.Println("  POST /match/batch - score many candidates against a job")
	fmt.Println("  POST /summary     - executive summary for a candidate")
	fmt.Println("  POST /embed       - embed free text")
	fmt.Println("  POST /similarity  - cosine similarity of two vectors")
	fmt.Println("  GET  /health      - health status")
	fmt.Println("  GET  /stats       - engine statistics")

	if s.TLSConfig.Mode == "mutual" {
		fmt.Println("TLS: mutual (client certificates required)")
	} else if s.TLSConfig.Mode == "server" {
		fmt.Println("TLS: server")
	}

	if len(s.APIKeys) > 0 {
		fmt.Printf("Authentication: enabled (%d API keys)\n", len(s.APIKeys))
	} else {
		fmt.Println("Authentication: disabled")
	}

	if s.RateLimiter != nil {
		fmt.Printf("Rate limiting: %d req/min (burst %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
	}

	if s.AppConfig.Observability.Prometheus.Enabled {
		fmt.Printf("Metrics: http://localhost:%s%s\n",
			s.AppConfig.Observability.Prometheus.Port,
			s.AppConfig.Observability.Prometheus.Endpoint)
	}
}
