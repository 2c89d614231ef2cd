package health

import (
	"encoding/json"
	"net/http"
)

// LivenessHandler serves the /health probe. Always 200 while the process
// is alive.
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		report := c.Liveness(r.Context())

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(report)
		}
	}
}

// ReadinessHandler serves the /ready probe. Returns 503 when any component
// check fails, so load balancers drain the instance until scopes load again.
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		report := c.Readiness(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if report.Status == StatusDegraded || report.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(report)
		}
	}
}

// Routes registers the probe endpoints on mux under the standard paths
// /health and /ready.
func (c *Checker) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/health", c.LivenessHandler())
	mux.HandleFunc("/ready", c.ReadinessHandler())
}
