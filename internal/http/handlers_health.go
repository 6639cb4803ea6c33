package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.started).Round(time.Second).String(),
		"metrics":   s.metrics(),
	})
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]string{"templates": "ok", "backend": "ok"}
	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			checks["backend"] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		}
	}

	writeJSON(w, code, map[string]any{
		"status":   status,
		"checks":   checks,
		"sessions": s.sessions.Size(),
	})
}

func (s *Server) metrics() map[string]int64 {
	requests := s.tracer.Metrics()
	detection := s.detector.Metrics()
	limits := s.limiter.Metrics()
	return map[string]int64{
		"requests_total":       requests.TotalRequests,
		"requests_in_flight":   requests.InFlight,
		"suspicious_requests":  detection.SuspiciousRequests,
		"blocked_requests":     detection.BlockedRequests,
		"rate_limited":         limits.TotalHits,
		"rate_limited_clients": limits.ClientCount,
		"sessions":             int64(s.Sessions()),
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
