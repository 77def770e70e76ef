package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Health returns basic health check
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status    string `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// CheckFunc probes one local dependency
type CheckFunc func(ctx context.Context) error

// Ready runs every check in parallel and reports 503 if any is down.
// The backend itself is not probed; its failures reach the user per call.
func Ready(checks map[string]CheckFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		var (
			mu      sync.Mutex
			wg      sync.WaitGroup
			results = make(map[string]HealthCheckResult, len(checks))
		)
		for name, check := range checks {
			wg.Add(1)
			go func(name string, check CheckFunc) {
				defer wg.Done()
				res := runCheck(ctx, check)
				mu.Lock()
				results[name] = res
				mu.Unlock()
			}(name, check)
		}
		wg.Wait()

		allHealthy := true
		for _, res := range results {
			if res.Status != "up" {
				allHealthy = false
			}
		}

		response := map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"checks":    results,
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			response["status"] = "ready"
			w.WriteHeader(http.StatusOK)
		} else {
			response["status"] = "not_ready"
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(response)
	}
}

func runCheck(ctx context.Context, check CheckFunc) HealthCheckResult {
	start := time.Now()
	err := check(ctx)
	latency := time.Since(start)

	if err != nil {
		return HealthCheckResult{Status: "down", LatencyMs: latency.Milliseconds(), Error: err.Error()}
	}
	return HealthCheckResult{Status: "up", LatencyMs: latency.Milliseconds()}
}
