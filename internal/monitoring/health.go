package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

var startTime = time.Now()

// HealthChecker tracks liveness of the evaluation loop and serves it as
// a JSON health endpoint.
type HealthChecker struct {
	mu             sync.RWMutex
	lastEvaluation time.Time
	lastVix        float64
	riskState      string
	errors         []string
}

// HealthStatus is the JSON payload of the health endpoint.
type HealthStatus struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	LastEvaluation time.Time `json:"last_evaluation"`
	LastVix        float64   `json:"last_vix"`
	RiskState      string    `json:"risk_state"`
	Uptime         string    `json:"uptime"`
	Errors         []string  `json:"errors,omitempty"`
}

// NewHealthChecker returns a checker with no recorded evaluations.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{errors: make([]string, 0)}
}

// RecordEvaluation marks a completed evaluation cycle.
func (h *HealthChecker) RecordEvaluation(vix float64, riskState string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastEvaluation = time.Now()
	h.lastVix = vix
	h.riskState = riskState
	h.errors = h.errors[:0]
}

// AddError records an evaluation failure.
func (h *HealthChecker) AddError(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, msg)
	if len(h.errors) > 10 {
		h.errors = h.errors[len(h.errors)-10:]
	}
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	code := http.StatusOK
	if h.lastEvaluation.IsZero() || time.Since(h.lastEvaluation) > time.Hour {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	if len(h.errors) > 0 {
		status = "unhealthy"
		code = http.StatusInternalServerError
	}

	health := HealthStatus{
		Status:         status,
		Timestamp:      time.Now(),
		LastEvaluation: h.lastEvaluation,
		LastVix:        h.lastVix,
		RiskState:      h.riskState,
		Uptime:         time.Since(startTime).String(),
		Errors:         h.errors,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(health)
}
