package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

var startTime = time.Now()

// The registered health checker receives error reports from the metric
// recorders so the health payload reflects recent failures.
var registry struct {
	mu      sync.RWMutex
	current *HealthChecker
}

// SetHealthChecker registers the checker that RecordError feeds
func SetHealthChecker(h *HealthChecker) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.current = h
}

func activeHealthChecker() *HealthChecker {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return registry.current
}

// HealthChecker serves a liveness snapshot of the engine
type HealthChecker struct {
	mu            sync.RWMutex
	lastActivity  time.Time
	emergencyStop bool
	errors        []string
}

// HealthStatus is the JSON payload of the health endpoint
type HealthStatus struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	LastActivity  time.Time `json:"last_activity"`
	EmergencyStop bool      `json:"emergency_stop"`
	Uptime        string    `json:"uptime"`
	Errors        []string  `json:"errors,omitempty"`
}

// NewHealthChecker creates a new health checker
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		errors: make([]string, 0),
	}
}

// RecordActivity marks the engine as recently active
func (h *HealthChecker) RecordActivity() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastActivity = time.Now()
}

// SetEmergencyStop reflects the breaker state in the health payload
func (h *HealthChecker) SetEmergencyStop(active bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.emergencyStop = active
}

// RecordError appends an error message, keeping the most recent ten
func (h *HealthChecker) RecordError(message string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.errors = append(h.errors, message)
	if len(h.errors) > 10 {
		h.errors = h.errors[1:]
	}
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	code := http.StatusOK
	if h.emergencyStop {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	if len(h.errors) > 0 {
		status = "unhealthy"
		code = http.StatusInternalServerError
	}

	health := HealthStatus{
		Status:        status,
		Timestamp:     time.Now(),
		LastActivity:  h.lastActivity,
		EmergencyStop: h.emergencyStop,
		Uptime:        time.Since(startTime).String(),
		Errors:        h.errors,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(health)
}
