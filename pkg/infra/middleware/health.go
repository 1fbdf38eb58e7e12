package middleware

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	mwopts "github.com/kart-io/sentinel-embed/pkg/options/middleware"
)

// HealthStatus represents the health status.
type HealthStatus string

const (
	// HealthStatusUp indicates the service is healthy.
	HealthStatusUp HealthStatus = "UP"
	// HealthStatusDown indicates the service is unhealthy.
	HealthStatusDown HealthStatus = "DOWN"
)

// ProbeResponse is the body of the liveness and readiness probes.
type ProbeResponse struct {
	Status  HealthStatus           `json:"status"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
	Version string                 `json:"version,omitempty"`
}

// CheckResult is the outcome of one named check.
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// ReadinessCheck reports named results for the readiness probe.
type ReadinessCheck func(ctx context.Context) map[string]error

// HealthManager runs readiness checks and tracks whether the service
// accepts traffic.
type HealthManager struct {
	mu      sync.RWMutex
	checks  map[string]ReadinessCheck
	ready   atomic.Bool
	version string
	timeout time.Duration
}

// NewHealthManager creates a ready manager reporting version.
func NewHealthManager(version string) *HealthManager {
	h := &HealthManager{
		checks:  make(map[string]ReadinessCheck),
		version: version,
		timeout: 3 * time.Second,
	}
	h.ready.Store(true)
	return h
}

// Register adds a readiness check under name.
func (h *HealthManager) Register(name string, check ReadinessCheck) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// SetReady sets the readiness status.
func (h *HealthManager) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady returns the readiness status.
func (h *HealthManager) IsReady() bool {
	return h.ready.Load()
}

// Check runs every readiness check. Results are keyed "<check>" or
// "<check>.<name>" when a check reports several results.
func (h *HealthManager) Check(ctx context.Context) ProbeResponse {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	checks := make(map[string]ReadinessCheck, len(h.checks))
	for name, c := range h.checks {
		checks[name] = c
	}
	h.mu.RUnlock()
	sort.Strings(names)

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	resp := ProbeResponse{Status: HealthStatusUp, Version: h.version}
	if !h.IsReady() {
		resp.Status = HealthStatusDown
	}
	for _, name := range names {
		for sub, err := range checks[name](ctx) {
			key := name
			if sub != "" {
				key += "." + sub
			}
			if resp.Checks == nil {
				resp.Checks = make(map[string]CheckResult)
			}
			if err != nil {
				resp.Status = HealthStatusDown
				resp.Checks[key] = CheckResult{Status: HealthStatusDown, Message: err.Error()}
				continue
			}
			resp.Checks[key] = CheckResult{Status: HealthStatusUp}
		}
	}
	return resp
}

// RegisterProbes registers the liveness and readiness routes.
func RegisterProbes(engine *gin.Engine, opts *mwopts.HealthOptions, h *HealthManager) {
	if opts == nil || h == nil {
		return
	}

	if opts.LivenessPath != "" {
		engine.GET(opts.LivenessPath, func(c *gin.Context) {
			c.JSON(http.StatusOK, ProbeResponse{Status: HealthStatusUp, Version: h.version})
		})
	}

	if opts.ReadinessPath != "" {
		engine.GET(opts.ReadinessPath, func(c *gin.Context) {
			resp := h.Check(c.Request.Context())
			status := http.StatusOK
			if resp.Status == HealthStatusDown {
				status = http.StatusServiceUnavailable
			}
			c.JSON(status, resp)
		})
	}
}
