package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Probe budgets.  Readiness is polled by the orchestrator and must answer
// well inside its timeout; the detail view is for humans.
const (
	readinessProbeTimeout = 5 * time.Second
	detailProbeTimeout    = 10 * time.Second
)

// Component states reported by the probes.
const (
	componentHealthy   = "healthy"
	componentUnhealthy = "unhealthy"
)

// HealthChecker is a backing service the API depends on.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// NamedCheck adapts a probe function such as a connection's HealthCheck.
type NamedCheck struct {
	Label string
	Probe func(ctx context.Context) error
}

func (c NamedCheck) Name() string                    { return c.Label }
func (c NamedCheck) Check(ctx context.Context) error { return c.Probe(ctx) }

// HealthHandler serves the liveness, readiness and detail probes.
type HealthHandler struct {
	checkers []HealthChecker
	version  string
	started  time.Time
}

// NewHealthHandler returns a handler probing checkers.
func NewHealthHandler(version string, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{checkers: checkers, version: version, started: time.Now()}
}

// LivenessResponse is the body of GET /healthz.
type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the body of GET /readyz.
type ReadinessResponse struct {
	Status     string                    `json:"status"`
	Components map[string]ComponentCheck `json:"components,omitempty"`
}

// DetailResponse is the body of GET /healthz/detail.
type DetailResponse struct {
	Status     string                    `json:"status"`
	Version    string                    `json:"version"`
	Uptime     string                    `json:"uptime"`
	CheckedAt  time.Time                 `json:"checkedAt"`
	Components map[string]ComponentCheck `json:"components"`
}

// ComponentCheck is the outcome of one probe.
type ComponentCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// probeReport collects the outcome of one probe round.
type probeReport map[string]ComponentCheck

func (r probeReport) healthy() bool {
	for _, c := range r {
		if c.Status != componentHealthy {
			return false
		}
	}
	return true
}

// Liveness handles GET /healthz.  Dependencies are never probed, so a
// database outage does not get the process restarted.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LivenessResponse{
		Status:  "alive",
		Version: h.version,
		Uptime:  h.uptime(),
	})
}

// Readiness handles GET /readyz: 200 once every dependency answers, 503
// otherwise.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if len(h.checkers) == 0 {
		writeJSON(w, http.StatusOK, ReadinessResponse{Status: "ready"})
		return
	}
	report := h.probe(r.Context(), readinessProbeTimeout)
	if report.healthy() {
		writeJSON(w, http.StatusOK, ReadinessResponse{Status: "ready", Components: report})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, ReadinessResponse{Status: "not_ready", Components: report})
}

// Detailed handles GET /healthz/detail.
func (h *HealthHandler) Detailed(w http.ResponseWriter, r *http.Request) {
	report := h.probe(r.Context(), detailProbeTimeout)
	resp := DetailResponse{
		Status:     "healthy",
		Version:    h.version,
		Uptime:     h.uptime(),
		CheckedAt:  time.Now().UTC(),
		Components: report,
	}
	code := http.StatusOK
	if !report.healthy() {
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// probe runs every checker concurrently under one deadline.  A failing probe
// is recorded, never returned, so the group always waits for all of them.
func (h *HealthHandler) probe(ctx context.Context, timeout time.Duration) probeReport {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	report := make(probeReport, len(h.checkers))
	var mu sync.Mutex
	var g errgroup.Group
	for _, c := range h.checkers {
		c := c
		g.Go(func() error {
			start := time.Now()
			err := c.Check(ctx)
			cc := ComponentCheck{
				Status:  componentHealthy,
				Latency: time.Since(start).Truncate(time.Microsecond).String(),
			}
			if err != nil {
				cc.Status = componentUnhealthy
				cc.Error = err.Error()
			}
			mu.Lock()
			report[c.Name()] = cc
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return report
}

func (h *HealthHandler) uptime() string {
	return time.Since(h.started).Truncate(time.Second).String()
}

//Personal.AI order the ending
