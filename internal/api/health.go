package api

import (
	"context"
	"sync"
	"time"
)

// Status represents component health.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusCritical Status = "critical"
)

// ComponentHealth is the health of one named component.
type ComponentHealth struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Check probes one component. A failing critical check marks the
// whole service critical; a failing non-critical check only degrades
// it.
type Check struct {
	Name     string
	Critical bool
	Fn       func(ctx context.Context) error
}

// Monitor aggregates health status from registered components.
type Monitor struct {
	checks     []Check
	lastCheck  time.Time
	lastReport map[string]ComponentHealth
	mu         sync.Mutex
}

// NewMonitor creates a health monitor over the given checks.
func NewMonitor(checks ...Check) *Monitor {
	return &Monitor{
		checks:     checks,
		lastReport: make(map[string]ComponentHealth),
	}
}

// CheckHealth probes all components.
func (m *Monitor) CheckHealth(ctx context.Context) map[string]ComponentHealth {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Rate limit checks to avoid spamming dependencies.
	if time.Since(m.lastCheck) < 10*time.Second && len(m.lastReport) > 0 {
		return m.lastReport
	}

	report := make(map[string]ComponentHealth)
	for _, check := range m.checks {
		health := ComponentHealth{
			Name:   check.Name,
			Status: StatusHealthy,
		}

		if err := check.Fn(ctx); err != nil {
			health.Error = err.Error()
			if check.Critical {
				health.Status = StatusCritical
			} else {
				health.Status = StatusDegraded
			}
		}

		report[check.Name] = health
	}

	m.lastCheck = time.Now()
	m.lastReport = report
	return report
}
