package health

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status values.
const (
	StatusOK        = "ok"
	StatusReady     = "ready"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc reports a component's health. It returns nil when healthy.
type CheckFunc func(ctx context.Context) error

// CheckResult represents the result of a single health check.
type CheckResult struct {
	Status     string  `json:"status"`
	Message    string  `json:"message,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

// HealthStatus is the aggregated health of the watch process.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// ErrCheckTimeout is returned when a health check times out.
var ErrCheckTimeout = errors.New("health check timeout")

// Checker runs named health checks with a per-check timeout.
type Checker struct {
	mu           sync.RWMutex
	checks       map[string]CheckFunc
	checkTimeout time.Duration
}

// New creates a new health checker. A zero timeout defaults to 5 seconds.
func New(checkTimeout time.Duration) *Checker {
	if checkTimeout == 0 {
		checkTimeout = 5 * time.Second
	}
	return &Checker{
		checks:       make(map[string]CheckFunc),
		checkTimeout: checkTimeout,
	}
}

// RegisterCheck registers or replaces the check for name.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// ListChecks returns the sorted names of all registered checks.
func (c *Checker) ListChecks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckLiveness reports that the process is running.
func (c *Checker) CheckLiveness(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
	}
}

// CheckReadiness runs every registered check concurrently. The status is
// "ready" when all pass and "degraded" otherwise.
func (c *Checker) CheckReadiness(ctx context.Context) HealthStatus {
	names := c.ListChecks()

	c.mu.RLock()
	checks := make([]CheckFunc, len(names))
	for i, name := range names {
		checks[i] = c.checks[name]
	}
	c.mu.RUnlock()

	results := make([]CheckResult, len(checks))
	var g errgroup.Group
	for i, check := range checks {
		i, check := i, check
		g.Go(func() error {
			results[i] = c.runCheck(ctx, check)
			return nil
		})
	}
	_ = g.Wait()

	status := StatusReady
	byName := make(map[string]CheckResult, len(names))
	for i, name := range names {
		byName[name] = results[i]
		if results[i].Status == StatusUnhealthy {
			status = StatusDegraded
		}
	}

	return HealthStatus{
		Status:    status,
		Checks:    byName,
		Timestamp: time.Now(),
	}
}

// runCheck runs check under the checker's timeout. A check that ignores
// its context is abandoned when the timeout fires.
func (c *Checker) runCheck(ctx context.Context, check CheckFunc) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- check(checkCtx)
	}()

	result := CheckResult{Status: StatusOK}
	select {
	case err := <-done:
		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = err.Error()
		}
	case <-checkCtx.Done():
		result.Status = StatusUnhealthy
		result.Message = ErrCheckTimeout.Error()
	}
	result.DurationMS = float64(time.Since(start).Microseconds()) / 1000
	return result
}
