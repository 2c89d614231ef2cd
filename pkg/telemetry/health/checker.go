package health

import (
	"context"
	"sync"
	"time"
)

// Component and report statuses.
const (
	StatusOK        = "ok"
	StatusReady     = "ready"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// DefaultCheckTimeout bounds a single component check.
const DefaultCheckTimeout = 5 * time.Second

// CheckFunc probes one component. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

// CheckResult is the outcome of a single component check.
type CheckResult struct {
	Status   string        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration_ms,omitempty"`
}

// Report aggregates the probe outcome. Checks is populated only for
// readiness reports.
type Report struct {
	Status    string                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Checker runs named component checks and aggregates them into probe
// reports. Safe for concurrent use.
type Checker struct {
	mu           sync.RWMutex
	checks       map[string]CheckFunc
	checkTimeout time.Duration
}

// New creates a checker. A zero timeout falls back to DefaultCheckTimeout.
func New(checkTimeout time.Duration) *Checker {
	if checkTimeout <= 0 {
		checkTimeout = DefaultCheckTimeout
	}
	return &Checker{
		checks:       make(map[string]CheckFunc),
		checkTimeout: checkTimeout,
	}
}

// Register adds a component check, replacing any existing check with the
// same name.
func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Unregister removes a component check.
func (c *Checker) Unregister(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checks, name)
}

// Liveness reports that the process is running. It never runs component
// checks, so it stays cheap enough for aggressive probe intervals.
func (c *Checker) Liveness(_ context.Context) Report {
	return Report{
		Status:    StatusOK,
		Timestamp: time.Now(),
	}
}

// Readiness runs every registered check concurrently and aggregates the
// results. Any failing component degrades the report. With no checks
// registered the daemon counts as ready.
func (c *Checker) Readiness(ctx context.Context) Report {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	results := make(map[string]CheckResult, len(checks))
	if len(checks) == 0 {
		return Report{
			Status:    StatusReady,
			Checks:    results,
			Timestamp: time.Now(),
		}
	}

	var resultMu sync.Mutex
	var wg sync.WaitGroup
	for name, check := range checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()
			result := c.runCheck(ctx, check)
			resultMu.Lock()
			results[name] = result
			resultMu.Unlock()
		}(name, check)
	}
	wg.Wait()

	status := StatusReady
	for _, result := range results {
		if result.Status == StatusUnhealthy {
			status = StatusDegraded
		}
	}

	return Report{
		Status:    status,
		Checks:    results,
		Timestamp: time.Now(),
	}
}

func (c *Checker) runCheck(ctx context.Context, check CheckFunc) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	start := time.Now()

	errChan := make(chan error, 1)
	go func() {
		errChan <- check(checkCtx)
	}()

	select {
	case err := <-errChan:
		duration := time.Since(start)
		if err != nil {
			return CheckResult{
				Status:   StatusUnhealthy,
				Message:  err.Error(),
				Duration: duration,
			}
		}
		return CheckResult{
			Status:   StatusOK,
			Duration: duration,
		}

	case <-checkCtx.Done():
		return CheckResult{
			Status:   StatusUnhealthy,
			Message:  "check timed out",
			Duration: time.Since(start),
		}
	}
}
