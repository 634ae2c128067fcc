package checker

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// CheckResult represents the result of a single target check
type CheckResult struct {
	Target       string    `json:"target"`
	CheckedAt    time.Time `json:"checked_at"`
	Status       string    `json:"status"`
	HTTPStatus   int       `json:"http_status,omitempty"`
	Protocol     string    `json:"protocol,omitempty"`
	TLSVersion   string    `json:"tls_version,omitempty"`
	KeyExchange  string    `json:"key_exchange,omitempty"`
	ResponseTime float64   `json:"response_time_ms,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Error        string    `json:"error,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// OK reports whether the check produced a response.
func (r CheckResult) OK() bool {
	return r.Status == StatusOK
}

// Checker is the interface that all check implementations must satisfy
type Checker interface {
	// Check performs the actual check logic for a single target
	Check(ctx context.Context, target string) CheckResult

	// Name returns the name of this checker (e.g., "check http", "check tls13")
	Name() string
}

// AuditFunc is a callback function to log audit information
type AuditFunc func(target string, result CheckResult, duration float64) error

// Runner orchestrates the execution of checks with concurrency and rate limiting
type Runner struct {
	Concurrency int           // Maximum number of concurrent checks
	RateLimit   int           // Requests per second (global), 0 disables limiting
	Timeout     time.Duration // Timeout for each check, 0 leaves it to the task
}

// Each calls fn for every index in [0, n) using the runner's worker pool.
// It returns once every call has finished. Calls that have not acquired a slot
// when ctx is cancelled are still made, with the cancelled context, so callers
// always get a value per index.
func (r *Runner) Each(ctx context.Context, n int, fn func(ctx context.Context, i int)) {
	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var limiter *rate.Limiter
	if r.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.RateLimit), r.RateLimit)
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			// Acquire semaphore
			sem <- struct{}{}
			defer func() { <-sem }()

			if limiter != nil {
				_ = limiter.Wait(ctx)
			}

			taskCtx := ctx
			if r.Timeout > 0 {
				var cancel context.CancelFunc
				taskCtx, cancel = context.WithTimeout(ctx, r.Timeout)
				defer cancel()
			}

			fn(taskCtx, idx)
		}(i)
	}

	wg.Wait()
}

// RunChecks executes checks against multiple targets using a worker pool.
// Results are returned in the order of targets.
func (r *Runner) RunChecks(ctx context.Context, targets []string, checker Checker, auditFn AuditFunc) []CheckResult {
	results := make([]CheckResult, len(targets))

	r.Each(ctx, len(targets), func(ctx context.Context, i int) {
		start := time.Now()
		result := checker.Check(ctx, targets[i])
		duration := time.Since(start).Seconds()

		// Call audit function if provided
		if auditFn != nil {
			_ = auditFn(targets[i], result, duration)
		}
		results[i] = result
	})

	return results
}

func elapsedMillis(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
