package utils

import (
	"context"
	"sync"
	"time"
)

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Healthy   bool            `json:"healthy"`
	Checks    map[string]bool `json:"checks"`
	CheckedAt time.Time       `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	out := currentHealth
	out.Checks = make(map[string]bool, len(currentHealth.Checks))
	for k, v := range currentHealth.Checks {
		out.Checks[k] = v
	}
	return out
}

// RunHealthChecks runs every check once and stores the result.
func RunHealthChecks(ctx context.Context, checks map[string]HealthCheck) HealthStatus {
	status := HealthStatus{Healthy: true, Checks: make(map[string]bool, len(checks)), CheckedAt: time.Now()}
	for name, check := range checks {
		cctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		ok := check(cctx) == nil
		cancel()
		status.Checks[name] = ok
		status.Healthy = status.Healthy && ok
	}

	mu.Lock()
	currentHealth = status
	mu.Unlock()
	return status
}

// StartHealthMonitor checks immediately and then every interval until ctx
// is done.
func StartHealthMonitor(ctx context.Context, interval time.Duration, checks map[string]HealthCheck) {
	RunHealthChecks(ctx, checks)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				RunHealthChecks(ctx, checks)
			}
		}
	}()
}
