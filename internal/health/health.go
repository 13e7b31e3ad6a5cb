// Package health provides a registry of named subsystem health checkers
// used by the liveness and readiness endpoints.
package health

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// Status represents the health of a single subsystem.
type Status struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Detail  string `json:"detail,omitempty"`
}

// Checker is a function that checks the health of a subsystem.
type Checker func(ctx context.Context) Status

// Registry holds named health checkers and runs them on demand.
type Registry struct {
	mu       sync.RWMutex
	checkers []namedChecker
}

type namedChecker struct {
	name  string
	check Checker
}

// NewRegistry creates a new health check registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a named health checker.
func (r *Registry) Register(name string, check Checker) {
	r.mu.Lock()
	r.checkers = append(r.checkers, namedChecker{name: name, check: check})
	r.mu.Unlock()
}

// CheckAll runs all registered checkers and returns the aggregate health
// status plus individual subsystem results.
func (r *Registry) CheckAll(ctx context.Context) (healthy bool, statuses []Status) {
	r.mu.RLock()
	checkers := make([]namedChecker, len(r.checkers))
	copy(checkers, r.checkers)
	r.mu.RUnlock()

	healthy = true
	statuses = make([]Status, len(checkers))

	for i, nc := range checkers {
		statuses[i] = nc.check(ctx)
		if !statuses[i].Healthy {
			healthy = false
		}
	}

	return healthy, statuses
}

// ModelChecker reports whether the classifier is loaded. The service runs
// without a model but refuses verifications, so readiness must surface it.
func ModelChecker(loaded func() bool) Checker {
	return func(_ context.Context) Status {
		if !loaded() {
			return Status{Name: "model", Healthy: false, Detail: "classifier not loaded"}
		}
		return Status{Name: "model", Healthy: true}
	}
}

// DatabaseChecker pings the audit database with a short timeout. A nil db
// means the service runs on the in-memory store, which is always healthy.
func DatabaseChecker(db *sql.DB) Checker {
	return func(ctx context.Context) Status {
		if db == nil {
			return Status{Name: "database", Healthy: true, Detail: "in-memory store"}
		}
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return Status{Name: "database", Healthy: false, Detail: fmt.Sprintf("ping failed: %v", err)}
		}
		return Status{Name: "database", Healthy: true}
	}
}

// DatasetChecker reports whether the evaluation dataset is readable, using
// the supplied probe so the checker stays free of filesystem specifics.
// A missing dataset is informational, never degrading: it only disables the
// accuracy endpoints, which report the absence themselves. Scoring and the
// audit trail are unaffected.
func DatasetChecker(path string, probe func(string) error) Checker {
	return func(_ context.Context) Status {
		if path == "" {
			return Status{Name: "dataset", Healthy: true, Detail: "not configured"}
		}
		if err := probe(path); err != nil {
			return Status{Name: "dataset", Healthy: true, Detail: fmt.Sprintf("unavailable, accuracy endpoints disabled: %v", err)}
		}
		return Status{Name: "dataset", Healthy: true}
	}
}
