package health

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestRegistryEmpty(t *testing.T) {
	r := NewRegistry()
	healthy, statuses := r.CheckAll(context.Background())
	if !healthy {
		t.Fatal("empty registry should be healthy")
	}
	if len(statuses) != 0 {
		t.Fatalf("expected 0 statuses, got %d", len(statuses))
	}
}

func TestRegistryOneUnhealthy(t *testing.T) {
	r := NewRegistry()
	r.Register("database", DatabaseChecker(nil))
	r.Register("model", ModelChecker(func() bool { return false }))

	healthy, statuses := r.CheckAll(context.Background())
	if healthy {
		t.Fatal("registry with unhealthy checker should report unhealthy")
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if statuses[1].Detail != "classifier not loaded" {
		t.Fatalf("expected detail 'classifier not loaded', got %q", statuses[1].Detail)
	}
}

func TestDatasetCheckerMissingFileStaysHealthy(t *testing.T) {
	r := NewRegistry()
	r.Register("model", ModelChecker(func() bool { return true }))
	r.Register("dataset", DatasetChecker("data/fraud.csv", func(string) error {
		return errors.New("no such file")
	}))

	// A missing dataset only disables the accuracy endpoints; it must
	// never take the whole service to degraded.
	healthy, statuses := r.CheckAll(context.Background())
	if !healthy {
		t.Fatal("missing dataset must not degrade aggregate health")
	}
	if !statuses[1].Healthy {
		t.Fatal("dataset check should be informational, not failing")
	}
	if statuses[1].Detail == "" {
		t.Fatal("missing dataset should still be reported in the detail")
	}
}

func TestModelChecker(t *testing.T) {
	loaded := false
	check := ModelChecker(func() bool { return loaded })

	if s := check(context.Background()); s.Healthy {
		t.Fatal("unloaded model should be unhealthy")
	}
	loaded = true
	if s := check(context.Background()); !s.Healthy {
		t.Fatal("loaded model should be healthy")
	}
}

func TestDatabaseCheckerNilDB(t *testing.T) {
	s := DatabaseChecker(nil)(context.Background())
	if !s.Healthy {
		t.Fatal("nil db means the in-memory store, which is always healthy")
	}
	if s.Detail != "in-memory store" {
		t.Fatalf("unexpected detail %q", s.Detail)
	}
}

func TestDatasetCheckerUnconfigured(t *testing.T) {
	s := DatasetChecker("", func(string) error { return errors.New("never called") })(context.Background())
	if !s.Healthy {
		t.Fatal("unconfigured dataset should not fail readiness")
	}
}

func TestRegistryConcurrentRegisterAndCheck(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Register("model", ModelChecker(func() bool { return true }))
		}()
	}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.CheckAll(context.Background())
		}()
	}

	wg.Wait()
}
