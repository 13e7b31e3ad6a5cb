package syncutil

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestContextShardedMutex_BasicLockUnlock(t *testing.T) {
	m := NewContextShardedMutex()

	unlock, err := m.LockContext(context.Background(), "data/fraud_dataset.csv")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	unlock()
}

func TestContextShardedMutex_SerializesSameKey(t *testing.T) {
	m := NewContextShardedMutex()
	ctx := context.Background()

	var evaluations int64
	var wg sync.WaitGroup
	const n = 100

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			unlock, err := m.LockContext(ctx, "data/fraud_dataset.csv")
			if err != nil {
				t.Errorf("lock failed: %v", err)
				return
			}
			defer unlock()
			// Load-then-store on purpose: a broken mutex loses increments.
			v := atomic.LoadInt64(&evaluations)
			atomic.StoreInt64(&evaluations, v+1)
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt64(&evaluations); got != n {
		t.Fatalf("expected %d, got %d — mutual exclusion violated", n, got)
	}
}

func TestContextShardedMutex_CancelledWaiter(t *testing.T) {
	m := NewContextShardedMutex()

	// Hold the dataset lock, as a long cross-validation run would.
	unlock, err := m.LockContext(context.Background(), "data/fraud_dataset.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A second request for the same dataset gives up when its context does.
	waitCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = m.LockContext(waitCtx, "data/fraud_dataset.csv")
	if err == nil {
		t.Fatal("expected context error, got nil")
	}
	if err != context.DeadlineExceeded {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}

	unlock()
}

func TestContextShardedMutex_DistinctKeysIndependent(t *testing.T) {
	m := NewContextShardedMutex()
	ctx := context.Background()

	// Evaluations of different datasets should not block each other.
	// Probabilistic: the two paths could hash to one shard.
	unlock1, err := m.LockContext(ctx, "data/fraud_dataset.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	unlock2, err := m.LockContext(timeoutCtx, "data/holdout_dataset.csv")
	if err != nil {
		t.Skip("keys hashed to the same shard, skipping contention-free check")
	}

	unlock2()
	unlock1()
}

func TestContextShardedMutex_UnlockAllowsNext(t *testing.T) {
	m := NewContextShardedMutex()
	ctx := context.Background()

	unlock, err := m.LockContext(ctx, "data/fraud_dataset.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		u, err := m.LockContext(ctx, "data/fraud_dataset.csv")
		if err != nil {
			return
		}
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("second evaluation acquired the lock before the first released it")
	case <-time.After(20 * time.Millisecond):
		// Expected: still held.
	}

	unlock()

	select {
	case <-acquired:
		// Expected: handed off after release.
	case <-time.After(time.Second):
		t.Fatal("second evaluation never acquired the lock after release")
	}
}
