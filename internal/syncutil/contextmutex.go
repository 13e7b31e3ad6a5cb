// Package syncutil provides the locking primitive behind dataset
// evaluation: a fixed pool of channel-based mutexes keyed by string, so
// concurrent evaluations of the same dataset run one at a time while
// waiters can still bail out on request cancellation.
package syncutil

import (
	"context"
	"hash/fnv"
	"sync"
)

// ContextShardedMutex is a fixed-size pool of context-aware mutexes.
// Keys hash onto 256 shards; distinct keys may occasionally share a
// shard, which costs a little false contention but bounds memory no
// matter how many keys are seen.
type ContextShardedMutex struct {
	shards [256]chanMutex
	once   sync.Once
}

// chanMutex is a mutex built on a one-slot channel so acquisition can
// select against a context's done channel.
type chanMutex struct {
	ch chan struct{}
}

// NewContextShardedMutex creates a context-aware sharded mutex.
func NewContextShardedMutex() *ContextShardedMutex {
	m := &ContextShardedMutex{}
	m.init()
	return m
}

func (m *ContextShardedMutex) init() {
	m.once.Do(func() {
		for i := range m.shards {
			m.shards[i].ch = make(chan struct{}, 1)
			m.shards[i].ch <- struct{}{} // Start unlocked.
		}
	})
}

// LockContext acquires the mutex for the given key, respecting context
// cancellation. On success, returns an unlock function the caller MUST
// invoke when done. On cancellation, returns nil and the context error.
func (m *ContextShardedMutex) LockContext(ctx context.Context, key string) (func(), error) {
	m.init()
	shard := &m.shards[m.shardIdx(key)]

	select {
	case <-shard.ch:
		// Acquired the lock.
		return func() { shard.ch <- struct{}{} }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *ContextShardedMutex) shardIdx(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % 256
}
