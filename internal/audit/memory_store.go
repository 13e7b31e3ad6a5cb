package audit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu       sync.RWMutex
	attempts []*Attempt
}

// NewMemoryStore creates an in-memory audit store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Record(ctx context.Context, attempt *Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := *attempt
	s.attempts = append(s.attempts, &a)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]*Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.attempts) == 0 {
		return nil, nil
	}

	start := len(s.attempts) - limit
	if limit <= 0 || start < 0 {
		start = 0
	}

	result := make([]*Attempt, 0, len(s.attempts)-start)
	for i := len(s.attempts) - 1; i >= start; i-- {
		a := *s.attempts[i]
		result = append(result, &a)
	}
	return result, nil
}

func (s *MemoryStore) ListBefore(ctx context.Context, before time.Time, beforeID string, limit int) ([]*Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	var result []*Attempt
	for i := len(s.attempts) - 1; i >= 0 && len(result) < limit; i-- {
		a := s.attempts[i]
		older := a.CreatedAt.Before(before) ||
			(a.CreatedAt.Equal(before) && a.ID < beforeID)
		if !older {
			continue
		}
		cp := *a
		result = append(result, &cp)
	}
	return result, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.attempts)), nil
}
