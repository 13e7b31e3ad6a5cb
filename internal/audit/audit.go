// Package audit persists blocked checkout attempts for later review.
//
// The audit trail is append-only: records are written once when a
// verification is blocked and are never mutated or deleted by this service.
// Writes are fire-and-forget from the scoring path's perspective — a failed
// write is logged and surfaced as saved:false, never as a changed decision.
package audit

import (
	"context"
	"time"
)

// Attempt is one blocked checkout attempt.
type Attempt struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id,omitempty"`
	TypingSpeed float64   `json:"typing_speed"`
	TimeOnPage  float64   `json:"time_on_page"`
	PaymentType string    `json:"payment_type"`
	Reason      string    `json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists blocked attempts.
type Store interface {
	Record(ctx context.Context, attempt *Attempt) error
	// List returns the most recent attempts, newest first, up to limit.
	List(ctx context.Context, limit int) ([]*Attempt, error)
	// ListBefore returns attempts strictly older than (before, beforeID),
	// newest first, up to limit. The ID breaks ties between attempts
	// recorded in the same instant.
	ListBefore(ctx context.Context, before time.Time, beforeID string, limit int) ([]*Attempt, error)
	Count(ctx context.Context) (int64, error)
}
