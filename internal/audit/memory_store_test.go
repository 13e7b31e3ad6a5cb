package audit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RecordAndList(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := store.Record(ctx, &Attempt{
			ID:          fmt.Sprintf("fa_%d", i),
			UserID:      "u1",
			TypingSpeed: 150,
			TimeOnPage:  10,
			PaymentType: "credit card",
			Reason:      "Fraud detected",
			CreatedAt:   time.Now(),
		})
		require.NoError(t, err)
	}

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	// Newest first, limited
	attempts, err := store.List(ctx, 3)
	require.NoError(t, err)
	require.Len(t, attempts, 3)
	assert.Equal(t, "fa_4", attempts[0].ID)
	assert.Equal(t, "fa_2", attempts[2].ID)

	// Limit larger than stored returns everything
	attempts, err = store.List(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, attempts, 5)
}

func TestMemoryStore_ListBefore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := store.Record(ctx, &Attempt{
			ID:        fmt.Sprintf("fa_%d", i),
			Reason:    "Fraud detected",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	// Everything strictly older than fa_3.
	attempts, err := store.ListBefore(ctx, base.Add(3*time.Minute), "fa_3", 10)
	require.NoError(t, err)
	require.Len(t, attempts, 3)
	assert.Equal(t, "fa_2", attempts[0].ID)
	assert.Equal(t, "fa_0", attempts[2].ID)

	// Limit still applies.
	attempts, err = store.ListBefore(ctx, base.Add(3*time.Minute), "fa_3", 2)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, "fa_2", attempts[0].ID)

	// Same timestamp falls back to ID ordering.
	require.NoError(t, store.Record(ctx, &Attempt{ID: "fa_0a", CreatedAt: base}))
	attempts, err = store.ListBefore(ctx, base, "fa_0a", 10)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, "fa_0", attempts[0].ID)
}

func TestMemoryStore_ListEmpty(t *testing.T) {
	store := NewMemoryStore()
	attempts, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, attempts)
}

func TestMemoryStore_CopiesRecords(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	original := &Attempt{ID: "fa_1", Reason: "Fraud detected"}
	require.NoError(t, store.Record(ctx, original))

	// Mutating the caller's record must not affect the stored copy.
	original.Reason = "changed"

	attempts, err := store.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, "Fraud detected", attempts[0].Reason)
}
