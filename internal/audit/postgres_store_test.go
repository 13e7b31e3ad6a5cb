package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudlens/fraudlens/internal/idgen"
	"github.com/fraudlens/fraudlens/internal/testutil"
)

func TestPostgresStoreRoundTrip(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPostgresStore(db)
	require.NoError(t, store.Migrate(ctx))

	first := &Attempt{
		ID:          idgen.WithPrefix("fa_"),
		UserID:      "u-42",
		TypingSpeed: 182.5,
		TimeOnPage:  3.2,
		PaymentType: "paytm",
		Reason:      "Fraud detected",
		CreatedAt:   time.Now().UTC().Add(-time.Minute),
	}
	second := &Attempt{
		ID:          idgen.WithPrefix("fa_"),
		TypingSpeed: 199,
		TimeOnPage:  1,
		PaymentType: "cash on delivery",
		Reason:      "Fraud detected",
		CreatedAt:   time.Now().UTC(),
	}

	require.NoError(t, store.Record(ctx, first))
	require.NoError(t, store.Record(ctx, second))

	attempts, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, attempts, 2)

	// Newest first.
	assert.Equal(t, second.ID, attempts[0].ID)
	assert.Equal(t, first.ID, attempts[1].ID)

	// Absent user_id round-trips as empty, not a scan failure.
	assert.Empty(t, attempts[0].UserID)
	assert.Equal(t, "u-42", attempts[1].UserID)
	assert.Equal(t, 182.5, attempts[1].TypingSpeed)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestPostgresStoreListLimit(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPostgresStore(db)
	require.NoError(t, store.Migrate(ctx))

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(ctx, &Attempt{
			ID:          idgen.WithPrefix("fa_"),
			TypingSpeed: 180,
			TimeOnPage:  5,
			PaymentType: "paypal",
			Reason:      "Fraud detected",
			CreatedAt:   time.Now().UTC().Add(time.Duration(i) * time.Second),
		}))
	}

	attempts, err := store.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, attempts, 3)

	// Cursor continuation picks up exactly where the page ended.
	last := attempts[2]
	rest, err := store.ListBefore(ctx, last.CreatedAt, last.ID, 10)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.True(t, rest[0].CreatedAt.Before(last.CreatedAt))
}
