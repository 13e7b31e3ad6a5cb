package pagination

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// attemptRef mirrors the fields the audit listing pages over.
type attemptRef struct {
	id        string
	createdAt time.Time
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	ts := time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC)
	id := "fa_9f2c41d6a8b3e07512cd"

	encoded := Encode(ts, id)
	assert.NotEmpty(t, encoded)

	cursor, err := Decode(encoded)
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, ts, cursor.CreatedAt)
	assert.Equal(t, id, cursor.ID)
}

func TestDecode_Empty(t *testing.T) {
	cursor, err := Decode("")
	assert.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode("not-base64!!!")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cursor")
}

func TestDecode_MalformedPayload(t *testing.T) {
	// Valid base64 but no | separator
	_, err := Decode("bm9waXBl") // "nopipe"
	assert.Error(t, err)
}

func refs(n int) []attemptRef {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	out := make([]attemptRef, n)
	for i := range out {
		// Newest first, matching the audit listing order.
		out[i] = attemptRef{
			id:        fmt.Sprintf("fa_%04d", n-i),
			createdAt: base.Add(-time.Duration(i) * time.Minute),
		}
	}
	return out
}

func TestComputePage_NoMore(t *testing.T) {
	page, cursor, hasMore := ComputePage(refs(3), 5, func(a attemptRef) (time.Time, string) {
		return a.createdAt, a.id
	})
	assert.Len(t, page, 3)
	assert.Empty(t, cursor)
	assert.False(t, hasMore)
}

func TestComputePage_HasMore(t *testing.T) {
	page, cursor, hasMore := ComputePage(refs(4), 3, func(a attemptRef) (time.Time, string) {
		return a.createdAt, a.id
	})
	assert.Len(t, page, 3)
	assert.NotEmpty(t, cursor)
	assert.True(t, hasMore)

	// The cursor points at the last attempt on the page.
	c, err := Decode(cursor)
	require.NoError(t, err)
	assert.Equal(t, "fa_0002", c.ID)
	assert.Equal(t, page[2].createdAt, c.CreatedAt)
}

func TestComputePage_ExactLimit(t *testing.T) {
	page, cursor, hasMore := ComputePage(refs(3), 3, func(a attemptRef) (time.Time, string) {
		return a.createdAt, a.id
	})
	assert.Len(t, page, 3)
	assert.Empty(t, cursor)
	assert.False(t, hasMore)
}
