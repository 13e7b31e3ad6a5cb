package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelsAndFormats(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		for _, format := range []string{"json", "text"} {
			logger := New(level, format)
			require.NotNil(t, logger, "level=%s format=%s", level, format)
		}
	}
}

func TestRequestID_RoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestID(ctx))

	ctx = WithRequestID(ctx, "req-123")
	assert.Equal(t, "req-123", RequestID(ctx))
}

func TestL_AnnotatesRequestID(t *testing.T) {
	ctx := WithLogger(context.Background(), New("info", "text"))
	assert.NotNil(t, L(ctx))

	ctx = WithRequestID(ctx, "req-456")
	assert.NotNil(t, L(ctx))
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}
