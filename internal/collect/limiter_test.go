package collect

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostLimiterThrottlesPerHost(t *testing.T) {
	hl := NewHostLimiter(1, 1)

	// First request on a host consumes its only token.
	require.NoError(t, hl.Wait(context.Background(), "https://a.test/jobs/1"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, hl.Wait(ctx, "https://a.test/jobs/2"))

	// A different host has its own bucket and is not held up.
	require.NoError(t, hl.Wait(context.Background(), "https://b.test/jobs/1"))
}

func TestHostLimiterHostIsCaseInsensitive(t *testing.T) {
	hl := NewHostLimiter(1, 1)
	require.NoError(t, hl.Wait(context.Background(), "https://A.Test/jobs/1"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, hl.Wait(ctx, "https://a.test/jobs/2"))
}

func TestHostLimiterUnparseableURLsShareBucket(t *testing.T) {
	hl := NewHostLimiter(1, 1)
	require.NoError(t, hl.Wait(context.Background(), "::not-a-url"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, hl.Wait(ctx, "also not a url"))
}
