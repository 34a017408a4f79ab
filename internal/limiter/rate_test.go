package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowWithinLimit(t *testing.T) {
	r := NewRateLimiter(3)

	assert.True(t, r.Allow())
	assert.True(t, r.Allow())
	assert.True(t, r.Allow())
	assert.False(t, r.Allow())
}

func TestAllowWindowSlides(t *testing.T) {
	r := NewRateLimiter(2)

	assert.True(t, r.Allow())
	assert.True(t, r.Allow())
	assert.False(t, r.Allow())

	// Sau 1 giây các request cũ rơi khỏi cửa sổ
	time.Sleep(1100 * time.Millisecond)
	assert.True(t, r.Allow())
}

func TestZeroMaxAlwaysAllows(t *testing.T) {
	r := NewRateLimiter(0)

	for i := 0; i < 100; i++ {
		assert.True(t, r.Allow())
	}
}

func TestWaitReturnsOnContextCancel(t *testing.T) {
	r := NewRateLimiter(1)
	require.True(t, r.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := r.Wait(ctx, 10*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitSucceedsWhenSlotFree(t *testing.T) {
	r := NewRateLimiter(5)

	err := r.Wait(context.Background(), 10*time.Millisecond)
	assert.NoError(t, err)
}
