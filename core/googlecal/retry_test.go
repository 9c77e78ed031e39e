package googlecal

import (
	"context"
	"fmt"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastBackoff(t *testing.T) {
	t.Helper()
	old := baseDelay
	baseDelay = time.Millisecond
	t.Cleanup(func() { baseDelay = old })
}

func TestDoRetryableExhaustsThreeAttempts(t *testing.T) {
	fastBackoff(t)

	attempts := 0
	err := Do(context.Background(), func() error {
		attempts++
		return &APIError{StatusCode: http.StatusServiceUnavailable}
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.True(t, IsRetryable(err))
}

func TestDoNonRetryableFailsAfterOneAttempt(t *testing.T) {
	fastBackoff(t)

	attempts := 0
	err := Do(context.Background(), func() error {
		attempts++
		return &APIError{StatusCode: http.StatusForbidden}
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.False(t, IsRetryable(err))
}

func TestDoSucceedsAfterTransientFailure(t *testing.T) {
	fastBackoff(t)

	attempts := 0
	err := Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return &APIError{StatusCode: http.StatusTooManyRequests}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := Do(ctx, func() error {
		attempts++
		cancel()
		return &APIError{StatusCode: http.StatusBadGateway}
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestIsRetryableClassification(t *testing.T) {
	for _, status := range []int{429, 500, 502, 503, 504} {
		assert.True(t, IsRetryable(&APIError{StatusCode: status}), "status %d", status)
	}
	for _, status := range []int{400, 401, 403, 404, 409, 410} {
		assert.False(t, IsRetryable(&APIError{StatusCode: status}), "status %d", status)
	}

	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(fmt.Errorf("dial: %w", syscall.ECONNRESET)))
	assert.False(t, IsRetryable(fmt.Errorf("some app failure")))
	assert.False(t, IsRetryable(nil))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(&APIError{StatusCode: http.StatusNotFound}))
	assert.True(t, IsNotFound(&APIError{StatusCode: http.StatusGone}))
	assert.False(t, IsNotFound(&APIError{StatusCode: http.StatusForbidden}))
	assert.False(t, IsNotFound(fmt.Errorf("plain error")))
}
