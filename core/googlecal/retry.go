package googlecal

import (
	"context"
	"time"

	"github.com/gekaluck/couple-moments-sub000/core/constants"
	"github.com/gekaluck/couple-moments-sub000/core/logger"
)

// baseDelay is a variable so tests can collapse the backoff.
var baseDelay = constants.RetryBaseDelay

// Do runs op, retrying transient failures with exponential backoff up to
// constants.RetryMaxAttempts total attempts. Non-retryable errors return
// immediately after the first attempt; an exhausted retryable error is
// returned as-is so callers can still classify it as transient.
func Do(ctx context.Context, op func() error) error {
	var err error
	delay := baseDelay

	for attempt := 1; attempt <= constants.RetryMaxAttempts; attempt++ {
		if attempt > 1 {
			logger.Warn("googlecal:Retry", "attempt", attempt, "delay", delay.String(), "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		err = op()
		if err == nil || !IsRetryable(err) {
			return err
		}
	}
	return err
}
