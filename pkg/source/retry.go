package source

import (
	"context"
	"time"

	errs "github.com/matzehuels/organigram/pkg/errors"
)

// Connection retry defaults used by [Open].
const (
	DefaultConnectAttempts = 3
	DefaultRetryDelay      = time.Second
)

// retryConnect calls open up to attempts times, doubling delay after each
// failure. Only SOURCE_ERROR failures (unreachable or refusing databases) are
// retried; anything else, such as a malformed URL, returns immediately.
func retryConnect(ctx context.Context, attempts int, delay time.Duration, open func() (Source, error)) (Source, error) {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		src, err := open()
		if err == nil {
			return src, nil
		}
		if lastErr = err; !errs.Is(err, errs.ErrCodeSource) {
			return nil, err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return nil, lastErr
}
