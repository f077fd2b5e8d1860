package pipeline

import (
	"context"
	"time"
)

// RetryPolicy wraps the two API calls with a small exponential backoff.
// The zero value means three attempts starting at two seconds.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts > 0 {
		return p.MaxAttempts
	}
	return 3
}

func (p RetryPolicy) initialDelay() time.Duration {
	if p.InitialDelay > 0 {
		return p.InitialDelay
	}
	return 2 * time.Second
}

// Do runs fn until it succeeds, attempts are exhausted, or ctx is done.
// The delay doubles between attempts.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	delay := p.initialDelay()

	var err error
	for attempt := 1; attempt <= p.attempts(); attempt++ {
		if err = fn(); err == nil {
			return nil
		}

		if attempt == p.attempts() {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return err
}
