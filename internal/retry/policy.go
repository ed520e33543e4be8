package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"distill/internal/services"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 1 * time.Second
	defaultMultiplier  = 2.0
	defaultMaxDelay    = 30 * time.Second
)

// Policy is an explicit retry policy: attempt budget, backoff shape, and a
// classification function deciding which failures are worth retrying.
type Policy struct {
	// MaxAttempts counts the first try; 3 means one call plus two retries.
	MaxAttempts int
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration
	// Multiplier grows the delay between consecutive retries.
	Multiplier float64
	// MaxDelay caps the delay between retries.
	MaxDelay time.Duration
	// Classify reports whether a failure should be retried. Defaults to
	// services.IsRetryable.
	Classify func(error) bool
	// Sleep overrides how retry waits are performed (useful for tests).
	Sleep func(ctx context.Context, d time.Duration) error
}

// New builds a policy from explicit knobs, falling back to defaults for
// non-positive values.
func New(maxAttempts int, baseDelay time.Duration, multiplier float64, maxDelay time.Duration) Policy {
	p := Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		Multiplier:  multiplier,
		MaxDelay:    maxDelay,
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = defaultBaseDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = defaultMultiplier
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = defaultMaxDelay
	}
	return p
}

// Do runs op under the policy. It returns nil on the first success, the last
// error once the attempt budget is exhausted or a non-retryable failure is
// seen, and the context error if the context ends while waiting.
func (p Policy) Do(ctx context.Context, op func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	classify := p.Classify
	if classify == nil {
		classify = services.IsRetryable
	}

	timer := p.newBackOff()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		if !classify(lastErr) {
			return lastErr
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		delay := timer.NextBackOff()
		if delay == backoff.Stop {
			break
		}
		if err := p.sleep(ctx, delay); err != nil {
			return err
		}
	}

	if lastErr == nil {
		lastErr = errors.New("retry: unknown failure")
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

func (p Policy) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	if b.InitialInterval <= 0 {
		b.InitialInterval = defaultBaseDelay
	}
	b.Multiplier = p.Multiplier
	if b.Multiplier < 1 {
		b.Multiplier = defaultMultiplier
	}
	b.MaxInterval = p.MaxDelay
	if b.MaxInterval <= 0 {
		b.MaxInterval = defaultMaxDelay
	}
	// Retries stop on the attempt budget, not elapsed time.
	b.MaxElapsedTime = 0
	b.RandomizationFactor = 0
	b.Reset()
	return b
}

func (p Policy) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if p.Sleep != nil {
		return p.Sleep(ctx, delay)
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
