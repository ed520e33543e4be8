package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"distill/internal/services"
)

func testPolicy(attempts int) Policy {
	return Policy{
		MaxAttempts: attempts,
		BaseDelay:   10 * time.Millisecond,
		Multiplier:  2,
		MaxDelay:    80 * time.Millisecond,
		Sleep: func(ctx context.Context, d time.Duration) error {
			return nil
		},
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := testPolicy(3).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDoRetriesTransientFailures(t *testing.T) {
	calls := 0
	err := testPolicy(3).Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return services.Wrap(services.ErrTransient, "test", "op", "flaky", nil)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDoStopsOnPermanentFailure(t *testing.T) {
	calls := 0
	wantErr := services.Wrap(services.ErrValidation, "test", "op", "bad input", nil)
	err := testPolicy(5).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return wantErr
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDoExhaustsAttemptBudget(t *testing.T) {
	calls := 0
	err := testPolicy(4).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return services.Wrap(services.ErrTransient, "test", "op", "still down", nil)
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 4 {
		t.Fatalf("expected 4 calls, got %d", calls)
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected wrapped transient error, got %v", err)
	}
}

func TestDoBackoffDelaysGrow(t *testing.T) {
	var delays []time.Duration
	p := Policy{
		MaxAttempts: 4,
		BaseDelay:   10 * time.Millisecond,
		Multiplier:  2,
		MaxDelay:    time.Second,
		Sleep: func(ctx context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		},
	}
	_ = p.Do(context.Background(), func(ctx context.Context) error {
		return services.Wrap(services.ErrTransient, "test", "op", "fail", nil)
	})
	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond}
	if len(delays) != len(want) {
		t.Fatalf("expected %d delays, got %d (%v)", len(want), len(delays), delays)
	}
	for i, d := range delays {
		if d != want[i] {
			t.Fatalf("delay %d: expected %v, got %v", i, want[i], d)
		}
	}
}

func TestDoBackoffCapsAtMaxDelay(t *testing.T) {
	var delays []time.Duration
	p := Policy{
		MaxAttempts: 6,
		BaseDelay:   10 * time.Millisecond,
		Multiplier:  10,
		MaxDelay:    50 * time.Millisecond,
		Sleep: func(ctx context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		},
	}
	_ = p.Do(context.Background(), func(ctx context.Context) error {
		return services.Wrap(services.ErrTransient, "test", "op", "fail", nil)
	})
	for i, d := range delays {
		if d > 50*time.Millisecond {
			t.Fatalf("delay %d exceeds cap: %v", i, d)
		}
	}
	if last := delays[len(delays)-1]; last != 50*time.Millisecond {
		t.Fatalf("expected final delay at cap, got %v", last)
	}
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{
		MaxAttempts: 5,
		BaseDelay:   10 * time.Millisecond,
		Multiplier:  2,
		MaxDelay:    time.Second,
	}
	calls := 0
	err := p.Do(ctx, func(ctx context.Context) error {
		calls++
		cancel()
		return services.Wrap(services.ErrTransient, "test", "op", "fail", nil)
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestDoCustomClassifier(t *testing.T) {
	sentinel := fmt.Errorf("special")
	calls := 0
	p := testPolicy(3)
	p.Classify = func(err error) bool { return errors.Is(err, sentinel) }
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return sentinel
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	p := New(0, 0, 0, 0)
	if p.MaxAttempts != defaultMaxAttempts {
		t.Fatalf("expected default attempts %d, got %d", defaultMaxAttempts, p.MaxAttempts)
	}
	if p.BaseDelay != defaultBaseDelay {
		t.Fatalf("expected default base delay %v, got %v", defaultBaseDelay, p.BaseDelay)
	}
	if p.Multiplier != defaultMultiplier {
		t.Fatalf("expected default multiplier %v, got %v", defaultMultiplier, p.Multiplier)
	}
	if p.MaxDelay != defaultMaxDelay {
		t.Fatalf("expected default max delay %v, got %v", defaultMaxDelay, p.MaxDelay)
	}
}
