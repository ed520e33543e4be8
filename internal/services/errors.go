package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	// ErrTransient marks failures that are expected to succeed on retry
	// (connection resets, 5xx responses, rate limits).
	ErrTransient = errors.New("transient failure")
	// ErrPermanent marks failures that retrying cannot fix (authentication
	// failures, malformed input rejected by the service).
	ErrPermanent = errors.New("permanent failure")
	// ErrTimeout marks per-call deadline expiry. Timeouts are retried until
	// the retry budget is exhausted, then treated as permanent.
	ErrTimeout = errors.New("timeout")
	// ErrValidation marks caller mistakes such as unknown template ids.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks unusable configuration discovered at run time.
	ErrConfiguration = errors.New("configuration error")
	// ErrDurationUnavailable marks a media source whose duration could not be
	// probed, which makes chunk planning impossible.
	ErrDurationUnavailable = errors.New("duration unavailable")
	// ErrContextBudget marks synthesis input that still exceeds the service
	// budget after mode selection. It is surfaced, never silently truncated.
	ErrContextBudget = errors.New("context budget exceeded")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsRetryable reports whether a failure should be retried. Timeouts and
// transient failures are retryable; everything else is not. Context
// cancellation is never retryable because the caller asked to stop.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrPermanent) || errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConfiguration) || errors.Is(err, ErrContextBudget) {
		return false
	}
	if errors.Is(err, ErrTransient) || errors.Is(err, ErrTimeout) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

// FailureDetails captures the user-facing portion of a wrapped error.
type FailureDetails struct {
	Kind    string
	Message string
}

// Details extracts a classification label and trimmed message from err.
func Details(err error) FailureDetails {
	if err == nil {
		return FailureDetails{}
	}
	details := FailureDetails{Kind: "unknown", Message: strings.TrimSpace(err.Error())}
	for _, candidate := range []struct {
		marker error
		kind   string
	}{
		{ErrTimeout, "timeout"},
		{ErrTransient, "transient"},
		{ErrPermanent, "permanent"},
		{ErrValidation, "validation"},
		{ErrConfiguration, "configuration"},
		{ErrDurationUnavailable, "duration_unavailable"},
		{ErrContextBudget, "context_budget"},
	} {
		if errors.Is(err, candidate.marker) {
			details.Kind = candidate.kind
			details.Message = strings.TrimSpace(strings.TrimPrefix(details.Message, candidate.marker.Error()+":"))
			break
		}
	}
	return details
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
