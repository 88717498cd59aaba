package transport

import (
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

// RetryPolicy configures retry behavior for HTTP calls.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first
	// (default: 3)
	MaxAttempts int

	// BaseDelay is the backoff before the first retry (default: 1s)
	BaseDelay time.Duration

	// MaxDelay caps the computed backoff, including provider-supplied
	// Retry-After values (default: 30s)
	MaxDelay time.Duration

	// JitterMax is the upper bound of the random jitter added to every
	// backoff (default: 100ms)
	JitterMax time.Duration

	// RetryableStatuses is the explicit set of retryable status codes
	// outside the 5xx range (default: [429])
	RetryableStatuses []int

	// RetryServerErrors retries every 500-599 response (default: true)
	RetryServerErrors bool
}

// DefaultRetryPolicy returns the default retry configuration.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:       3,
		BaseDelay:         1 * time.Second,
		MaxDelay:          30 * time.Second,
		JitterMax:         100 * time.Millisecond,
		RetryableStatuses: []int{http.StatusTooManyRequests},
		RetryServerErrors: true,
	}
}

// Validate checks if the retry policy is usable.
func (p *RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.BaseDelay < 0 {
		return fmt.Errorf("base_delay must be non-negative, got %v", p.BaseDelay)
	}
	if p.MaxDelay < p.BaseDelay {
		return fmt.Errorf("max_delay (%v) must be >= base_delay (%v)", p.MaxDelay, p.BaseDelay)
	}
	return nil
}

// IsRetryableStatus returns true if the given status code should be retried.
func (p *RetryPolicy) IsRetryableStatus(status int) bool {
	for _, code := range p.RetryableStatuses {
		if code == status {
			return true
		}
	}
	if p.RetryServerErrors && status >= 500 && status <= 599 {
		return true
	}
	return false
}

// backoff computes the delay before the given retry. attempt is 1-based:
// the delay after attempt N uses BaseDelay * 2^(N-1), capped at MaxDelay,
// plus random jitter. A provider-supplied Retry-After overrides the
// computed delay (still capped).
func (p *RetryPolicy) backoff(attempt int, retryAfter time.Duration) time.Duration {
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			delay = p.MaxDelay
			break
		}
	}

	if retryAfter > 0 {
		delay = retryAfter
	}
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	if p.JitterMax > 0 {
		delay += time.Duration(rand.Int63n(int64(p.JitterMax) + 1))
	}

	return delay
}

// parseRetryAfter interprets a Retry-After header value.
// Supports both formats:
//   - Numeric: seconds to wait (e.g. "120")
//   - HTTP-date: absolute time (e.g. "Wed, 21 Oct 2015 07:28:00 GMT")
//
// Returns 0 for absent or malformed values.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}

	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}

	retryTime, err := http.ParseTime(value)
	if err != nil {
		return 0
	}
	delay := time.Until(retryTime)
	if delay < 0 {
		return 0
	}
	return delay
}
