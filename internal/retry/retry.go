// Package retry implements the graded retry policy for crawl-fetch failures.
//
// Failures are not retried uniformly: transient network/5xx errors get a
// short exponential backoff, 429 responses get a separately escalating
// (doubling, capped) backoff plus an egress-rotation hint, 403 responses are
// treated as durable blocks and not retried unless explicitly configured,
// and fatal resource errors are never retried. Deterministic failures and
// open-circuit rejections fail fast without consuming any backoff budget.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/circuitbreaker"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/failure"
)

// ErrAttemptsExhausted is returned when all permitted attempts failed.
var ErrAttemptsExhausted = errors.New("retry attempts exhausted")

// ErrBlocked is returned when a durable block (403) is not configured for retry.
var ErrBlocked = errors.New("durable block, not retrying")

// Attempt describes one invocation handed to the protected function.
type Attempt struct {
	// Number is 1-based.
	Number int
	// RotateEgress asks the caller to use an alternate outbound path
	// (proxy / source IP) for this attempt.
	RotateEgress bool
}

// Policy configures the graded retry behavior.
type Policy struct {
	// MaxAttempts bounds attempts for transient failures (including the first).
	MaxAttempts int
	// InitialDelay is the first transient backoff.
	InitialDelay time.Duration
	// MaxDelay caps the transient backoff.
	MaxDelay time.Duration
	// Multiplier is the transient backoff multiplier.
	Multiplier float64

	// RateLimitInitialDelay is the first 429 backoff; it doubles per 429.
	RateLimitInitialDelay time.Duration
	// RateLimitMaxDelay caps the 429 backoff.
	RateLimitMaxDelay time.Duration
	// RateLimitMaxAttempts bounds attempts for rate-limited failures.
	RateLimitMaxAttempts int

	// RetryBlocked enables limited retries of 403 responses with a forced
	// egress change. Off by default.
	RetryBlocked bool
	// BlockedMaxAttempts bounds attempts when RetryBlocked is set.
	BlockedMaxAttempts int

	// OnFailure is invoked once per classified failure; used for counters.
	OnFailure func(failure.Kind)
}

// DefaultPolicy returns the default graded retry policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:           3,
		InitialDelay:          500 * time.Millisecond,
		MaxDelay:              10 * time.Second,
		Multiplier:            2.0,
		RateLimitInitialDelay: 2 * time.Second,
		RateLimitMaxDelay:     2 * time.Minute,
		RateLimitMaxAttempts:  5,
		RetryBlocked:          false,
		BlockedMaxAttempts:    2,
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = d.InitialDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = d.MaxDelay
	}
	if p.Multiplier <= 0 {
		p.Multiplier = d.Multiplier
	}
	if p.RateLimitInitialDelay <= 0 {
		p.RateLimitInitialDelay = d.RateLimitInitialDelay
	}
	if p.RateLimitMaxDelay <= 0 {
		p.RateLimitMaxDelay = d.RateLimitMaxDelay
	}
	if p.RateLimitMaxAttempts <= 0 {
		p.RateLimitMaxAttempts = d.RateLimitMaxAttempts
	}
	if p.BlockedMaxAttempts <= 0 {
		p.BlockedMaxAttempts = d.BlockedMaxAttempts
	}
	return p
}

// Do executes fn under the graded policy. It returns nil on the first
// success, the classified error when retries are not permitted for its
// cause, or ErrAttemptsExhausted wrapping the last error.
func Do(ctx context.Context, policy Policy, fn func(context.Context, Attempt) error) error {
	policy = policy.withDefaults()

	var (
		lastErr       error
		attempt       int
		transientSeen int
		rateLimited   int
		blockedSeen   int
		rotateNext    bool
	)

	for {
		if ctx.Err() != nil {
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		}

		attempt++
		err := fn(ctx, Attempt{Number: attempt, RotateEgress: rotateNext})
		if err == nil {
			return nil
		}
		lastErr = err
		rotateNext = false

		// An open breaker is the fail-fast path for its resource; retrying
		// against it would reintroduce the latency it exists to cut off.
		// Breaker transitions carry their own counter, so this bypasses
		// OnFailure.
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
			return err
		}

		kind := failure.Of(err)
		if policy.OnFailure != nil {
			policy.OnFailure(kind)
		}

		var delay time.Duration
		switch kind {
		case failure.KindFatal:
			return fmt.Errorf("fatal failure, not retrying: %w", err)

		case failure.KindPermanent:
			// Deterministic failures cannot succeed on a second attempt.
			return err

		case failure.KindBlocked:
			if !policy.RetryBlocked {
				return fmt.Errorf("%w: %w", ErrBlocked, err)
			}
			blockedSeen++
			if blockedSeen >= policy.BlockedMaxAttempts {
				return fmt.Errorf("%w after %d blocked attempts: %w", ErrAttemptsExhausted, attempt, lastErr)
			}
			rotateNext = true
			delay = policy.RateLimitInitialDelay

		case failure.KindRateLimited:
			rateLimited++
			if rateLimited >= policy.RateLimitMaxAttempts {
				return fmt.Errorf("%w after %d rate-limited attempts: %w", ErrAttemptsExhausted, attempt, lastErr)
			}
			rotateNext = true
			delay = rateLimitDelay(policy, rateLimited)

		case failure.KindTransient:
			transientSeen++
			if transientSeen >= policy.MaxAttempts {
				return fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, attempt, lastErr)
			}
			delay = transientDelay(policy, transientSeen)

		default:
			// Non-retryable response classes (404 and friends).
			return err
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}
}

// transientDelay computes the exponential transient backoff for the n-th
// transient failure (1-based).
func transientDelay(p Policy, n int) time.Duration {
	d := time.Duration(float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(n-1)))
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// rateLimitDelay doubles per consecutive 429, capped.
func rateLimitDelay(p Policy, n int) time.Duration {
	d := p.RateLimitInitialDelay << uint(n-1)
	if d > p.RateLimitMaxDelay || d <= 0 {
		return p.RateLimitMaxDelay
	}
	return d
}
