package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/vietddude/settler/internal/core/domain"
	"github.com/vietddude/settler/internal/metrics"
)

// Sender is the capability the wrapper retries: sign a prepared request
// and hand it to the network. The request is opaque to the wrapper and
// is never mutated. A sender may return either a bare transaction
// signature string or a structured response carrying a signature.
type Sender interface {
	SignAndSend(ctx context.Context, req any) (any, error)
}

// Response is the structured form a sender may return instead of a
// bare signature string.
type Response struct {
	Signature string `json:"signature"`
}

// Submitter wraps a sender with bounded retries, exponential backoff on
// rate-limit errors, and a hard per-attempt timeout.
type Submitter struct {
	sender   Sender
	policy   Policy
	log      *slog.Logger
	inFlight atomic.Bool

	// wait is replaced in tests to observe backoff delays.
	wait func(ctx context.Context, d time.Duration) error
}

// NewSubmitter creates a Submitter. Zero policy fields take defaults.
func NewSubmitter(sender Sender, policy Policy) (*Submitter, error) {
	policy = policy.withDefaults()
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry policy: %w", err)
	}
	return &Submitter{
		sender: sender,
		policy: policy,
		log:    slog.Default(),
		wait:   sleepContext,
	}, nil
}

// Submitting reports whether a submission call is currently running.
// It is true for the whole call, across all attempts.
func (s *Submitter) Submitting() bool {
	return s.inFlight.Load()
}

// Submit runs the sender until it yields a transaction signature or the
// policy is exhausted. Only rate-limit-classified failures are retried;
// after exhaustion a rate-limited last error surfaces as the generic
// rate-limit message, never the raw provider text.
func (s *Submitter) Submit(ctx context.Context, req any) (string, error) {
	s.inFlight.Store(true)
	defer s.inFlight.Store(false)

	var lastErr error
	rateLimited := false

	for attempt := 0; attempt < s.policy.Attempts; attempt++ {
		result, err := s.attempt(ctx, req)
		if err == nil {
			sig, err := normalize(result)
			if err != nil {
				// Wrong shape is terminal, retrying cannot fix it.
				metrics.SubmitAttempts.WithLabelValues("unexpected").Inc()
				return "", err
			}
			metrics.SubmitAttempts.WithLabelValues("success").Inc()
			s.log.Debug("submission accepted", "attempt", attempt+1, "signature", sig)
			return sig, nil
		}

		lastErr = err
		rateLimited = IsRateLimited(err)
		metrics.SubmitAttempts.WithLabelValues("failure").Inc()

		if !rateLimited || attempt == s.policy.Attempts-1 {
			break
		}

		delay := backoffDelay(s.policy.Backoff, attempt)
		s.log.Warn("submission rate limited, backing off",
			"attempt", attempt+1, "delay", delay, "error", err)
		metrics.SubmitRetries.Inc()

		if err := s.wait(ctx, delay); err != nil {
			return "", err
		}
	}

	if rateLimited {
		return "", domain.ErrRateLimited
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", errors.New("submission failed")
}

// attempt races one sender call against the per-attempt timeout. The
// sender goroutine delivers into a buffered channel so a late result
// after the timer wins is dropped, and the timer is stopped on every
// exit so nothing is left pending between attempts.
func (s *Submitter) attempt(ctx context.Context, req any) (any, error) {
	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		result any
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		result, err := s.sender.SignAndSend(attemptCtx, req)
		done <- outcome{result: result, err: err}
	}()

	timer := time.NewTimer(s.policy.Timeout)
	defer timer.Stop()

	select {
	case out := <-done:
		return out.result, out.err
	case <-timer.C:
		return nil, fmt.Errorf("submission attempt timed out after %s", s.policy.Timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// normalize accepts the sender result shapes the wrapper understands:
// a bare signature string or a structured response with a signature
// field. Anything else is a terminal unexpected-response error.
func normalize(result any) (string, error) {
	switch v := result.(type) {
	case string:
		if v != "" {
			return v, nil
		}
	case Response:
		if v.Signature != "" {
			return v.Signature, nil
		}
	case *Response:
		if v != nil && v.Signature != "" {
			return v.Signature, nil
		}
	case map[string]any:
		if sig, ok := v["signature"].(string); ok && sig != "" {
			return sig, nil
		}
	}
	return "", fmt.Errorf("%w: %T", domain.ErrUnexpectedResponse, result)
}

func backoffDelay(base time.Duration, attempt int) time.Duration {
	return time.Duration(float64(base) * math.Pow(2, float64(attempt)))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
