package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/vietddude/settler/internal/core/domain"
	"github.com/vietddude/settler/internal/metrics"
)

// VerifyPolicy controls how long the service polls for payment
// confirmation before giving up.
type VerifyPolicy struct {
	Attempts int           `yaml:"attempts"`
	Interval time.Duration `yaml:"interval"`
}

func (p VerifyPolicy) withDefaults() VerifyPolicy {
	if p.Attempts < 1 {
		p.Attempts = 5
	}
	if p.Interval <= 0 {
		p.Interval = 2 * time.Second
	}
	return p
}

// verifyPayment polls the payment signature until it is confirmed. A
// transaction that failed on chain, or one still unknown after the
// poll budget, counts as not confirmed.
func (s *Service) verifyPayment(ctx context.Context, signature string) error {
	backoff := retry.WithMaxRetries(uint64(s.verify.Attempts-1), retry.NewConstant(s.verify.Interval))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		metrics.VerifyPolls.Inc()

		status, err := s.chain.SignatureStatus(ctx, signature)
		if err != nil {
			return retry.RetryableError(err)
		}
		if status == nil {
			return retry.RetryableError(errors.New("transaction not yet visible"))
		}
		if status.Failed {
			return fmt.Errorf("payment transaction failed on chain")
		}
		return nil
	})
	if err != nil {
		s.log.Warn("Payment not confirmed",
			"payment_signature", signature,
			"attempts", s.verify.Attempts,
			"error", err)
		return domain.ErrPaymentNotConfirmed
	}
	return nil
}
