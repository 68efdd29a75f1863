package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	logger "log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vietddude/settler/internal/core/domain"
	"github.com/vietddude/settler/internal/infra/storage"
	"github.com/vietddude/settler/internal/metrics"
	"github.com/vietddude/settler/internal/oracle"
)

// AssetConfig describes a token the service settles in.
type AssetConfig struct {
	Mint     string `yaml:"mint"`
	Decimals int32  `yaml:"decimals"`
}

// Chain is the slice of chain operations settlement needs.
type Chain interface {
	// SignatureStatus returns nil, nil when the node does not know
	// the signature yet.
	SignatureStatus(ctx context.Context, signature string) (*domain.TxStatus, error)

	// UserTokenAccount derives the user's token account address.
	UserTokenAccount(wallet string) (string, error)

	// AccountExists reports whether an account is present on chain.
	AccountExists(ctx context.Context, account string) (bool, error)

	// PayOut transfers amount token units from the pool to the user's
	// token account, creating the account first when requested.
	PayOut(ctx context.Context, userWallet, userTokenAccount string, createAccount bool, amount uint64) (string, error)
}

// ServiceParams holds the dependencies for NewService.
type ServiceParams struct {
	Chain      Chain
	Price      oracle.PriceSource
	Repo       storage.SettlementRepository
	Verify     VerifyPolicy
	USDC       AssetConfig
	PoolWallet string
	Configured bool
	Fallback   decimal.Decimal
}

// Service settles confirmed SOL payments by paying out USDC from the
// pool wallet.
type Service struct {
	chain      Chain
	price      oracle.PriceSource
	repo       storage.SettlementRepository
	verify     VerifyPolicy
	usdc       AssetConfig
	poolWallet string
	configured bool
	fallback   decimal.Decimal
	log        *logger.Logger
}

// NewService creates a settlement service.
func NewService(p ServiceParams) *Service {
	return &Service{
		chain:      p.Chain,
		price:      p.Price,
		repo:       p.Repo,
		verify:     p.Verify.withDefaults(),
		usdc:       p.USDC,
		poolWallet: p.PoolWallet,
		configured: p.Configured,
		fallback:   p.Fallback,
		log:        logger.With("component", "settlement"),
	}
}

// Quote returns the current swap quote. Price fetch failures degrade
// to the configured fallback price and set the error field.
func (s *Service) Quote(ctx context.Context) *domain.QuoteResponse {
	resp := &domain.QuoteResponse{
		USDCMint:   s.usdc.Mint,
		PoolWallet: s.poolWallet,
		Configured: s.configured,
	}

	price, err := s.price.SolPrice(ctx)
	if err != nil {
		s.log.Warn("Quote price fetch failed", "error", err)
		metrics.QuoteRequests.WithLabelValues("fallback").Inc()
		resp.SolPrice = s.fallback.InexactFloat64()
		resp.Error = domain.ErrQuoteUnavailable.Error()
		return resp
	}

	resp.SolPrice = price.InexactFloat64()
	return resp
}

// Complete verifies the user's SOL payment and pays out USDC at the
// current rate. Payments already settled are answered with the
// recorded result instead of a second payout.
func (s *Service) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
	if err := validateCompletion(req); err != nil {
		return nil, err
	}
	if !s.configured {
		return nil, domain.ErrNotConfigured
	}

	stored, err := s.repo.GetByPaymentSignature(ctx, req.SolTxSignature)
	if err == nil {
		s.log.Info("Replaying recorded settlement",
			"payment_signature", req.SolTxSignature,
			"signature", stored.Signature)
		metrics.Settlements.WithLabelValues("replayed").Inc()
		return completionResponse(stored), nil
	}
	if !errors.Is(err, storage.ErrSettlementNotFound) {
		s.log.Warn("Ledger lookup failed", "payment_signature", req.SolTxSignature, "error", err)
	}

	if err := s.verifyPayment(ctx, req.SolTxSignature); err != nil {
		return nil, err
	}

	rate, err := s.price.SolPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch settlement price: %w", err)
	}

	solAmount := decimal.NewFromFloat(req.SolAmount)
	usdcAmount := solAmount.Mul(rate)
	units := usdcAmount.Shift(s.usdc.Decimals).Floor()
	if units.Sign() <= 0 {
		return nil, fmt.Errorf("%w: settlement amount rounds to zero", domain.ErrInvalidRequest)
	}

	tokenAccount, err := s.chain.UserTokenAccount(req.UserWallet)
	if err != nil {
		return nil, fmt.Errorf("derive user token account: %w", err)
	}

	exists, err := s.chain.AccountExists(ctx, tokenAccount)
	if err != nil {
		return nil, fmt.Errorf("check user token account: %w", err)
	}

	start := time.Now()
	sig, err := s.chain.PayOut(ctx, req.UserWallet, tokenAccount, !exists, uint64(units.IntPart()))
	if err != nil {
		metrics.Settlements.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("settlement payout: %w", err)
	}
	metrics.SettlementDuration.Observe(time.Since(start).Seconds())
	metrics.Settlements.WithLabelValues("completed").Inc()

	settlement := &domain.Settlement{
		ID:               uuid.NewString(),
		PaymentSignature: req.SolTxSignature,
		UserWallet:       req.UserWallet,
		SolAmount:        solAmount,
		USDCAmount:       usdcAmount,
		Rate:             rate,
		Signature:        sig,
		Status:           domain.SettlementCompleted,
		CreatedAt:        time.Now(),
	}
	if err := s.repo.Save(ctx, settlement); err != nil {
		s.log.Warn("Failed to record settlement",
			"payment_signature", req.SolTxSignature,
			"signature", sig,
			"error", err)
	}

	s.log.Info("Settlement completed",
		"payment_signature", req.SolTxSignature,
		"signature", sig,
		"user_wallet", req.UserWallet,
		"usdc_amount", usdcAmount)
	return completionResponse(settlement), nil
}

func validateCompletion(req *domain.CompletionRequest) error {
	if req.UserWallet == "" {
		return fmt.Errorf("%w: userWallet is required", domain.ErrInvalidRequest)
	}
	if req.SolAmount <= 0 {
		return fmt.Errorf("%w: solAmount must be positive", domain.ErrInvalidRequest)
	}
	if req.SolTxSignature == "" {
		return fmt.Errorf("%w: solTxSignature is required", domain.ErrInvalidRequest)
	}
	return nil
}

func completionResponse(s *domain.Settlement) *domain.CompletionResponse {
	return &domain.CompletionResponse{
		Success:    true,
		Signature:  s.Signature,
		USDCAmount: s.USDCAmount.InexactFloat64(),
		SolPrice:   s.Rate.InexactFloat64(),
	}
}
