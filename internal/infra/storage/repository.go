package storage

import (
	"context"
	"errors"
	"time"

	"github.com/vietddude/settler/internal/core/domain"
)

var (
	// ErrSettlementNotFound is returned when a settlement doesn't exist
	ErrSettlementNotFound = errors.New("settlement not found")
)

// SettlementRepository handles settlement ledger operations
type SettlementRepository interface {
	// Save records a completed settlement. Saving the same payment
	// signature twice keeps the first record.
	Save(ctx context.Context, settlement *domain.Settlement) error

	// GetByPaymentSignature retrieves a settlement by the user's
	// payment transaction signature.
	GetByPaymentSignature(ctx context.Context, signature string) (*domain.Settlement, error)

	// List retrieves the most recent settlements, newest first.
	List(ctx context.Context, limit int) ([]*domain.Settlement, error)

	// DeleteOlderThan removes settlements created before the cutoff
	// and returns how many were deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Count returns the number of stored settlements.
	Count(ctx context.Context) (int, error)
}
