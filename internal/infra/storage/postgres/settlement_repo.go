package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vietddude/settler/internal/core/domain"
	"github.com/vietddude/settler/internal/infra/storage"
)

// SettlementRepo implements storage.SettlementRepository using PostgreSQL.
type SettlementRepo struct {
	db *DB
}

// NewSettlementRepo creates a new PostgreSQL settlement repository.
func NewSettlementRepo(db *DB) *SettlementRepo {
	return &SettlementRepo{db: db}
}

// Save records a settlement. Replays of the same payment signature
// keep the original row.
func (r *SettlementRepo) Save(ctx context.Context, s *domain.Settlement) error {
	query := `
		INSERT INTO settlements (
			id, payment_signature, user_wallet, sol_amount, usdc_amount, rate, signature, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (payment_signature) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.PaymentSignature, s.UserWallet,
		s.SolAmount, s.USDCAmount, s.Rate,
		s.Signature, string(s.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to save settlement: %w", err)
	}
	return nil
}

type settlementRow struct {
	ID               string          `db:"id"`
	PaymentSignature string          `db:"payment_signature"`
	UserWallet       string          `db:"user_wallet"`
	SolAmount        decimal.Decimal `db:"sol_amount"`
	USDCAmount       decimal.Decimal `db:"usdc_amount"`
	Rate             decimal.Decimal `db:"rate"`
	Signature        string          `db:"signature"`
	Status           string          `db:"status"`
	CreatedAt        time.Time       `db:"created_at"`
}

func (row *settlementRow) toDomain() *domain.Settlement {
	return &domain.Settlement{
		ID:               row.ID,
		PaymentSignature: row.PaymentSignature,
		UserWallet:       row.UserWallet,
		SolAmount:        row.SolAmount,
		USDCAmount:       row.USDCAmount,
		Rate:             row.Rate,
		Signature:        row.Signature,
		Status:           domain.SettlementStatus(row.Status),
		CreatedAt:        row.CreatedAt,
	}
}

// GetByPaymentSignature retrieves a settlement by payment signature.
func (r *SettlementRepo) GetByPaymentSignature(ctx context.Context, signature string) (*domain.Settlement, error) {
	query := `
		SELECT id, payment_signature, user_wallet, sol_amount, usdc_amount, rate, signature, status, created_at
		FROM settlements
		WHERE payment_signature = $1
	`

	var row settlementRow
	err := r.db.GetContext(ctx, &row, query, signature)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrSettlementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return row.toDomain(), nil
}

// List retrieves the most recent settlements.
func (r *SettlementRepo) List(ctx context.Context, limit int) ([]*domain.Settlement, error) {
	query := `
		SELECT id, payment_signature, user_wallet, sol_amount, usdc_amount, rate, signature, status, created_at
		FROM settlements
		ORDER BY created_at DESC
		LIMIT $1
	`

	var rows []settlementRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}

	settlements := make([]*domain.Settlement, len(rows))
	for i := range rows {
		settlements[i] = rows[i].toDomain()
	}
	return settlements, nil
}

// DeleteOlderThan removes settlements created before the cutoff.
func (r *SettlementRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM settlements WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete settlements: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of stored settlements.
func (r *SettlementRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM settlements`); err != nil {
		return 0, fmt.Errorf("failed to count settlements: %w", err)
	}
	return count, nil
}
