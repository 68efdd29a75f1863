package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vietddude/settler/internal/core/domain"
	"github.com/vietddude/settler/internal/infra/storage"
)

func newSettlement(sig string, createdAt time.Time) *domain.Settlement {
	return &domain.Settlement{
		ID:               "id-" + sig,
		PaymentSignature: sig,
		UserWallet:       "wallet",
		SolAmount:        decimal.NewFromInt(1),
		USDCAmount:       decimal.NewFromInt(150),
		Rate:             decimal.NewFromInt(150),
		Signature:        "payout-" + sig,
		Status:           domain.SettlementCompleted,
		CreatedAt:        createdAt,
	}
}

func TestSettlementRepo_SaveAndGet(t *testing.T) {
	repo := NewSettlementRepo(NewMemoryStorage())
	ctx := context.Background()

	if _, err := repo.GetByPaymentSignature(ctx, "sig1"); !errors.Is(err, storage.ErrSettlementNotFound) {
		t.Errorf("Expected ErrSettlementNotFound, got %v", err)
	}

	if err := repo.Save(ctx, newSettlement("sig1", time.Now())); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.GetByPaymentSignature(ctx, "sig1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Signature != "payout-sig1" {
		t.Errorf("Expected payout-sig1, got %s", got.Signature)
	}
}

func TestSettlementRepo_SaveKeepsFirstRecord(t *testing.T) {
	repo := NewSettlementRepo(NewMemoryStorage())
	ctx := context.Background()

	first := newSettlement("sig1", time.Now())
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	second := newSettlement("sig1", time.Now())
	second.Signature = "other-payout"
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.GetByPaymentSignature(ctx, "sig1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Signature != "payout-sig1" {
		t.Errorf("Expected first record kept, got %s", got.Signature)
	}
}

func TestSettlementRepo_ListNewestFirst(t *testing.T) {
	repo := NewSettlementRepo(NewMemoryStorage())
	ctx := context.Background()
	now := time.Now()

	for i, sig := range []string{"old", "mid", "new"} {
		if err := repo.Save(ctx, newSettlement(sig, now.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	got, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 settlements, got %d", len(got))
	}
	if got[0].PaymentSignature != "new" || got[1].PaymentSignature != "mid" {
		t.Errorf("Expected newest first, got %s then %s", got[0].PaymentSignature, got[1].PaymentSignature)
	}
}

func TestSettlementRepo_DeleteOlderThan(t *testing.T) {
	repo := NewSettlementRepo(NewMemoryStorage())
	ctx := context.Background()
	now := time.Now()

	repo.Save(ctx, newSettlement("old", now.Add(-48*time.Hour)))
	repo.Save(ctx, newSettlement("recent", now))

	deleted, err := repo.DeleteOlderThan(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted, got %d", deleted)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 remaining, got %d", count)
	}
}

func TestSettlementRepo_ReturnsCopies(t *testing.T) {
	repo := NewSettlementRepo(NewMemoryStorage())
	ctx := context.Background()

	repo.Save(ctx, newSettlement("sig1", time.Now()))

	got, _ := repo.GetByPaymentSignature(ctx, "sig1")
	got.Signature = "mutated"

	again, _ := repo.GetByPaymentSignature(ctx, "sig1")
	if again.Signature != "payout-sig1" {
		t.Error("Expected stored settlement to be unaffected by caller mutation")
	}
}
