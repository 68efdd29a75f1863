package worker

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vietddude/settler/internal/core/domain"
	"github.com/vietddude/settler/internal/infra/storage/memory"
)

func TestPrune(t *testing.T) {
	repo := memory.NewSettlementRepo(memory.NewMemoryStorage())
	ctx := context.Background()
	now := time.Now()

	for sig, age := range map[string]time.Duration{
		"ancient": 72 * time.Hour,
		"old":     48 * time.Hour,
		"fresh":   time.Hour,
	} {
		repo.Save(ctx, &domain.Settlement{
			ID:               "id-" + sig,
			PaymentSignature: sig,
			UserWallet:       "wallet",
			SolAmount:        decimal.NewFromInt(1),
			USDCAmount:       decimal.NewFromInt(150),
			Rate:             decimal.NewFromInt(150),
			Signature:        "payout",
			Status:           domain.SettlementCompleted,
			CreatedAt:        now.Add(-age),
		})
	}

	pruner := NewPruner(24*time.Hour, repo)
	pruner.prune(ctx)

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 settlement after prune, got %d", count)
	}

	if _, err := repo.GetByPaymentSignature(ctx, "fresh"); err != nil {
		t.Errorf("Expected fresh settlement kept: %v", err)
	}
}

func TestStart_DisabledWithoutRetention(t *testing.T) {
	pruner := NewPruner(0, memory.NewSettlementRepo(memory.NewMemoryStorage()))

	done := make(chan struct{})
	go func() {
		pruner.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expected Start to return immediately when retention is disabled")
	}
}
