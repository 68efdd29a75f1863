package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/settler/internal/infra/storage"
	"github.com/vietddude/settler/internal/metrics"
)

// Pruner deletes old settlements based on retention policy.
type Pruner struct {
	retention time.Duration
	repo      storage.SettlementRepository
}

// NewPruner creates a new Pruner worker.
func NewPruner(retention time.Duration, repo storage.SettlementRepository) *Pruner {
	return &Pruner{
		retention: retention,
		repo:      repo,
	}
}

// Start runs the pruner loop.
func (p *Pruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		return // Retention disabled
	}

	// Check interval: 10% of retention period, clamped to [1m, 1h].
	interval := min(p.retention/10, 1*time.Hour)
	interval = max(interval, 1*time.Minute)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial prune
	p.prune(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *Pruner) prune(ctx context.Context) {
	cutoff := time.Now().Add(-p.retention)

	deleted, err := p.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		slog.Error("Failed to prune settlements", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("Pruned old settlements", "deleted", deleted, "cutoff", cutoff)
	}

	if count, err := p.repo.Count(ctx); err == nil {
		metrics.LedgerSize.Set(float64(count))
	}
}
