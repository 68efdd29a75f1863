package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vietddude/settler/internal/core/domain"
	"github.com/vietddude/settler/internal/infra/storage"
)

// MemoryStorage keeps the settlement ledger in process memory. Used
// when no database is configured; contents are lost on restart.
type MemoryStorage struct {
	settlements map[string]*domain.Settlement
	mu          sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		settlements: make(map[string]*domain.Settlement),
	}
}

// -----------------------------------------------------------------------------
// Settlement Repository
// -----------------------------------------------------------------------------

type SettlementRepo struct {
	store *MemoryStorage
}

func NewSettlementRepo(store *MemoryStorage) *SettlementRepo {
	return &SettlementRepo{store: store}
}

func (r *SettlementRepo) Save(ctx context.Context, s *domain.Settlement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.settlements[s.PaymentSignature]; exists {
		return nil
	}
	stored := *s
	r.store.settlements[s.PaymentSignature] = &stored
	return nil
}

func (r *SettlementRepo) GetByPaymentSignature(ctx context.Context, signature string) (*domain.Settlement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	s, ok := r.store.settlements[signature]
	if !ok {
		return nil, storage.ErrSettlementNotFound
	}
	found := *s
	return &found, nil
}

func (r *SettlementRepo) List(ctx context.Context, limit int) ([]*domain.Settlement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	settlements := make([]*domain.Settlement, 0, len(r.store.settlements))
	for _, s := range r.store.settlements {
		found := *s
		settlements = append(settlements, &found)
	}
	sort.Slice(settlements, func(i, j int) bool {
		return settlements[i].CreatedAt.After(settlements[j].CreatedAt)
	})

	if limit > 0 && len(settlements) > limit {
		settlements = settlements[:limit]
	}
	return settlements, nil
}

func (r *SettlementRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var deleted int64
	for sig, s := range r.store.settlements {
		if s.CreatedAt.Before(cutoff) {
			delete(r.store.settlements, sig)
			deleted++
		}
	}
	return deleted, nil
}

func (r *SettlementRepo) Count(ctx context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.settlements), nil
}
