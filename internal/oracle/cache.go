package oracle

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vietddude/settler/internal/metrics"
)

const solAsset = "solana"

// PriceCache stores prices with a TTL.
type PriceCache interface {
	GetPrice(ctx context.Context, asset string) (decimal.Decimal, bool, error)
	SetPrice(ctx context.Context, asset string, price decimal.Decimal, ttl time.Duration) error
}

// CachedSource wraps a PriceSource with a shared cache so that bursts
// of quote requests do not hammer the upstream API.
type CachedSource struct {
	src   PriceSource
	cache PriceCache
	ttl   time.Duration
	log   *slog.Logger
}

// NewCachedSource creates a caching decorator around a price source.
func NewCachedSource(src PriceSource, cache PriceCache, ttl time.Duration) *CachedSource {
	return &CachedSource{
		src:   src,
		cache: cache,
		ttl:   ttl,
		log:   slog.With("component", "oracle_cache"),
	}
}

// SolPrice returns the cached price when fresh, otherwise fetches a
// live price and stores it.
func (s *CachedSource) SolPrice(ctx context.Context) (decimal.Decimal, error) {
	price, found, err := s.cache.GetPrice(ctx, solAsset)
	if err != nil {
		s.log.Warn("Price cache read failed", "error", err)
	} else if found {
		metrics.QuoteRequests.WithLabelValues("cache").Inc()
		return price, nil
	}

	price, err = s.src.SolPrice(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	if err := s.cache.SetPrice(ctx, solAsset, price, s.ttl); err != nil {
		s.log.Warn("Price cache write failed", "error", err)
	}
	return price, nil
}
