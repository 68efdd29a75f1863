package oracle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type fakeSource struct {
	price decimal.Decimal
	err   error
	calls int
}

func (f *fakeSource) SolPrice(ctx context.Context) (decimal.Decimal, error) {
	f.calls++
	return f.price, f.err
}

type fakeCache struct {
	prices  map[string]decimal.Decimal
	readErr error
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{prices: make(map[string]decimal.Decimal)}
}

func (f *fakeCache) GetPrice(ctx context.Context, asset string) (decimal.Decimal, bool, error) {
	if f.readErr != nil {
		return decimal.Zero, false, f.readErr
	}
	price, ok := f.prices[asset]
	return price, ok, nil
}

func (f *fakeCache) SetPrice(ctx context.Context, asset string, price decimal.Decimal, ttl time.Duration) error {
	f.prices[asset] = price
	f.sets++
	return nil
}

func TestCachedSource_MissFetchesAndStores(t *testing.T) {
	src := &fakeSource{price: decimal.NewFromInt(150)}
	cache := newFakeCache()
	cached := NewCachedSource(src, cache, time.Minute)

	price, err := cached.SolPrice(context.Background())
	if err != nil {
		t.Fatalf("SolPrice failed: %v", err)
	}
	if !price.Equal(decimal.NewFromInt(150)) {
		t.Errorf("Expected 150, got %s", price)
	}
	if src.calls != 1 {
		t.Errorf("Expected 1 upstream call, got %d", src.calls)
	}
	if cache.sets != 1 {
		t.Errorf("Expected price to be cached, sets=%d", cache.sets)
	}
}

func TestCachedSource_HitSkipsUpstream(t *testing.T) {
	src := &fakeSource{price: decimal.NewFromInt(150)}
	cache := newFakeCache()
	cache.prices[solAsset] = decimal.NewFromInt(140)
	cached := NewCachedSource(src, cache, time.Minute)

	price, err := cached.SolPrice(context.Background())
	if err != nil {
		t.Fatalf("SolPrice failed: %v", err)
	}
	if !price.Equal(decimal.NewFromInt(140)) {
		t.Errorf("Expected cached 140, got %s", price)
	}
	if src.calls != 0 {
		t.Errorf("Expected no upstream calls, got %d", src.calls)
	}
}

func TestCachedSource_ReadErrorFallsThrough(t *testing.T) {
	src := &fakeSource{price: decimal.NewFromInt(150)}
	cache := newFakeCache()
	cache.readErr = errors.New("redis down")
	cached := NewCachedSource(src, cache, time.Minute)

	price, err := cached.SolPrice(context.Background())
	if err != nil {
		t.Fatalf("SolPrice failed: %v", err)
	}
	if !price.Equal(decimal.NewFromInt(150)) {
		t.Errorf("Expected live 150, got %s", price)
	}
	if src.calls != 1 {
		t.Errorf("Expected 1 upstream call, got %d", src.calls)
	}
}

func TestCachedSource_UpstreamErrorPropagates(t *testing.T) {
	src := &fakeSource{err: errors.New("api down")}
	cached := NewCachedSource(src, newFakeCache(), time.Minute)

	if _, err := cached.SolPrice(context.Background()); err == nil {
		t.Error("Expected upstream error to propagate")
	}
}
