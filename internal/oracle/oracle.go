package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vietddude/settler/internal/core/domain"
	"github.com/vietddude/settler/internal/metrics"
)

// PriceSource provides the current SOL price in USD.
type PriceSource interface {
	SolPrice(ctx context.Context) (decimal.Decimal, error)
}

// Config holds price oracle configuration.
type Config struct {
	Endpoint      string        `yaml:"endpoint"`
	Timeout       time.Duration `yaml:"timeout"`
	FallbackPrice float64       `yaml:"fallback_price"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
}

// Client fetches prices from a CoinGecko-compatible endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a new price oracle client.
func NewClient(cfg Config) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		log: slog.With("component", "oracle"),
	}
}

// SolPrice fetches the current SOL/USD price.
func (c *Client) SolPrice(ctx context.Context) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s?ids=solana&vs_currencies=usd", c.endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrQuoteUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: http %d: %s", domain.ErrQuoteUnavailable, resp.StatusCode, string(body))
	}

	var out struct {
		Solana struct {
			USD json.Number `json:"usd"`
		} `json:"solana"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return decimal.Zero, fmt.Errorf("%w: parse response: %v", domain.ErrQuoteUnavailable, err)
	}

	if out.Solana.USD == "" {
		return decimal.Zero, fmt.Errorf("%w: price missing from response", domain.ErrQuoteUnavailable)
	}

	price, err := decimal.NewFromString(out.Solana.USD.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid price %q", domain.ErrQuoteUnavailable, out.Solana.USD)
	}
	if price.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: non-positive price %s", domain.ErrQuoteUnavailable, price)
	}

	metrics.QuoteRequests.WithLabelValues("live").Inc()
	return price, nil
}
