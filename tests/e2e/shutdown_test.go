package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/vietddude/settler/internal/control"
	"github.com/vietddude/settler/internal/core/config"
	solanachain "github.com/vietddude/settler/internal/infra/chain/solana"
	"github.com/vietddude/settler/internal/oracle"
	"github.com/vietddude/settler/internal/settlement"
)

func TestGracefulShutdown(t *testing.T) {
	// Memory ledger, no pool credentials: enough to start every
	// component without external services.
	cfg := &config.AppConfig{
		Server: config.ServerConfig{Port: 0},
		Chain:  solanachain.Config{RPCURL: "http://localhost:8899"},
		Sol:    settlement.AssetConfig{Mint: "So11111111111111111111111111111111111111112", Decimals: 9},
		USDC:   settlement.AssetConfig{Mint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Decimals: 6},
		Oracle: oracle.Config{
			Endpoint:      "http://localhost:1",
			Timeout:       time.Second,
			FallbackPrice: 150,
		},
		RetentionPeriod: time.Hour,
	}

	app, err := control.NewApp(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Let it run for a bit
	time.Sleep(200 * time.Millisecond)

	// Trigger shutdown
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}

	// A second stop must not panic or hang.
	if err := app.Stop(stopCtx); err != nil {
		t.Logf("second Stop returned: %v", err)
	}
}
