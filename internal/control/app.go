package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/vietddude/settler/internal/api"
	"github.com/vietddude/settler/internal/core/config"
	"github.com/vietddude/settler/internal/core/domain"
	"github.com/vietddude/settler/internal/core/worker"
	solanachain "github.com/vietddude/settler/internal/infra/chain/solana"
	redisclient "github.com/vietddude/settler/internal/infra/redis"
	"github.com/vietddude/settler/internal/infra/storage"
	"github.com/vietddude/settler/internal/infra/storage/memory"
	"github.com/vietddude/settler/internal/infra/storage/postgres"
	"github.com/vietddude/settler/internal/oracle"
	"github.com/vietddude/settler/internal/settlement"
)

// App is the main application struct that manages the settlement
// service lifecycle.
type App struct {
	cfg     *config.AppConfig
	service *settlement.Service
	server  *api.Server
	repo    storage.SettlementRepository
	pruner  *worker.Pruner
	db      *postgres.DB
	redis   *redisclient.Client
	log     *slog.Logger
}

// NewApp creates a new App instance with all dependencies initialized.
func NewApp(ctx context.Context, cfg *config.AppConfig) (*App, error) {

	// 1. Initialize Storage
	var repo storage.SettlementRepository
	var db *postgres.DB

	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := db.Migrate("migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}
		repo = postgres.NewSettlementRepo(db)
		slog.Info("Using PostgreSQL ledger")
	} else {
		repo = memory.NewSettlementRepo(memory.NewMemoryStorage())
		slog.Info("Using memory ledger", "note", "settlements are lost on restart")
	}

	// 2. Initialize Price Source
	var price oracle.PriceSource = oracle.NewClient(cfg.Oracle)

	var redisClient *redisclient.Client
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("Failed to connect to Redis, price cache disabled", "error", err)
		} else {
			price = oracle.NewCachedSource(price, redisClient, cfg.Oracle.CacheTTL)
			slog.Info("Price cache enabled", "ttl", cfg.Oracle.CacheTTL)
		}
	}

	// 3. Load Pool Credentials
	// A missing credential degrades the service to quote-only mode;
	// a malformed one is a deployment mistake and refuses to start.
	pool, err := solanachain.LoadPool(cfg.Pool)
	if err != nil {
		if !errors.Is(err, domain.ErrNotConfigured) {
			return nil, fmt.Errorf("failed to load pool credentials: %w", err)
		}
		slog.Warn("Pool not configured, swap completion disabled", "error", err)
		pool = nil
	}

	// 4. Initialize Chain Adapter
	adapter, err := solanachain.NewAdapter(cfg.Chain, cfg.USDC.Mint, pool)
	if err != nil {
		return nil, fmt.Errorf("failed to init chain adapter: %w", err)
	}

	// 5. Initialize Settlement Service
	svc := settlement.NewService(settlement.ServiceParams{
		Chain:      adapter,
		Price:      price,
		Repo:       repo,
		Verify:     cfg.Verify,
		USDC:       cfg.USDC,
		PoolWallet: cfg.Pool.Wallet,
		Configured: pool != nil,
		Fallback:   decimal.NewFromFloat(cfg.Oracle.FallbackPrice),
	})

	// 6. Initialize Health Monitor and API Server
	checks := []api.Check{
		{Name: "rpc", Critical: true, Fn: adapter.Health},
	}
	if db != nil {
		checks = append(checks, api.Check{Name: "database", Fn: db.Health})
	}
	if redisClient != nil {
		checks = append(checks, api.Check{Name: "redis", Fn: redisClient.Ping})
	}
	server := api.NewServer(svc, api.NewMonitor(checks...), cfg.Server.Port)

	return &App{
		cfg:     cfg,
		service: svc,
		server:  server,
		repo:    repo,
		pruner:  worker.NewPruner(cfg.RetentionPeriod, repo),
		db:      db,
		redis:   redisClient,
		log:     slog.Default(),
	}, nil
}

// Start starts the API server and background workers.
func (a *App) Start(ctx context.Context) error {
	go func() {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("API server failed", "error", err)
		}
	}()

	if a.db != nil {
		a.db.StartMetricsCollector(ctx)
	}

	go a.pruner.Start(ctx)

	return nil
}

// Stop stops the App.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping settler...")

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
	}

	return a.server.Stop(ctx)
}

// Repo returns the settlement ledger, used by the status and purge
// commands.
func (a *App) Repo() storage.SettlementRepository {
	return a.repo
}
