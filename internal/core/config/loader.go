package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file, expanding ${VAR}
// references from the environment before parsing.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// The pool signing key never goes through the config file.
	cfg.Pool.SecretKey = os.Getenv("POOL_SECRET_KEY")

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Chain.RPCURL == "" {
		cfg.Chain.RPCURL = "https://api.mainnet-beta.solana.com"
	}
	if cfg.Sol.Mint == "" {
		cfg.Sol.Mint = "So11111111111111111111111111111111111111112"
	}
	if cfg.Sol.Decimals == 0 {
		cfg.Sol.Decimals = 9
	}
	if cfg.USDC.Mint == "" {
		cfg.USDC.Mint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	}
	if cfg.USDC.Decimals == 0 {
		cfg.USDC.Decimals = 6
	}
	if cfg.Oracle.Endpoint == "" {
		cfg.Oracle.Endpoint = "https://api.coingecko.com/api/v3/simple/price"
	}
	if cfg.Oracle.Timeout == 0 {
		cfg.Oracle.Timeout = 10 * time.Second
	}
	if cfg.Oracle.FallbackPrice == 0 {
		cfg.Oracle.FallbackPrice = 150
	}
	if cfg.Oracle.CacheTTL == 0 {
		cfg.Oracle.CacheTTL = 30 * time.Second
	}
	if cfg.Submit.Attempts == 0 {
		cfg.Submit.Attempts = 3
	}
	if cfg.Submit.Backoff == 0 {
		cfg.Submit.Backoff = time.Second
	}
	if cfg.Submit.Timeout == 0 {
		cfg.Submit.Timeout = 30 * time.Second
	}
	if cfg.Verify.Attempts == 0 {
		cfg.Verify.Attempts = 5
	}
	if cfg.Verify.Interval == 0 {
		cfg.Verify.Interval = 2 * time.Second
	}
	if cfg.Swap.Debounce == 0 {
		cfg.Swap.Debounce = 500 * time.Millisecond
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Database.MinConns == 0 {
		cfg.Database.MinConns = 2
	}
}
