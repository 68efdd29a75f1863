package config

import (
	"time"

	solanachain "github.com/vietddude/settler/internal/infra/chain/solana"
	redisclient "github.com/vietddude/settler/internal/infra/redis"
	"github.com/vietddude/settler/internal/infra/storage/postgres"
	"github.com/vietddude/settler/internal/oracle"
	"github.com/vietddude/settler/internal/settlement"
	"github.com/vietddude/settler/internal/submit"
	"github.com/vietddude/settler/internal/swap"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server          ServerConfig            `yaml:"server"`
	Logging         LoggingConfig           `yaml:"logging"`
	Chain           solanachain.Config      `yaml:"chain"`
	Sol             settlement.AssetConfig  `yaml:"sol"`
	USDC            settlement.AssetConfig  `yaml:"usdc"`
	Pool            solanachain.PoolConfig  `yaml:"pool"`
	Oracle          oracle.Config           `yaml:"oracle"`
	Submit          submit.Policy           `yaml:"submit"`
	Verify          settlement.VerifyPolicy `yaml:"verify"`
	Swap            swap.Config             `yaml:"swap"`
	Database        postgres.Config         `yaml:"database"`
	Redis           redisclient.Config      `yaml:"redis"`
	RetentionPeriod time.Duration           `yaml:"retention_period"` // 0 = keep forever
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}
