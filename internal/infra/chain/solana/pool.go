package solana

import (
	"encoding/base64"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"

	"github.com/vietddude/settler/internal/core/domain"
)

// PoolConfig holds pool credential configuration. The secret key is
// only ever read from the environment, never from the config file.
type PoolConfig struct {
	Wallet      string `yaml:"wallet"`
	USDCAccount string `yaml:"usdc_account"`
	SecretKey   string `yaml:"-"`
}

// Pool holds the liquidity pool's signing credentials. The key never
// leaves this struct.
type Pool struct {
	key          solanago.PrivateKey
	wallet       solanago.PublicKey
	tokenAccount solanago.PublicKey
}

// LoadPool builds the pool credential from configuration. All three
// values must be present; a missing value means the service runs
// without payout capability.
func LoadPool(cfg PoolConfig) (*Pool, error) {
	if cfg.Wallet == "" {
		return nil, fmt.Errorf("%w: pool wallet missing", domain.ErrNotConfigured)
	}
	if cfg.USDCAccount == "" {
		return nil, fmt.Errorf("%w: pool token account missing", domain.ErrNotConfigured)
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: pool secret key missing", domain.ErrNotConfigured)
	}

	wallet, err := solanago.PublicKeyFromBase58(cfg.Wallet)
	if err != nil {
		return nil, fmt.Errorf("invalid pool wallet %q: %w", cfg.Wallet, err)
	}
	tokenAccount, err := solanago.PublicKeyFromBase58(cfg.USDCAccount)
	if err != nil {
		return nil, fmt.Errorf("invalid pool token account %q: %w", cfg.USDCAccount, err)
	}

	raw, err := base64.StdEncoding.DecodeString(cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("decode pool secret key: %w", err)
	}
	if len(raw) != 64 {
		return nil, fmt.Errorf("pool secret key must be 64 bytes, got %d", len(raw))
	}

	key := solanago.PrivateKey(raw)
	if !key.PublicKey().Equals(wallet) {
		return nil, fmt.Errorf("pool secret key does not match pool wallet %s", cfg.Wallet)
	}

	return &Pool{
		key:          key,
		wallet:       wallet,
		tokenAccount: tokenAccount,
	}, nil
}

// signer returns a key getter for transaction signing. Only the pool
// wallet's key is ever produced.
func (p *Pool) signer() func(solanago.PublicKey) *solanago.PrivateKey {
	return func(pk solanago.PublicKey) *solanago.PrivateKey {
		if pk.Equals(p.wallet) {
			return &p.key
		}
		return nil
	}
}
