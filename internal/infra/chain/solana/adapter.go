package solana

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	logger "log/slog"

	solanago "github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"

	"github.com/vietddude/settler/internal/core/domain"
)

// Config holds Solana RPC configuration.
type Config struct {
	RPCURL string `yaml:"rpc_url"`
}

// Adapter wraps the Solana RPC client with the operations the
// settlement service needs. The pool is nil when no signing
// credentials were configured; read-only operations still work.
type Adapter struct {
	client *rpc.Client
	mint   solanago.PublicKey
	pool   *Pool
	log    *logger.Logger
}

// NewAdapter creates a Solana adapter for the given USDC mint.
func NewAdapter(cfg Config, usdcMint string, pool *Pool) (*Adapter, error) {
	mint, err := solanago.PublicKeyFromBase58(usdcMint)
	if err != nil {
		return nil, fmt.Errorf("invalid USDC mint %q: %w", usdcMint, err)
	}

	return &Adapter{
		client: rpc.New(cfg.RPCURL),
		mint:   mint,
		pool:   pool,
		log:    logger.With("component", "solana"),
	}, nil
}

// Health checks RPC node availability.
func (a *Adapter) Health(ctx context.Context) error {
	out, err := a.client.GetHealth(ctx)
	if err != nil {
		return fmt.Errorf("getHealth failed: %w", err)
	}
	if out != rpc.HealthOk {
		return fmt.Errorf("rpc node unhealthy: %s", out)
	}
	return nil
}

// Balance returns the SOL balance of a wallet.
func (a *Adapter) Balance(ctx context.Context, wallet string) (decimal.Decimal, error) {
	pk, err := solanago.PublicKeyFromBase58(wallet)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid wallet %q: %w", wallet, err)
	}

	out, err := a.client.GetBalance(ctx, pk, rpc.CommitmentConfirmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("getBalance failed: %w", err)
	}

	return solFromLamports(out.Value), nil
}

// SignatureStatus looks up the confirmation status of a transaction.
// A nil result with nil error means the node does not know the
// signature yet.
func (a *Adapter) SignatureStatus(ctx context.Context, signature string) (*domain.TxStatus, error) {
	sig, err := solanago.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("invalid signature %q: %w", signature, err)
	}

	out, err := a.client.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return nil, fmt.Errorf("getSignatureStatuses failed: %w", err)
	}
	if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
		return nil, nil
	}

	st := out.Value[0]
	status := &domain.TxStatus{
		Slot:   st.Slot,
		Status: string(st.ConfirmationStatus),
		Failed: st.Err != nil,
	}
	if st.Confirmations != nil {
		status.Confirmations = *st.Confirmations
	}
	return status, nil
}

// AccountExists reports whether an account is present on chain.
func (a *Adapter) AccountExists(ctx context.Context, account string) (bool, error) {
	pk, err := solanago.PublicKeyFromBase58(account)
	if err != nil {
		return false, fmt.Errorf("invalid account %q: %w", account, err)
	}

	out, err := a.client.GetAccountInfo(ctx, pk)
	if errors.Is(err, rpc.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("getAccountInfo failed: %w", err)
	}
	return out != nil && out.Value != nil, nil
}

// UserTokenAccount derives the user's associated token account for the
// configured mint. Off-curve owners are allowed because user wallets
// are program-derived addresses.
func (a *Adapter) UserTokenAccount(wallet string) (string, error) {
	owner, err := solanago.PublicKeyFromBase58(wallet)
	if err != nil {
		return "", fmt.Errorf("invalid wallet %q: %w", wallet, err)
	}

	ata, err := associatedTokenAddress(owner, a.mint, true)
	if err != nil {
		return "", err
	}
	return ata.String(), nil
}

// associatedTokenAddress derives the associated token account address
// for owner and mint. Standard wallet owners live on the ed25519
// curve; program-derived owners do not, and are rejected unless
// allowOwnerOffCurve is set.
func associatedTokenAddress(owner, mint solanago.PublicKey, allowOwnerOffCurve bool) (solanago.PublicKey, error) {
	if !allowOwnerOffCurve && !owner.IsOnCurve() {
		return solanago.PublicKey{}, fmt.Errorf("owner %s is off curve", owner)
	}

	ata, _, err := solanago.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solanago.PublicKey{}, fmt.Errorf("derive token account: %w", err)
	}
	return ata, nil
}

// settlementInstructions builds the instruction list for a payout:
// optionally create the user's token account (funded by the pool),
// then transfer tokens from the pool's token account.
func (a *Adapter) settlementInstructions(
	userWallet, userTokenAccount solanago.PublicKey,
	createAccount bool,
	amount uint64,
) []solanago.Instruction {
	var instrs []solanago.Instruction

	if createAccount {
		instrs = append(instrs, associatedtokenaccount.NewCreateInstruction(
			a.pool.wallet,
			userWallet,
			a.mint,
		).Build())
	}

	instrs = append(instrs, token.NewTransferInstruction(
		amount,
		a.pool.tokenAccount,
		userTokenAccount,
		a.pool.wallet,
		nil,
	).Build())

	return instrs
}

// PayOut sends amount token units from the pool to the user's token
// account, creating the account first when needed. The pool key is
// the sole signer. Blocks until the transaction confirms.
func (a *Adapter) PayOut(
	ctx context.Context,
	userWallet, userTokenAccount string,
	createAccount bool,
	amount uint64,
) (string, error) {
	if a.pool == nil {
		return "", domain.ErrNotConfigured
	}

	wallet, err := solanago.PublicKeyFromBase58(userWallet)
	if err != nil {
		return "", fmt.Errorf("invalid user wallet %q: %w", userWallet, err)
	}
	tokenAccount, err := solanago.PublicKeyFromBase58(userTokenAccount)
	if err != nil {
		return "", fmt.Errorf("invalid token account %q: %w", userTokenAccount, err)
	}

	instrs := a.settlementInstructions(wallet, tokenAccount, createAccount, amount)

	sig, err := a.sendAndConfirm(ctx, instrs, a.pool.wallet, a.pool.signer())
	if err != nil {
		return "", err
	}

	a.log.Info("Payout confirmed",
		"signature", sig,
		"user_wallet", userWallet,
		"amount", amount,
		"created_account", createAccount)
	return sig, nil
}

// sendAndConfirm signs, broadcasts and waits for a transaction to
// reach confirmed commitment.
func (a *Adapter) sendAndConfirm(
	ctx context.Context,
	instrs []solanago.Instruction,
	payer solanago.PublicKey,
	signer func(solanago.PublicKey) *solanago.PrivateKey,
) (string, error) {
	recent, err := a.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("getLatestBlockhash failed: %w", err)
	}

	tx, err := solanago.NewTransaction(instrs, recent.Value.Blockhash, solanago.TransactionPayer(payer))
	if err != nil {
		return "", fmt.Errorf("build transaction: %w", err)
	}

	if _, err := tx.Sign(signer); err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := a.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return "", fmt.Errorf("sendTransaction failed: %w", err)
	}

	if err := a.waitForConfirmation(ctx, sig); err != nil {
		return "", err
	}
	return sig.String(), nil
}

// waitForConfirmation polls signature status until the transaction is
// confirmed or the deadline passes.
func (a *Adapter) waitForConfirmation(ctx context.Context, sig solanago.Signature) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("confirmation timed out for %s: %w", sig, ctx.Err())
		case <-ticker.C:
			out, err := a.client.GetSignatureStatuses(ctx, true, sig)
			if err != nil {
				a.log.Warn("Status poll failed", "signature", sig, "error", err)
				continue
			}
			if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
				continue
			}

			st := out.Value[0]
			if st.Err != nil {
				return fmt.Errorf("transaction %s failed on chain: %v", sig, st.Err)
			}
			switch st.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				return nil
			}
		}
	}
}

// solFromLamports converts lamports to whole SOL.
func solFromLamports(lamports uint64) decimal.Decimal {
	return decimal.NewFromUint64(lamports).Shift(-9)
}

// lamportsFromSOL converts a SOL amount to lamports, flooring any
// fraction below one lamport.
func lamportsFromSOL(amount decimal.Decimal) (uint64, error) {
	lamports := amount.Shift(9).Floor()
	if lamports.Sign() <= 0 {
		return 0, fmt.Errorf("amount %s is below one lamport", amount)
	}
	if lamports.Cmp(decimal.NewFromInt(math.MaxInt64)) > 0 {
		return 0, fmt.Errorf("amount %s out of range", amount)
	}
	return uint64(lamports.IntPart()), nil
}
