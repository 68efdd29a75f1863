package solana

import (
	"context"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	"github.com/vietddude/settler/internal/core/domain"
)

// WalletSender signs and broadcasts SOL payments with a local
// keypair. It is the demo stand-in for the passkey smart wallet.
type WalletSender struct {
	adapter *Adapter
	key     solanago.PrivateKey
}

// NewWalletSender creates a sender backed by a local keypair.
func NewWalletSender(adapter *Adapter, key solanago.PrivateKey) *WalletSender {
	return &WalletSender{adapter: adapter, key: key}
}

// Address returns the wallet's public address.
func (w *WalletSender) Address() string {
	return w.key.PublicKey().String()
}

// Connected reports whether a keypair is loaded.
func (w *WalletSender) Connected() bool {
	return len(w.key) > 0
}

// SignAndSend submits a SOL transfer and returns the transaction
// signature as a bare string.
func (w *WalletSender) SignAndSend(ctx context.Context, req any) (any, error) {
	payment, ok := req.(*domain.Payment)
	if !ok {
		return nil, fmt.Errorf("unsupported request type %T", req)
	}

	to, err := solanago.PublicKeyFromBase58(payment.To)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", payment.To, err)
	}

	lamports, err := lamportsFromSOL(payment.Amount)
	if err != nil {
		return nil, err
	}

	instr := system.NewTransferInstruction(lamports, w.key.PublicKey(), to).Build()

	sig, err := w.adapter.sendAndConfirm(ctx,
		[]solanago.Instruction{instr},
		w.key.PublicKey(),
		func(pk solanago.PublicKey) *solanago.PrivateKey {
			if pk.Equals(w.key.PublicKey()) {
				return &w.key
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return sig, nil
}
