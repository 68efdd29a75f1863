package solana

import (
	"context"
	"strings"
	"testing"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

func mustRandomKey(t *testing.T) solanago.PrivateKey {
	t.Helper()
	key, err := solanago.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	return key
}

// offCurveAddress returns a program-derived address, which never lies
// on the ed25519 curve.
func offCurveAddress(t *testing.T) solanago.PublicKey {
	t.Helper()
	pda, _, err := solanago.FindProgramAddress(
		[][]byte{[]byte("smart-wallet")},
		solanago.SystemProgramID,
	)
	if err != nil {
		t.Fatalf("Failed to derive PDA: %v", err)
	}
	return pda
}

func TestAssociatedTokenAddress_OffCurveOwner(t *testing.T) {
	mint := mustRandomKey(t).PublicKey()
	pda := offCurveAddress(t)

	if pda.IsOnCurve() {
		t.Fatal("Expected PDA to be off curve")
	}

	if _, err := associatedTokenAddress(pda, mint, false); err == nil {
		t.Error("Expected off-curve owner to be rejected when not allowed")
	}

	ata, err := associatedTokenAddress(pda, mint, true)
	if err != nil {
		t.Fatalf("Expected off-curve owner to be allowed: %v", err)
	}

	want, _, err := solanago.FindAssociatedTokenAddress(pda, mint)
	if err != nil {
		t.Fatalf("FindAssociatedTokenAddress failed: %v", err)
	}
	if !ata.Equals(want) {
		t.Errorf("Expected %s, got %s", want, ata)
	}
}

func TestAssociatedTokenAddress_OnCurveOwner(t *testing.T) {
	mint := mustRandomKey(t).PublicKey()
	owner := mustRandomKey(t).PublicKey()

	if _, err := associatedTokenAddress(owner, mint, false); err != nil {
		t.Errorf("Expected on-curve owner to be accepted: %v", err)
	}
}

func TestSettlementInstructions(t *testing.T) {
	poolKey := mustRandomKey(t)
	adapter := &Adapter{
		mint: mustRandomKey(t).PublicKey(),
		pool: &Pool{
			key:          poolKey,
			wallet:       poolKey.PublicKey(),
			tokenAccount: mustRandomKey(t).PublicKey(),
		},
	}
	userWallet := offCurveAddress(t)
	userATA, _, _ := solanago.FindAssociatedTokenAddress(userWallet, adapter.mint)

	t.Run("existing account", func(t *testing.T) {
		instrs := adapter.settlementInstructions(userWallet, userATA, false, 1_000_000)
		if len(instrs) != 1 {
			t.Fatalf("Expected 1 instruction, got %d", len(instrs))
		}
		if !instrs[0].ProgramID().Equals(solanago.TokenProgramID) {
			t.Errorf("Expected token program, got %s", instrs[0].ProgramID())
		}
	})

	t.Run("missing account", func(t *testing.T) {
		instrs := adapter.settlementInstructions(userWallet, userATA, true, 1_000_000)
		if len(instrs) != 2 {
			t.Fatalf("Expected 2 instructions, got %d", len(instrs))
		}
		if !instrs[0].ProgramID().Equals(solanago.SPLAssociatedTokenAccountProgramID) {
			t.Errorf("Expected account creation first, got program %s", instrs[0].ProgramID())
		}
		if !instrs[1].ProgramID().Equals(solanago.TokenProgramID) {
			t.Errorf("Expected token transfer second, got program %s", instrs[1].ProgramID())
		}

		transfer := instrs[1].Accounts()
		if !transfer[0].PublicKey.Equals(adapter.pool.tokenAccount) {
			t.Errorf("Expected transfer source %s, got %s", adapter.pool.tokenAccount, transfer[0].PublicKey)
		}
		if !transfer[1].PublicKey.Equals(userATA) {
			t.Errorf("Expected transfer destination %s, got %s", userATA, transfer[1].PublicKey)
		}
	})
}

func TestLamportConversions(t *testing.T) {
	if got := solFromLamports(1_500_000_000); !got.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("Expected 1.5 SOL, got %s", got)
	}

	got, err := lamportsFromSOL(decimal.RequireFromString("0.25"))
	if err != nil {
		t.Fatalf("lamportsFromSOL failed: %v", err)
	}
	if got != 250_000_000 {
		t.Errorf("Expected 250000000 lamports, got %d", got)
	}

	// A fraction below one lamport floors to zero.
	if _, err := lamportsFromSOL(decimal.RequireFromString("0.0000000005")); err == nil {
		t.Error("Expected sub-lamport amount to be rejected")
	}
	if _, err := lamportsFromSOL(decimal.NewFromInt(-1)); err == nil {
		t.Error("Expected negative amount to be rejected")
	}
}

func TestWalletSender_RejectsUnknownRequest(t *testing.T) {
	sender := NewWalletSender(nil, mustRandomKey(t))

	_, err := sender.SignAndSend(context.Background(), 42)
	if err == nil || !strings.Contains(err.Error(), "unsupported request type") {
		t.Errorf("Expected unsupported request error, got %v", err)
	}
}

func TestWalletSender_Connected(t *testing.T) {
	if (&WalletSender{}).Connected() {
		t.Error("Expected empty sender to be disconnected")
	}
	if !NewWalletSender(nil, mustRandomKey(t)).Connected() {
		t.Error("Expected keyed sender to be connected")
	}
}
