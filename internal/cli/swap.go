package cli

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"github.com/vietddude/settler/internal/api"
	solanachain "github.com/vietddude/settler/internal/infra/chain/solana"
	"github.com/vietddude/settler/internal/submit"
	"github.com/vietddude/settler/internal/swap"
)

var (
	swapAmount string
	serverURL  string
)

var swapCmd = &cobra.Command{
	Use:   "swap",
	Short: "Run a swap against a running settler server",
	Long: `Pays SOL from the demo wallet to the pool wallet, reports the payment
to the settler server and waits for the USDC payout. The wallet key is
read from DEMO_WALLET_KEY as a base64 encoded 64 byte keypair.`,
	Run: runSwap,
}

func init() {
	swapCmd.Flags().StringVar(&swapAmount, "amount", "0.1", "SOL amount to swap")
	swapCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "settler server URL")
	rootCmd.AddCommand(swapCmd)
}

// swapDriver collects coordinator snapshots so the command can follow
// the swap through its states.
type swapDriver struct {
	snapCh chan swap.Snapshot
	last   swap.Snapshot
}

func (d *swapDriver) onChange(s swap.Snapshot) {
	select {
	case d.snapCh <- s:
	default:
	}
}

func (d *swapDriver) await(timeout time.Duration, cond func(swap.Snapshot) bool) (swap.Snapshot, error) {
	deadline := time.After(timeout)
	for {
		select {
		case snap := <-d.snapCh:
			if snap.State != d.last.State {
				fmt.Printf("  %s\n", snap.State)
			}
			d.last = snap
			if cond(snap) {
				return snap, nil
			}
		case <-deadline:
			return d.last, errors.New("timed out waiting for swap progress")
		}
	}
}

func runSwap(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	raw := os.Getenv("DEMO_WALLET_KEY")
	if raw == "" {
		slog.Error("DEMO_WALLET_KEY is not set")
		os.Exit(1)
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(decoded) != 64 {
		slog.Error("DEMO_WALLET_KEY must be a base64 encoded 64 byte keypair")
		os.Exit(1)
	}
	key := solanago.PrivateKey(decoded)

	adapter, err := solanachain.NewAdapter(cfg.Chain, cfg.USDC.Mint, nil)
	if err != nil {
		slog.Error("Failed to init chain adapter", "error", err)
		os.Exit(1)
	}

	sender := solanachain.NewWalletSender(adapter, key)
	submitter, err := submit.NewSubmitter(sender, cfg.Submit)
	if err != nil {
		slog.Error("Invalid submit policy", "error", err)
		os.Exit(1)
	}
	client := api.NewClient(serverURL)

	driver := &swapDriver{snapCh: make(chan swap.Snapshot, 64)}
	coord := swap.NewCoordinator(swap.Params{
		Config:    cfg.Swap,
		Wallet:    sender,
		Quotes:    client,
		Submitter: submitter,
		Completer: client,
		Balances:  adapter,
		OnChange:  driver.onChange,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go coord.Run(ctx)
	defer coord.Stop()

	fmt.Printf("Swapping %s SOL from %s\n", swapAmount, sender.Address())
	coord.SetAmount(swapAmount)

	ready, err := driver.await(30*time.Second, func(s swap.Snapshot) bool {
		return s.Quote != nil && s.Balance.Sign() > 0
	})
	if err != nil {
		slog.Error("No quote or wallet balance", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Quote: 1 SOL = %s USDC, wallet balance %s SOL\n",
		ready.Quote.Rate.String(), ready.Balance.String())

	if err := coord.Submit(ctx); err != nil {
		slog.Error("Swap rejected", "error", err)
		os.Exit(1)
	}

	final, err := driver.await(3*time.Minute, func(s swap.Snapshot) bool {
		return s.State == swap.StateSuccess || s.State == swap.StateError
	})
	if err != nil {
		slog.Error("Swap did not finish", "error", err)
		os.Exit(1)
	}
	if final.State == swap.StateError {
		slog.Error("Swap failed", "error", final.Err, "payment", final.TxSignature)
		os.Exit(1)
	}

	fmt.Printf("Swap complete: payment %s\n", final.TxSignature)
}
