package swap

import (
	"context"
	"errors"
	"sync"
	"time"

	logger "log/slog"

	"github.com/shopspring/decimal"

	"github.com/vietddude/settler/internal/core/domain"
)

// State is the coordinator's user-visible phase.
type State string

const (
	StateIdle       State = "idle"
	StateQuoting    State = "quoting"
	StateSwapping   State = "swapping"
	StateConfirming State = "confirming"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// Config holds swap coordinator settings.
type Config struct {
	Debounce time.Duration `yaml:"debounce"`
}

// QuoteSource fetches the current swap quote from the settlement
// service.
type QuoteSource interface {
	Quote(ctx context.Context) (*domain.QuoteResponse, error)
}

// Completer reports a confirmed payment for settlement.
type Completer interface {
	Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error)
}

// BalanceSource reads a wallet's confirmed SOL balance.
type BalanceSource interface {
	Balance(ctx context.Context, wallet string) (decimal.Decimal, error)
}

// Wallet is the connected smart wallet.
type Wallet interface {
	Address() string
	Connected() bool
}

// Submitter sends the payment through the reliability wrapper.
type Submitter interface {
	Submit(ctx context.Context, req any) (string, error)
	Submitting() bool
}

// Snapshot is a point-in-time copy of coordinator state.
type Snapshot struct {
	State       State
	Amount      string
	Quote       *domain.SwapQuote
	TxSignature string
	Balance     decimal.Decimal
	Err         string
}

// Params holds the dependencies for NewCoordinator.
type Params struct {
	Config    Config
	Wallet    Wallet
	Quotes    QuoteSource
	Submitter Submitter
	Completer Completer
	Balances  BalanceSource
	OnChange  func(Snapshot)
}

// Coordinator drives a swap from amount entry through quoting,
// payment submission and settlement. All state transitions happen on
// the Run loop; the exported methods are safe from any goroutine.
type Coordinator struct {
	cfg       Config
	wallet    Wallet
	quotes    QuoteSource
	submitter Submitter
	completer Completer
	balances  BalanceSource
	onChange  func(Snapshot)
	log       *logger.Logger

	amountCh  chan string
	submitCh  chan chan error
	quoteCh   chan quoteResult
	swapCh    chan swapEvent
	balanceCh chan decimal.Decimal

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}

	mu   sync.RWMutex
	snap Snapshot
}

type quoteResult struct {
	gen        uint64
	quote      *domain.SwapQuote
	poolWallet string
	degraded   bool
	err        error
}

type swapEvent struct {
	state State
	sig   string
	err   error
}

// NewCoordinator creates a swap coordinator.
func NewCoordinator(p Params) *Coordinator {
	cfg := p.Config
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}

	return &Coordinator{
		cfg:       cfg,
		wallet:    p.Wallet,
		quotes:    p.Quotes,
		submitter: p.Submitter,
		completer: p.Completer,
		balances:  p.Balances,
		onChange:  p.OnChange,
		log:       logger.With("component", "swap"),
		amountCh:  make(chan string),
		submitCh:  make(chan chan error),
		quoteCh:   make(chan quoteResult),
		swapCh:    make(chan swapEvent),
		balanceCh: make(chan decimal.Decimal),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		snap:      Snapshot{State: StateIdle},
	}
}

// SetAmount records a new input amount. The running quote, if any, is
// discarded; a fresh quote is fetched after the debounce window.
func (c *Coordinator) SetAmount(amount string) {
	select {
	case c.amountCh <- amount:
	case <-c.doneCh:
	}
}

// Submit starts the swap for the current amount and quote. It returns
// once the swap has been accepted or rejected by local validation;
// progress continues in the background.
func (c *Coordinator) Submit(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case c.submitCh <- reply:
	case <-c.doneCh:
		return errors.New("coordinator stopped")
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns a copy of the current state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Submitting reports whether a payment submission is in flight.
func (c *Coordinator) Submitting() bool {
	return c.submitter.Submitting()
}

// Stop terminates the Run loop.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

// Run processes coordinator events until the context is cancelled or
// Stop is called.
func (c *Coordinator) Run(ctx context.Context) {
	defer close(c.doneCh)

	debounce := time.NewTimer(c.cfg.Debounce)
	debounce.Stop()
	defer debounce.Stop()

	var (
		snap       = Snapshot{State: StateIdle}
		amount     decimal.Decimal
		gen        uint64
		poolWallet string
		swapping   bool
	)
	publish := func() {
		c.publish(snap)
	}
	publish()

	if c.wallet.Connected() {
		go c.refreshBalance(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return

		case raw := <-c.amountCh:
			snap.Amount = raw
			snap.Quote = nil
			if !swapping {
				snap.TxSignature = ""
			}
			gen++

			parsed, err := decimal.NewFromString(raw)
			if err != nil || parsed.Sign() <= 0 {
				amount = decimal.Zero
				debounce.Stop()
				if !swapping {
					snap.State = StateIdle
					snap.Err = ""
				}
				publish()
				continue
			}

			amount = parsed
			debounce.Reset(c.cfg.Debounce)
			if !swapping {
				snap.State = StateIdle
				snap.Err = ""
			}
			publish()

		case <-debounce.C:
			if amount.Sign() <= 0 {
				continue
			}
			if !swapping {
				snap.State = StateQuoting
				snap.Err = ""
				publish()
			}
			go c.fetchQuote(ctx, gen, amount)

		case res := <-c.quoteCh:
			if res.gen != gen {
				continue
			}
			if res.err != nil {
				c.log.Warn("Quote fetch failed", "error", res.err)
				if !swapping {
					snap.State = StateError
					snap.Err = domain.ErrQuoteUnavailable.Error()
					publish()
				}
				continue
			}
			if res.degraded {
				c.log.Warn("Quote served from fallback price")
			}
			snap.Quote = res.quote
			poolWallet = res.poolWallet
			if !swapping {
				snap.State = StateIdle
				snap.Err = ""
			}
			publish()

		case reply := <-c.submitCh:
			err := c.validateSubmit(snap, amount, swapping)
			if err != nil {
				snap.State = StateError
				snap.Err = err.Error()
				publish()
				reply <- err
				continue
			}

			swapping = true
			snap.State = StateSwapping
			snap.Err = ""
			snap.TxSignature = ""
			publish()
			go c.executeSwap(ctx, amount, poolWallet)
			reply <- nil

		case ev := <-c.swapCh:
			snap.State = ev.state
			if ev.sig != "" {
				snap.TxSignature = ev.sig
			}
			switch ev.state {
			case StateError:
				snap.Err = ev.err.Error()
				swapping = false
			case StateSuccess:
				snap.Err = ""
				swapping = false
				go c.refreshBalance(ctx)
			}
			publish()

		case bal := <-c.balanceCh:
			snap.Balance = bal
			publish()
		}
	}
}

func (c *Coordinator) publish(snap Snapshot) {
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
	if c.onChange != nil {
		c.onChange(snap)
	}
}

func (c *Coordinator) validateSubmit(snap Snapshot, amount decimal.Decimal, swapping bool) error {
	if swapping {
		return errors.New("swap already in progress")
	}
	if !c.wallet.Connected() {
		return errors.New("wallet not connected")
	}
	if snap.Quote == nil {
		return errors.New("no quote available")
	}
	if amount.Sign() <= 0 {
		return errors.New("enter an amount")
	}
	if amount.Cmp(snap.Balance) > 0 {
		return errors.New("insufficient balance")
	}
	return nil
}

func (c *Coordinator) fetchQuote(ctx context.Context, gen uint64, amount decimal.Decimal) {
	resp, err := c.quotes.Quote(ctx)
	res := quoteResult{gen: gen, err: err}
	if err == nil {
		quote := domain.NewSwapQuote(amount, decimal.NewFromFloat(resp.SolPrice))
		res.quote = &quote
		res.poolWallet = resp.PoolWallet
		res.degraded = resp.Error != ""
	}

	select {
	case c.quoteCh <- res:
	case <-ctx.Done():
	case <-c.doneCh:
	}
}

// executeSwap submits the SOL payment and reports it for settlement.
// Amount and pool wallet are captured at submit time so later edits
// cannot disturb an in-flight swap.
func (c *Coordinator) executeSwap(ctx context.Context, amount decimal.Decimal, poolWallet string) {
	payment := &domain.Payment{
		From:   c.wallet.Address(),
		To:     poolWallet,
		Amount: amount,
	}

	sig, err := c.submitter.Submit(ctx, payment)
	if err != nil {
		c.report(ctx, swapEvent{state: StateError, err: err})
		return
	}
	c.report(ctx, swapEvent{state: StateConfirming, sig: sig})

	resp, err := c.completer.Complete(ctx, &domain.CompletionRequest{
		UserWallet:     c.wallet.Address(),
		SolAmount:      amount.InexactFloat64(),
		SolTxSignature: sig,
	})
	if err != nil {
		c.report(ctx, swapEvent{state: StateError, sig: sig, err: err})
		return
	}
	if !resp.Success || resp.Signature == "" {
		c.report(ctx, swapEvent{state: StateError, sig: sig, err: errors.New("unexpected response from settlement service")})
		return
	}

	c.report(ctx, swapEvent{state: StateSuccess, sig: sig})
}

func (c *Coordinator) report(ctx context.Context, ev swapEvent) {
	select {
	case c.swapCh <- ev:
	case <-ctx.Done():
	case <-c.doneCh:
	}
}

func (c *Coordinator) refreshBalance(ctx context.Context) {
	bal, err := c.balances.Balance(ctx, c.wallet.Address())
	if err != nil {
		c.log.Warn("Balance refresh failed", "error", err)
		return
	}

	select {
	case c.balanceCh <- bal:
	case <-ctx.Done():
	case <-c.doneCh:
	}
}
