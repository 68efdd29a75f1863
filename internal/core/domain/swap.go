package domain

import (
	"github.com/shopspring/decimal"
)

// SwapQuote is the displayed price for a pending swap. It is derived on
// every request and never persisted; the settlement side recomputes the
// rate from its own price source and ignores whatever the client saw.
type SwapQuote struct {
	Rate          decimal.Decimal `json:"rate"`
	CounterAmount decimal.Decimal `json:"counterAmount"`
}

// NewSwapQuote computes the quote for a base-asset amount at a rate.
func NewSwapQuote(amount, rate decimal.Decimal) SwapQuote {
	return SwapQuote{
		Rate:          rate,
		CounterAmount: amount.Mul(rate),
	}
}

// Payment is the single user-to-pool transfer handed to the submission
// wrapper. The wrapper passes it through untouched; the wallet sender
// interprets it.
type Payment struct {
	From   string
	To     string
	Amount decimal.Decimal // SOL
}

// QuoteResponse is the payload of the quote endpoint.
type QuoteResponse struct {
	SolPrice   float64 `json:"solPrice"`
	USDCMint   string  `json:"usdcMint"`
	PoolWallet string  `json:"poolWallet"`
	Configured bool    `json:"configured"`
	Error      string  `json:"error,omitempty"`
}

// CompletionRequest is the body of the swap completion endpoint. It is
// consumed exactly once per request.
type CompletionRequest struct {
	UserWallet     string  `json:"userWallet"`
	SolAmount      float64 `json:"solAmount"`
	SolTxSignature string  `json:"solTxSignature"`
}

// CompletionResponse is the success payload of the completion endpoint.
type CompletionResponse struct {
	Success    bool    `json:"success"`
	Signature  string  `json:"signature"`
	USDCAmount float64 `json:"usdcAmount"`
	SolPrice   float64 `json:"solPrice"`
}
