package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settlement is a completed countersettlement, recorded in the ledger
// keyed on the payment signature. Only finished payouts are recorded;
// a failed completion leaves no partial state behind.
type Settlement struct {
	ID               string           `json:"id"`
	PaymentSignature string           `json:"payment_signature"`
	UserWallet       string           `json:"user_wallet"`
	SolAmount        decimal.Decimal  `json:"sol_amount"`
	USDCAmount       decimal.Decimal  `json:"usdc_amount"`
	Rate             decimal.Decimal  `json:"rate"`
	Signature        string           `json:"signature"`
	Status           SettlementStatus `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
}

type SettlementStatus string

const (
	SettlementCompleted SettlementStatus = "completed"
)
