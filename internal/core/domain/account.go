package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a balance-bearing ledger entry keyed by card number.
// PINHash holds the SHA-256 hex digest of the cardholder PIN; the plaintext
// PIN is never persisted or logged.
type Account struct {
	CardNumber string          `json:"card_number"`
	HolderName string          `json:"holder_name"`
	PINHash    string          `json:"-"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CanWithdraw reports whether the balance covers the requested amount.
func (a *Account) CanWithdraw(amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(a.Balance)
}
