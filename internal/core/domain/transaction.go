package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationType represents the kind of balance movement.
type OperationType string

const (
	OperationWithdraw OperationType = "withdraw"
	OperationTopup    OperationType = "topup"
)

// IsValid reports whether the operation type is one the processor accepts.
func (o OperationType) IsValid() bool {
	return o == OperationWithdraw || o == OperationTopup
}

// TransactionStatus is the recorded outcome of a processing attempt.
type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

// Transaction is an immutable audit record of one processing attempt,
// successful or not. ID is assigned by the store on append; CreatedAt is
// stamped by the processor. Type carries the requested operation kind verbatim
// so rejected kinds are auditable too.
type Transaction struct {
	ID         int64             `json:"id"`
	CardNumber string            `json:"card_number"`
	Type       string            `json:"type"`
	Amount     decimal.Decimal   `json:"amount"`
	Status     TransactionStatus `json:"status"`
	Reason     string            `json:"reason"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Succeeded reports whether the attempt mutated the ledger.
func (t *Transaction) Succeeded() bool {
	return t.Status == TransactionStatusSuccess
}
