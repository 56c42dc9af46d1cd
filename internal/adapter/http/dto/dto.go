package dto

import (
	"time"

	"corebank/internal/core/domain"
	"corebank/internal/core/ports"

	"github.com/shopspring/decimal"
)

// ProcessRequest is the request body for transaction processing. Amount
// carries no range binding on purpose: non-positive amounts must reach the
// processor so the attempt lands in the log.
type ProcessRequest struct {
	CardNumber string          `json:"card_number" binding:"required,cardnumber"`
	PIN        string          `json:"pin" binding:"required,min=4,max=12"`
	Amount     decimal.Decimal `json:"amount"`
	Type       string          `json:"type" binding:"required"`
}

// ProcessResponse is the response body for processing outcomes. Balance is a
// pointer so an unknown account renders as an explicit null.
type ProcessResponse struct {
	Success       bool             `json:"success"`
	Message       string           `json:"message"`
	Balance       *decimal.Decimal `json:"balance"`
	TransactionID int64            `json:"transaction_id"`
}

// ProvisionRequest is the request body for account provisioning.
type ProvisionRequest struct {
	CardNumber     string          `json:"card_number" binding:"required,cardnumber"`
	HolderName     string          `json:"holder_name" binding:"required,min=1,max=100"`
	PIN            string          `json:"pin" binding:"required,min=4,max=12"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// LoginRequest is the request body for operator login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// TransactionResponse is the response body for one transaction record.
type TransactionResponse struct {
	ID         int64           `json:"id"`
	CardNumber string          `json:"card_number"`
	Type       string          `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	Reason     string          `json:"reason"`
	CreatedAt  string          `json:"created_at"`
}

// CardResponse is the response body for card detail queries.
type CardResponse struct {
	CardNumber   string                `json:"card_number"`
	HolderName   string                `json:"holder_name"`
	Balance      decimal.Decimal       `json:"balance"`
	Transactions []TransactionResponse `json:"transactions"`
}

// AccountResponse is the response body for provisioning.
type AccountResponse struct {
	CardNumber string          `json:"card_number"`
	HolderName string          `json:"holder_name"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  string          `json:"created_at"`
}

// FromProcessResult converts a processing outcome to its DTO.
func FromProcessResult(r *ports.ProcessResult) ProcessResponse {
	return ProcessResponse{
		Success:       r.Success,
		Message:       r.Message,
		Balance:       r.Balance,
		TransactionID: r.TransactionID,
	}
}

// FromTransaction converts a transaction record to its DTO.
func FromTransaction(rec domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:         rec.ID,
		CardNumber: rec.CardNumber,
		Type:       rec.Type,
		Amount:     rec.Amount,
		Status:     string(rec.Status),
		Reason:     rec.Reason,
		CreatedAt:  rec.CreatedAt.Format(time.RFC3339),
	}
}

// FromTransactions converts a record slice, keeping order.
func FromTransactions(recs []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, FromTransaction(rec))
	}
	return out
}

// FromCardDetails converts the card projection to its DTO.
func FromCardDetails(d *ports.CardDetails) CardResponse {
	return CardResponse{
		CardNumber:   d.CardNumber,
		HolderName:   d.HolderName,
		Balance:      d.Balance,
		Transactions: FromTransactions(d.Transactions),
	}
}

// FromAccount converts a provisioned account to its DTO.
func FromAccount(a *domain.Account) AccountResponse {
	return AccountResponse{
		CardNumber: a.CardNumber,
		HolderName: a.HolderName,
		Balance:    a.Balance,
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
	}
}
