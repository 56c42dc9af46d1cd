package ports

import (
	"context"
	"time"

	"corebank/internal/core/domain"

	"github.com/shopspring/decimal"
)

// PinVerifier one-way transforms a PIN into a comparable digest.
// Digest is deterministic with fixed output length (SHA-256, lowercase hex);
// the plaintext argument is never stored or logged.
type PinVerifier interface {
	Digest(secret string) string
	Verify(presented string, storedDigest string) bool
}

// HashService handles password hashing for operator credentials (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations for the back office.
type TokenService interface {
	Generate(subject string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Subject string
}

// --- Service ports (business logic) ---

// ProcessRequest is the processor's operation contract. Type arrives
// normalized (lowercased) from the edge but is re-validated by the core.
type ProcessRequest struct {
	CardNumber string
	PIN        string
	Amount     decimal.Decimal
	Type       string
}

// ProcessResult reports one processing outcome. Balance is nil when the
// account does not exist; otherwise it carries the balance after the attempt
// (unchanged on rejection). TransactionID references the audit record that
// every attempt produces.
type ProcessResult struct {
	Success       bool
	Message       string
	Balance       *decimal.Decimal
	TransactionID int64
}

// ProcessingService is the transaction-processing engine: one atomic unit per
// request spanning account lookup, PIN verification, the balance rule and the
// audit append. Domain rejections are returned as data, never as errors;
// errors signal infrastructure failures only.
type ProcessingService interface {
	Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error)
}

// CardDetails is the read-only projection of an account and its full history.
type CardDetails struct {
	CardNumber   string               `json:"card_number"`
	HolderName   string               `json:"holder_name"`
	Balance      decimal.Decimal      `json:"balance"`
	Transactions []domain.Transaction `json:"transactions"`
}

// QueryService provides read-only projections over the ledger and the log.
type QueryService interface {
	GetCardDetails(ctx context.Context, cardNumber string) (*CardDetails, error)
	// ListTransactions returns the card's history newest first, or the full
	// unfiltered log when cardNumber is empty.
	ListTransactions(ctx context.Context, cardNumber string) ([]domain.Transaction, error)
}

// ProvisionRequest holds input for account provisioning (admin/seed path).
type ProvisionRequest struct {
	CardNumber     string
	HolderName     string
	PIN            string
	InitialBalance decimal.Decimal
}

// AccountService covers account provisioning. The PIN is digested immediately
// and only the digest is persisted.
type AccountService interface {
	Provision(ctx context.Context, req ProvisionRequest) (*domain.Account, error)
}

// AuthService authenticates back-office operators.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}
