package ports

import (
	"context"

	"corebank/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountRepository defines persistence operations for the balance ledger.
// Methods accepting pgx.Tx run inside the processor's atomic unit and rely on
// pessimistic row locking to serialize concurrent requests per card.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByCardNumber(ctx context.Context, cardNumber string) (*domain.Account, error)
	GetByCardNumberForUpdate(ctx context.Context, tx pgx.Tx, cardNumber string) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, cardNumber string, newBalance decimal.Decimal) error
}

// TransactionRepository is the append-only transaction log. Records are never
// updated or removed through this interface.
type TransactionRepository interface {
	// Append persists the record, assigns the next identifier and returns it.
	Append(ctx context.Context, tx pgx.Tx, record *domain.Transaction) (int64, error)
	ListByCard(ctx context.Context, cardNumber string) ([]domain.Transaction, error)
	ListAll(ctx context.Context) ([]domain.Transaction, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
