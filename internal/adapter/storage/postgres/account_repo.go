package postgres

import (
	"context"
	"errors"
	"fmt"

	"corebank/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// Create inserts a new account into the database.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (card_number, holder_name, pin_hash, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		a.CardNumber, a.HolderName, a.PINHash, a.Balance, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByCardNumber fetches an account by card number (without locking).
func (r *AccountRepo) GetByCardNumber(ctx context.Context, cardNumber string) (*domain.Account, error) {
	query := `SELECT card_number, holder_name, pin_hash, balance, created_at, updated_at
		FROM accounts WHERE card_number = $1`

	a := &domain.Account{}
	err := r.pool.QueryRow(ctx, query, cardNumber).Scan(
		&a.CardNumber, &a.HolderName, &a.PINHash, &a.Balance, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// GetByCardNumberForUpdate fetches an account with pessimistic locking.
// This MUST be called within a transaction.
func (r *AccountRepo) GetByCardNumberForUpdate(ctx context.Context, tx pgx.Tx, cardNumber string) (*domain.Account, error) {
	query := `SELECT card_number, holder_name, pin_hash, balance, created_at, updated_at
		FROM accounts WHERE card_number = $1 FOR UPDATE`

	a := &domain.Account{}
	err := tx.QueryRow(ctx, query, cardNumber).Scan(
		&a.CardNumber, &a.HolderName, &a.PINHash, &a.Balance, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account for update: %w", err)
	}
	return a, nil
}

// UpdateBalance updates an account's balance within a transaction.
func (r *AccountRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, cardNumber string, newBalance decimal.Decimal) error {
	query := `UPDATE accounts SET balance = $1, updated_at = NOW() WHERE card_number = $2`

	tag, err := tx.Exec(ctx, query, newBalance, cardNumber)
	if err != nil {
		return fmt.Errorf("update account balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account not found: %s", cardNumber)
	}
	return nil
}
