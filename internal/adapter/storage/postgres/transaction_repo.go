package postgres

import (
	"context"
	"fmt"

	"corebank/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository. Inserts only ever
// happen inside the processor's transaction; reads run on the pool.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Append inserts a transaction record and returns its assigned identifier.
func (r *TransactionRepo) Append(ctx context.Context, tx pgx.Tx, rec *domain.Transaction) (int64, error) {
	query := `INSERT INTO transactions (card_number, type, amount, status, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	var id int64
	err := tx.QueryRow(ctx, query,
		rec.CardNumber, rec.Type, rec.Amount, rec.Status, rec.Reason, rec.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	return id, nil
}

// ListByCard returns a card's records, newest first.
func (r *TransactionRepo) ListByCard(ctx context.Context, cardNumber string) ([]domain.Transaction, error) {
	query := `SELECT id, card_number, type, amount, status, reason, created_at
		FROM transactions WHERE card_number = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, cardNumber)
	if err != nil {
		return nil, fmt.Errorf("list transactions by card: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListAll returns the full log, newest first.
func (r *TransactionRepo) ListAll(ctx context.Context) ([]domain.Transaction, error) {
	query := `SELECT id, card_number, type, amount, status, reason, created_at
		FROM transactions ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func scanTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	var records []domain.Transaction
	for rows.Next() {
		var rec domain.Transaction
		if err := rows.Scan(
			&rec.ID, &rec.CardNumber, &rec.Type, &rec.Amount,
			&rec.Status, &rec.Reason, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return records, nil
}
