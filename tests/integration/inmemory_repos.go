package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"corebank/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[a.CardNumber]; ok {
		return fmt.Errorf("card already exists")
	}
	cp := *a
	r.accounts[a.CardNumber] = &cp
	return nil
}

func (r *inMemoryAccountRepo) GetByCardNumber(ctx context.Context, cardNumber string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[cardNumber]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *inMemoryAccountRepo) GetByCardNumberForUpdate(ctx context.Context, tx pgx.Tx, cardNumber string) (*domain.Account, error) {
	return r.GetByCardNumber(ctx, cardNumber)
}

func (r *inMemoryAccountRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, cardNumber string, newBalance decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[cardNumber]
	if !ok {
		return fmt.Errorf("account not found")
	}
	a.Balance = newBalance
	return nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu      sync.RWMutex
	nextID  int64
	records []domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{}
}

func (r *inMemoryTransactionRepo) Append(ctx context.Context, tx pgx.Tx, rec *domain.Transaction) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	cp := *rec
	cp.ID = r.nextID
	r.records = append(r.records, cp)
	return cp.ID, nil
}

func (r *inMemoryTransactionRepo) ListByCard(ctx context.Context, cardNumber string) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Transaction
	for _, rec := range r.records {
		if rec.CardNumber == cardNumber {
			result = append(result, rec)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (r *inMemoryTransactionRepo) ListAll(ctx context.Context) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Transaction, len(r.records))
	copy(result, r.records)
	sortNewestFirst(result)
	return result, nil
}

func sortNewestFirst(recs []domain.Transaction) {
	sort.SliceStable(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return recs[i].ID > recs[j].ID
	})
}

// --- Serializing In-Memory Transactor ---

// serialTransactor holds one lock from Begin until Commit or Rollback, so
// in-memory runs get the same one-at-a-time behavior the row lock gives the
// real store.
type serialTransactor struct {
	mu sync.Mutex
}

func newSerialTransactor() *serialTransactor {
	return &serialTransactor{}
}

func (t *serialTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &memTx{release: t.mu.Unlock}, nil
}

// memTx is a pgx.Tx that releases the transactor lock exactly once, on the
// first Commit or Rollback. The deferred Rollback after a Commit is a no-op.
type memTx struct {
	once    sync.Once
	release func()
}

func (t *memTx) end() {
	t.once.Do(t.release)
}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) Commit(ctx context.Context) error          { t.end(); return nil }
func (t *memTx) Rollback(ctx context.Context) error        { t.end(); return nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *memTx) Conn() *pgx.Conn { return nil }
