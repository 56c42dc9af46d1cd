package service

import (
	"context"
	"fmt"

	"corebank/internal/core/domain"
	"corebank/internal/core/ports"
	"corebank/pkg/apperror"
)

// QueryServiceImpl implements ports.QueryService. Reads run outside the
// processor's transaction and never take row locks.
type QueryServiceImpl struct {
	accountRepo ports.AccountRepository
	txRepo      ports.TransactionRepository
}

// NewQueryService creates a new QueryServiceImpl.
func NewQueryService(accountRepo ports.AccountRepository, txRepo ports.TransactionRepository) *QueryServiceImpl {
	return &QueryServiceImpl{
		accountRepo: accountRepo,
		txRepo:      txRepo,
	}
}

// GetCardDetails returns the account projection together with its full
// history, newest first.
func (s *QueryServiceImpl) GetCardDetails(ctx context.Context, cardNumber string) (*ports.CardDetails, error) {
	acct, err := s.accountRepo.GetByCardNumber(ctx, cardNumber)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("get account: %w", err))
	}
	if acct == nil {
		return nil, apperror.ErrNotFound("Card")
	}

	history, err := s.txRepo.ListByCard(ctx, cardNumber)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("list transactions: %w", err))
	}

	return &ports.CardDetails{
		CardNumber:   acct.CardNumber,
		HolderName:   acct.HolderName,
		Balance:      acct.Balance,
		Transactions: history,
	}, nil
}

// ListTransactions returns one card's history, or the full log when
// cardNumber is empty. Failed attempts against unknown cards appear here too.
func (s *QueryServiceImpl) ListTransactions(ctx context.Context, cardNumber string) ([]domain.Transaction, error) {
	var (
		records []domain.Transaction
		err     error
	)
	if cardNumber == "" {
		records, err = s.txRepo.ListAll(ctx)
	} else {
		records, err = s.txRepo.ListByCard(ctx, cardNumber)
	}
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("list transactions: %w", err))
	}
	return records, nil
}
