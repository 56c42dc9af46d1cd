package service

import (
	"context"
	"fmt"
	"time"

	"corebank/internal/core/domain"
	"corebank/internal/core/ports"
	"corebank/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Outcome messages. Recorded as the transaction reason and returned verbatim
// as the result message, so the audit log and the response always agree.
const (
	msgAccountNotFound     = "Account not found"
	msgInvalidCredential   = "Invalid credential"
	msgInvalidType         = "Invalid type"
	msgNonPositiveAmount   = "Amount must be > 0"
	msgInsufficientBalance = "Insufficient balance"
	msgWithdrawalOK        = "Withdrawal successful"
	msgTopupOK             = "Top-up successful"
)

// ProcessingServiceImpl implements ports.ProcessingService.
//
// Each request runs as one database transaction spanning the account row lock,
// the balance write and the audit append. Requests against the same card
// serialize on the row lock; different cards do not contend.
type ProcessingServiceImpl struct {
	accountRepo ports.AccountRepository
	txRepo      ports.TransactionRepository
	verifier    ports.PinVerifier
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewProcessingService creates a new ProcessingServiceImpl.
func NewProcessingService(
	accountRepo ports.AccountRepository,
	txRepo ports.TransactionRepository,
	verifier ports.PinVerifier,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *ProcessingServiceImpl {
	return &ProcessingServiceImpl{
		accountRepo: accountRepo,
		txRepo:      txRepo,
		verifier:    verifier,
		transactor:  transactor,
		log:         log,
	}
}

// Process runs the ordered check sequence. The first failing check
// short-circuits the rest; every outcome, success or failure, appends exactly
// one transaction record before the result is returned. Errors are
// infrastructure failures only and produce no record.
func (s *ProcessingServiceImpl) Process(ctx context.Context, req ports.ProcessRequest) (*ports.ProcessResult, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock & get account. The row lock is held until commit so no concurrent
	// request on the same card can observe a partially-applied state.
	acct, err := s.accountRepo.GetByCardNumberForUpdate(ctx, dbTx, req.CardNumber)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("lock account: %w", err))
	}

	if acct == nil {
		// No balance to report, but the attempt is still recorded under the
		// unknown card number.
		return s.reject(ctx, dbTx, req, nil, msgAccountNotFound)
	}

	if !s.verifier.Verify(req.PIN, acct.PINHash) {
		return s.reject(ctx, dbTx, req, &acct.Balance, msgInvalidCredential)
	}

	op := domain.OperationType(req.Type)
	if !op.IsValid() {
		return s.reject(ctx, dbTx, req, &acct.Balance, msgInvalidType)
	}

	if !req.Amount.IsPositive() {
		return s.reject(ctx, dbTx, req, &acct.Balance, msgNonPositiveAmount)
	}

	var newBalance decimal.Decimal
	var message string
	switch op {
	case domain.OperationWithdraw:
		if !acct.CanWithdraw(req.Amount) {
			return s.reject(ctx, dbTx, req, &acct.Balance, msgInsufficientBalance)
		}
		newBalance = acct.Balance.Sub(req.Amount)
		message = msgWithdrawalOK
	case domain.OperationTopup:
		newBalance = acct.Balance.Add(req.Amount)
		message = msgTopupOK
	}

	if err := s.accountRepo.UpdateBalance(ctx, dbTx, acct.CardNumber, newBalance); err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("update balance: %w", err))
	}

	id, err := s.append(ctx, dbTx, req, domain.TransactionStatusSuccess, message)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Int64("tx_id", id).
		Str("card_number", req.CardNumber).
		Str("type", req.Type).
		Str("amount", req.Amount.String()).
		Str("new_balance", newBalance.String()).
		Msg("transaction processed")

	return &ports.ProcessResult{
		Success:       true,
		Message:       message,
		Balance:       &newBalance,
		TransactionID: id,
	}, nil
}

// reject records a FAILED attempt and commits it, returning the rejection as
// data. balance is the account's current (unchanged) balance, or nil when the
// account does not exist.
func (s *ProcessingServiceImpl) reject(ctx context.Context, dbTx pgx.Tx, req ports.ProcessRequest, balance *decimal.Decimal, reason string) (*ports.ProcessResult, error) {
	id, err := s.append(ctx, dbTx, req, domain.TransactionStatusFailed, reason)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Int64("tx_id", id).
		Str("card_number", req.CardNumber).
		Str("type", req.Type).
		Str("reason", reason).
		Msg("transaction rejected")

	return &ports.ProcessResult{
		Success:       false,
		Message:       reason,
		Balance:       balance,
		TransactionID: id,
	}, nil
}

func (s *ProcessingServiceImpl) append(ctx context.Context, dbTx pgx.Tx, req ports.ProcessRequest, status domain.TransactionStatus, reason string) (int64, error) {
	record := &domain.Transaction{
		CardNumber: req.CardNumber,
		Type:       req.Type,
		Amount:     req.Amount,
		Status:     status,
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}

	id, err := s.txRepo.Append(ctx, dbTx, record)
	if err != nil {
		return 0, apperror.ErrStorageUnavailable(fmt.Errorf("append record: %w", err))
	}
	return id, nil
}
