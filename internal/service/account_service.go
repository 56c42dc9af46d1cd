package service

import (
	"context"
	"fmt"
	"time"

	"corebank/internal/core/domain"
	"corebank/internal/core/ports"
	"corebank/pkg/apperror"
)

// AccountServiceImpl implements ports.AccountService.
type AccountServiceImpl struct {
	accountRepo ports.AccountRepository
	verifier    ports.PinVerifier
}

// NewAccountService creates a new AccountServiceImpl.
func NewAccountService(accountRepo ports.AccountRepository, verifier ports.PinVerifier) *AccountServiceImpl {
	return &AccountServiceImpl{
		accountRepo: accountRepo,
		verifier:    verifier,
	}
}

// Provision creates a new account. The plaintext PIN is digested here and
// never reaches the repository.
func (s *AccountServiceImpl) Provision(ctx context.Context, req ports.ProvisionRequest) (*domain.Account, error) {
	if req.InitialBalance.IsNegative() {
		return nil, apperror.Validation("initial balance must not be negative")
	}

	existing, err := s.accountRepo.GetByCardNumber(ctx, req.CardNumber)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("check card: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrCardExists()
	}

	now := time.Now().UTC()
	account := &domain.Account{
		CardNumber: req.CardNumber,
		HolderName: req.HolderName,
		PINHash:    s.verifier.Digest(req.PIN),
		Balance:    req.InitialBalance,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("create account: %w", err))
	}

	return account, nil
}
