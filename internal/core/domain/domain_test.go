package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOperationType_IsValid(t *testing.T) {
	assert.True(t, OperationWithdraw.IsValid())
	assert.True(t, OperationTopup.IsValid())
	assert.False(t, OperationType("transfer").IsValid())
	assert.False(t, OperationType("WITHDRAW").IsValid(), "core expects normalized lowercase")
	assert.False(t, OperationType("").IsValid())
}

func TestAccount_CanWithdraw(t *testing.T) {
	a := &Account{Balance: decimal.NewFromInt(1000)}

	assert.True(t, a.CanWithdraw(decimal.NewFromInt(300)))
	assert.True(t, a.CanWithdraw(decimal.NewFromInt(1000)), "exact balance is withdrawable")
	assert.False(t, a.CanWithdraw(decimal.NewFromInt(1001)))
}

func TestTransaction_Succeeded(t *testing.T) {
	ok := &Transaction{Status: TransactionStatusSuccess}
	failed := &Transaction{Status: TransactionStatusFailed}

	assert.True(t, ok.Succeeded())
	assert.False(t, failed.Succeeded())
}
