package service

import (
	"strings"
	"testing"
	"time"

	"github.com/davena/flowcast/flowcast-backend/internal/domain"
	"github.com/davena/flowcast/flowcast-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTransactionService() (*TransactionService, *testutil.MockTransactionRepository, *testutil.MockAccountRepository) {
	transactionRepo := testutil.NewMockTransactionRepository()
	accountRepo := testutil.NewMockAccountRepository()
	accountRepo.AddAccount(&domain.Account{
		ID:          1,
		WorkspaceID: testWorkspaceID,
		Name:        "Checking",
		IsActive:    true,
	})
	return NewTransactionService(transactionRepo, accountRepo), transactionRepo, accountRepo
}

func validTransactionInput() CreateTransactionInput {
	return CreateTransactionInput{
		AccountID:      1,
		Description:    "Groceries",
		GrossAmount:    decimal.RequireFromString("54.30"),
		Type:           domain.TransactionTypeExpense,
		CompetenceDate: date(2025, time.March, 5),
	}
}

func TestCreateTransaction(t *testing.T) {
	svc, _, _ := setupTransactionService()

	tx, err := svc.CreateTransaction(testWorkspaceID, validTransactionInput())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, tx.Status)
	assert.Equal(t, domain.SourceManual, tx.Source)
	assert.False(t, tx.IsHypothetical)
	assert.Nil(t, tx.GenerationBatch)
	assert.True(t, tx.GrossAmount.Equal(decimal.RequireFromString("54.30")))
}

func TestCreateTransaction_Validation(t *testing.T) {
	svc, _, _ := setupTransactionService()

	tests := []struct {
		name    string
		mutate  func(*CreateTransactionInput)
		wantErr error
	}{
		{"empty description", func(i *CreateTransactionInput) { i.Description = "  " }, domain.ErrNameRequired},
		{"description too long", func(i *CreateTransactionInput) { i.Description = strings.Repeat("x", domain.MaxDescriptionLength+1) }, domain.ErrNameTooLong},
		{"zero amount", func(i *CreateTransactionInput) { i.GrossAmount = decimal.Zero }, domain.ErrInvalidAmount},
		{"negative amount", func(i *CreateTransactionInput) { i.GrossAmount = decimal.NewFromInt(-5) }, domain.ErrInvalidAmount},
		{"invalid type", func(i *CreateTransactionInput) { i.Type = "transfer" }, domain.ErrInvalidTransactionType},
		{"invalid status", func(i *CreateTransactionInput) { i.Status = "draft" }, domain.ErrInvalidStatus},
		{"unknown account", func(i *CreateTransactionInput) { i.AccountID = 99 }, domain.ErrAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validTransactionInput()
			tt.mutate(&input)
			_, err := svc.CreateTransaction(testWorkspaceID, input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateTransaction_MinimumAmountAccepted(t *testing.T) {
	svc, _, _ := setupTransactionService()

	input := validTransactionInput()
	input.GrossAmount = decimal.RequireFromString("0.01")
	_, err := svc.CreateTransaction(testWorkspaceID, input)
	assert.NoError(t, err)
}

func TestCreateTransaction_ExplicitStatus(t *testing.T) {
	svc, _, _ := setupTransactionService()

	input := validTransactionInput()
	input.Status = domain.StatusPaid
	tx, err := svc.CreateTransaction(testWorkspaceID, input)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, tx.Status)
}

func TestGetTransactions_PaginationDefaults(t *testing.T) {
	svc, transactionRepo, _ := setupTransactionService()
	transactionRepo.AddTransaction(&domain.Transaction{
		WorkspaceID:    testWorkspaceID,
		AccountID:      1,
		Description:    "one",
		GrossAmount:    decimal.NewFromInt(10),
		Type:           domain.TransactionTypeExpense,
		Status:         domain.StatusPaid,
		CompetenceDate: date(2025, time.March, 1),
	})

	filters := &domain.TransactionFilters{Page: 0, PageSize: 0}
	result, err := svc.GetTransactions(testWorkspaceID, filters)
	require.NoError(t, err)
	assert.Len(t, result.Data, 1)

	filters = &domain.TransactionFilters{PageSize: domain.MaxPageSize + 50}
	_, err = svc.GetTransactions(testWorkspaceID, filters)
	require.NoError(t, err)
	assert.Equal(t, int32(domain.MaxPageSize), filters.PageSize)
}

func TestGetTransactions_Filters(t *testing.T) {
	svc, transactionRepo, _ := setupTransactionService()
	transactionRepo.AddTransaction(&domain.Transaction{
		WorkspaceID:    testWorkspaceID,
		AccountID:      1,
		Description:    "income march",
		GrossAmount:    decimal.NewFromInt(100),
		Type:           domain.TransactionTypeIncome,
		Status:         domain.StatusPaid,
		CompetenceDate: date(2025, time.March, 1),
	})
	transactionRepo.AddTransaction(&domain.Transaction{
		WorkspaceID:    testWorkspaceID,
		AccountID:      1,
		Description:    "expense april",
		GrossAmount:    decimal.NewFromInt(40),
		Type:           domain.TransactionTypeExpense,
		Status:         domain.StatusPending,
		CompetenceDate: date(2025, time.April, 1),
	})

	txType := domain.TransactionTypeIncome
	result, err := svc.GetTransactions(testWorkspaceID, &domain.TransactionFilters{Type: &txType})
	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "income march", result.Data[0].Description)
}
