package service

import (
	"strings"

	"github.com/davena/flowcast/flowcast-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// AccountService handles account-related business logic
type AccountService struct {
	accountRepo domain.AccountRepository
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo domain.AccountRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

// CreateAccountInput holds the input for creating an account
type CreateAccountInput struct {
	Name            string
	Currency        string
	InitialBalance  decimal.Decimal
	IncludeInTotals bool
}

// CreateAccount creates a new account
func (s *AccountService) CreateAccount(workspaceID int32, input CreateAccountInput) (*domain.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxAccountNameLength {
		return nil, domain.ErrNameTooLong
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "EUR"
	}

	account := &domain.Account{
		WorkspaceID:     workspaceID,
		Name:            name,
		Currency:        currency,
		InitialBalance:  input.InitialBalance,
		IsActive:        true,
		IncludeInTotals: input.IncludeInTotals,
	}

	return s.accountRepo.Create(account)
}

// GetAccounts retrieves all accounts for a workspace
func (s *AccountService) GetAccounts(workspaceID int32, includeInactive bool) ([]*domain.Account, error) {
	return s.accountRepo.ListByWorkspace(workspaceID, includeInactive)
}

// GetAccountByID retrieves an account by ID within a workspace
func (s *AccountService) GetAccountByID(workspaceID int32, id int32) (*domain.Account, error) {
	return s.accountRepo.GetByID(workspaceID, id)
}

// UpdateAccountInput holds the editable account fields
type UpdateAccountInput struct {
	Name            *string
	InitialBalance  *decimal.Decimal
	IsActive        *bool
	IncludeInTotals *bool
}

// UpdateAccount applies a partial update to an account
func (s *AccountService) UpdateAccount(workspaceID int32, id int32, input UpdateAccountInput) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(workspaceID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.ErrNameRequired
		}
		if len(name) > domain.MaxAccountNameLength {
			return nil, domain.ErrNameTooLong
		}
		account.Name = name
	}
	if input.InitialBalance != nil {
		account.InitialBalance = *input.InitialBalance
	}
	if input.IsActive != nil {
		account.IsActive = *input.IsActive
	}
	if input.IncludeInTotals != nil {
		account.IncludeInTotals = *input.IncludeInTotals
	}

	return s.accountRepo.Update(account)
}

// DeleteAccount soft-deletes an account (sets deleted_at timestamp)
func (s *AccountService) DeleteAccount(workspaceID int32, id int32) error {
	return s.accountRepo.SoftDelete(workspaceID, id)
}
