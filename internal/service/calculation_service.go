package service

import (
	"github.com/davena/flowcast/flowcast-backend/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CalculationService handles balance calculation logic. Balances are always
// recomputed from the ledger, never cached.
type CalculationService struct {
	accountRepo     domain.AccountRepository
	transactionRepo domain.TransactionRepository
}

// NewCalculationService creates a new CalculationService
func NewCalculationService(accountRepo domain.AccountRepository, transactionRepo domain.TransactionRepository) *CalculationService {
	return &CalculationService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
	}
}

// AccountBalanceResult holds the calculated balance for a single account.
// Err is set when that account's balance could not be computed; the account
// then contributes nothing to aggregates.
type AccountBalanceResult struct {
	AccountID      int32
	InitialBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	Err            error
}

// CurrentBalance computes an account's balance: initial balance plus paid
// income minus paid expenses, hypothetical entries excluded.
func (s *CalculationService) CurrentBalance(account *domain.Account) (decimal.Decimal, error) {
	sums, err := s.transactionRepo.BalanceSums(account.WorkspaceID, []int32{account.ID})
	if err != nil {
		return decimal.Zero, err
	}

	balance := account.InitialBalance
	for _, sum := range sums {
		if sum.AccountID == account.ID {
			balance = balance.Add(sum.SumIncome).Sub(sum.SumExpense)
		}
	}
	return balance, nil
}

// AccountBalances calculates balances for all accounts in a workspace
func (s *CalculationService) AccountBalances(workspaceID int32, includeInactive bool) ([]*AccountBalanceResult, error) {
	accounts, err := s.accountRepo.ListByWorkspace(workspaceID, includeInactive)
	if err != nil {
		return nil, err
	}

	results := make([]*AccountBalanceResult, 0, len(accounts))
	for _, account := range accounts {
		result := &AccountBalanceResult{
			AccountID:      account.ID,
			InitialBalance: account.InitialBalance,
		}
		result.CurrentBalance, result.Err = s.CurrentBalance(account)
		results = append(results, result)
	}
	return results, nil
}

// StartingBalance sums current balances across accounts that count toward
// totals: active with include_in_totals set, optionally restricted to the
// given id set. A single account's balance failure is skipped, not fatal.
func (s *CalculationService) StartingBalance(workspaceID int32, accountIDs []int32) (decimal.Decimal, error) {
	accounts, err := s.accountRepo.ListForTotals(workspaceID, accountIDs, false)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, account := range accounts {
		balance, err := s.CurrentBalance(account)
		if err != nil {
			log.Warn().
				Err(err).
				Int32("workspace_id", workspaceID).
				Int32("account_id", account.ID).
				Msg("Skipping account balance in starting-balance aggregation")
			continue
		}
		total = total.Add(balance)
	}
	return total, nil
}
