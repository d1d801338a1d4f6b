package testutil

import (
	"sort"
	"time"

	"github.com/davena/flowcast/flowcast-backend/internal/domain"
	"github.com/davena/flowcast/flowcast-backend/internal/util"
	"github.com/shopspring/decimal"
)

// MockAccountRepository is a mock implementation of domain.AccountRepository
type MockAccountRepository struct {
	Accounts        map[int32]*domain.Account
	NextID          int32
	ListForTotalsFn func(workspaceID int32, ids []int32, includeInactive bool) ([]*domain.Account, error)
}

// NewMockAccountRepository creates a new MockAccountRepository
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		Accounts: make(map[int32]*domain.Account),
		NextID:   1,
	}
}

// AddAccount adds an account to the mock repository (helper for tests)
func (m *MockAccountRepository) AddAccount(account *domain.Account) {
	if account.ID == 0 {
		account.ID = m.NextID
	}
	if account.ID >= m.NextID {
		m.NextID = account.ID + 1
	}
	m.Accounts[account.ID] = account
}

// Create creates a new account
func (m *MockAccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	account.ID = m.NextID
	m.NextID++
	account.CreatedAt = time.Now()
	account.UpdatedAt = time.Now()
	m.Accounts[account.ID] = account
	return account, nil
}

// GetByID retrieves an account by ID
func (m *MockAccountRepository) GetByID(workspaceID int32, id int32) (*domain.Account, error) {
	account, ok := m.Accounts[id]
	if !ok || account.WorkspaceID != workspaceID || account.DeletedAt != nil {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

// ListByWorkspace retrieves all accounts for a workspace
func (m *MockAccountRepository) ListByWorkspace(workspaceID int32, includeInactive bool) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for _, account := range m.Accounts {
		if account.WorkspaceID != workspaceID || account.DeletedAt != nil {
			continue
		}
		if !includeInactive && !account.IsActive {
			continue
		}
		accounts = append(accounts, account)
	}
	sortAccounts(accounts)
	return accounts, nil
}

// ListForTotals retrieves accounts that count toward aggregate balances
func (m *MockAccountRepository) ListForTotals(workspaceID int32, ids []int32, includeInactive bool) ([]*domain.Account, error) {
	if m.ListForTotalsFn != nil {
		return m.ListForTotalsFn(workspaceID, ids, includeInactive)
	}

	idSet := make(map[int32]bool)
	for _, id := range ids {
		idSet[id] = true
	}

	var accounts []*domain.Account
	for _, account := range m.Accounts {
		if account.WorkspaceID != workspaceID || account.DeletedAt != nil {
			continue
		}
		if !account.IncludeInTotals {
			continue
		}
		if !includeInactive && !account.IsActive {
			continue
		}
		if len(idSet) > 0 && !idSet[account.ID] {
			continue
		}
		accounts = append(accounts, account)
	}
	sortAccounts(accounts)
	return accounts, nil
}

// Update updates an account
func (m *MockAccountRepository) Update(account *domain.Account) (*domain.Account, error) {
	existing, ok := m.Accounts[account.ID]
	if !ok || existing.WorkspaceID != account.WorkspaceID || existing.DeletedAt != nil {
		return nil, domain.ErrAccountNotFound
	}
	account.UpdatedAt = time.Now()
	m.Accounts[account.ID] = account
	return account, nil
}

// SoftDelete marks an account as deleted
func (m *MockAccountRepository) SoftDelete(workspaceID int32, id int32) error {
	account, ok := m.Accounts[id]
	if !ok || account.WorkspaceID != workspaceID || account.DeletedAt != nil {
		return domain.ErrAccountNotFound
	}
	now := time.Now()
	account.DeletedAt = &now
	return nil
}

func sortAccounts(accounts []*domain.Account) {
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	Transactions  map[int32]*domain.Transaction
	NextID        int32
	SumByPeriodFn func(workspaceID int32, start, end time.Time, hypothetical bool, statuses []domain.TransactionStatus, accountIDs []int32) (*domain.PeriodSums, error)
	BalanceSumsFn func(workspaceID int32, accountIDs []int32) ([]*domain.AccountBalanceSums, error)
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[int32]*domain.Transaction),
		NextID:       1,
	}
}

// AddTransaction adds a transaction to the mock repository (helper for tests)
func (m *MockTransactionRepository) AddTransaction(transaction *domain.Transaction) {
	if transaction.ID == 0 {
		transaction.ID = m.NextID
	}
	if transaction.ID >= m.NextID {
		m.NextID = transaction.ID + 1
	}
	m.Transactions[transaction.ID] = transaction
}

// Create creates a new transaction
func (m *MockTransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	transaction.ID = m.NextID
	m.NextID++
	transaction.CreatedAt = time.Now()
	transaction.UpdatedAt = time.Now()
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

// GetByID retrieves a transaction by ID
func (m *MockTransactionRepository) GetByID(workspaceID int32, id int32) (*domain.Transaction, error) {
	transaction, ok := m.Transactions[id]
	if !ok || transaction.WorkspaceID != workspaceID {
		return nil, domain.ErrTransactionNotFound
	}
	return transaction, nil
}

// ListByWorkspace retrieves transactions with filters
func (m *MockTransactionRepository) ListByWorkspace(workspaceID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	if filters == nil {
		filters = &domain.TransactionFilters{}
	}

	var matched []*domain.Transaction
	for _, t := range m.Transactions {
		if t.WorkspaceID != workspaceID {
			continue
		}
		if filters.AccountID != nil && t.AccountID != *filters.AccountID {
			continue
		}
		if filters.StartDate != nil && t.CompetenceDate.Before(*filters.StartDate) {
			continue
		}
		if filters.EndDate != nil && t.CompetenceDate.After(*filters.EndDate) {
			continue
		}
		if filters.Type != nil && t.Type != *filters.Type {
			continue
		}
		if filters.Status != nil && t.Status != *filters.Status {
			continue
		}
		if filters.IsHypothetical != nil && t.IsHypothetical != *filters.IsHypothetical {
			continue
		}
		matched = append(matched, t)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	totalItems := int64(len(matched))
	totalPages := int32((totalItems + int64(pageSize) - 1) / int64(pageSize))

	offset := (page - 1) * pageSize
	if int(offset) > len(matched) {
		matched = nil
	} else {
		end := offset + pageSize
		if int(end) > len(matched) {
			end = int32(len(matched))
		}
		matched = matched[offset:end]
	}

	return &domain.PaginatedTransactions{
		Data:       matched,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

// SumByPeriod aggregates stored transactions over a competence-date window
func (m *MockTransactionRepository) SumByPeriod(workspaceID int32, start, end time.Time, hypothetical bool, statuses []domain.TransactionStatus, accountIDs []int32) (*domain.PeriodSums, error) {
	if m.SumByPeriodFn != nil {
		return m.SumByPeriodFn(workspaceID, start, end, hypothetical, statuses, accountIDs)
	}

	statusSet := make(map[domain.TransactionStatus]bool)
	for _, s := range statuses {
		statusSet[s] = true
	}
	idSet := make(map[int32]bool)
	for _, id := range accountIDs {
		idSet[id] = true
	}

	sums := &domain.PeriodSums{Income: decimal.Zero, Expense: decimal.Zero}
	for _, t := range m.Transactions {
		if t.WorkspaceID != workspaceID || t.IsHypothetical != hypothetical {
			continue
		}
		if !statusSet[t.Status] {
			continue
		}
		d := util.DateOnly(t.CompetenceDate)
		if d.Before(util.DateOnly(start)) || d.After(util.DateOnly(end)) {
			continue
		}
		if len(idSet) > 0 && !idSet[t.AccountID] {
			continue
		}
		if t.Type == domain.TransactionTypeIncome {
			sums.Income = sums.Income.Add(t.GrossAmount)
		} else {
			sums.Expense = sums.Expense.Add(t.GrossAmount)
		}
	}
	return sums, nil
}

// BalanceSums returns per-account paid non-hypothetical sums
func (m *MockTransactionRepository) BalanceSums(workspaceID int32, accountIDs []int32) ([]*domain.AccountBalanceSums, error) {
	if m.BalanceSumsFn != nil {
		return m.BalanceSumsFn(workspaceID, accountIDs)
	}

	idSet := make(map[int32]bool)
	for _, id := range accountIDs {
		idSet[id] = true
	}

	byAccount := make(map[int32]*domain.AccountBalanceSums)
	for _, t := range m.Transactions {
		if t.WorkspaceID != workspaceID || t.IsHypothetical || t.Status != domain.StatusPaid {
			continue
		}
		if len(idSet) > 0 && !idSet[t.AccountID] {
			continue
		}
		sums, ok := byAccount[t.AccountID]
		if !ok {
			sums = &domain.AccountBalanceSums{
				AccountID:  t.AccountID,
				SumIncome:  decimal.Zero,
				SumExpense: decimal.Zero,
			}
			byAccount[t.AccountID] = sums
		}
		if t.Type == domain.TransactionTypeIncome {
			sums.SumIncome = sums.SumIncome.Add(t.GrossAmount)
		} else {
			sums.SumExpense = sums.SumExpense.Add(t.GrossAmount)
		}
	}

	var result []*domain.AccountBalanceSums
	for _, sums := range byAccount {
		result = append(result, sums)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AccountID < result[j].AccountID })
	return result, nil
}

// MockRecurrenceRuleRepository is a mock implementation of domain.RecurrenceRuleRepository
type MockRecurrenceRuleRepository struct {
	Rules  map[int32]*domain.RecurrenceRule
	NextID int32
}

// NewMockRecurrenceRuleRepository creates a new MockRecurrenceRuleRepository
func NewMockRecurrenceRuleRepository() *MockRecurrenceRuleRepository {
	return &MockRecurrenceRuleRepository{
		Rules:  make(map[int32]*domain.RecurrenceRule),
		NextID: 1,
	}
}

// AddRule adds a rule to the mock repository (helper for tests)
func (m *MockRecurrenceRuleRepository) AddRule(rule *domain.RecurrenceRule) {
	if rule.ID == 0 {
		rule.ID = m.NextID
	}
	if rule.ID >= m.NextID {
		m.NextID = rule.ID + 1
	}
	m.Rules[rule.ID] = rule
}

// Create creates a new rule
func (m *MockRecurrenceRuleRepository) Create(rule *domain.RecurrenceRule) (*domain.RecurrenceRule, error) {
	rule.ID = m.NextID
	m.NextID++
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = time.Now()
	m.Rules[rule.ID] = rule
	return rule, nil
}

// GetByID retrieves a rule by ID
func (m *MockRecurrenceRuleRepository) GetByID(workspaceID int32, id int32) (*domain.RecurrenceRule, error) {
	rule, ok := m.Rules[id]
	if !ok || rule.WorkspaceID != workspaceID || rule.DeletedAt != nil {
		return nil, domain.ErrRecurrenceRuleNotFound
	}
	return rule, nil
}

// ListByWorkspace retrieves all rules for a workspace
func (m *MockRecurrenceRuleRepository) ListByWorkspace(workspaceID int32, activeOnly *bool) ([]*domain.RecurrenceRule, error) {
	var rules []*domain.RecurrenceRule
	for _, rule := range m.Rules {
		if rule.WorkspaceID != workspaceID || rule.DeletedAt != nil {
			continue
		}
		if activeOnly != nil && rule.IsActive != *activeOnly {
			continue
		}
		rules = append(rules, rule)
	}
	sortRules(rules)
	return rules, nil
}

// ListActiveOverlapping retrieves active rules overlapping the window
func (m *MockRecurrenceRuleRepository) ListActiveOverlapping(workspaceID int32, windowStart, windowEnd time.Time, accountIDs []int32) ([]*domain.RecurrenceRule, error) {
	idSet := make(map[int32]bool)
	for _, id := range accountIDs {
		idSet[id] = true
	}

	var rules []*domain.RecurrenceRule
	for _, rule := range m.Rules {
		if rule.WorkspaceID != workspaceID || rule.DeletedAt != nil || !rule.IsActive {
			continue
		}
		if rule.StartDate.After(windowEnd) {
			continue
		}
		if rule.EndDate != nil && rule.EndDate.Before(windowStart) {
			continue
		}
		if len(idSet) > 0 && !idSet[rule.AccountID] {
			continue
		}
		rules = append(rules, rule)
	}
	sortRules(rules)
	return rules, nil
}

// Update updates a rule
func (m *MockRecurrenceRuleRepository) Update(rule *domain.RecurrenceRule) (*domain.RecurrenceRule, error) {
	existing, ok := m.Rules[rule.ID]
	if !ok || existing.WorkspaceID != rule.WorkspaceID || existing.DeletedAt != nil {
		return nil, domain.ErrRecurrenceRuleNotFound
	}
	rule.UpdatedAt = time.Now()
	m.Rules[rule.ID] = rule
	return rule, nil
}

// AdvanceWatermark moves last_generated_date forward
func (m *MockRecurrenceRuleRepository) AdvanceWatermark(workspaceID int32, id int32, date time.Time) error {
	rule, ok := m.Rules[id]
	if !ok || rule.WorkspaceID != workspaceID || rule.DeletedAt != nil {
		return domain.ErrRecurrenceRuleNotFound
	}
	if rule.LastGeneratedDate == nil || rule.LastGeneratedDate.Before(date) {
		d := date
		rule.LastGeneratedDate = &d
	}
	return nil
}

// SoftDelete marks a rule as deleted
func (m *MockRecurrenceRuleRepository) SoftDelete(workspaceID int32, id int32) error {
	rule, ok := m.Rules[id]
	if !ok || rule.WorkspaceID != workspaceID || rule.DeletedAt != nil {
		return domain.ErrRecurrenceRuleNotFound
	}
	now := time.Now()
	rule.DeletedAt = &now
	return nil
}

func sortRules(rules []*domain.RecurrenceRule) {
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
}
