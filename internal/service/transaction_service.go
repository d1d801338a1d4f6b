package service

import (
	"strings"
	"time"

	"github.com/davena/flowcast/flowcast-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// minTransactionAmount is the smallest accepted gross amount.
var minTransactionAmount = decimal.RequireFromString("0.01")

// TransactionService handles ledger entry business logic
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	accountRepo     domain.AccountRepository
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository, accountRepo domain.AccountRepository) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
	}
}

// CreateTransactionInput holds the input for creating a transaction
type CreateTransactionInput struct {
	AccountID      int32
	Category       *string
	Description    string
	GrossAmount    decimal.Decimal
	Type           domain.TransactionType
	Status         domain.TransactionStatus
	IsHypothetical bool
	CompetenceDate time.Time
	PaymentDate    *time.Time
}

// CreateTransaction validates and creates a manual ledger entry
func (s *TransactionService) CreateTransaction(workspaceID int32, input CreateTransactionInput) (*domain.Transaction, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, domain.ErrNameRequired
	}
	if len(description) > domain.MaxDescriptionLength {
		return nil, domain.ErrNameTooLong
	}

	if input.GrossAmount.LessThan(minTransactionAmount) {
		return nil, domain.ErrInvalidAmount
	}

	if input.Type != domain.TransactionTypeIncome && input.Type != domain.TransactionTypeExpense {
		return nil, domain.ErrInvalidTransactionType
	}

	status := input.Status
	if status == "" {
		status = domain.StatusPending
	}
	switch status {
	case domain.StatusPending, domain.StatusScheduled, domain.StatusPaid, domain.StatusCancelled:
	default:
		return nil, domain.ErrInvalidStatus
	}

	// The account must exist in the workspace before a ledger entry can
	// reference it.
	if _, err := s.accountRepo.GetByID(workspaceID, input.AccountID); err != nil {
		return nil, err
	}

	transaction := &domain.Transaction{
		WorkspaceID:    workspaceID,
		AccountID:      input.AccountID,
		Category:       input.Category,
		Description:    description,
		GrossAmount:    input.GrossAmount,
		Type:           input.Type,
		Status:         status,
		IsHypothetical: input.IsHypothetical,
		CompetenceDate: input.CompetenceDate,
		PaymentDate:    input.PaymentDate,
		Source:         domain.SourceManual,
	}

	return s.transactionRepo.Create(transaction)
}

// GetTransactionByID retrieves a transaction by ID within a workspace
func (s *TransactionService) GetTransactionByID(workspaceID int32, id int32) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(workspaceID, id)
}

// GetTransactions retrieves transactions with filters and pagination
func (s *TransactionService) GetTransactions(workspaceID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	if filters == nil {
		filters = &domain.TransactionFilters{}
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = domain.DefaultPageSize
	}
	if filters.PageSize > domain.MaxPageSize {
		filters.PageSize = domain.MaxPageSize
	}
	return s.transactionRepo.ListByWorkspace(workspaceID, filters)
}
