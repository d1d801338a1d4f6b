package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusScheduled TransactionStatus = "scheduled"
	StatusPaid      TransactionStatus = "paid"
	StatusCancelled TransactionStatus = "cancelled"
)

// Transaction sources
const (
	SourceManual    = "manual"
	SourceRecurring = "recurring"
)

// Transaction is a single ledger entry. GrossAmount is always stored positive;
// direction comes from Type.
type Transaction struct {
	ID               int32             `json:"id"`
	WorkspaceID      int32             `json:"workspaceId"`
	AccountID        int32             `json:"accountId"`
	Category         *string           `json:"category,omitempty"`
	Description      string            `json:"description"`
	GrossAmount      decimal.Decimal   `json:"grossAmount"`
	Type             TransactionType   `json:"type"`
	Status           TransactionStatus `json:"status"`
	IsHypothetical   bool              `json:"isHypothetical"`
	CompetenceDate   time.Time         `json:"competenceDate"`
	PaymentDate      *time.Time        `json:"paymentDate,omitempty"`
	Source           string            `json:"source,omitempty"`
	GenerationBatch  *uuid.UUID        `json:"generationBatch,omitempty"`
	RecurrenceRuleID *int32            `json:"recurrenceRuleId,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

type TransactionFilters struct {
	AccountID      *int32
	StartDate      *time.Time
	EndDate        *time.Time
	Type           *TransactionType
	Status         *TransactionStatus
	IsHypothetical *bool
	Page           int32
	PageSize       int32
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PaginatedTransactions struct {
	Data       []*Transaction `json:"data"`
	Page       int32          `json:"page"`
	PageSize   int32          `json:"pageSize"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int32          `json:"totalPages"`
}

// PeriodSums holds income/expense totals for one aggregation query.
type PeriodSums struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// AccountBalanceSums holds the paid, non-hypothetical ledger sums for one
// account, used to derive its current balance.
type AccountBalanceSums struct {
	AccountID  int32
	SumIncome  decimal.Decimal
	SumExpense decimal.Decimal
}

type TransactionRepository interface {
	Create(transaction *Transaction) (*Transaction, error)
	GetByID(workspaceID int32, id int32) (*Transaction, error)
	ListByWorkspace(workspaceID int32, filters *TransactionFilters) (*PaginatedTransactions, error)
	// SumByPeriod aggregates gross amounts by type over competence_date in
	// [start, end], restricted to the given statuses, hypothetical flag and
	// optional account set.
	SumByPeriod(workspaceID int32, start, end time.Time, hypothetical bool, statuses []TransactionStatus, accountIDs []int32) (*PeriodSums, error)
	// BalanceSums returns per-account paid non-hypothetical sums for the given
	// accounts (empty = all accounts in the workspace).
	BalanceSums(workspaceID int32, accountIDs []int32) ([]*AccountBalanceSums, error)
}
