package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID              int32           `json:"id"`
	WorkspaceID     int32           `json:"workspaceId"`
	Name            string          `json:"name"`
	Currency        string          `json:"currency"`
	InitialBalance  decimal.Decimal `json:"initialBalance"`
	IsActive        bool            `json:"isActive"`
	IncludeInTotals bool            `json:"includeInTotals"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	DeletedAt       *time.Time      `json:"deletedAt,omitempty"`
}

type AccountRepository interface {
	Create(account *Account) (*Account, error)
	GetByID(workspaceID int32, id int32) (*Account, error)
	ListByWorkspace(workspaceID int32, includeInactive bool) ([]*Account, error)
	// ListForTotals returns accounts that count toward aggregate balances:
	// active (unless includeInactive) with include_in_totals set, optionally
	// restricted to the given id set (empty = all).
	ListForTotals(workspaceID int32, ids []int32, includeInactive bool) ([]*Account, error)
	Update(account *Account) (*Account, error)
	SoftDelete(workspaceID int32, id int32) error
}
