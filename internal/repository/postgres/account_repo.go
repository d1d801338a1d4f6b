package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/davena/flowcast/flowcast-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `id, workspace_id, name, currency, initial_balance, is_active, include_in_totals, created_at, updated_at, deleted_at`

// AccountRepository implements domain.AccountRepository using PostgreSQL
type AccountRepository struct {
	db Querier
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: pool}
}

// Create creates a new account
func (r *AccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	ctx := context.Background()

	initialBalance, err := decimalToPgNumeric(account.InitialBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid initial balance: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO accounts (workspace_id, name, currency, initial_balance, is_active, include_in_totals)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+accountColumns,
		account.WorkspaceID,
		account.Name,
		account.Currency,
		initialBalance,
		account.IsActive,
		account.IncludeInTotals,
	)

	created, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return created, nil
}

// GetByID retrieves an account by ID within a workspace
func (r *AccountRepository) GetByID(workspaceID int32, id int32) (*domain.Account, error) {
	ctx := context.Background()

	row := r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL`,
		workspaceID, id,
	)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// ListByWorkspace retrieves all accounts for a workspace
func (r *AccountRepository) ListByWorkspace(workspaceID int32, includeInactive bool) ([]*domain.Account, error) {
	ctx := context.Background()

	rows, err := r.db.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE workspace_id = $1 AND deleted_at IS NULL
		  AND ($2 OR is_active = TRUE)
		ORDER BY name`,
		workspaceID, includeInactive,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// ListForTotals retrieves accounts that count toward aggregate balances
func (r *AccountRepository) ListForTotals(workspaceID int32, ids []int32, includeInactive bool) ([]*domain.Account, error) {
	ctx := context.Background()

	rows, err := r.db.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE workspace_id = $1 AND deleted_at IS NULL
		  AND include_in_totals = TRUE
		  AND ($2 OR is_active = TRUE)
		  AND (cardinality($3::int4[]) = 0 OR id = ANY($3))
		ORDER BY id`,
		workspaceID, includeInactive, int4Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for totals: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// Update updates an account's mutable fields
func (r *AccountRepository) Update(account *domain.Account) (*domain.Account, error) {
	ctx := context.Background()

	initialBalance, err := decimalToPgNumeric(account.InitialBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid initial balance: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		UPDATE accounts
		SET name = $3, currency = $4, initial_balance = $5, is_active = $6, include_in_totals = $7, updated_at = NOW()
		WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL
		RETURNING `+accountColumns,
		account.WorkspaceID,
		account.ID,
		account.Name,
		account.Currency,
		initialBalance,
		account.IsActive,
		account.IncludeInTotals,
	)

	updated, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return updated, nil
}

// SoftDelete marks an account as deleted
func (r *AccountRepository) SoftDelete(workspaceID int32, id int32) error {
	ctx := context.Background()

	tag, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL`,
		workspaceID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	var initialBalance pgtype.Numeric
	var deletedAt pgtype.Timestamptz

	err := row.Scan(
		&a.ID,
		&a.WorkspaceID,
		&a.Name,
		&a.Currency,
		&initialBalance,
		&a.IsActive,
		&a.IncludeInTotals,
		&a.CreatedAt,
		&a.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	a.InitialBalance = pgNumericToDecimal(initialBalance)
	if deletedAt.Valid {
		a.DeletedAt = &deletedAt.Time
	}
	return &a, nil
}

func collectAccounts(rows pgx.Rows) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}
