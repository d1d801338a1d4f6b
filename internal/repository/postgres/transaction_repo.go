package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/davena/flowcast/flowcast-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `id, workspace_id, account_id, category, description, gross_amount, type, status, is_hypothetical, competence_date, payment_date, source, generation_batch, recurrence_rule_id, created_at, updated_at`

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	db Querier
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: pool}
}

// Create creates a new transaction
func (r *TransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	ctx := context.Background()

	grossAmount, err := decimalToPgNumeric(transaction.GrossAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid gross amount: %w", err)
	}

	var category pgtype.Text
	if transaction.Category != nil {
		category = pgtype.Text{String: *transaction.Category, Valid: true}
	}

	var paymentDate pgtype.Date
	if transaction.PaymentDate != nil {
		paymentDate = pgtype.Date{Time: *transaction.PaymentDate, Valid: true}
	}

	var generationBatch pgtype.UUID
	if transaction.GenerationBatch != nil {
		generationBatch = pgtype.UUID{Bytes: *transaction.GenerationBatch, Valid: true}
	}

	var ruleID pgtype.Int4
	if transaction.RecurrenceRuleID != nil {
		ruleID = pgtype.Int4{Int32: *transaction.RecurrenceRuleID, Valid: true}
	}

	source := transaction.Source
	if source == "" {
		source = domain.SourceManual
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO transactions (workspace_id, account_id, category, description, gross_amount, type, status, is_hypothetical, competence_date, payment_date, source, generation_batch, recurrence_rule_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+transactionColumns,
		transaction.WorkspaceID,
		transaction.AccountID,
		category,
		transaction.Description,
		grossAmount,
		string(transaction.Type),
		string(transaction.Status),
		transaction.IsHypothetical,
		pgtype.Date{Time: transaction.CompetenceDate, Valid: true},
		paymentDate,
		source,
		generationBatch,
		ruleID,
	)

	created, err := scanTransaction(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return created, nil
}

// GetByID retrieves a transaction by its ID within a workspace
func (r *TransactionRepository) GetByID(workspaceID int32, id int32) (*domain.Transaction, error) {
	ctx := context.Background()

	row := r.db.QueryRow(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id,
	)

	transaction, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// ListByWorkspace retrieves transactions for a workspace with optional filters and pagination
func (r *TransactionRepository) ListByWorkspace(workspaceID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	ctx := context.Background()

	if filters == nil {
		filters = &domain.TransactionFilters{}
	}
	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	if pageSize > domain.MaxPageSize {
		pageSize = domain.MaxPageSize
	}

	where := `WHERE workspace_id = $1`
	args := []interface{}{workspaceID}

	addFilter := func(condition string, value interface{}) {
		args = append(args, value)
		where += fmt.Sprintf(" AND "+condition, len(args))
	}

	if filters.AccountID != nil {
		addFilter("account_id = $%d", *filters.AccountID)
	}
	if filters.StartDate != nil {
		addFilter("competence_date >= $%d", pgtype.Date{Time: *filters.StartDate, Valid: true})
	}
	if filters.EndDate != nil {
		addFilter("competence_date <= $%d", pgtype.Date{Time: *filters.EndDate, Valid: true})
	}
	if filters.Type != nil {
		addFilter("type = $%d", string(*filters.Type))
	}
	if filters.Status != nil {
		addFilter("status = $%d", string(*filters.Status))
	}
	if filters.IsHypothetical != nil {
		addFilter("is_hypothetical = $%d", *filters.IsHypothetical)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions `+where, args...).Scan(&totalItems); err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT `+transactionColumns+`
		FROM transactions %s
		ORDER BY competence_date DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2,
	)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []*domain.Transaction{}
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int32((totalItems + int64(pageSize) - 1) / int64(pageSize))

	return &domain.PaginatedTransactions{
		Data:       transactions,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

// SumByPeriod aggregates gross amounts by type over a competence-date window
func (r *TransactionRepository) SumByPeriod(workspaceID int32, start, end time.Time, hypothetical bool, statuses []domain.TransactionStatus, accountIDs []int32) (*domain.PeriodSums, error) {
	ctx := context.Background()

	statusList := make([]string, len(statuses))
	for i, s := range statuses {
		statusList[i] = string(s)
	}

	var income, expense pgtype.Numeric
	err := r.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'income' THEN gross_amount ELSE 0 END), 0) AS income,
			COALESCE(SUM(CASE WHEN type = 'expense' THEN gross_amount ELSE 0 END), 0) AS expense
		FROM transactions
		WHERE workspace_id = $1
		  AND competence_date >= $2 AND competence_date <= $3
		  AND is_hypothetical = $4
		  AND status = ANY($5::text[])
		  AND (cardinality($6::int4[]) = 0 OR account_id = ANY($6))`,
		workspaceID,
		pgtype.Date{Time: start, Valid: true},
		pgtype.Date{Time: end, Valid: true},
		hypothetical,
		statusList,
		int4Array(accountIDs),
	).Scan(&income, &expense)
	if err != nil {
		return nil, fmt.Errorf("failed to sum transactions: %w", err)
	}

	return &domain.PeriodSums{
		Income:  pgNumericToDecimal(income),
		Expense: pgNumericToDecimal(expense),
	}, nil
}

// BalanceSums returns per-account paid non-hypothetical sums used for current balances
func (r *TransactionRepository) BalanceSums(workspaceID int32, accountIDs []int32) ([]*domain.AccountBalanceSums, error) {
	ctx := context.Background()

	rows, err := r.db.Query(ctx, `
		SELECT
			account_id,
			COALESCE(SUM(CASE WHEN type = 'income' THEN gross_amount ELSE 0 END), 0) AS sum_income,
			COALESCE(SUM(CASE WHEN type = 'expense' THEN gross_amount ELSE 0 END), 0) AS sum_expense
		FROM transactions
		WHERE workspace_id = $1
		  AND is_hypothetical = FALSE
		  AND status = 'paid'
		  AND (cardinality($2::int4[]) = 0 OR account_id = ANY($2))
		GROUP BY account_id`,
		workspaceID, int4Array(accountIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sum account balances: %w", err)
	}
	defer rows.Close()

	var sums []*domain.AccountBalanceSums
	for rows.Next() {
		var s domain.AccountBalanceSums
		var income, expense pgtype.Numeric
		if err := rows.Scan(&s.AccountID, &income, &expense); err != nil {
			return nil, err
		}
		s.SumIncome = pgNumericToDecimal(income)
		s.SumExpense = pgNumericToDecimal(expense)
		sums = append(sums, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sums, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var category pgtype.Text
	var grossAmount pgtype.Numeric
	var transactionType, status string
	var competenceDate, paymentDate pgtype.Date
	var generationBatch pgtype.UUID
	var ruleID pgtype.Int4

	err := row.Scan(
		&t.ID,
		&t.WorkspaceID,
		&t.AccountID,
		&category,
		&t.Description,
		&grossAmount,
		&transactionType,
		&status,
		&t.IsHypothetical,
		&competenceDate,
		&paymentDate,
		&t.Source,
		&generationBatch,
		&ruleID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if category.Valid {
		t.Category = &category.String
	}
	t.GrossAmount = pgNumericToDecimal(grossAmount)
	t.Type = domain.TransactionType(transactionType)
	t.Status = domain.TransactionStatus(status)
	t.CompetenceDate = competenceDate.Time
	if paymentDate.Valid {
		t.PaymentDate = &paymentDate.Time
	}
	if generationBatch.Valid {
		id := generationBatch.Bytes
		u := uuidFromBytes(id)
		t.GenerationBatch = &u
	}
	if ruleID.Valid {
		t.RecurrenceRuleID = &ruleID.Int32
	}
	return &t, nil
}
