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

const ruleColumns = `id, workspace_id, account_id, category, description, gross_amount, type, frequency, day_of_month, start_date, end_date, last_generated_date, is_active, generate_as_hypothetical, created_at, updated_at, deleted_at`

// RecurrenceRuleRepository implements domain.RecurrenceRuleRepository using PostgreSQL
type RecurrenceRuleRepository struct {
	db Querier
}

// NewRecurrenceRuleRepository creates a new RecurrenceRuleRepository
func NewRecurrenceRuleRepository(pool *pgxpool.Pool) *RecurrenceRuleRepository {
	return &RecurrenceRuleRepository{db: pool}
}

// Create creates a new recurrence rule
func (r *RecurrenceRuleRepository) Create(rule *domain.RecurrenceRule) (*domain.RecurrenceRule, error) {
	ctx := context.Background()

	grossAmount, err := decimalToPgNumeric(rule.GrossAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid gross amount: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO recurrence_rules (workspace_id, account_id, category, description, gross_amount, type, frequency, day_of_month, start_date, end_date, is_active, generate_as_hypothetical)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+ruleColumns,
		rule.WorkspaceID,
		rule.AccountID,
		textOrNull(rule.Category),
		rule.Description,
		grossAmount,
		string(rule.Type),
		string(rule.Frequency),
		intOrNull(rule.DayOfMonth),
		pgtype.Date{Time: rule.StartDate, Valid: true},
		dateOrNull(rule.EndDate),
		rule.IsActive,
		rule.GenerateAsHypothetical,
	)

	created, err := scanRule(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create recurrence rule: %w", err)
	}
	return created, nil
}

// GetByID retrieves a recurrence rule by ID
func (r *RecurrenceRuleRepository) GetByID(workspaceID int32, id int32) (*domain.RecurrenceRule, error) {
	ctx := context.Background()

	row := r.db.QueryRow(ctx, `
		SELECT `+ruleColumns+`
		FROM recurrence_rules
		WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL`,
		workspaceID, id,
	)

	rule, err := scanRule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecurrenceRuleNotFound
		}
		return nil, err
	}
	return rule, nil
}

// ListByWorkspace retrieves all recurrence rules for a workspace
func (r *RecurrenceRuleRepository) ListByWorkspace(workspaceID int32, activeOnly *bool) ([]*domain.RecurrenceRule, error) {
	ctx := context.Background()

	query := `
		SELECT ` + ruleColumns + `
		FROM recurrence_rules
		WHERE workspace_id = $1 AND deleted_at IS NULL`
	args := []interface{}{workspaceID}

	if activeOnly != nil {
		args = append(args, *activeOnly)
		query += fmt.Sprintf(" AND is_active = $%d", len(args))
	}
	query += " ORDER BY description"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurrence rules: %w", err)
	}
	defer rows.Close()

	return collectRules(rows)
}

// ListActiveOverlapping retrieves active rules overlapping the given window
func (r *RecurrenceRuleRepository) ListActiveOverlapping(workspaceID int32, windowStart, windowEnd time.Time, accountIDs []int32) ([]*domain.RecurrenceRule, error) {
	ctx := context.Background()

	rows, err := r.db.Query(ctx, `
		SELECT `+ruleColumns+`
		FROM recurrence_rules
		WHERE workspace_id = $1 AND deleted_at IS NULL
		  AND is_active = TRUE
		  AND start_date <= $3
		  AND (end_date IS NULL OR end_date >= $2)
		  AND (cardinality($4::int4[]) = 0 OR account_id = ANY($4))
		ORDER BY id`,
		workspaceID,
		pgtype.Date{Time: windowStart, Valid: true},
		pgtype.Date{Time: windowEnd, Valid: true},
		int4Array(accountIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list overlapping rules: %w", err)
	}
	defer rows.Close()

	return collectRules(rows)
}

// Update updates a recurrence rule
func (r *RecurrenceRuleRepository) Update(rule *domain.RecurrenceRule) (*domain.RecurrenceRule, error) {
	ctx := context.Background()

	grossAmount, err := decimalToPgNumeric(rule.GrossAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid gross amount: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		UPDATE recurrence_rules
		SET account_id = $3, category = $4, description = $5, gross_amount = $6, type = $7, frequency = $8, day_of_month = $9, start_date = $10, end_date = $11, is_active = $12, generate_as_hypothetical = $13, updated_at = NOW()
		WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL
		RETURNING `+ruleColumns,
		rule.WorkspaceID,
		rule.ID,
		rule.AccountID,
		textOrNull(rule.Category),
		rule.Description,
		grossAmount,
		string(rule.Type),
		string(rule.Frequency),
		intOrNull(rule.DayOfMonth),
		pgtype.Date{Time: rule.StartDate, Valid: true},
		dateOrNull(rule.EndDate),
		rule.IsActive,
		rule.GenerateAsHypothetical,
	)

	updated, err := scanRule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecurrenceRuleNotFound
		}
		return nil, err
	}
	return updated, nil
}

// AdvanceWatermark moves last_generated_date forward; it never moves backward
func (r *RecurrenceRuleRepository) AdvanceWatermark(workspaceID int32, id int32, date time.Time) error {
	ctx := context.Background()

	tag, err := r.db.Exec(ctx, `
		UPDATE recurrence_rules
		SET last_generated_date = GREATEST(COALESCE(last_generated_date, $3), $3), updated_at = NOW()
		WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL`,
		workspaceID, id, pgtype.Date{Time: date, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("failed to advance watermark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRecurrenceRuleNotFound
	}
	return nil
}

// SoftDelete marks a recurrence rule as deleted
func (r *RecurrenceRuleRepository) SoftDelete(workspaceID int32, id int32) error {
	ctx := context.Background()

	tag, err := r.db.Exec(ctx, `
		UPDATE recurrence_rules
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL`,
		workspaceID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete recurrence rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRecurrenceRuleNotFound
	}
	return nil
}

func scanRule(row pgx.Row) (*domain.RecurrenceRule, error) {
	var rule domain.RecurrenceRule
	var category pgtype.Text
	var grossAmount pgtype.Numeric
	var transactionType, frequency string
	var dayOfMonth pgtype.Int4
	var startDate, endDate, lastGenerated pgtype.Date
	var deletedAt pgtype.Timestamptz

	err := row.Scan(
		&rule.ID,
		&rule.WorkspaceID,
		&rule.AccountID,
		&category,
		&rule.Description,
		&grossAmount,
		&transactionType,
		&frequency,
		&dayOfMonth,
		&startDate,
		&endDate,
		&lastGenerated,
		&rule.IsActive,
		&rule.GenerateAsHypothetical,
		&rule.CreatedAt,
		&rule.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if category.Valid {
		rule.Category = &category.String
	}
	rule.GrossAmount = pgNumericToDecimal(grossAmount)
	rule.Type = domain.TransactionType(transactionType)
	rule.Frequency = domain.Frequency(frequency)
	if dayOfMonth.Valid {
		day := int(dayOfMonth.Int32)
		rule.DayOfMonth = &day
	}
	rule.StartDate = startDate.Time
	if endDate.Valid {
		rule.EndDate = &endDate.Time
	}
	if lastGenerated.Valid {
		rule.LastGeneratedDate = &lastGenerated.Time
	}
	if deletedAt.Valid {
		rule.DeletedAt = &deletedAt.Time
	}
	return &rule, nil
}

func collectRules(rows pgx.Rows) ([]*domain.RecurrenceRule, error) {
	var rules []*domain.RecurrenceRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

func textOrNull(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func intOrNull(n *int) pgtype.Int4 {
	if n == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(*n), Valid: true}
}

func dateOrNull(d *time.Time) pgtype.Date {
	if d == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: *d, Valid: true}
}
