package service

import (
	"strings"
	"time"

	"github.com/davena/flowcast/flowcast-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// RecurrenceService handles recurrence rule business logic
type RecurrenceService struct {
	ruleRepo    domain.RecurrenceRuleRepository
	accountRepo domain.AccountRepository
}

// NewRecurrenceService creates a new RecurrenceService
func NewRecurrenceService(ruleRepo domain.RecurrenceRuleRepository, accountRepo domain.AccountRepository) *RecurrenceService {
	return &RecurrenceService{
		ruleRepo:    ruleRepo,
		accountRepo: accountRepo,
	}
}

// CreateRuleInput holds the input for creating a recurrence rule
type CreateRuleInput struct {
	AccountID              int32
	Category               *string
	Description            string
	GrossAmount            decimal.Decimal
	Type                   domain.TransactionType
	Frequency              domain.Frequency
	DayOfMonth             *int
	StartDate              time.Time
	EndDate                *time.Time
	GenerateAsHypothetical bool
}

// CreateRule validates and creates a recurrence rule
func (s *RecurrenceService) CreateRule(workspaceID int32, input CreateRuleInput) (*domain.RecurrenceRule, error) {
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
	if !input.Frequency.IsValid() {
		return nil, domain.ErrInvalidFrequency
	}
	if input.DayOfMonth != nil && (*input.DayOfMonth < 1 || *input.DayOfMonth > 31) {
		return nil, domain.ErrInvalidDayOfMonth
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return nil, domain.ErrInvalidDateRange
	}

	if _, err := s.accountRepo.GetByID(workspaceID, input.AccountID); err != nil {
		return nil, err
	}

	rule := &domain.RecurrenceRule{
		WorkspaceID:            workspaceID,
		AccountID:              input.AccountID,
		Category:               input.Category,
		Description:            description,
		GrossAmount:            input.GrossAmount,
		Type:                   input.Type,
		Frequency:              input.Frequency,
		DayOfMonth:             input.DayOfMonth,
		StartDate:              input.StartDate,
		EndDate:                input.EndDate,
		IsActive:               true,
		GenerateAsHypothetical: input.GenerateAsHypothetical,
	}

	return s.ruleRepo.Create(rule)
}

// GetRules retrieves recurrence rules for a workspace
func (s *RecurrenceService) GetRules(workspaceID int32, activeOnly *bool) ([]*domain.RecurrenceRule, error) {
	return s.ruleRepo.ListByWorkspace(workspaceID, activeOnly)
}

// GetRuleByID retrieves a rule by ID within a workspace
func (s *RecurrenceService) GetRuleByID(workspaceID int32, id int32) (*domain.RecurrenceRule, error) {
	return s.ruleRepo.GetByID(workspaceID, id)
}

// UpdateRuleInput holds the editable rule fields
type UpdateRuleInput struct {
	Description            *string
	GrossAmount            *decimal.Decimal
	Frequency              *domain.Frequency
	DayOfMonth             *int
	EndDate                *time.Time
	IsActive               *bool
	GenerateAsHypothetical *bool
}

// UpdateRule applies a partial update to a recurrence rule. The start date
// and watermark are immutable once the rule exists.
func (s *RecurrenceService) UpdateRule(workspaceID int32, id int32, input UpdateRuleInput) (*domain.RecurrenceRule, error) {
	rule, err := s.ruleRepo.GetByID(workspaceID, id)
	if err != nil {
		return nil, err
	}

	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, domain.ErrNameRequired
		}
		if len(description) > domain.MaxDescriptionLength {
			return nil, domain.ErrNameTooLong
		}
		rule.Description = description
	}
	if input.GrossAmount != nil {
		if input.GrossAmount.LessThan(minTransactionAmount) {
			return nil, domain.ErrInvalidAmount
		}
		rule.GrossAmount = *input.GrossAmount
	}
	if input.Frequency != nil {
		if !input.Frequency.IsValid() {
			return nil, domain.ErrInvalidFrequency
		}
		rule.Frequency = *input.Frequency
	}
	if input.DayOfMonth != nil {
		if *input.DayOfMonth < 1 || *input.DayOfMonth > 31 {
			return nil, domain.ErrInvalidDayOfMonth
		}
		rule.DayOfMonth = input.DayOfMonth
	}
	if input.EndDate != nil {
		if input.EndDate.Before(rule.StartDate) {
			return nil, domain.ErrInvalidDateRange
		}
		rule.EndDate = input.EndDate
	}
	if input.IsActive != nil {
		rule.IsActive = *input.IsActive
	}
	if input.GenerateAsHypothetical != nil {
		rule.GenerateAsHypothetical = *input.GenerateAsHypothetical
	}

	return s.ruleRepo.Update(rule)
}

// DeleteRule soft-deletes a recurrence rule
func (s *RecurrenceService) DeleteRule(workspaceID int32, id int32) error {
	return s.ruleRepo.SoftDelete(workspaceID, id)
}
