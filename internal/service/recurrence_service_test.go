package service

import (
	"testing"
	"time"

	"github.com/davena/flowcast/flowcast-backend/internal/domain"
	"github.com/davena/flowcast/flowcast-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRecurrenceService() (*RecurrenceService, *testutil.MockRecurrenceRuleRepository, *testutil.MockAccountRepository) {
	ruleRepo := testutil.NewMockRecurrenceRuleRepository()
	accountRepo := testutil.NewMockAccountRepository()
	accountRepo.AddAccount(&domain.Account{
		ID:          1,
		WorkspaceID: testWorkspaceID,
		Name:        "Checking",
		IsActive:    true,
	})
	return NewRecurrenceService(ruleRepo, accountRepo), ruleRepo, accountRepo
}

func validRuleInput() CreateRuleInput {
	return CreateRuleInput{
		AccountID:   1,
		Description: "Salary",
		GrossAmount: decimal.NewFromInt(2500),
		Type:        domain.TransactionTypeIncome,
		Frequency:   domain.FrequencyMonthly,
		StartDate:   date(2025, time.January, 15),
	}
}

func TestCreateRule(t *testing.T) {
	svc, _, _ := setupRecurrenceService()

	rule, err := svc.CreateRule(testWorkspaceID, validRuleInput())
	require.NoError(t, err)

	assert.True(t, rule.IsActive)
	assert.Nil(t, rule.LastGeneratedDate)
	assert.False(t, rule.GenerateAsHypothetical)
}

func TestCreateRule_Validation(t *testing.T) {
	svc, _, _ := setupRecurrenceService()

	tests := []struct {
		name    string
		mutate  func(*CreateRuleInput)
		wantErr error
	}{
		{"empty description", func(i *CreateRuleInput) { i.Description = "" }, domain.ErrNameRequired},
		{"zero amount", func(i *CreateRuleInput) { i.GrossAmount = decimal.Zero }, domain.ErrInvalidAmount},
		{"invalid type", func(i *CreateRuleInput) { i.Type = "transfer" }, domain.ErrInvalidTransactionType},
		{"invalid frequency", func(i *CreateRuleInput) { i.Frequency = "fortnightly" }, domain.ErrInvalidFrequency},
		{"day of month too low", func(i *CreateRuleInput) { d := 0; i.DayOfMonth = &d }, domain.ErrInvalidDayOfMonth},
		{"day of month too high", func(i *CreateRuleInput) { d := 32; i.DayOfMonth = &d }, domain.ErrInvalidDayOfMonth},
		{"end before start", func(i *CreateRuleInput) { e := date(2025, time.January, 1); i.EndDate = &e }, domain.ErrInvalidDateRange},
		{"unknown account", func(i *CreateRuleInput) { i.AccountID = 99 }, domain.ErrAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRuleInput()
			tt.mutate(&input)
			_, err := svc.CreateRule(testWorkspaceID, input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateRule_DayOfMonth31Accepted(t *testing.T) {
	svc, _, _ := setupRecurrenceService()

	// Day 31 is valid even though shorter months clamp at generation time.
	input := validRuleInput()
	d := 31
	input.DayOfMonth = &d
	_, err := svc.CreateRule(testWorkspaceID, input)
	assert.NoError(t, err)
}

func TestUpdateRule(t *testing.T) {
	svc, ruleRepo, _ := setupRecurrenceService()
	ruleRepo.AddRule(&domain.RecurrenceRule{
		ID:          1,
		WorkspaceID: testWorkspaceID,
		AccountID:   1,
		Description: "Salary",
		GrossAmount: decimal.NewFromInt(2500),
		Type:        domain.TransactionTypeIncome,
		Frequency:   domain.FrequencyMonthly,
		StartDate:   date(2025, time.January, 15),
		IsActive:    true,
	})

	amount := decimal.NewFromInt(2600)
	inactive := false
	updated, err := svc.UpdateRule(testWorkspaceID, 1, UpdateRuleInput{
		GrossAmount: &amount,
		IsActive:    &inactive,
	})
	require.NoError(t, err)
	assert.True(t, updated.GrossAmount.Equal(decimal.NewFromInt(2600)))
	assert.False(t, updated.IsActive)
}

func TestUpdateRule_RejectsEndBeforeStart(t *testing.T) {
	svc, ruleRepo, _ := setupRecurrenceService()
	ruleRepo.AddRule(&domain.RecurrenceRule{
		ID:          1,
		WorkspaceID: testWorkspaceID,
		AccountID:   1,
		Description: "Salary",
		GrossAmount: decimal.NewFromInt(2500),
		Type:        domain.TransactionTypeIncome,
		Frequency:   domain.FrequencyMonthly,
		StartDate:   date(2025, time.June, 1),
		IsActive:    true,
	})

	end := date(2025, time.May, 1)
	_, err := svc.UpdateRule(testWorkspaceID, 1, UpdateRuleInput{EndDate: &end})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestDeleteRule(t *testing.T) {
	svc, ruleRepo, _ := setupRecurrenceService()
	ruleRepo.AddRule(&domain.RecurrenceRule{
		ID:          1,
		WorkspaceID: testWorkspaceID,
		AccountID:   1,
		Description: "Doomed",
		GrossAmount: decimal.NewFromInt(10),
		Type:        domain.TransactionTypeExpense,
		Frequency:   domain.FrequencyMonthly,
		StartDate:   date(2025, time.January, 1),
		IsActive:    true,
	})

	require.NoError(t, svc.DeleteRule(testWorkspaceID, 1))

	_, err := svc.GetRuleByID(testWorkspaceID, 1)
	assert.ErrorIs(t, err, domain.ErrRecurrenceRuleNotFound)
}

func TestGetRules_ActiveOnly(t *testing.T) {
	svc, ruleRepo, _ := setupRecurrenceService()
	ruleRepo.AddRule(&domain.RecurrenceRule{
		ID: 1, WorkspaceID: testWorkspaceID, AccountID: 1, Description: "active",
		GrossAmount: decimal.NewFromInt(10), Type: domain.TransactionTypeExpense,
		Frequency: domain.FrequencyMonthly, StartDate: date(2025, time.January, 1), IsActive: true,
	})
	ruleRepo.AddRule(&domain.RecurrenceRule{
		ID: 2, WorkspaceID: testWorkspaceID, AccountID: 1, Description: "paused",
		GrossAmount: decimal.NewFromInt(10), Type: domain.TransactionTypeExpense,
		Frequency: domain.FrequencyMonthly, StartDate: date(2025, time.January, 1), IsActive: false,
	})

	activeOnly := true
	rules, err := svc.GetRules(testWorkspaceID, &activeOnly)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "active", rules[0].Description)

	rules, err = svc.GetRules(testWorkspaceID, nil)
	require.NoError(t, err)
	assert.Len(t, rules, 2)
}
