package service

import (
	"fmt"
	"time"

	"github.com/davena/flowcast/flowcast-backend/internal/domain"
	"github.com/davena/flowcast/flowcast-backend/internal/util"
	"github.com/shopspring/decimal"
)

// Forecast bounds and defaults
const (
	MinForecastMonths       = 1
	MaxForecastMonths       = 24
	DefaultForecastMonths   = 3
	DefaultHistoricalMonths = 6
)

var forecastStatuses = []domain.TransactionStatus{domain.StatusPending, domain.StatusScheduled}
var historicalStatuses = []domain.TransactionStatus{domain.StatusPaid, domain.StatusPending}

// ForecastService projects future account balances month by month, combining
// scheduled transactions, hypothetical transactions, recurring-rule
// projections and historical averages. It is read-only: nothing in the
// ledger is mutated by a forecast.
type ForecastService struct {
	calculationService *CalculationService
	transactionRepo    domain.TransactionRepository
	ruleRepo           domain.RecurrenceRuleRepository
	now                func() time.Time
}

// NewForecastService creates a new ForecastService
func NewForecastService(
	calculationService *CalculationService,
	transactionRepo domain.TransactionRepository,
	ruleRepo domain.RecurrenceRuleRepository,
) *ForecastService {
	return &ForecastService{
		calculationService: calculationService,
		transactionRepo:    transactionRepo,
		ruleRepo:           ruleRepo,
		now:                time.Now,
	}
}

// NewForecastServiceWithClock creates a ForecastService with an injected
// clock, used by tests that need deterministic period boundaries.
func NewForecastServiceWithClock(
	calculationService *CalculationService,
	transactionRepo domain.TransactionRepository,
	ruleRepo domain.RecurrenceRuleRepository,
	now func() time.Time,
) *ForecastService {
	s := NewForecastService(calculationService, transactionRepo, ruleRepo)
	s.now = now
	return s
}

// ForecastInput holds the parameters of one forecast run
type ForecastInput struct {
	Months                int
	StartDate             *time.Time
	AccountIDs            []int32
	IncludeHypothetical   bool
	IncludeRecurring      bool
	UseHistoricalAverages bool
	HistoricalMonths      int
}

// DefaultForecastInput returns an input with all sources enabled
func DefaultForecastInput() ForecastInput {
	return ForecastInput{
		Months:                DefaultForecastMonths,
		IncludeHypothetical:   true,
		IncludeRecurring:      true,
		UseHistoricalAverages: true,
		HistoricalMonths:      DefaultHistoricalMonths,
	}
}

// Forecast generates a cashflow forecast for the workspace. The default
// start date is the first day of the month following today; the horizon is
// one calendar-month period per requested month.
func (s *ForecastService) Forecast(workspaceID int32, input ForecastInput) (*domain.ForecastResult, error) {
	if input.Months < MinForecastMonths || input.Months > MaxForecastMonths {
		return nil, domain.ErrInvalidForecastMonths
	}
	if input.UseHistoricalAverages && (input.HistoricalMonths < MinForecastMonths || input.HistoricalMonths > MaxForecastMonths) {
		return nil, domain.ErrInvalidHistoryMonths
	}

	today := util.DateOnly(s.now())

	startDate := util.AddMonths(util.MonthStart(today), 1)
	if input.StartDate != nil {
		startDate = util.DateOnly(*input.StartDate)
	}
	endDate := util.AddMonths(startDate, input.Months).AddDate(0, 0, -1)

	warnings := []string{}

	startingBalance, err := s.calculationService.StartingBalance(workspaceID, input.AccountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate starting balance: %w", err)
	}

	historicalIncomeAvg := decimal.Zero
	historicalExpenseAvg := decimal.Zero
	if input.UseHistoricalAverages {
		historicalIncomeAvg, historicalExpenseAvg, err = s.historicalAverages(workspaceID, input.HistoricalMonths, input.AccountIDs, today)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate historical averages: %w", err)
		}
	}

	periods := []domain.ForecastPeriod{}
	cumulativeBalance := startingBalance
	totalIncome := decimal.Zero
	totalExpenses := decimal.Zero

	for current := startDate; current.Before(endDate); current = util.AddMonths(current, 1) {
		periodStart := current
		periodEnd := util.MonthEnd(current)
		if periodEnd.After(endDate) {
			periodEnd = endDate
		}
		periodLabel := current.Format("2006-01")

		scheduled, err := s.transactionRepo.SumByPeriod(workspaceID, periodStart, periodEnd, false, forecastStatuses, input.AccountIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to sum scheduled transactions for %s: %w", periodLabel, err)
		}

		hypothetical := &domain.PeriodSums{Income: decimal.Zero, Expense: decimal.Zero}
		if input.IncludeHypothetical {
			hypothetical, err = s.transactionRepo.SumByPeriod(workspaceID, periodStart, periodEnd, true, forecastStatuses, input.AccountIDs)
			if err != nil {
				return nil, fmt.Errorf("failed to sum hypothetical transactions for %s: %w", periodLabel, err)
			}
		}

		recurringIncome := decimal.Zero
		recurringExpenses := decimal.Zero
		if input.IncludeRecurring {
			recurringIncome, recurringExpenses, err = s.projectRecurring(workspaceID, periodStart, periodEnd, input.AccountIDs)
			if err != nil {
				return nil, fmt.Errorf("failed to project recurring transactions for %s: %w", periodLabel, err)
			}
		}

		projectedIncome := scheduled.Income.Add(hypothetical.Income).Add(recurringIncome)
		projectedExpenses := scheduled.Expense.Add(hypothetical.Expense).Add(recurringExpenses)

		// Last-resort gap filler: only when the combined projection for a
		// side is exactly zero. Partial data is never blended with history.
		if input.UseHistoricalAverages {
			if projectedIncome.IsZero() && historicalIncomeAvg.IsPositive() {
				projectedIncome = historicalIncomeAvg
				warnings = append(warnings, fmt.Sprintf("Using historical average for income in %s", periodLabel))
			}
			if projectedExpenses.IsZero() && historicalExpenseAvg.IsPositive() {
				projectedExpenses = historicalExpenseAvg
				warnings = append(warnings, fmt.Sprintf("Using historical average for expenses in %s", periodLabel))
			}
		}

		netCashflow := projectedIncome.Sub(projectedExpenses)
		cumulativeBalance = cumulativeBalance.Add(netCashflow)
		totalIncome = totalIncome.Add(projectedIncome)
		totalExpenses = totalExpenses.Add(projectedExpenses)

		periods = append(periods, domain.ForecastPeriod{
			PeriodStart:          periodStart,
			PeriodEnd:            periodEnd,
			PeriodLabel:          periodLabel,
			ProjectedIncome:      projectedIncome,
			ProjectedExpenses:    projectedExpenses,
			NetCashflow:          netCashflow,
			CumulativeBalance:    cumulativeBalance,
			HypotheticalIncome:   hypothetical.Income,
			HypotheticalExpenses: hypothetical.Expense,
		})
	}

	minBalance := startingBalance
	for i, p := range periods {
		if i == 0 || p.CumulativeBalance.LessThan(minBalance) {
			minBalance = p.CumulativeBalance
		}
	}
	if minBalance.IsNegative() {
		warnings = append(warnings, fmt.Sprintf("Warning: Projected balance goes negative (min: %s)", minBalance.StringFixed(2)))
	}

	return &domain.ForecastResult{
		StartDate:              startDate,
		EndDate:                endDate,
		Months:                 input.Months,
		StartingBalance:        startingBalance,
		EndingBalance:          cumulativeBalance,
		TotalProjectedIncome:   totalIncome,
		TotalProjectedExpenses: totalExpenses,
		NetChange:              totalIncome.Sub(totalExpenses),
		Periods:                periods,
		Warnings:               warnings,
	}, nil
}

// historicalAverages computes trailing monthly income/expense averages over
// the N months ending at the start of the current month. Each average is
// rounded to 2 decimal places once, here.
func (s *ForecastService) historicalAverages(workspaceID int32, months int, accountIDs []int32, today time.Time) (decimal.Decimal, decimal.Decimal, error) {
	if months <= 0 {
		return decimal.Zero, decimal.Zero, nil
	}

	windowStart := util.AddMonths(today, -months)
	windowEnd := util.MonthStart(today).AddDate(0, 0, -1)

	sums, err := s.transactionRepo.SumByPeriod(workspaceID, windowStart, windowEnd, false, historicalStatuses, accountIDs)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	divisor := decimal.NewFromInt(int64(months))
	return sums.Income.Div(divisor).Round(2), sums.Expense.Div(divisor).Round(2), nil
}

// projectRecurring estimates amounts from active rules whose occurrences
// fall inside the period window.
func (s *ForecastService) projectRecurring(workspaceID int32, periodStart, periodEnd time.Time, accountIDs []int32) (decimal.Decimal, decimal.Decimal, error) {
	rules, err := s.ruleRepo.ListActiveOverlapping(workspaceID, periodStart, periodEnd, accountIDs)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	income := decimal.Zero
	expenses := decimal.Zero
	for _, rule := range rules {
		occurrences := rule.CountOccurrences(periodStart, periodEnd)
		if occurrences == 0 {
			continue
		}
		total := rule.GrossAmount.Mul(decimal.NewFromInt(int64(occurrences)))
		if rule.Type == domain.TransactionTypeIncome {
			income = income.Add(total)
		} else {
			expenses = expenses.Add(total)
		}
	}
	return income, expenses, nil
}
