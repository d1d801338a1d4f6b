package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ForecastPeriod is one calendar month of a forecast. Hypothetical figures
// are folded into the projected totals but also kept separate so callers can
// distinguish confirmed from speculative cashflow.
type ForecastPeriod struct {
	PeriodStart          time.Time       `json:"periodStart"`
	PeriodEnd            time.Time       `json:"periodEnd"`
	PeriodLabel          string          `json:"periodLabel"`
	ProjectedIncome      decimal.Decimal `json:"projectedIncome"`
	ProjectedExpenses    decimal.Decimal `json:"projectedExpenses"`
	NetCashflow          decimal.Decimal `json:"netCashflow"`
	CumulativeBalance    decimal.Decimal `json:"cumulativeBalance"`
	HypotheticalIncome   decimal.Decimal `json:"hypotheticalIncome"`
	HypotheticalExpenses decimal.Decimal `json:"hypotheticalExpenses"`
}

// ForecastResult is the complete output of one forecast run. It is a pure
// value, built fresh on every call and never persisted.
type ForecastResult struct {
	StartDate              time.Time        `json:"startDate"`
	EndDate                time.Time        `json:"endDate"`
	Months                 int              `json:"months"`
	StartingBalance        decimal.Decimal  `json:"startingBalance"`
	EndingBalance          decimal.Decimal  `json:"endingBalance"`
	TotalProjectedIncome   decimal.Decimal  `json:"totalProjectedIncome"`
	TotalProjectedExpenses decimal.Decimal  `json:"totalProjectedExpenses"`
	NetChange              decimal.Decimal  `json:"netChange"`
	Periods                []ForecastPeriod `json:"periods"`
	Warnings               []string         `json:"warnings"`
}
