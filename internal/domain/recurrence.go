package domain

import (
	"time"

	"github.com/davena/flowcast/flowcast-backend/internal/util"
	"github.com/shopspring/decimal"
)

type Frequency string

const (
	FrequencyDaily      Frequency = "daily"
	FrequencyWeekly     Frequency = "weekly"
	FrequencyBiweekly   Frequency = "biweekly"
	FrequencyMonthly    Frequency = "monthly"
	FrequencyBimonthly  Frequency = "bimonthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencySemiannual Frequency = "semiannual"
	FrequencyAnnual     Frequency = "annual"
)

// ValidFrequencies lists every supported recurrence frequency.
var ValidFrequencies = []Frequency{
	FrequencyDaily,
	FrequencyWeekly,
	FrequencyBiweekly,
	FrequencyMonthly,
	FrequencyBimonthly,
	FrequencyQuarterly,
	FrequencySemiannual,
	FrequencyAnnual,
}

// IsValid reports whether f is a supported frequency.
func (f Frequency) IsValid() bool {
	for _, v := range ValidFrequencies {
		if f == v {
			return true
		}
	}
	return false
}

// RecurrenceRule defines how recurring transactions are generated.
// LastGeneratedDate is the watermark of the most recent materialized
// occurrence; once advanced it never moves backward.
type RecurrenceRule struct {
	ID                     int32           `json:"id"`
	WorkspaceID            int32           `json:"workspaceId"`
	AccountID              int32           `json:"accountId"`
	Category               *string         `json:"category,omitempty"`
	Description            string          `json:"description"`
	GrossAmount            decimal.Decimal `json:"grossAmount"`
	Type                   TransactionType `json:"type"`
	Frequency              Frequency       `json:"frequency"`
	DayOfMonth             *int            `json:"dayOfMonth,omitempty"`
	StartDate              time.Time       `json:"startDate"`
	EndDate                *time.Time      `json:"endDate,omitempty"`
	LastGeneratedDate      *time.Time      `json:"lastGeneratedDate,omitempty"`
	IsActive               bool            `json:"isActive"`
	GenerateAsHypothetical bool            `json:"generateAsHypothetical"`
	CreatedAt              time.Time       `json:"createdAt"`
	UpdatedAt              time.Time       `json:"updatedAt"`
	DeletedAt              *time.Time      `json:"deletedAt,omitempty"`
}

// maxOccurrenceSteps bounds the occurrence walk as defense against malformed
// rules. Every frequency advances the cursor by at least one day, so the cap
// is only reachable for multi-decade daily windows.
const maxOccurrenceSteps = 10000

// NextOccurrence computes the rule's next occurrence strictly after from.
// It returns ok=false when the rule is exhausted (end date reached).
// Month-based frequencies clamp to the last valid day of the target month;
// for monthly rules with DayOfMonth set, the result is anchored to that day.
func (r *RecurrenceRule) NextOccurrence(from time.Time) (time.Time, bool) {
	from = util.DateOnly(from)

	if r.EndDate != nil && !from.Before(util.DateOnly(*r.EndDate)) {
		return time.Time{}, false
	}

	var next time.Time
	switch r.Frequency {
	case FrequencyDaily:
		next = from.AddDate(0, 0, 1)
	case FrequencyWeekly:
		next = from.AddDate(0, 0, 7)
	case FrequencyBiweekly:
		next = from.AddDate(0, 0, 14)
	case FrequencyMonthly:
		next = util.AddMonths(from, 1)
		if r.DayOfMonth != nil {
			next = util.ClampDay(next.Year(), next.Month(), *r.DayOfMonth)
		}
	case FrequencyBimonthly:
		next = util.AddMonths(from, 2)
	case FrequencyQuarterly:
		next = util.AddMonths(from, 3)
	case FrequencySemiannual:
		next = util.AddMonths(from, 6)
	case FrequencyAnnual:
		next = util.AddYears(from, 1)
	default:
		next = util.AddMonths(from, 1)
	}

	if r.EndDate != nil && next.After(util.DateOnly(*r.EndDate)) {
		return time.Time{}, false
	}

	return next, true
}

// CountOccurrences counts how many times the rule would fire in
// [windowStart, windowEnd]. The walk starts from the generation watermark
// (or the rule start date) so occurrences already materialized before the
// window are not re-discovered inside it.
func (r *RecurrenceRule) CountOccurrences(windowStart, windowEnd time.Time) int {
	windowStart = util.DateOnly(windowStart)
	windowEnd = util.DateOnly(windowEnd)

	cursor := util.DateOnly(r.StartDate)
	if r.LastGeneratedDate != nil {
		cursor = util.DateOnly(*r.LastGeneratedDate)
	}

	// Step back so an occurrence landing exactly on the window start is
	// still discovered by the walk.
	if !cursor.Before(windowStart) {
		cursor = windowStart.AddDate(0, 0, -1)
	}

	count := 0
	for range maxOccurrenceSteps {
		next, ok := r.NextOccurrence(cursor)
		if !ok || next.After(windowEnd) {
			break
		}
		if !next.Before(windowStart) {
			count++
		}
		// Advance even when the occurrence was before the window, to
		// guarantee forward progress.
		cursor = next
	}

	return count
}

type RecurrenceRuleRepository interface {
	Create(rule *RecurrenceRule) (*RecurrenceRule, error)
	GetByID(workspaceID int32, id int32) (*RecurrenceRule, error)
	ListByWorkspace(workspaceID int32, activeOnly *bool) ([]*RecurrenceRule, error)
	// ListActiveOverlapping returns active rules whose [start_date, end_date]
	// range overlaps [windowStart, windowEnd], optionally restricted to the
	// given account set.
	ListActiveOverlapping(workspaceID int32, windowStart, windowEnd time.Time, accountIDs []int32) ([]*RecurrenceRule, error)
	Update(rule *RecurrenceRule) (*RecurrenceRule, error)
	// AdvanceWatermark moves last_generated_date forward to the given date.
	// The watermark never moves backward.
	AdvanceWatermark(workspaceID int32, id int32, date time.Time) error
	SoftDelete(workspaceID int32, id int32) error
}
