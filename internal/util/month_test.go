package util

import (
	"testing"
	"time"
)

func TestClampDay(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     time.Month
		targetDay int
		wantDay   int
	}{
		{"normal day", 2025, time.March, 15, 15},
		{"day 31 in April clamps to 30", 2025, time.April, 31, 30},
		{"day 31 in February clamps to 28", 2025, time.February, 31, 28},
		{"day 30 in leap February clamps to 29", 2024, time.February, 30, 29},
		{"day 31 in January stays", 2025, time.January, 31, 31},
		{"zero day clamps to 1", 2025, time.June, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampDay(tt.year, tt.month, tt.targetDay)
			if got.Day() != tt.wantDay {
				t.Errorf("ClampDay(%d, %s, %d) = day %d, want %d", tt.year, tt.month, tt.targetDay, got.Day(), tt.wantDay)
			}
			if got.Year() != tt.year || got.Month() != tt.month {
				t.Errorf("ClampDay moved to a different month: %s", got)
			}
		})
	}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		n    int
		want time.Time
	}{
		{
			"mid-month",
			time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			1,
			time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			"Jan 31 clamps to Feb 28",
			time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			1,
			time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			"Jan 31 clamps to Feb 29 in leap year",
			time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			1,
			time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			"quarter across year boundary",
			time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC),
			3,
			time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			"six months keeps day",
			time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			6,
			time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddMonths(tt.from, tt.n)
			if !got.Equal(tt.want) {
				t.Errorf("AddMonths(%s, %d) = %s, want %s", tt.from.Format("2006-01-02"), tt.n, got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
		})
	}
}

func TestAddYears_LeapDay(t *testing.T) {
	from := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	got := AddYears(from, 1)
	want := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("AddYears(%s, 1) = %s, want %s", from.Format("2006-01-02"), got.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestMonthBounds(t *testing.T) {
	d := time.Date(2025, 2, 14, 13, 45, 0, 0, time.UTC)

	if got := MonthStart(d); !got.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("MonthStart = %s", got)
	}
	if got := MonthEnd(d); !got.Equal(time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("MonthEnd = %s", got)
	}
}
