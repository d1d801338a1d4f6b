package postgres

import (
	"testing"
	"time"

	"github.com/davena/flowcast/flowcast-backend/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRepository_SumByPeriod(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{db: mock}

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT\s+COALESCE\(SUM`).
		WithArgs(
			int32(1),
			pgtype.Date{Time: start, Valid: true},
			pgtype.Date{Time: end, Valid: true},
			false,
			[]string{"pending", "scheduled"},
			[]int32{},
		).
		WillReturnRows(pgxmock.NewRows([]string{"income", "expense"}).
			AddRow(mustNumeric(t, "1500.00"), mustNumeric(t, "800.50")))

	sums, err := repo.SumByPeriod(1, start, end, false, []domain.TransactionStatus{domain.StatusPending, domain.StatusScheduled}, nil)
	require.NoError(t, err)
	assert.True(t, sums.Income.Equal(decimalFromString(t, "1500.00")))
	assert.True(t, sums.Expense.Equal(decimalFromString(t, "800.50")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_BalanceSums(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{db: mock}

	mock.ExpectQuery(`SELECT\s+account_id`).
		WithArgs(int32(1), []int32{2}).
		WillReturnRows(pgxmock.NewRows([]string{"account_id", "sum_income", "sum_expense"}).
			AddRow(int32(2), mustNumeric(t, "5000.00"), mustNumeric(t, "1200.00")))

	sums, err := repo.BalanceSums(1, []int32{2})
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.Equal(t, int32(2), sums[0].AccountID)
	assert.True(t, sums[0].SumIncome.Equal(decimalFromString(t, "5000.00")))
	assert.True(t, sums[0].SumExpense.Equal(decimalFromString(t, "1200.00")))
	assert.NoError(t, mock.ExpectationsWereMet())
}
