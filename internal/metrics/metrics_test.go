package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mamamboga/statement-scorer/internal/models"
)

func fptr(v float64) *float64 { return &v }

func txn(ts time.Time, in, out float64, balance *float64, cat models.Category) models.Transaction {
	return models.Transaction{
		Timestamp: ts,
		PaidIn:    in,
		PaidOut:   out,
		Balance:   balance,
		Category:  cat,
	}
}

func TestCompute_CashflowAndNet(t *testing.T) {
	base := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	txns := []models.Transaction{
		txn(base, 0, 1500, fptr(8500), models.CategoryPayBill),
		txn(base.AddDate(0, 0, 1), 3000, 0, fptr(11500), models.CategoryIncome),
	}

	ms := Compute(txns, now)

	assert.Equal(t, 4500.0, ms.CashflowVolume)
	assert.Equal(t, 1500.0, ms.NetCashflow)
}

func TestCompute_P2PVolumeIsCategoryBased(t *testing.T) {
	base := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)

	txns := []models.Transaction{
		txn(base, 0, 1500, nil, models.CategoryPayBill),
		txn(base, 200, 0, nil, models.CategoryPayBill),
		txn(base, 0, 9999, nil, models.CategoryTransfer),
	}

	ms := Compute(txns, base)
	assert.Equal(t, 1700.0, ms.P2PVolume)
}

func TestCompute_DaysSinceLast(t *testing.T) {
	last := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 12, 10, 0, 0, 0, time.UTC)

	ms := Compute([]models.Transaction{txn(last, 100, 0, nil, models.CategoryIncome)}, now)
	assert.Equal(t, 7, ms.DaysSinceLast)
}

func TestCompute_DaysSinceLast_EmptySetIsBestCase(t *testing.T) {
	ms := Compute(nil, time.Now())
	assert.Equal(t, 0, ms.DaysSinceLast)
}

func TestCompute_IncomeExpenseRatio(t *testing.T) {
	base := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	txns := []models.Transaction{
		txn(base, 1000, 0, nil, models.CategoryIncome),
		txn(base, 0, 400, nil, models.CategoryExpense),
		// Loan repayments must not count toward the expense denominator.
		txn(base, 0, 600, nil, models.CategoryLoan),
	}

	ms := Compute(txns, base)
	assert.True(t, ms.RatioDefined)
	assert.InDelta(t, 2.5, ms.IncomeExpenseRatio, 1e-9)
}

func TestCompute_IncomeExpenseRatio_UndefinedNotZero(t *testing.T) {
	base := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	txns := []models.Transaction{
		txn(base, 1000, 0, nil, models.CategoryIncome),
	}

	ms := Compute(txns, base)
	assert.False(t, ms.RatioDefined)
}

func TestRollingBalanceAvg_LastFourWeeks(t *testing.T) {
	// Six consecutive Wednesdays; weeks are Sunday-ending so each
	// transaction lands in its own bucket. Only the last four weekly
	// means (300, 400, 500, 600) should be averaged.
	start := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC) // Wednesday
	var txns []models.Transaction
	for i := 0; i < 6; i++ {
		bal := float64((i + 1) * 100)
		txns = append(txns, txn(start.AddDate(0, 0, 7*i), 0, 0, &bal, models.CategoryOther))
	}

	avg, defined := rollingBalanceAvg(txns)
	assert.True(t, defined)
	assert.InDelta(t, 450.0, avg, 1e-9)
}

func TestRollingBalanceAvg_WeeklyMeanWithinWeek(t *testing.T) {
	// Two balances in the same Sunday-ending week average to one weekly
	// mean, not two samples.
	mon := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) // Monday
	fri := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC) // Friday, same week
	nextWed := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	txns := []models.Transaction{
		txn(mon, 0, 0, fptr(100), models.CategoryOther),
		txn(fri, 0, 0, fptr(300), models.CategoryOther),
		txn(nextWed, 0, 0, fptr(1000), models.CategoryOther),
	}

	avg, defined := rollingBalanceAvg(txns)
	assert.True(t, defined)
	// week 1 mean = 200, week 2 mean = 1000
	assert.InDelta(t, 600.0, avg, 1e-9)
}

func TestRollingBalanceAvg_IgnoresAbsentBalances(t *testing.T) {
	base := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

	txns := []models.Transaction{
		txn(base, 0, 0, fptr(500), models.CategoryOther),
		txn(base.Add(time.Hour), 0, 0, nil, models.CategoryOther),
	}

	avg, defined := rollingBalanceAvg(txns)
	assert.True(t, defined)
	assert.InDelta(t, 500.0, avg, 1e-9)
}

func TestRollingBalanceAvg_NoBalanceDataUndefined(t *testing.T) {
	base := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

	_, defined := rollingBalanceAvg([]models.Transaction{
		txn(base, 100, 0, nil, models.CategoryIncome),
	})
	assert.False(t, defined)
}

func TestWeekEnding(t *testing.T) {
	// A Sunday belongs to the week ending that same day.
	sun := time.Date(2024, 1, 7, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), weekEnding(sun))

	mon := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC), weekEnding(mon))
}
