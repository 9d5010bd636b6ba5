// Package metrics derives the behavioral financial metrics from a
// classified working transaction set. All sums operate on the working set
// only; statement subtotal rows were excluded upstream so nothing is
// double-counted.
package metrics

import (
	"sort"
	"time"

	"github.com/mamamboga/statement-scorer/internal/models"
)

// Compute builds the metric snapshot for one scoring run. The same "now"
// must be used for every time-sensitive value in the run, so the caller
// captures it once and passes it in.
func Compute(txns []models.Transaction, now time.Time) models.MetricSet {
	var ms models.MetricSet

	for _, t := range txns {
		ms.CashflowVolume += t.PaidIn + t.PaidOut
		ms.NetCashflow += t.PaidIn - t.PaidOut

		if t.Category == models.CategoryPayBill {
			ms.P2PVolume += t.PaidIn + t.PaidOut
		}
	}

	ms.RollingBalanceAvg, ms.RollingBalanceDefined = rollingBalanceAvg(txns)
	ms.DaysSinceLast = daysSinceLast(txns, now)
	ms.IncomeExpenseRatio, ms.RatioDefined = incomeExpenseRatio(txns)

	return ms
}

// rollingBalanceAvg partitions transactions into Sunday-ending calendar
// weeks, averages the balances within each week, and returns the mean of
// the last four weekly means. Weeks with no balance-bearing rows contribute
// nothing. With fewer than four weeks of data, whatever is present is
// averaged; with no balance data at all the metric falls back to the mean
// over the entire set, and failing that is reported undefined.
func rollingBalanceAvg(txns []models.Transaction) (float64, bool) {
	type bucket struct {
		sum   float64
		count int
	}
	weeks := make(map[time.Time]*bucket)

	for _, t := range txns {
		if t.Balance == nil {
			continue
		}
		key := weekEnding(t.Timestamp)
		b := weeks[key]
		if b == nil {
			b = &bucket{}
			weeks[key] = b
		}
		b.sum += *t.Balance
		b.count++
	}

	if len(weeks) == 0 {
		return overallBalanceMean(txns)
	}

	keys := make([]time.Time, 0, len(weeks))
	for k := range weeks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	if len(keys) > 4 {
		keys = keys[len(keys)-4:]
	}

	var sum float64
	for _, k := range keys {
		b := weeks[k]
		sum += b.sum / float64(b.count)
	}
	return sum / float64(len(keys)), true
}

// weekEnding returns the date of the Sunday that closes the calendar week
// containing t. A transaction on a Sunday belongs to the week ending that
// same day.
func weekEnding(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (7 - int(d.Weekday())) % 7
	return d.AddDate(0, 0, offset)
}

func overallBalanceMean(txns []models.Transaction) (float64, bool) {
	var sum float64
	var count int
	for _, t := range txns {
		if t.Balance != nil {
			sum += *t.Balance
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// daysSinceLast returns the whole days between now and the newest
// transaction. An empty set reports 0, which downstream scoring treats as
// best-case rather than stale.
func daysSinceLast(txns []models.Transaction, now time.Time) int {
	var last time.Time
	for _, t := range txns {
		if t.Timestamp.After(last) {
			last = t.Timestamp
		}
	}
	if last.IsZero() {
		return 0
	}
	days := int(now.Sub(last).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func incomeExpenseRatio(txns []models.Transaction) (float64, bool) {
	var income, expense float64
	for _, t := range txns {
		switch t.Category {
		case models.CategoryIncome:
			income += t.PaidIn
		case models.CategoryExpense:
			expense += t.PaidOut
		}
	}
	if expense == 0 {
		return 0, false
	}
	return income / expense, true
}
