package writer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/mamamboga/statement-scorer/internal/models"
	"github.com/mamamboga/statement-scorer/internal/pipeline"
)

// ReportWriter renders the plain-text summary report: statement totals,
// per-category breakdown, the metric snapshot and the scoring outcome.
type ReportWriter struct{}

// WriteToFile writes the summary report to a text file.
func (w *ReportWriter) WriteToFile(path string, res *pipeline.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, res)
}

// Write renders the report to the given writer.
func (w *ReportWriter) Write(out io.Writer, res *pipeline.Result) error {
	var totalIn, totalOut float64
	for _, t := range res.Transactions {
		totalIn += t.PaidIn
		totalOut += t.PaidOut
	}

	fmt.Fprintln(out, "MPESA Statement Scoring Report")
	fmt.Fprintln(out, "==============================")
	fmt.Fprintf(out, "Run ID:       %s\n", res.RunID)
	fmt.Fprintf(out, "Generated at: %s\n", res.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Financial Summary")
	fmt.Fprintf(out, "  Transactions:        %d\n", len(res.Transactions))
	fmt.Fprintf(out, "  Total Paid In (KSh): %.2f\n", totalIn)
	fmt.Fprintf(out, "  Total Paid Out (KSh): %.2f\n", totalOut)
	fmt.Fprintf(out, "  Net Cash Flow (KSh): %.2f\n", res.Metrics.NetCashflow)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Category Breakdown")
	for _, line := range categoryBreakdown(res.Transactions) {
		fmt.Fprintf(out, "  %s\n", line)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "MPESA Metrics")
	fmt.Fprintf(out, "  Cashflow Volume (KSh):       %.2f\n", res.Metrics.CashflowVolume)
	fmt.Fprintf(out, "  Rolling Weekly Balance (KSh): %s\n", naOr(res.Metrics.RollingBalanceAvg, res.Metrics.RollingBalanceDefined))
	fmt.Fprintf(out, "  Days Since Last Transaction: %d\n", res.Metrics.DaysSinceLast)
	fmt.Fprintf(out, "  PayBill Volume (KSh):        %.2f\n", res.Metrics.P2PVolume)
	fmt.Fprintf(out, "  Income to Expense Ratio:     %s\n", naOr(res.Metrics.IncomeExpenseRatio, res.Metrics.RatioDefined))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Score")
	fmt.Fprintf(out, "  Final Score: %.2f/100\n", res.Score.Score)
	fmt.Fprintf(out, "  Decision:    %s\n", decisionLabel(res.Score.Decision))
	fmt.Fprintf(out, "  Risk Band:   %s Risk\n", res.Score.RiskBand)

	return nil
}

// decisionLabel carries the disbursement amount at the presentation edge.
func decisionLabel(d models.Decision) string {
	if d == models.DecisionApproved {
		return "Approved (KES 5000)"
	}
	return "Denied (KES 0)"
}

func naOr(v float64, defined bool) string {
	if !defined {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", v)
}

func categoryBreakdown(txns []models.Transaction) []string {
	type agg struct {
		count   int
		paidIn  float64
		paidOut float64
	}
	byCat := make(map[models.Category]*agg)
	for _, t := range txns {
		a := byCat[t.Category]
		if a == nil {
			a = &agg{}
			byCat[t.Category] = a
		}
		a.count++
		a.paidIn += t.PaidIn
		a.paidOut += t.PaidOut
	}

	cats := make([]string, 0, len(byCat))
	for c := range byCat {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)

	lines := make([]string, 0, len(cats))
	for _, c := range cats {
		a := byCat[models.Category(c)]
		lines = append(lines, fmt.Sprintf("%-14s count=%-4d in=%.2f out=%.2f net=%.2f",
			c, a.count, a.paidIn, a.paidOut, a.paidIn-a.paidOut))
	}
	return lines
}
