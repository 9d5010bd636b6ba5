package parser

import (
	"fmt"
	"math"
	"strings"

	"github.com/mamamboga/statement-scorer/internal/models"
)

// ParseTable parses a tabular extraction whose first row is the header.
// Column roles are assigned by the resolver; a required column that cannot
// be resolved is terminal for the whole statement, while missing optional
// columns degrade to empty values.
func ParseTable(rows [][]string) (*models.StatementInfo, error) {
	if len(rows) < 2 {
		return nil, ErrNoTransactions
	}

	cm, err := ResolveColumns(rows[0])
	if err != nil {
		return nil, fmt.Errorf("column resolution failed: %w", err)
	}

	var parsed []models.Transaction
	var rejected []models.RejectedRow

	for i, row := range rows[1:] {
		lineNum := i + 2 // 1-based, after the header row

		txn := models.Transaction{
			Description: cell(row, cm.Details),
			Type:        cell(row, cm.Type),
			ReceiptRef:  cell(row, cm.Receipt),
			PaidIn:      math.Abs(parseAmountLenient(cell(row, cm.PaidIn))),
			PaidOut:     math.Abs(parseAmountLenient(cell(row, cm.PaidOut))),
			Balance:     parseBalanceCell(cell(row, cm.Balance)),
		}

		ts, ok := parseTimestamp(cell(row, cm.Date))
		if !ok {
			// Summary/total rows and receipt-less subtotal rows have no
			// date but still matter for the exclusion pass, which also
			// recovers the statement's stated totals from them. Keep them
			// with a zero timestamp; finalize never admits them to the
			// working set.
			subtotal := cm.Receipt >= 0 && txn.ReceiptRef == "" &&
				(txn.PaidIn > 0 || txn.PaidOut > 0)
			if isSummaryLabel(txn.Type) || subtotal {
				parsed = append(parsed, txn)
				continue
			}
			rejected = append(rejected, models.RejectedRow{
				LineNum: lineNum,
				Text:    strings.Join(row, " | "),
				Reason:  "unparseable date",
			})
			continue
		}
		txn.Timestamp = ts

		parsed = append(parsed, txn)
	}

	return finalize(parsed, rejected)
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isSummaryLabel(label string) bool {
	l := strings.ToLower(label)
	return strings.Contains(l, "total") || strings.Contains(l, "summary")
}
