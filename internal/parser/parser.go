package parser

import (
	"errors"
	"sort"
	"strings"

	"github.com/mamamboga/statement-scorer/internal/models"
)

// ErrNoTransactions is returned when not a single statement row parsed into
// a usable transaction. The pipeline must not proceed past this.
var ErrNoTransactions = errors.New("no valid transactions found in statement")

// finalize applies the row exclusion rules, recovers the statement's stated
// totals, and sorts the working set by timestamp. Both input shapes funnel
// through here.
//
// Exclusion rules:
//  1. Rows whose transaction-type label contains "total" or "summary" are
//     statement furniture, not transactions.
//  2. Rows with money movement but no receipt reference are category
//     subtotal rows. This rule only applies when the statement carries
//     receipt references at all; line-shape extractions may legitimately
//     have none.
func finalize(parsed []models.Transaction, rejected []models.RejectedRow) (*models.StatementInfo, error) {
	info := &models.StatementInfo{Rejected: rejected}

	hasReceipts := false
	for _, t := range parsed {
		if strings.TrimSpace(t.ReceiptRef) != "" {
			hasReceipts = true
			break
		}
	}

	var subtotalIn, subtotalOut float64
	var sawSubtotal bool

	for _, t := range parsed {
		label := strings.ToLower(t.Type)
		if strings.Contains(label, "total") || strings.Contains(label, "summary") {
			if strings.Contains(label, "total") && !info.HasStatedTotal {
				info.StatedTotalIn = t.PaidIn
				info.StatedTotalOut = t.PaidOut
				info.HasStatedTotal = true
			}
			continue
		}

		if hasReceipts && strings.TrimSpace(t.ReceiptRef) == "" && (t.PaidIn > 0 || t.PaidOut > 0) {
			subtotalIn += t.PaidIn
			subtotalOut += t.PaidOut
			sawSubtotal = true
			continue
		}

		// Dates are mandatory for metrics; dateless rows only survive to
		// this point as exclusion candidates.
		if t.Timestamp.IsZero() {
			continue
		}

		info.Transactions = append(info.Transactions, t)
	}

	// Method of last resort: derive totals from the category subtotal rows
	// when the statement has no explicit TOTAL row.
	if !info.HasStatedTotal && sawSubtotal {
		info.StatedTotalIn = subtotalIn
		info.StatedTotalOut = subtotalOut
		info.HasStatedTotal = true
	}

	if len(info.Transactions) == 0 {
		return nil, ErrNoTransactions
	}

	sort.SliceStable(info.Transactions, func(i, j int) bool {
		return info.Transactions[i].Timestamp.Before(info.Transactions[j].Timestamp)
	})

	return info, nil
}
