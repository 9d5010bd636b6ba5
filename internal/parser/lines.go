package parser

import (
	"math"
	"regexp"
	"strings"

	"github.com/mamamboga/statement-scorer/internal/models"
)

// MPESA full-statement extractions yield one line per transaction:
// an ISO timestamp, a free-text description terminated by the literal
// status marker "Completed", a signed amount, and an optional trailing
// balance. Example:
//
//	TFA3XK91QP 2024-01-05 10:00:00 Pay Bill to ABC Shop Completed -1500.00 8500.00
//
// The timestamp is not anchored to the line start: some extractions put a
// receipt reference before it.
var linePattern = regexp.MustCompile(
	`(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\s+(.+?)\s*Completed\s+(-?[\d,]+(?:\.\d+)?)(?:\s+([\d,]+(?:\.\d+)?))?\s*$`,
)

// ParseLines parses a line-based extraction into a working transaction set.
// Lines that do not match the transaction pattern are page furniture, not
// errors; they are recorded as rejected and dropped.
func ParseLines(lines []string) (*models.StatementInfo, error) {
	var parsed []models.Transaction
	var rejected []models.RejectedRow

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		loc := linePattern.FindStringSubmatchIndex(line)
		if loc == nil {
			rejected = append(rejected, models.RejectedRow{
				LineNum: i + 1,
				Text:    line,
				Reason:  "does not match transaction pattern",
			})
			continue
		}

		m := linePattern.FindStringSubmatch(line)

		ts, ok := parseTimestamp(m[1])
		if !ok {
			rejected = append(rejected, models.RejectedRow{
				LineNum: i + 1,
				Text:    line,
				Reason:  "unparseable timestamp",
			})
			continue
		}

		amount, err := parseAmount(m[3])
		if err != nil {
			rejected = append(rejected, models.RejectedRow{
				LineNum: i + 1,
				Text:    line,
				Reason:  "unparseable amount",
			})
			continue
		}

		txn := models.Transaction{
			Timestamp:   ts,
			Description: strings.TrimSpace(m[2]),
			Balance:     parseBalanceCell(m[4]),
			ReceiptRef:  receiptPrefix(line[:loc[0]]),
		}

		// The sign of the amount decides the direction; magnitudes only.
		if amount >= 0 {
			txn.PaidIn = amount
		} else {
			txn.PaidOut = math.Abs(amount)
		}

		parsed = append(parsed, txn)
	}

	return finalize(parsed, rejected)
}

// receiptPrefix treats a single token before the timestamp as the row's
// receipt reference. Anything longer is unrecognized leader text.
func receiptPrefix(prefix string) string {
	fields := strings.Fields(prefix)
	if len(fields) == 1 {
		return fields[0]
	}
	return ""
}
