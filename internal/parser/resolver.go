package parser

import (
	"fmt"
	"strings"
)

// ColumnMap maps the statement's logical fields onto physical column
// positions in a tabular extraction. A value of -1 means the field could
// not be resolved from the header row.
type ColumnMap struct {
	Date    int
	PaidIn  int
	PaidOut int
	Balance int
	Details int
	Receipt int
	Type    int
}

// ResolveError reports a required logical field that has no matching
// physical column. Metrics cannot be computed without it, so the caller
// treats this as terminal for the statement.
type ResolveError struct {
	Field string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("no column found for required field %q", e.Field)
}

// ResolveColumns maps heterogeneous header spellings onto the canonical
// field set. Matching is case-insensitive substring search; for fields with
// several keywords the more specific keyword is tried across all columns
// before falling back to the next one, and within a keyword the leftmost
// column wins.
func ResolveColumns(headers []string) (*ColumnMap, error) {
	cm := &ColumnMap{
		Date:    findColumn(headers, "completion time", "date", "time"),
		PaidIn:  findColumn(headers, "paid in"),
		PaidOut: findColumn(headers, "paid out", "withdrawn"),
		Balance: findColumn(headers, "balance"),
		Details: findColumn(headers, "details", "description"),
		Receipt: findColumn(headers, "receipt"),
		Type:    findColumn(headers, "transaction type", "type"),
	}

	// Date, paid-in and paid-out are mandatory; the rest degrade to empty
	// or absent values.
	switch {
	case cm.Date < 0:
		return nil, &ResolveError{Field: "date"}
	case cm.PaidIn < 0:
		return nil, &ResolveError{Field: "paid_in"}
	case cm.PaidOut < 0:
		return nil, &ResolveError{Field: "paid_out"}
	}

	return cm, nil
}

func findColumn(headers []string, keywords ...string) int {
	for _, kw := range keywords {
		for i, h := range headers {
			if containsIgnoreCase(strings.TrimSpace(h), kw) {
				return i
			}
		}
	}
	return -1
}
