package parser

import (
	"strconv"
	"strings"
	"time"
)

// parseAmount converts a string like "1,234.56" or "KSh 1,234.56" to a
// float64. Currency markers and thousands separators are stripped first.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "KSh", "")
	s = strings.ReplaceAll(s, "Ksh", "")
	s = strings.ReplaceAll(s, "KES", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "") // non-breaking space

	if s == "" || s == "-" {
		return 0, nil
	}

	return strconv.ParseFloat(s, 64)
}

// parseAmountLenient parses a monetary cell, returning 0 for anything that
// is not a number. Used for paid-in/paid-out cells where an unparseable
// value means "no movement", never a dropped row.
func parseAmountLenient(s string) float64 {
	v, err := parseAmount(s)
	if err != nil {
		return 0
	}
	return v
}

// parseBalanceCell parses a balance cell. Unlike the amount columns, an
// unparseable balance means "balance absent", not zero.
func parseBalanceCell(s string) *float64 {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	v, err := parseAmount(s)
	if err != nil {
		return nil
	}
	return &v
}

// timestampLayouts are the date formats seen in MPESA statement exports,
// most specific first.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04:05",
	"02-01-2006 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
}

// parseTimestamp tries each known layout and reports whether any matched.
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
