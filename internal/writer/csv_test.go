package writer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mamamboga/statement-scorer/internal/models"
)

func sampleTxns() []models.Transaction {
	bal := 8500.00
	return []models.Transaction{
		{
			Timestamp:   time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC),
			Type:        "Pay Bill",
			Description: "Pay Bill to ABC Shop",
			PaidOut:     1500.00,
			Balance:     &bal,
			Category:    models.CategoryPayBill,
		},
		{
			Timestamp:   time.Date(2024, 1, 6, 9, 0, 0, 0, time.UTC),
			Type:        "Funds Received",
			Description: "Funds received from John",
			PaidIn:      3000.00,
			Category:    models.CategoryIncome,
		},
	}
}

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{}

	if err := w.Write(&buf, sampleTxns()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines: got %d, want 3", len(lines))
	}
	if lines[0] != "Transaction Type,Paid In,Paid Out,Balance,Details,Category" {
		t.Errorf("header: got %q", lines[0])
	}
	if lines[1] != "Pay Bill,,1500.00,8500.00,Pay Bill to ABC Shop,PayBill" {
		t.Errorf("row 1: got %q", lines[1])
	}
	// Absent balance serializes empty, like a zero amount.
	if lines[2] != "Funds Received,3000.00,,,Funds received from John,Income" {
		t.Errorf("row 2: got %q", lines[2])
	}
}

func TestCSVWriter_WithTimestamp(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeTimestamp: true}

	if err := w.Write(&buf, sampleTxns()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if !strings.HasPrefix(lines[0], "Completion Time,") {
		t.Errorf("header: got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "2024-01-05 10:00:00,") {
		t.Errorf("row 1: got %q", lines[1])
	}
}

func TestFormatBalance(t *testing.T) {
	zero := 0.0
	if got := formatBalance(nil); got != "" {
		t.Errorf("nil balance: got %q, want empty", got)
	}
	if got := formatBalance(&zero); got != "0.00" {
		t.Errorf("zero balance: got %q, want 0.00", got)
	}
}
