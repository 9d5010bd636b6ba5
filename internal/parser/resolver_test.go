package parser

import (
	"testing"
)

func TestResolveColumns(t *testing.T) {
	headers := []string{"Receipt No.", "Completion Time", "Details", "Transaction Status", "Paid In", "Withdrawn", "Balance"}

	cm, err := ResolveColumns(headers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"date", cm.Date, 1},
		{"paid_in", cm.PaidIn, 4},
		{"paid_out", cm.PaidOut, 5},
		{"balance", cm.Balance, 6},
		{"details", cm.Details, 2},
		{"receipt", cm.Receipt, 0},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got column %d, want %d", tt.name, tt.got, tt.want)
		}
	}
}

func TestResolveColumns_DateKeywordPriority(t *testing.T) {
	// "Completion Time" must win over an earlier column that merely
	// contains "time".
	headers := []string{"Start Time", "Completion Time", "Paid In", "Paid Out"}

	cm, err := ResolveColumns(headers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cm.Date != 1 {
		t.Errorf("date: got column %d, want 1", cm.Date)
	}
}

func TestResolveColumns_TypeKeywordPriority(t *testing.T) {
	headers := []string{"Type Of Entry", "Transaction Type", "Date", "Paid In", "Paid Out"}

	cm, err := ResolveColumns(headers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cm.Type != 1 {
		t.Errorf("transaction_type: got column %d, want 1", cm.Type)
	}
}

func TestResolveColumns_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		field   string
	}{
		{"no date", []string{"Paid In", "Paid Out", "Balance"}, "date"},
		{"no paid in", []string{"Date", "Withdrawn", "Balance"}, "paid_in"},
		{"no paid out", []string{"Date", "Paid In", "Balance"}, "paid_out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveColumns(tt.headers)
			if err == nil {
				t.Fatal("expected error")
			}
			resolveErr, ok := err.(*ResolveError)
			if !ok {
				t.Fatalf("got %T, want *ResolveError", err)
			}
			if resolveErr.Field != tt.field {
				t.Errorf("field: got %q, want %q", resolveErr.Field, tt.field)
			}
		})
	}
}

func TestResolveColumns_OptionalFieldsDegrade(t *testing.T) {
	headers := []string{"Date", "Paid In", "Paid Out"}

	cm, err := ResolveColumns(headers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cm.Receipt != -1 || cm.Details != -1 || cm.Balance != -1 || cm.Type != -1 {
		t.Errorf("optional fields should be unresolved: %+v", cm)
	}
}
