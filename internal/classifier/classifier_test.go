package classifier

import (
	"testing"

	"github.com/mamamboga/statement-scorer/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		description string
		txnType     string
		paidIn      float64
		paidOut     float64
		want        models.Category
	}{
		{"fuliza loan", "OD Loan Repayment to Fuliza", "", 0, 300, models.CategoryLoan},
		{"loan keyword in type", "", "M-Shwari Loan", 1000, 0, models.CategoryLoan},
		{"funds received", "Funds received from John", "", 3000, 0, models.CategoryIncome},
		{"deposit", "Deposit of Funds at agent", "", 500, 0, models.CategoryIncome},
		{"reversal", "Reversal of transaction", "", 200, 0, models.CategoryIncome},
		{"atm", "ATM Withdrawal", "", 0, 2000, models.CategoryWithdrawal},
		{"withdraw", "Customer Withdrawal at agent", "", 0, 1000, models.CategoryWithdrawal},
		{"paybill", "PayBill to KPLC", "", 0, 1450, models.CategoryPayBill},
		{"pay bill spaced", "Pay Bill to ABC Shop", "", 0, 1500, models.CategoryPayBill},
		{"buy goods", "Merchant Payment Buy Goods", "", 0, 800, models.CategoryPayBill},
		{"send money", "Send Money to 0722000000", "", 0, 400, models.CategoryTransfer},
		{"transfer", "Customer Transfer", "", 0, 400, models.CategoryTransfer},
		{"airtime", "Airtime Purchase", "", 0, 100, models.CategoryAirtime},
		{"bundle", "Data Bundle Purchase", "", 0, 250, models.CategoryAirtime},
		{"fallback expense", "", "", 0, 500, models.CategoryExpense},
		{"fallback income", "", "", 500, 0, models.CategoryIncome},
		{"no signal", "", "", 0, 0, models.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.description, tt.txnType, tt.paidIn, tt.paidOut)
			if got != tt.want {
				t.Errorf("Classify(%q, %q, %f, %f) = %q, want %q",
					tt.description, tt.txnType, tt.paidIn, tt.paidOut, got, tt.want)
			}
		})
	}
}

// Rule order matters: a description containing both a loan keyword and an
// income keyword must classify by the earlier rule.
func TestClassify_Precedence(t *testing.T) {
	if got := Classify("Fuliza received", "", 500, 0); got != models.CategoryLoan {
		t.Errorf("got %q, want Loan", got)
	}
	if got := Classify("Deposit withdraw mixup", "", 100, 0); got != models.CategoryIncome {
		t.Errorf("got %q, want Income (rule 2 precedes rule 3)", got)
	}
}

func TestClassify_TypeTextAlsoMatched(t *testing.T) {
	// Keywords in the transaction-type field count exactly like the
	// description.
	if got := Classify("", "Pay Bill Charge paybill", 0, 30); got != models.CategoryPayBill {
		t.Errorf("got %q, want PayBill", got)
	}
}

func TestClassifyAll(t *testing.T) {
	txns := []models.Transaction{
		{Description: "Funds received", PaidIn: 100},
		{Description: "", PaidOut: 50},
		{Description: ""},
	}

	out := ClassifyAll(txns)
	for i, txn := range out {
		if txn.Category == "" {
			t.Errorf("txn[%d] left uncategorized", i)
		}
	}
	if out[2].Category != models.CategoryOther {
		t.Errorf("empty txn: got %q, want Other", out[2].Category)
	}
}
