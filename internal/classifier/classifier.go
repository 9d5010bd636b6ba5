// Package classifier assigns each transaction to exactly one category from
// a fixed taxonomy, by keyword matching over the description and
// transaction-type text with a defined precedence order, falling back to
// the sign of the amounts when no keyword matches.
package classifier

import (
	"strings"

	"github.com/mamamboga/statement-scorer/internal/models"
)

// rules are evaluated in order; the first matching rule wins. This matters:
// "Fuliza received" must classify as Loan, not Income.
var rules = []struct {
	keywords []string
	category models.Category
}{
	{[]string{"loan", "fuliza"}, models.CategoryLoan},
	{[]string{"received", "deposit", "reversal"}, models.CategoryIncome},
	{[]string{"withdraw", "atm"}, models.CategoryWithdrawal},
	{[]string{"paybill", "pay bill", "buy goods"}, models.CategoryPayBill},
	{[]string{"transfer", "send money"}, models.CategoryTransfer},
	{[]string{"airtime", "bundle"}, models.CategoryAirtime},
}

// Classify returns the category for a single transaction. It is a pure
// function of the description, type text and amounts.
func Classify(description, transactionType string, paidIn, paidOut float64) models.Category {
	combined := strings.ToLower(description + " " + transactionType)

	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(combined, kw) {
				return rule.category
			}
		}
	}

	// Amount-sign fallback, only when no keyword rule matched.
	switch {
	case paidOut > 0:
		return models.CategoryExpense
	case paidIn > 0:
		return models.CategoryIncome
	default:
		return models.CategoryOther
	}
}

// ClassifyAll assigns a category to every transaction in place and returns
// the same slice. After this call no transaction is uncategorized.
func ClassifyAll(txns []models.Transaction) []models.Transaction {
	for i := range txns {
		txns[i].Category = Classify(txns[i].Description, txns[i].Type, txns[i].PaidIn, txns[i].PaidOut)
	}
	return txns
}
