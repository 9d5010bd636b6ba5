package models

import "time"

// Category is the semantic bucket a transaction is assigned to.
type Category string

const (
	CategoryLoan       Category = "Loan"
	CategoryIncome     Category = "Income"
	CategoryWithdrawal Category = "Withdrawal"
	CategoryPayBill    Category = "PayBill"
	CategoryTransfer   Category = "Transfer"
	CategoryAirtime    Category = "Airtime/Data"
	CategoryExpense    Category = "Expense"
	CategoryOther      Category = "Other"
)

// Transaction represents a single MPESA statement transaction.
// PaidIn and PaidOut are stored as non-negative magnitudes; Balance is nil
// when the statement row carried no parseable balance (distinct from zero).
type Transaction struct {
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	Type        string    `json:"transactionType"`
	PaidIn      float64   `json:"paidIn"`
	PaidOut     float64   `json:"paidOut"`
	Balance     *float64  `json:"balance,omitempty"`
	ReceiptRef  string    `json:"receiptRef,omitempty"`
	Category    Category  `json:"category,omitempty"`
}

// RejectedRow records an input row dropped during parsing, with the reason.
// Row-level failures are absorbed, not surfaced; the reason is kept for
// diagnostics.
type RejectedRow struct {
	LineNum int    `json:"lineNum"`
	Text    string `json:"text"`
	Reason  string `json:"reason"`
}

// StatementInfo holds everything the parser produced from one statement:
// the working transaction set (summary and subtotal rows already excluded)
// and the statement's own stated totals when they could be recovered.
type StatementInfo struct {
	Transactions []Transaction
	Rejected     []RejectedRow

	// Stated totals from an explicit TOTAL row, or summed from category
	// subtotal rows when no TOTAL row exists. Used to cross-check
	// aggregates, never mixed into the working set.
	StatedTotalIn  float64
	StatedTotalOut float64
	HasStatedTotal bool
}

// MetricSet is the snapshot of behavioral metrics computed once per run
// from the working transaction set.
type MetricSet struct {
	CashflowVolume    float64 `json:"cashflowVolume"`
	NetCashflow       float64 `json:"netCashflow"`
	RollingBalanceAvg float64 `json:"rollingBalanceAvg"`
	// RollingBalanceDefined is false when no transaction carried a balance.
	RollingBalanceDefined bool    `json:"rollingBalanceDefined"`
	DaysSinceLast         int     `json:"daysSinceLast"`
	P2PVolume             float64 `json:"p2pVolume"`
	IncomeExpenseRatio    float64 `json:"incomeExpenseRatio"`
	// RatioDefined is false when the Expense denominator is zero; the
	// ratio is then reported as "N/A", never as zero.
	RatioDefined bool `json:"ratioDefined"`
}

// Decision is the binary lending outcome.
type Decision string

const (
	DecisionApproved Decision = "Approved"
	DecisionDenied   Decision = "Denied"
)

// RiskBand is a display classification; it does not drive the decision.
type RiskBand string

const (
	RiskLow      RiskBand = "Low"
	RiskModerate RiskBand = "Moderate"
	RiskHigh     RiskBand = "High"
)

// ScoreResult is the final output of a scoring run.
type ScoreResult struct {
	Score     float64        `json:"score"`
	Decision  Decision       `json:"decision"`
	RiskBand  RiskBand       `json:"riskBand"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// ScoreBreakdown lists every sub-score that contributed to (or is reported
// alongside) the final score. Each field is already on its own fixed scale.
type ScoreBreakdown struct {
	BusinessAge         float64 `json:"businessAge"`         // max 5
	StockValue          float64 `json:"stockValue"`          // max 10
	NeighborAbility     float64 `json:"neighborAbility"`     // max 10
	NeighborWillingness float64 `json:"neighborWillingness"` // max 10
	NeighborFamiliarity float64 `json:"neighborFamiliarity"` // max 5
	OfficerAbility      float64 `json:"officerAbility"`      // max 10
	OfficerWillingness  float64 `json:"officerWillingness"`  // max 10
	MpesaCashflow       float64 `json:"mpesaCashflow"`       // max 16
	MpesaBalance        float64 `json:"mpesaBalance"`        // max 16
	MpesaRecency        float64 `json:"mpesaRecency"`        // max 4
	MpesaP2P            float64 `json:"mpesaP2p"`            // max 4, only when enabled
	// BasicAutoScore is derived from the income/expense ratio and reported
	// for display; it is not summed into Score.
	BasicAutoScore float64 `json:"basicAutoScore"` // max 10
}
