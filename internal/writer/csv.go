package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/mamamboga/statement-scorer/internal/models"
)

// CSVWriter exports the classified transaction set as a delimited table.
// This is a pass-through serialization; no further logic happens here.
type CSVWriter struct {
	IncludeTimestamp bool
}

// WriteToFile writes the classified transactions to a CSV file.
func (w *CSVWriter) WriteToFile(path string, txns []models.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, txns)
}

// Write writes the classified transactions in CSV format.
func (w *CSVWriter) Write(out io.Writer, txns []models.Transaction) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	header := []string{"Transaction Type", "Paid In", "Paid Out", "Balance", "Details", "Category"}
	if w.IncludeTimestamp {
		header = append([]string{"Completion Time"}, header...)
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range txns {
		row := []string{
			txn.Type,
			formatAmount(txn.PaidIn),
			formatAmount(txn.PaidOut),
			formatBalance(txn.Balance),
			txn.Description,
			string(txn.Category),
		}
		if w.IncludeTimestamp {
			row = append([]string{txn.Timestamp.Format(time.DateTime)}, row...)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}

func formatAmount(amount float64) string {
	if amount == 0 {
		return ""
	}
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

// formatBalance distinguishes "no balance on this row" from a genuine zero.
func formatBalance(balance *float64) string {
	if balance == nil {
		return ""
	}
	return strconv.FormatFloat(*balance, 'f', 2, 64)
}
