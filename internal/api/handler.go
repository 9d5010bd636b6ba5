// Package api exposes the scoring pipeline over HTTP. It accepts a
// statement upload plus the qualitative inputs and returns the classified
// transactions, metric snapshot, score and CSV export in one response.
package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mamamboga/statement-scorer/internal/extractor"
	"github.com/mamamboga/statement-scorer/internal/models"
	"github.com/mamamboga/statement-scorer/internal/pipeline"
	"github.com/mamamboga/statement-scorer/internal/scorer"
	"github.com/mamamboga/statement-scorer/internal/writer"
)

const version = "1.0.0"

// ScoreResponse is the JSON response from the /api/score endpoint.
type ScoreResponse struct {
	Success      bool                 `json:"success"`
	Error        string               `json:"error,omitempty"`
	RunID        string               `json:"runId,omitempty"`
	Transactions []models.Transaction `json:"transactions"`
	Metrics      map[string]any       `json:"metrics,omitempty"`
	ScoreResult  *models.ScoreResult  `json:"scoreResult,omitempty"`
	CSV          string               `json:"csv,omitempty"`
	Count        int                  `json:"count"`
	Rejected     []models.RejectedRow `json:"rejected,omitempty"`
	Version      string               `json:"version,omitempty"`
}

// pdfExtractor adapts the extractor package to the pipeline gateway.
type pdfExtractor struct{}

func (pdfExtractor) ExtractLines(filePath, password string) ([]string, error) {
	return extractor.ExtractLines(filePath, password)
}

// NewApp builds the fiber application with all routes registered.
func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 32 << 20,
	})
	app.Get("/api/health", HandleHealth)
	app.Post("/api/score", HandleScore)
	return app
}

// HandleHealth reports service liveness.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": version,
	})
}

// HandleScore runs one uploaded statement through the full pipeline.
// Accepted inputs: a .pdf upload (optionally with a password form field),
// a .csv statement export, or pre-extracted text in the extractedText
// field.
func HandleScore(c *fiber.Ctx) error {
	in, cleanup, err := buildInput(c)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	qualitative := scorer.Inputs{
		BusinessAgeMonths:   formFloat(c, "business_age_months"),
		AvgDailyStockValue:  formFloat(c, "stock_value"),
		NeighborAbility:     formFloat(c, "neighbor_ability"),
		NeighborWillingness: formFloat(c, "neighbor_willingness"),
		NeighborFamiliarity: scorer.ParseFamiliarity(c.FormValue("familiarity")),
		OfficerAbility:      formFloat(c, "officer_ability"),
		OfficerWillingness:  formFloat(c, "officer_willingness"),
	}

	cfg := scorer.DefaultConfig()
	if c.FormValue("include_p2p") == "true" {
		cfg.IncludeP2P = true
	}
	if v := c.FormValue("threshold"); v != "" {
		t, parseErr := strconv.ParseFloat(v, 64)
		if parseErr != nil {
			return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("invalid threshold %q", v))
		}
		cfg.ApprovalThreshold = t
	}

	p := pipeline.New(pdfExtractor{}, cfg)
	res, err := p.Run(c.Context(), in, qualitative)
	if err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	var csvBuf bytes.Buffer
	csvWriter := &writer.CSVWriter{IncludeTimestamp: true}
	if err := csvWriter.Write(&csvBuf, res.Transactions); err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
	}

	txns := res.Transactions
	if txns == nil {
		txns = []models.Transaction{}
	}

	return c.JSON(ScoreResponse{
		Success:      true,
		RunID:        res.RunID,
		Transactions: txns,
		Metrics:      MetricsMap(res.Metrics),
		ScoreResult:  &res.Score,
		CSV:          csvBuf.String(),
		Count:        len(txns),
		Rejected:     res.Rejected,
		Version:      version,
	})
}

// MetricsMap flattens the metric snapshot for the response, substituting
// the "N/A" sentinel for undefined values.
func MetricsMap(ms models.MetricSet) map[string]any {
	m := map[string]any{
		"cashflow_volume": ms.CashflowVolume,
		"net_cashflow":    ms.NetCashflow,
		"days_since_last": ms.DaysSinceLast,
		"p2p_volume":      ms.P2PVolume,
	}
	if ms.RollingBalanceDefined {
		m["rolling_balance_avg"] = ms.RollingBalanceAvg
	} else {
		m["rolling_balance_avg"] = "N/A"
	}
	if ms.RatioDefined {
		m["income_expense_ratio"] = ms.IncomeExpenseRatio
	} else {
		m["income_expense_ratio"] = "N/A"
	}
	return m
}

// buildInput assembles the pipeline input from the request. The returned
// cleanup releases any temp file and must run on every exit path.
func buildInput(c *fiber.Ctx) (pipeline.Input, func(), error) {
	if text := c.FormValue("extractedText"); text != "" {
		var lines []string
		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
		return pipeline.Input{Lines: lines}, nil, nil
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return pipeline.Input{}, nil, fmt.Errorf("no file uploaded; use form field 'file'")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	switch ext {
	case ".pdf":
		tmp, err := os.CreateTemp("", "statement-*.pdf")
		if err != nil {
			return pipeline.Input{}, nil, fmt.Errorf("failed to create temp file")
		}
		cleanup := func() {
			tmp.Close()
			os.Remove(tmp.Name())
		}
		if err := saveUpload(fileHeader, tmp); err != nil {
			return pipeline.Input{}, cleanup, err
		}
		return pipeline.Input{
			PDFPath:  tmp.Name(),
			Password: c.FormValue("password"),
		}, cleanup, nil

	case ".csv":
		f, err := fileHeader.Open()
		if err != nil {
			return pipeline.Input{}, nil, fmt.Errorf("failed to read upload: %v", err)
		}
		defer f.Close()
		reader := csv.NewReader(f)
		reader.FieldsPerRecord = -1
		rows, err := reader.ReadAll()
		if err != nil {
			return pipeline.Input{}, nil, fmt.Errorf("invalid CSV: %v", err)
		}
		return pipeline.Input{Table: rows}, nil, nil

	default:
		return pipeline.Input{}, nil, fmt.Errorf("unsupported file type %q; upload .pdf or .csv", ext)
	}
}

func saveUpload(header *multipart.FileHeader, dst *os.File) error {
	src, err := header.Open()
	if err != nil {
		return fmt.Errorf("failed to read upload: %v", err)
	}
	defer src.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to save upload: %v", err)
	}
	return dst.Sync()
}

func formFloat(c *fiber.Ctx, key string) float64 {
	v, err := strconv.ParseFloat(c.FormValue(key), 64)
	if err != nil {
		return 0
	}
	return v
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ScoreResponse{
		Success: false,
		Error:   msg,
	})
}
