// Package pipeline wires the statement-to-score stages together: extract,
// parse, classify, compute metrics, score. Data flows strictly forward and
// every run operates on its own freshly parsed state; nothing survives
// across invocations.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mamamboga/statement-scorer/internal/classifier"
	"github.com/mamamboga/statement-scorer/internal/logger"
	"github.com/mamamboga/statement-scorer/internal/metrics"
	"github.com/mamamboga/statement-scorer/internal/models"
	"github.com/mamamboga/statement-scorer/internal/parser"
	"github.com/mamamboga/statement-scorer/internal/scorer"
)

// ErrNoInputData is returned when the extraction collaborator produced
// nothing to parse. The pipeline never fabricates transactions.
var ErrNoInputData = errors.New("no input data: statement could not be extracted")

// Input is one statement in whichever shape the caller has it. Exactly one
// of PDFPath, Lines or Table should be set; they are tried in that order.
type Input struct {
	PDFPath  string
	Password string
	Lines    []string
	Table    [][]string
}

// Result is the complete output of one scoring run, handed to the
// presentation collaborator.
type Result struct {
	RunID        string               `json:"runId"`
	GeneratedAt  time.Time            `json:"generatedAt"`
	Transactions []models.Transaction `json:"transactions"`
	Rejected     []models.RejectedRow `json:"rejected,omitempty"`
	Metrics      models.MetricSet     `json:"metrics"`
	Score        models.ScoreResult   `json:"scoreResult"`

	StatedTotalIn  float64 `json:"statedTotalIn,omitempty"`
	StatedTotalOut float64 `json:"statedTotalOut,omitempty"`
}

// Pipeline runs one statement through to a score. Now is overridable so
// tests can pin the evaluation time.
type Pipeline struct {
	Extractor TextExtractor
	Config    scorer.Config
	Now       func() time.Time
}

// New builds a pipeline around the given extraction collaborator.
func New(ext TextExtractor, cfg scorer.Config) *Pipeline {
	return &Pipeline{
		Extractor: ext,
		Config:    cfg,
		Now:       time.Now,
	}
}

// Run executes the full statement-to-score flow for a single statement.
func (p *Pipeline) Run(ctx context.Context, in Input, qualitative scorer.Inputs) (*Result, error) {
	log := logger.FromContext(ctx)
	runID := uuid.NewString()
	log = log.With().Str("run_id", runID).Logger()

	// 1. Acquire the raw extraction.
	lines := in.Lines
	if in.PDFPath != "" {
		extracted, err := p.Extractor.ExtractLines(in.PDFPath, in.Password)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoInputData, err)
		}
		lines = extracted
	}
	if len(lines) == 0 && len(in.Table) == 0 {
		return nil, ErrNoInputData
	}

	// 2. Parse into the working transaction set.
	var info *models.StatementInfo
	var err error
	if len(in.Table) > 0 {
		info, err = parser.ParseTable(in.Table)
	} else {
		info, err = parser.ParseLines(lines)
	}
	if err != nil {
		return nil, err
	}
	log.Info().
		Int("transactions", len(info.Transactions)).
		Int("rejected", len(info.Rejected)).
		Msg("statement parsed")

	// 3. Classify every transaction.
	info.Transactions = classifier.ClassifyAll(info.Transactions)

	// 4. Compute metrics with a single evaluation time for the whole run.
	now := p.Now()
	ms := metrics.Compute(info.Transactions, now)
	log.Info().
		Float64("cashflow_volume", ms.CashflowVolume).
		Float64("net_cashflow", ms.NetCashflow).
		Int("days_since_last", ms.DaysSinceLast).
		Msg("metrics computed")

	crossCheckTotals(log, info, ms)

	// 5. Score and decide.
	score := scorer.Score(qualitative, ms, p.Config)
	log.Info().
		Float64("score", score.Score).
		Str("decision", string(score.Decision)).
		Str("risk_band", string(score.RiskBand)).
		Msg("scoring complete")

	return &Result{
		RunID:          runID,
		GeneratedAt:    now,
		Transactions:   info.Transactions,
		Rejected:       info.Rejected,
		Metrics:        ms,
		Score:          score,
		StatedTotalIn:  info.StatedTotalIn,
		StatedTotalOut: info.StatedTotalOut,
	}, nil
}

// crossCheckTotals compares the working-set sums against the statement's
// own stated totals, once, for diagnostics only. Some divergence is normal
// since stated totals can include charges the working set excludes.
func crossCheckTotals(log zerolog.Logger, info *models.StatementInfo, ms models.MetricSet) {
	if !info.HasStatedTotal {
		return
	}
	statedVolume := info.StatedTotalIn + info.StatedTotalOut
	if statedVolume == 0 {
		return
	}
	drift := math.Abs(ms.CashflowVolume-statedVolume) / statedVolume
	if drift > 0.05 {
		log.Warn().
			Float64("computed_volume", ms.CashflowVolume).
			Float64("stated_volume", statedVolume).
			Msg("working-set cashflow diverges from statement totals by more than 5%")
	}
}
