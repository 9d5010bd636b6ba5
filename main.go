package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mamamboga/statement-scorer/internal/api"
	"github.com/mamamboga/statement-scorer/internal/extractor"
	"github.com/mamamboga/statement-scorer/internal/logger"
	"github.com/mamamboga/statement-scorer/internal/pipeline"
	"github.com/mamamboga/statement-scorer/internal/scorer"
	"github.com/mamamboga/statement-scorer/internal/writer"
)

const version = "1.0.0"

type pdfExtractor struct{}

func (pdfExtractor) ExtractLines(filePath, password string) ([]string, error) {
	return extractor.ExtractLines(filePath, password)
}

func main() {
	passwordFlag := flag.String("password", "", "PDF password, if the statement is protected")
	outputFlag := flag.String("output", "", "Classified transactions CSV path (defaults to input filename with .csv extension)")
	reportFlag := flag.String("report", "", "Summary report path (omit to print the report to stdout)")
	asOfFlag := flag.String("asof", "", "Evaluation time, RFC3339 or YYYY-MM-DD (defaults to now)")
	includeP2PFlag := flag.Bool("include-p2p", false, "Include the PayBill volume sub-score")
	thresholdFlag := flag.Float64("threshold", 50, "Approval threshold")
	serveFlag := flag.Bool("serve", false, "Start the HTTP API instead of processing files")
	addrFlag := flag.String("addr", ":8080", "HTTP listen address (with -serve)")
	versionFlag := flag.Bool("version", false, "Print version and exit")

	businessAgeFlag := flag.Float64("business-age", 0, "Business age in months")
	stockValueFlag := flag.Float64("stock-value", 0, "Average daily stock value (KSh)")
	neighborAbilityFlag := flag.Float64("neighbor-ability", 0, "Neighbor-rated repayment ability (1-10)")
	neighborWillingnessFlag := flag.Float64("neighbor-willingness", 0, "Neighbor-rated willingness (1-10)")
	familiarityFlag := flag.String("familiarity", "", "Neighbor familiarity: barely, slightly, moderately, well, very well")
	officerAbilityFlag := flag.Float64("officer-ability", 0, "Officer-rated repayment ability (1-10)")
	officerWillingnessFlag := flag.Float64("officer-willingness", 0, "Officer-rated willingness (1-10)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `MPESA Statement Scorer

Parses an MPESA statement (PDF or CSV export), classifies its
transactions, derives behavioral financial metrics and combines them
with the supplied qualitative inputs into a creditworthiness score.

Usage:
  statement-scorer [flags] <statement.pdf|statement.csv> [more files ...]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Score a protected PDF statement
  statement-scorer -password=1234 -business-age=24 -stock-value=5000 statement.pdf

  # Score a CSV export and keep the report
  statement-scorer -report=summary.txt statement.csv

  # Run the HTTP API
  statement-scorer -serve -addr=:8080
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("statement-scorer v%s\n", version)
		os.Exit(0)
	}

	log := logger.New()
	ctx := logger.WithContext(context.Background(), log)

	if *serveFlag {
		app := api.NewApp()
		log.Info().Str("addr", *addrFlag).Msg("starting HTTP API")
		if err := app.Listen(*addrFlag); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	now := time.Now()
	if *asOfFlag != "" {
		parsed, err := parseAsOf(*asOfFlag)
		if err != nil {
			fatalf("Invalid -asof value %q: %v\n", *asOfFlag, err)
		}
		now = parsed
	}

	cfg := scorer.Config{
		IncludeP2P:        *includeP2PFlag,
		ApprovalThreshold: *thresholdFlag,
	}
	qualitative := scorer.Inputs{
		BusinessAgeMonths:   *businessAgeFlag,
		AvgDailyStockValue:  *stockValueFlag,
		NeighborAbility:     *neighborAbilityFlag,
		NeighborWillingness: *neighborWillingnessFlag,
		NeighborFamiliarity: scorer.ParseFamiliarity(*familiarityFlag),
		OfficerAbility:      *officerAbilityFlag,
		OfficerWillingness:  *officerWillingnessFlag,
	}

	for _, inputPath := range flag.Args() {
		if err := processFile(ctx, inputPath, *passwordFlag, *outputFlag, *reportFlag, now, cfg, qualitative); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inputPath, err)
			os.Exit(1)
		}
	}
}

func processFile(ctx context.Context, inputPath, password, outputPath, reportPath string, now time.Time, cfg scorer.Config, qualitative scorer.Inputs) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}

	in := pipeline.Input{Password: password}
	switch ext := strings.ToLower(filepath.Ext(inputPath)); ext {
	case ".pdf":
		in.PDFPath = inputPath
	case ".csv":
		rows, err := readCSV(inputPath)
		if err != nil {
			return err
		}
		in.Table = rows
	default:
		return fmt.Errorf("expected .pdf or .csv file, got %q", ext)
	}

	fmt.Printf("Processing: %s\n", inputPath)

	p := pipeline.New(pdfExtractor{}, cfg)
	p.Now = func() time.Time { return now }

	res, err := p.Run(ctx, in, qualitative)
	if err != nil {
		return err
	}

	fmt.Printf("  Found %d transaction(s), %d row(s) rejected\n", len(res.Transactions), len(res.Rejected))

	outPath := outputPath
	if outPath == "" {
		base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
		outPath = base + "_classified.csv"
	}

	csvWriter := &writer.CSVWriter{IncludeTimestamp: true}
	if err := csvWriter.WriteToFile(outPath, res.Transactions); err != nil {
		return fmt.Errorf("CSV write failed: %w", err)
	}
	fmt.Printf("  Classified transactions: %s\n", outPath)

	reportWriter := &writer.ReportWriter{}
	if reportPath != "" {
		if err := reportWriter.WriteToFile(reportPath, res); err != nil {
			return fmt.Errorf("report write failed: %w", err)
		}
		fmt.Printf("  Report: %s\n", reportPath)
	} else {
		fmt.Println()
		if err := reportWriter.Write(os.Stdout, res); err != nil {
			return fmt.Errorf("report write failed: %w", err)
		}
	}

	return nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV in %s: %w", path, err)
	}
	return rows, nil
}

func parseAsOf(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
