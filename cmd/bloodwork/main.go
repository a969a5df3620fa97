package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/joseph-ayodele/bloodwork-sync/internal/common"
	"github.com/joseph-ayodele/bloodwork-sync/internal/export"
	"github.com/joseph-ayodele/bloodwork-sync/internal/llm/gemini"
	"github.com/joseph-ayodele/bloodwork-sync/internal/pipeline"
	"github.com/joseph-ayodele/bloodwork-sync/internal/sheets"
	"github.com/joseph-ayodele/bloodwork-sync/internal/store"
	"github.com/joseph-ayodele/bloodwork-sync/internal/validate"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		out           = flag.String("o", "", "output JSON file path (default extraction_results_<timestamp>.json)")
		spreadsheetID = flag.String("spreadsheet-id", "", "Google Sheets spreadsheet ID to update (optional)")
		credentials   = flag.String("credentials", "", "service account credentials JSON path")
		doValidate    = flag.Bool("validate", false, "validate extractions against expected JSON data")
		threshold     = flag.Float64("threshold", -1, "accuracy threshold for validation, 0-100 (default 80)")
		expectedDir   = flag.String("expected-dir", "", "directory with expected JSON results")
		reportPath    = flag.String("report", "", "path for the detailed validation report")
		xlsxPath      = flag.String("xlsx", "", "also export extracted records to this XLSX file")
		historyPath   = flag.String("history", "", "SQLite run-history database path (optional)")
		verbose       = flag.Bool("v", false, "enable verbose logging")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		printError("usage: bloodwork [flags] <pdf-file-or-directory>\n")
		flag.PrintDefaults()
		return 2
	}
	inputPath := flag.Arg(0)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *spreadsheetID != "" {
		cfg.Sheets.SpreadsheetID = *spreadsheetID
	}
	if *credentials != "" {
		cfg.Sheets.CredentialsFile = *credentials
	}
	applyThreshold(cfg, *threshold)
	if *expectedDir != "" {
		cfg.Validate.ExpectedDir = *expectedDir
	}
	if *historyPath != "" {
		cfg.HistoryDB = *historyPath
	}
	if err := cfg.Check(); err != nil {
		printError("Error: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	extractor := gemini.NewClient(gemini.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	// Spreadsheet wiring is optional: without an ID the run is extraction-only.
	var (
		index   *sheets.Index
		applier *sheets.Applier
	)
	if cfg.Sheets.SpreadsheetID != "" {
		svc, err := sheets.NewService(ctx, cfg.Sheets.CredentialsFile, logger)
		if err != nil {
			printError("Error: %v\n", err)
			return 1
		}
		index, err = sheets.LoadIndex(ctx, svc, cfg.Sheets.SpreadsheetID, logger)
		if err != nil {
			printError("Error: %v\n", err)
			return 1
		}
		applier = sheets.NewApplier(svc, logger)
	}

	var history *store.Store
	if cfg.HistoryDB != "" {
		var err error
		history, err = store.Open(cfg.HistoryDB, logger)
		if err != nil {
			printError("Error: %v\n", err)
			return 1
		}
		defer func() {
			if err := history.Close(); err != nil {
				logger.Warn("history.close_failed", "error", err)
			}
		}()
	}

	processor := pipeline.NewProcessor(logger, extractor, index, applier, history)
	run, err := processor.ProcessPath(ctx, inputPath)
	if err != nil {
		printError("Error: %v\n", err)
		return 1
	}

	outputPath := *out
	if outputPath == "" {
		outputPath = fmt.Sprintf("extraction_results_%s.json", time.Now().Format("20060102_150405"))
	}
	if err := pipeline.SaveResults(outputPath, run); err != nil {
		printError("Error saving results: %v\n", err)
		return 1
	}
	logger.Info("results.saved", "path", outputPath)

	printRunSummary(run)

	if *xlsxPath != "" {
		rows := make([]export.Row, 0, len(run.Results))
		for _, r := range run.Results {
			rows = append(rows, export.Row{Filename: r.Filename, Record: r.Record, Err: r.Err})
		}
		if err := export.NewService(logger).SaveWorkbook(*xlsxPath, rows); err != nil {
			printError("Error exporting XLSX: %v\n", err)
			return 1
		}
	}

	if *doValidate {
		if code := runValidation(run, cfg, *reportPath, logger); code != 0 {
			return code
		}
	}

	if run.Stats.Failed > 0 || run.Stats.SheetErrors > 0 || run.SheetsDisabled {
		return 1
	}
	return 0
}

// applyThreshold overrides the configured threshold with the flag value. The
// flag defaults to -1 so an explicit "-threshold 0" is still honored.
func applyThreshold(cfg *common.Config, v float64) {
	if v >= 0 {
		cfg.Validate.Threshold = v
	}
}

func printRunSummary(run *pipeline.RunResult) {
	fmt.Printf("\nExtraction complete!\n")
	fmt.Printf("Total files: %d\n", run.Stats.Documents)
	fmt.Printf("Successful extractions: %d\n", run.Stats.Succeeded)
	fmt.Printf("Failed extractions: %d\n", run.Stats.Failed)
	if run.Stats.Updated > 0 || run.Stats.Fallback > 0 {
		fmt.Printf("Rows updated: %d\n", run.Stats.Updated)
		fmt.Printf("Manual fallbacks: %d\n", run.Stats.Fallback)
	}

	if run.Stats.Failed > 0 {
		fmt.Println("\nFailed files:")
		for _, r := range run.Results {
			if r.Record == nil && r.Err != "" {
				fmt.Printf("  - %s: %s\n", r.Filename, r.Err)
			}
		}
	}

	if run.Stats.SheetErrors > 0 {
		fmt.Printf("\nRows NOT written (sheet errors): %d\n", run.Stats.SheetErrors)
		for _, r := range run.Results {
			if r.Record != nil && r.Err != "" {
				fmt.Printf("  - %s: %s\n", r.Filename, r.Err)
			}
		}
	}

	for _, r := range run.Results {
		if r.Outcome == nil || r.Outcome.Payload == "" {
			continue
		}
		fmt.Printf("\n%s\n", divider)
		fmt.Printf("COPY-PASTE VALUES FOR %s (%s)\n", r.Filename, r.Outcome.Status)
		for _, c := range r.Outcome.Candidates {
			fmt.Printf("  candidate: %s\n", c)
		}
		fmt.Printf("%s\n", divider)
		fmt.Println("Headers:")
		fmt.Println(sheets.PayloadHeaders())
		fmt.Println("Values to copy:")
		fmt.Println(r.Outcome.Payload)
	}

	if run.SheetsDisabled {
		fmt.Printf("\nWARNING: spreadsheet updates stopped mid-run: %s\n", run.SheetsError)
	}
}

const divider = "============================================================"

func runValidation(run *pipeline.RunResult, cfg *common.Config, reportPath string, logger *slog.Logger) int {
	validator := validate.New(cfg.Validate.Threshold)

	var reports []*validate.Report
	for _, r := range run.Results {
		if r.Record == nil {
			logger.Warn("validate.skip_extraction_error", "file", r.Filename)
			continue
		}
		expected, err := validate.LoadExpected(cfg.Validate.ExpectedDir, r.Filename)
		if err != nil {
			logger.Warn("validate.skip_no_expected", "file", r.Filename, "error", err)
			continue
		}
		rep := validator.Validate(r.Filename, r.Record, expected)
		reports = append(reports, rep)
		logger.Info("validate.file", "file", r.Filename, "accuracy", rep.Accuracy, "passed", rep.Passed)
	}

	if len(reports) == 0 {
		fmt.Println("\nNo files could be validated (missing expected data or extraction errors)")
		return 0
	}

	report := validate.BuildRunReport(reports, cfg.Validate.Threshold)
	printValidationSummary(report)

	if reportPath == "" {
		reportPath = fmt.Sprintf("validation_report_%s.json", time.Now().Format("20060102_150405"))
	}
	if err := report.Save(reportPath); err != nil {
		printError("Error saving validation report: %v\n", err)
		return 1
	}
	fmt.Printf("\nDetailed validation report saved to: %s\n", reportPath)
	return 0
}

func printValidationSummary(report *validate.RunReport) {
	s := report.Summary
	fmt.Printf("\n%s\n", divider)
	fmt.Println("VALIDATION SUMMARY")
	fmt.Printf("%s\n", divider)
	fmt.Printf("Total files validated: %d\n", s.TotalFiles)
	fmt.Printf("Files passing threshold: %d\n", s.ValidFiles)
	fmt.Printf("Files failing threshold: %d\n", s.InvalidFiles)
	fmt.Printf("Average accuracy: %.1f%%\n", s.AverageAccuracy)
	fmt.Printf("Success rate: %.1f%%\n", s.SuccessRate)

	fmt.Println("\nResults by file:")
	for _, r := range report.Results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}
		fmt.Printf("%-30s %6.1f%% %s\n", r.Filename, r.Accuracy, status)
		if len(r.MissingFields) > 0 {
			fmt.Printf("  Missing fields: %s\n", joinSorted(r.MissingFields))
		}
		if len(r.ExtraFields) > 0 {
			fmt.Printf("  Extra fields: %s\n", joinSorted(r.ExtraFields))
		}
	}
}

func joinSorted(fields []string) string {
	sorted := make([]string, len(fields))
	copy(sorted, fields)
	sort.Strings(sorted)
	out := ""
	for i, f := range sorted {
		if i > 0 {
			out += ", "
		}
		out += f
	}
	return out
}
