package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/bloodwork-sync/internal/common"
	"github.com/joseph-ayodele/bloodwork-sync/internal/llm"
	"github.com/joseph-ayodele/bloodwork-sync/internal/match"
	"github.com/joseph-ayodele/bloodwork-sync/internal/record"
	"github.com/joseph-ayodele/bloodwork-sync/internal/sheets"
	"github.com/joseph-ayodele/bloodwork-sync/internal/store"
)

// DocumentResult is the outcome for one processed PDF.
type DocumentResult struct {
	Filename string          `json:"filename"`
	Record   *record.Record  `json:"record,omitempty"`
	Outcome  *sheets.Outcome `json:"sheet_outcome,omitempty"`
	Err      string          `json:"error,omitempty"`
}

// RunStats aggregates the batch counters. SheetErrors counts documents whose
// extraction succeeded but whose row write failed; those rows were NOT
// updated even though the document is not an extraction failure.
type RunStats struct {
	Documents   int `json:"documents"`
	Succeeded   int `json:"succeeded"`
	Failed      int `json:"failed"`
	Updated     int `json:"updated"`
	Fallback    int `json:"fallback"`
	SheetErrors int `json:"sheet_errors"`
}

// RunResult is everything one batch run produced.
type RunResult struct {
	RunID   string           `json:"run_id"`
	Results []DocumentResult `json:"results"`
	Stats   RunStats         `json:"stats"`
	// SheetsDisabled is set when a fatal spreadsheet error stopped all sheet
	// operations mid-run; extraction continued regardless.
	SheetsDisabled bool   `json:"sheets_disabled,omitempty"`
	SheetsError    string `json:"sheets_error,omitempty"`
}

// Processor runs the batch: extract each PDF, match it against the sheet
// index, apply the update, and record history. Documents are processed
// sequentially; one document's failure never aborts the batch, and a fatal
// spreadsheet error only disables the remaining sheet operations.
type Processor struct {
	logger    *slog.Logger
	extractor llm.RecordExtractor
	index     *sheets.Index   // nil disables matching/updating
	applier   *sheets.Applier // nil disables matching/updating
	history   *store.Store    // nil disables run history
}

func NewProcessor(logger *slog.Logger, extractor llm.RecordExtractor, index *sheets.Index, applier *sheets.Applier, history *store.Store) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:    logger,
		extractor: extractor,
		index:     index,
		applier:   applier,
		history:   history,
	}
}

// ProcessPath processes a single PDF file or every PDF under a directory.
func (p *Processor) ProcessPath(ctx context.Context, inputPath string) (*RunResult, error) {
	files, err := collectPDFs(inputPath)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, common.NewAppError("INPUT", fmt.Sprintf("no PDF files found at %s", inputPath), common.ErrInvalidInput)
	}

	runID := uuid.New().String()
	ctx = common.WithRunID(ctx, runID)
	run := &RunResult{RunID: runID}

	if p.history != nil {
		spreadsheetID := ""
		if p.index != nil {
			spreadsheetID = p.index.SpreadsheetID
		}
		if err := p.history.BeginRun(ctx, runID, inputPath, spreadsheetID); err != nil {
			p.logger.Warn("history.begin_run_failed", "error", err)
		}
	}

	p.logger.Info("run.start", "run_id", runID, "files", len(files))
	start := time.Now()

	for _, path := range files {
		res := p.processDocument(ctx, run, path)
		run.Results = append(run.Results, res)
		run.Stats.Documents++
		if res.Err != "" && res.Record == nil {
			run.Stats.Failed++
		} else {
			run.Stats.Succeeded++
		}
	}

	if p.history != nil {
		if err := p.history.FinishRun(ctx, runID, run.Stats.Documents, run.Stats.Succeeded, run.Stats.Failed); err != nil {
			p.logger.Warn("history.finish_run_failed", "error", err)
		}
	}

	p.logger.Info("run.done",
		"run_id", runID,
		"documents", run.Stats.Documents,
		"succeeded", run.Stats.Succeeded,
		"failed", run.Stats.Failed,
		"updated", run.Stats.Updated,
		"fallback", run.Stats.Fallback,
		"sheet_errors", run.Stats.SheetErrors,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return run, nil
}

func (p *Processor) processDocument(ctx context.Context, run *RunResult, path string) DocumentResult {
	name := filepath.Base(path)
	res := DocumentResult{Filename: name}

	pdf, err := os.ReadFile(path)
	if err != nil {
		res.Err = common.NewAppError("EXTRACTION", "read document", common.ErrExtraction).Error() + ": " + err.Error()
		p.logger.Error("doc.read_failed", "file", name, "error", err)
		p.recordHistory(ctx, run.RunID, res, nil)
		return res
	}

	rec, rawJSON, err := p.extractor.ExtractRecord(ctx, llm.ExtractRequest{PDF: pdf, Filename: name})
	if err != nil {
		res.Err = common.WrapError(common.ErrExtraction, err.Error()).Error()
		p.logger.Error("doc.extract_failed", "file", name, "error", err)
		p.recordHistory(ctx, run.RunID, res, nil)
		return res
	}
	res.Record = rec

	if p.index != nil && p.applier != nil && !run.SheetsDisabled {
		p.applySheet(ctx, run, &res, rec)
	}

	p.recordHistory(ctx, run.RunID, res, rawJSON)
	return res
}

func (p *Processor) applySheet(ctx context.Context, run *RunResult, res *DocumentResult, rec *record.Record) {
	if !rec.HasPatientName() {
		p.logger.Warn("doc.no_patient_name", "file", res.Filename)
		res.Outcome = &sheets.Outcome{Status: match.StatusNotFound, Payload: sheets.RenderPayload(rec)}
		run.Stats.Fallback++
		return
	}

	mr := match.Match(rec, p.index)
	outcome, err := p.applier.Apply(ctx, p.index, rec, mr)
	if err != nil {
		res.Err = err.Error()
		// the row was not written; keep the values pasteable so the
		// extraction is not lost
		res.Outcome = &sheets.Outcome{
			Status:     mr.Status,
			Candidates: mr.Candidates,
			Payload:    sheets.RenderPayload(rec),
		}
		run.Stats.SheetErrors++
		if common.IsFatalSheetError(err) {
			// stop touching the sheet but keep extracting the rest of the batch
			run.SheetsDisabled = true
			run.SheetsError = err.Error()
			p.logger.Error("run.sheets_disabled", "error", err)
		} else {
			p.logger.Error("doc.apply_failed", "file", res.Filename, "error", err)
		}
		return
	}
	res.Outcome = outcome
	switch outcome.Status {
	case match.StatusMatched:
		run.Stats.Updated++
	default:
		run.Stats.Fallback++
	}
}

func (p *Processor) recordHistory(ctx context.Context, runID string, res DocumentResult, rawJSON []byte) {
	if p.history == nil {
		return
	}
	doc := store.DocumentRecord{
		RunID:         runID,
		Filename:      res.Filename,
		Status:        historyStatus(res),
		ExtractedJSON: rawJSON,
		Err:           res.Err,
	}
	if res.Outcome != nil {
		doc.MatchStatus = string(res.Outcome.Status)
		doc.SheetTab = res.Outcome.Location.Tab
		doc.SheetRow = res.Outcome.Location.Row
		doc.CellsUpdated = res.Outcome.CellsUpdated
	}
	if err := p.history.RecordDocument(ctx, doc); err != nil {
		p.logger.Warn("history.record_failed", "file", res.Filename, "error", err)
	}
}

func historyStatus(res DocumentResult) string {
	switch {
	case res.Record == nil, res.Err != "":
		return "ERROR"
	case res.Outcome == nil:
		return "EXTRACTED"
	case res.Outcome.Status == match.StatusMatched:
		return "UPDATED"
	default:
		return "FALLBACK"
	}
}

// collectPDFs resolves the input path to the ordered list of PDF files to
// process: the file itself, or every .pdf under the directory.
func collectPDFs(inputPath string) ([]string, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, common.NewAppError("INPUT", fmt.Sprintf("input path does not exist: %s", inputPath), common.ErrInvalidInput)
	}
	if !info.IsDir() {
		if !strings.EqualFold(filepath.Ext(inputPath), ".pdf") {
			return nil, common.NewAppError("INPUT", fmt.Sprintf("not a PDF file: %s", inputPath), common.ErrInvalidInput)
		}
		return []string{inputPath}, nil
	}

	var files []string
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != inputPath {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}
	return files, nil
}
