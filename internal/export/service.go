package export

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/bloodwork-sync/internal/record"
)

// Row is one document's extraction outcome destined for the workbook.
type Row struct {
	Filename string
	Record   *record.Record
	Err      string
}

// Service produces XLSX bytes for a run's extracted records, one row per
// document, one column per record field. Failed extractions keep their row
// with the error in the last column so the workbook mirrors the batch.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// WorkbookBytes renders the rows into an XLSX workbook.
func (s *Service) WorkbookBytes(rows []Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Extractions"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defIdx, _ := f.GetSheetIndex("Sheet1"); defIdx != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{"File"}
	for _, spec := range record.Fields {
		headers = append(headers, spec.Key)
	}
	headers = append(headers, "Error")
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	rowNum := 2
	for _, r := range rows {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, rowNum)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, r.Filename)
		if r.Record != nil {
			for i, spec := range record.Fields {
				if v, ok := r.Record.Value(spec.Key); ok {
					write(i+2, v)
				}
			}
		}
		if r.Err != "" {
			write(len(headers), r.Err)
		}
		rowNum++
	}

	_ = f.SetColWidth(sheet, "A", "A", 34)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// SaveWorkbook renders the rows and writes the workbook to path.
func (s *Service) SaveWorkbook(path string, rows []Row) error {
	b, err := s.WorkbookBytes(rows)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
