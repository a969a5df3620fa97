package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// FieldStats aggregates one field's accuracy across all validated files.
type FieldStats struct {
	AverageAccuracy float64 `json:"average_accuracy"`
	MinAccuracy     float64 `json:"min_accuracy"`
	MaxAccuracy     float64 `json:"max_accuracy"`
	TotalSamples    int     `json:"total_samples"`
}

// RunSummary holds the run-level validation statistics.
type RunSummary struct {
	TotalFiles      int     `json:"total_files"`
	ValidFiles      int     `json:"valid_files"`
	InvalidFiles    int     `json:"invalid_files"`
	SuccessRate     float64 `json:"success_rate"`
	AverageAccuracy float64 `json:"average_accuracy"`
	Threshold       float64 `json:"accuracy_threshold"`
}

// FilePerformance names a file together with its aggregate accuracy.
type FilePerformance struct {
	Filename string  `json:"filename"`
	Accuracy float64 `json:"accuracy"`
}

// RunReport is the full validation report persisted as JSON.
type RunReport struct {
	Summary          RunSummary            `json:"summary"`
	BestPerformance  FilePerformance       `json:"best_performance"`
	WorstPerformance FilePerformance       `json:"worst_performance"`
	FieldStatistics  map[string]FieldStats `json:"field_statistics"`
	Results          []*Report             `json:"detailed_results"`
}

// BuildRunReport aggregates per-file reports into the run report. Results
// are sorted by filename so the report is stable across runs.
func BuildRunReport(reports []*Report, threshold float64) *RunReport {
	if len(reports) == 0 {
		return &RunReport{Summary: RunSummary{Threshold: threshold}, FieldStatistics: map[string]FieldStats{}}
	}

	sorted := make([]*Report, len(reports))
	copy(sorted, reports)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Filename < sorted[j].Filename })

	summary := RunSummary{TotalFiles: len(sorted), Threshold: threshold}
	best, worst := sorted[0], sorted[0]
	var accSum float64
	fieldAcc := make(map[string][]float64)

	for _, r := range sorted {
		accSum += r.Accuracy
		if r.Passed {
			summary.ValidFiles++
		}
		if r.Accuracy > best.Accuracy {
			best = r
		}
		if r.Accuracy < worst.Accuracy {
			worst = r
		}
		for key, fr := range r.Fields {
			if fr.Outcome == OutcomeExpectedMissing {
				continue
			}
			fieldAcc[key] = append(fieldAcc[key], fr.Accuracy)
		}
	}
	summary.InvalidFiles = summary.TotalFiles - summary.ValidFiles
	summary.SuccessRate = float64(summary.ValidFiles) / float64(summary.TotalFiles) * 100
	summary.AverageAccuracy = accSum / float64(summary.TotalFiles)

	stats := make(map[string]FieldStats, len(fieldAcc))
	for key, accs := range fieldAcc {
		st := FieldStats{MinAccuracy: accs[0], MaxAccuracy: accs[0], TotalSamples: len(accs)}
		var sum float64
		for _, a := range accs {
			sum += a
			if a < st.MinAccuracy {
				st.MinAccuracy = a
			}
			if a > st.MaxAccuracy {
				st.MaxAccuracy = a
			}
		}
		st.AverageAccuracy = sum / float64(len(accs))
		stats[key] = st
	}

	return &RunReport{
		Summary:          summary,
		BestPerformance:  FilePerformance{Filename: best.Filename, Accuracy: best.Accuracy},
		WorstPerformance: FilePerformance{Filename: worst.Filename, Accuracy: worst.Accuracy},
		FieldStatistics:  stats,
		Results:          sorted,
	}
}

// Save writes the report as indented JSON, creating parent directories.
func (r *RunReport) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}
