package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SaveResults writes the run's extraction results as indented JSON keyed by
// filename; failed documents carry an "error" entry instead of field data,
// so partial batches stay inspectable.
func SaveResults(path string, run *RunResult) error {
	out := make(map[string]any, len(run.Results))
	for _, r := range run.Results {
		switch {
		case r.Record != nil && r.Err != "":
			// extracted but the row write failed: keep both
			out[r.Filename] = map[string]any{"record": r.Record, "error": r.Err}
		case r.Record != nil:
			out[r.Filename] = r.Record
		default:
			out[r.Filename] = map[string]string{"error": r.Err}
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create results dir: %w", err)
		}
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}
