package llm

import (
	"context"

	"github.com/joseph-ayodele/bloodwork-sync/internal/record"
)

// ExtractRequest carries one PDF document to the model.
type ExtractRequest struct {
	PDF      []byte
	Filename string
}

// RecordExtractor is the interface the pipeline depends on. Implementations
// return the parsed record plus the raw JSON the model produced (kept for
// the run artifacts and for debugging).
type RecordExtractor interface {
	ExtractRecord(ctx context.Context, req ExtractRequest) (*record.Record, []byte, error)
}
