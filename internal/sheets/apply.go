package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/bloodwork-sync/internal/match"
	"github.com/joseph-ayodele/bloodwork-sync/internal/record"
)

// Outcome reports what the applier did for one record.
type Outcome struct {
	Status       match.Status     `json:"status"`
	Location     match.Location   `json:"location,omitempty"`
	Candidates   []match.Location `json:"candidates,omitempty"`
	CellsUpdated int              `json:"cells_updated"`
	// Payload carries the tab-separated fallback values when no row was
	// written; the operator pastes it into the sheet by hand.
	Payload string `json:"payload,omitempty"`
}

// Applier writes matched records into their spreadsheet row, or renders the
// copy-paste fallback when matching failed.
type Applier struct {
	api    API
	logger *slog.Logger
}

func NewApplier(api API, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{api: api, logger: logger}
}

// Apply acts on a match result. For a Matched row it issues one batch
// values-update covering every present field that the tab's column map
// tracks, so a row is written in a single call. Fields the sheet does not
// track are skipped and only logged at debug level: the spreadsheet schema
// decides what is recorded. NotFound and Ambiguous perform no write and
// return the copy-paste payload instead.
func (a *Applier) Apply(ctx context.Context, ix *Index, rec *record.Record, res match.Result) (*Outcome, error) {
	switch res.Status {
	case match.StatusMatched:
		return a.applyMatched(ctx, ix, rec, res)
	case match.StatusNotFound:
		a.logger.Info("sheet.apply.not_found", "key", res.Key)
		return &Outcome{Status: match.StatusNotFound, Payload: RenderPayload(rec)}, nil
	case match.StatusAmbiguous:
		a.logger.Warn("sheet.apply.ambiguous", "key", res.Key, "candidates", len(res.Candidates))
		return &Outcome{
			Status:     match.StatusAmbiguous,
			Candidates: res.Candidates,
			Payload:    RenderPayload(rec),
		}, nil
	default:
		return nil, fmt.Errorf("unknown match status %q", res.Status)
	}
}

func (a *Applier) applyMatched(ctx context.Context, ix *Index, rec *record.Record, res match.Result) (*Outcome, error) {
	start := time.Now()
	loc := res.Location
	tab, ok := ix.Tab(loc.Tab)
	if !ok {
		return nil, fmt.Errorf("matched tab %q is not indexed", loc.Tab)
	}

	var writes []CellWrite
	for _, f := range record.SheetFields() {
		v, present := rec.Value(f.Key)
		if !present {
			continue
		}
		col, mapped := tab.Columns[f.Key]
		if !mapped {
			a.logger.Debug("sheet.apply.column_unmapped", "tab", loc.Tab, "field", f.Key)
			continue
		}
		writes = append(writes, CellWrite{
			Tab:   loc.Tab,
			Row:   loc.Row,
			Col:   col,
			Value: cellValue(f.Key, v),
		})
	}

	if len(writes) == 0 {
		a.logger.Warn("sheet.apply.nothing_to_write", "tab", loc.Tab, "row", loc.Row)
		return &Outcome{Status: match.StatusMatched, Location: loc}, nil
	}

	updated, err := a.api.BatchUpdate(ctx, ix.SpreadsheetID, writes)
	if err != nil {
		return nil, err
	}
	a.logger.Info("sheet.apply.ok",
		"tab", loc.Tab,
		"row", loc.Row,
		"cells", updated,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &Outcome{Status: match.StatusMatched, Location: loc, CellsUpdated: updated}, nil
}

// cellValue applies per-field unit conventions before writing. The sheet
// tracks total eosinophils in cells/µL while the lab reports x10^3/µL.
func cellValue(key string, v any) any {
	if key == record.KeyEosinofilosTotales {
		if f, ok := v.(float64); ok {
			return f * 1000
		}
	}
	return v
}
