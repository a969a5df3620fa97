package sheets

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/bloodwork-sync/internal/common"
	"github.com/joseph-ayodele/bloodwork-sync/internal/match"
	"github.com/joseph-ayodele/bloodwork-sync/internal/record"
)

// filiacionMarker is the header fragment that identifies the patient
// full-name column used as the join key.
const filiacionMarker = "FILIACION"

// ColumnMap maps record field keys to 0-based column indices for one tab.
// Each field maps to at most one column; the first matching header wins.
type ColumnMap map[string]int

// Tab holds what the index learned about one spreadsheet tab.
type Tab struct {
	Name         string
	FiliacionCol int
	Columns      ColumnMap
	Rows         int
}

// Index is a per-run snapshot of the spreadsheet: every tab with a
// FILIACION column, its column map, and all data rows keyed by normalized
// patient name. Row indices are positional, so the snapshot must not be
// reused across mutations that insert or delete rows.
type Index struct {
	SpreadsheetID string
	tabs          map[string]*Tab
	order         []string
	byName        map[string][]match.Location
	logger        *slog.Logger
}

// LoadIndex reads every tab of the spreadsheet and builds the name index.
// Tabs without a FILIACION header are skipped; if no tab has one the whole
// load fails with a schema error. Access failures surface as access errors
// from the API layer.
func LoadIndex(ctx context.Context, api API, spreadsheetID string, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	titles, err := api.Tabs(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}

	ix := &Index{
		SpreadsheetID: spreadsheetID,
		tabs:          make(map[string]*Tab, len(titles)),
		byName:        make(map[string][]match.Location),
		logger:        logger,
	}

	for _, title := range titles {
		rows, err := api.Values(ctx, spreadsheetID, title)
		if err != nil {
			if common.IsFatalSheetError(err) {
				return nil, err
			}
			logger.Warn("sheet.index.tab_read_failed", "tab", title, "error", err)
			continue
		}
		if len(rows) == 0 {
			logger.Debug("sheet.index.tab_empty", "tab", title)
			continue
		}

		header := rows[0]
		filCol := findFiliacionColumn(header)
		if filCol < 0 {
			logger.Debug("sheet.index.no_filiacion", "tab", title)
			continue
		}

		tab := &Tab{
			Name:         title,
			FiliacionCol: filCol,
			Columns:      buildColumnMap(header),
			Rows:         len(rows) - 1,
		}
		ix.tabs[title] = tab
		ix.order = append(ix.order, title)

		// data rows start at spreadsheet row 2
		for i, row := range rows[1:] {
			if filCol >= len(row) {
				continue
			}
			name := match.Normalize(row[filCol])
			if name == "" {
				continue
			}
			loc := match.Location{Tab: title, Row: i + 2}
			ix.byName[name] = append(ix.byName[name], loc)
		}
		logger.Debug("sheet.index.tab_ok", "tab", title, "rows", tab.Rows, "mapped_columns", len(tab.Columns))
	}

	if len(ix.tabs) == 0 {
		return nil, common.NewAppError("SHEETS_SCHEMA",
			"no tab contains a FILIACION header; cannot locate patient rows", common.ErrSchema)
	}

	logger.Info("sheet.index.ok",
		"spreadsheet_id", spreadsheetID,
		"tabs", len(ix.tabs),
		"patients", len(ix.byName),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return ix, nil
}

// Find returns every row across all tabs indexed under the normalized name.
func (ix *Index) Find(normalizedName string) []match.Location {
	return ix.byName[normalizedName]
}

// Tab returns the indexed metadata for a tab title.
func (ix *Index) Tab(name string) (*Tab, bool) {
	t, ok := ix.tabs[name]
	return t, ok
}

// TabNames returns the indexed tab titles in spreadsheet order.
func (ix *Index) TabNames() []string {
	return ix.order
}

func findFiliacionColumn(header []string) int {
	for i, cell := range header {
		if strings.Contains(strings.ToUpper(cell), filiacionMarker) {
			return i
		}
	}
	return -1
}

// buildColumnMap resolves each tracked field's header fragment against the
// tab's header row with case-insensitive containment, first match wins.
func buildColumnMap(header []string) ColumnMap {
	lowered := make([]string, len(header))
	for i, h := range header {
		lowered[i] = strings.ToLower(h)
	}
	cm := make(ColumnMap)
	for _, f := range record.SheetFields() {
		fragment := strings.ToLower(f.Header)
		for i, h := range lowered {
			if strings.Contains(h, fragment) {
				cm[f.Key] = i
				break
			}
		}
	}
	return cm
}
