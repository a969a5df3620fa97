package sheets

import (
	"strconv"
	"strings"

	"github.com/joseph-ayodele/bloodwork-sync/internal/record"
)

// PayloadHeaders returns the spreadsheet column labels in payload order,
// tab-separated, for operator reference above the values line.
func PayloadHeaders() string {
	fields := record.SheetFields()
	headers := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = f.Header
	}
	return strings.Join(headers, "\t")
}

// RenderPayload renders a record as one tab-separated line in the fixed
// spreadsheet column order, ready to paste into a row by hand. Absent
// fields stay empty so the paste keeps column alignment. Numbers use the
// Spanish decimal comma, matching the sheet's locale.
func RenderPayload(rec *record.Record) string {
	fields := record.SheetFields()
	values := make([]string, len(fields))
	for i, f := range fields {
		v, ok := rec.Value(f.Key)
		if !ok {
			continue
		}
		switch t := cellValue(f.Key, v).(type) {
		case float64:
			values[i] = FormatSpanishNumber(t)
		case int:
			values[i] = strconv.Itoa(t)
		case string:
			values[i] = t
		}
	}
	return strings.Join(values, "\t")
}

// FormatSpanishNumber formats a number with a comma decimal separator and
// no trailing zeros.
func FormatSpanishNumber(v float64) string {
	return strings.ReplaceAll(strconv.FormatFloat(v, 'f', -1, 64), ".", ",")
}
