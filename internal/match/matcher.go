package match

import (
	"fmt"

	"github.com/joseph-ayodele/bloodwork-sync/internal/record"
)

// Location identifies one spreadsheet row: tab title plus 1-based row index.
type Location struct {
	Tab string `json:"tab"`
	Row int    `json:"row"`
}

func (l Location) String() string {
	return fmt.Sprintf("'%s' row %d", l.Tab, l.Row)
}

// Index is the lookup the matcher depends on. Find returns every row across
// all tabs whose indexed (normalized) FILIACION equals the query.
type Index interface {
	Find(normalizedName string) []Location
}

// Status tags the outcome of a match attempt.
type Status string

const (
	StatusMatched   Status = "MATCHED"
	StatusNotFound  Status = "NOT_FOUND"
	StatusAmbiguous Status = "AMBIGUOUS"
)

// Result is the tagged outcome of matching one record against the index.
// Matched carries exactly one location; Ambiguous carries two or more.
type Result struct {
	Status     Status     `json:"status"`
	Location   Location   `json:"location,omitempty"`
	Candidates []Location `json:"candidates,omitempty"`
	Key        string     `json:"key"`
}

// Match locates the spreadsheet row for a record's patient. The primary key
// is normalize(NOMBRE + " " + APELLIDOS); only when it matches nothing is
// the reversed key normalize(APELLIDOS + " " + NOMBRE) tried, so the primary
// order always wins when both would match. Duplicate rows are never guessed
// among: two or more hits on the winning key yield Ambiguous with every
// candidate listed.
func Match(rec *record.Record, idx Index) Result {
	nombre, apellidos := rec.PatientName()
	primary := Normalize(nombre + " " + apellidos)
	fallback := Normalize(apellidos + " " + nombre)

	key := primary
	rows := idx.Find(primary)
	if len(rows) == 0 && fallback != primary {
		key = fallback
		rows = idx.Find(fallback)
	}

	switch {
	case len(rows) == 0:
		return Result{Status: StatusNotFound, Key: primary}
	case len(rows) == 1:
		return Result{Status: StatusMatched, Location: rows[0], Key: key}
	default:
		return Result{Status: StatusAmbiguous, Candidates: rows, Key: key}
	}
}
