package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	started_at     TEXT NOT NULL,
	finished_at    TEXT,
	input_path     TEXT NOT NULL,
	spreadsheet_id TEXT,
	documents      INTEGER NOT NULL DEFAULT 0,
	succeeded      INTEGER NOT NULL DEFAULT 0,
	failed         INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS documents (
	id             TEXT PRIMARY KEY,
	run_id         TEXT NOT NULL REFERENCES runs(id),
	filename       TEXT NOT NULL,
	status         TEXT NOT NULL,
	match_status   TEXT,
	sheet_tab      TEXT,
	sheet_row      INTEGER,
	cells_updated  INTEGER NOT NULL DEFAULT 0,
	extracted_json TEXT,
	error          TEXT,
	created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_run ON documents(run_id);
`

// Store is the SQLite-backed run history: one row per batch run, one row
// per processed document. It makes extraction and sheet-update outcomes
// auditable after the fact.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// DocumentRecord is one processed document's outcome.
type DocumentRecord struct {
	RunID         string
	Filename      string
	Status        string // EXTRACTED, UPDATED, FALLBACK, ERROR
	MatchStatus   string
	SheetTab      string
	SheetRow      int
	CellsUpdated  int
	ExtractedJSON []byte
	Err           string
}

// Open opens (or creates) the history database at path and applies the
// schema. WAL mode keeps concurrent readers cheap.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying history schema: %w", err)
	}
	logger.Debug("history.open", "path", path)
	return &Store{db: db, logger: logger}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun records the start of a batch run.
func (s *Store) BeginRun(ctx context.Context, runID, inputPath, spreadsheetID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, input_path, spreadsheet_id) VALUES (?, ?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339), inputPath, spreadsheetID)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun records the final counters for a run.
func (s *Store) FinishRun(ctx context.Context, runID string, documents, succeeded, failed int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, documents = ?, succeeded = ?, failed = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), documents, succeeded, failed, runID)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

// RecordDocument persists one document outcome.
func (s *Store) RecordDocument(ctx context.Context, doc DocumentRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents
		 (id, run_id, filename, status, match_status, sheet_tab, sheet_row, cells_updated, extracted_json, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), doc.RunID, doc.Filename, doc.Status,
		nullable(doc.MatchStatus), nullable(doc.SheetTab), doc.SheetRow,
		doc.CellsUpdated, nullableBytes(doc.ExtractedJSON), nullable(doc.Err),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// RunDocuments returns the recorded outcomes for one run, oldest first.
func (s *Store) RunDocuments(ctx context.Context, runID string) ([]DocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT filename, status, COALESCE(match_status, ''), COALESCE(sheet_tab, ''),
		        COALESCE(sheet_row, 0), cells_updated, COALESCE(extracted_json, ''), COALESCE(error, '')
		 FROM documents WHERE run_id = ? ORDER BY created_at`, runID)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentRecord
	for rows.Next() {
		d := DocumentRecord{RunID: runID}
		var extracted string
		if err := rows.Scan(&d.Filename, &d.Status, &d.MatchStatus, &d.SheetTab,
			&d.SheetRow, &d.CellsUpdated, &extracted, &d.Err); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if extracted != "" {
			d.ExtractedJSON = []byte(extracted)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
