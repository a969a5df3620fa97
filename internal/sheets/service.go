package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/joseph-ayodele/bloodwork-sync/internal/common"
)

// CellWrite is one cell mutation: tab title, 1-based row, 0-based column.
type CellWrite struct {
	Tab   string
	Row   int
	Col   int
	Value any
}

// API is the spreadsheet surface the index and applier depend on. The
// production implementation talks to the Google Sheets v4 API; tests use an
// in-memory fake.
type API interface {
	// Tabs lists the titles of every sheet/tab in the spreadsheet.
	Tabs(ctx context.Context, spreadsheetID string) ([]string, error)
	// Values reads all cell values of one tab as rows of strings.
	Values(ctx context.Context, spreadsheetID, tab string) ([][]string, error)
	// BatchUpdate applies every write in a single batch call and returns the
	// number of cells the service reports as updated.
	BatchUpdate(ctx context.Context, spreadsheetID string, writes []CellWrite) (int, error)
}

// Service implements API against the Google Sheets v4 API using
// service-account credentials.
type Service struct {
	svc    *sheetsapi.Service
	logger *slog.Logger
}

// NewService builds a Sheets client from a service-account credentials file.
// A missing file is reported as an access error up front rather than as an
// opaque HTTP failure on first use.
func NewService(ctx context.Context, credentialsFile string, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := os.Stat(credentialsFile); err != nil {
		return nil, common.NewAppError("SHEETS_AUTH",
			fmt.Sprintf("credentials file not found: %s (download a service account key from Google Cloud Console)", credentialsFile),
			common.ErrAccess)
	}
	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, common.NewAppError("SHEETS_AUTH", "failed to build sheets client", err)
	}
	logger.Info("sheets.auth.ok", "credentials_file", credentialsFile)
	return &Service{svc: svc, logger: logger}, nil
}

func (s *Service) Tabs(ctx context.Context, spreadsheetID string) ([]string, error) {
	resp, err := s.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return nil, wrapAccessError(err, spreadsheetID)
	}
	titles := make([]string, 0, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	s.logger.Debug("sheets.tabs", "spreadsheet_id", spreadsheetID, "count", len(titles))
	return titles, nil
}

func (s *Service) Values(ctx context.Context, spreadsheetID, tab string) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(spreadsheetID, fmt.Sprintf("'%s'", tab)).
		Context(ctx).Do()
	if err != nil {
		return nil, wrapAccessError(err, spreadsheetID)
	}
	rows := make([][]string, len(resp.Values))
	for i, r := range resp.Values {
		row := make([]string, len(r))
		for j, c := range r {
			row[j] = fmt.Sprint(c)
		}
		rows[i] = row
	}
	return rows, nil
}

func (s *Service) BatchUpdate(ctx context.Context, spreadsheetID string, writes []CellWrite) (int, error) {
	data := make([]*sheetsapi.ValueRange, 0, len(writes))
	for _, w := range writes {
		data = append(data, &sheetsapi.ValueRange{
			Range:  fmt.Sprintf("'%s'!%s%d", w.Tab, ColumnLetter(w.Col), w.Row),
			Values: [][]interface{}{{w.Value}},
		})
	}
	req := &sheetsapi.BatchUpdateValuesRequest{
		// Let Sheets interpret the value types instead of writing strings.
		ValueInputOption: "USER_ENTERED",
		Data:             data,
	}
	resp, err := s.svc.Spreadsheets.Values.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return 0, wrapAccessError(err, spreadsheetID)
	}
	return int(resp.TotalUpdatedCells), nil
}

// wrapAccessError maps Google API auth/permission failures onto the access
// error taxonomy; other errors pass through untouched.
func wrapAccessError(err error, spreadsheetID string) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	switch gerr.Code {
	case http.StatusUnauthorized:
		return common.NewAppError("SHEETS_AUTH", "credentials rejected; regenerate the service account key", common.ErrAccess)
	case http.StatusForbidden:
		return common.NewAppError("SHEETS_AUTH",
			fmt.Sprintf("spreadsheet %s is not shared with the service account; share it with the client_email from the credentials file", spreadsheetID),
			common.ErrAccess)
	case http.StatusNotFound:
		return common.NewAppError("SHEETS_AUTH",
			fmt.Sprintf("spreadsheet %s not found; use the ID from the sheet URL, not its name", spreadsheetID),
			common.ErrAccess)
	default:
		return err
	}
}

// ColumnLetter converts a 0-based column index to its A1 letter form.
func ColumnLetter(index int) string {
	result := ""
	for index >= 0 {
		result = string(rune('A'+index%26)) + result
		index = index/26 - 1
	}
	return result
}
