package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joseph-ayodele/bloodwork-sync/internal/common"
	"github.com/joseph-ayodele/bloodwork-sync/internal/sheets"
)

// sheetcheck probes a spreadsheet before a batch run: it verifies the
// service-account credentials, confirms at least one tab carries a
// FILIACION column, and prints what the index resolved per tab.
func main() {
	var (
		spreadsheetID = flag.String("spreadsheet-id", "", "Google Sheets spreadsheet ID")
		credentials   = flag.String("credentials", "", "service account credentials JSON path")
	)
	flag.Parse()

	cfg := common.LoadConfig()
	if *spreadsheetID != "" {
		cfg.Sheets.SpreadsheetID = *spreadsheetID
	}
	if *credentials != "" {
		cfg.Sheets.CredentialsFile = *credentials
	}
	if cfg.Sheets.SpreadsheetID == "" {
		log.Println("ERROR: spreadsheet ID is required (flag -spreadsheet-id or env SPREADSHEET_ID)")
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	svc, err := sheets.NewService(ctx, cfg.Sheets.CredentialsFile, logger)
	if err != nil {
		log.Fatalf("sheets auth: FAIL (%v)", err)
	}
	log.Println("sheets auth: OK")

	ix, err := sheets.LoadIndex(ctx, svc, cfg.Sheets.SpreadsheetID, logger)
	if err != nil {
		log.Fatalf("sheet schema: FAIL (%v)", err)
	}
	log.Println("sheet schema: OK")

	for _, name := range ix.TabNames() {
		tab, _ := ix.Tab(name)
		log.Printf("- tab %q: %d data rows, FILIACION at column %s, %d mapped columns",
			tab.Name, tab.Rows, sheets.ColumnLetter(tab.FiliacionCol), len(tab.Columns))
	}
}
