package export

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/bloodwork-sync/internal/record"
)

func strp(s string) *string { return &s }
func fp(f float64) *float64 { return &f }

func TestWorkbookBytes(t *testing.T) {
	rows := []Row{
		{
			Filename: "a.pdf",
			Record: &record.Record{
				Nombre:      strp("Juan"),
				Apellidos:   strp("Garcia"),
				Hemoglobina: fp(13.2),
			},
		},
		{Filename: "b.pdf", Err: "extraction failed"},
	}

	b, err := NewService(slog.New(slog.DiscardHandler)).WorkbookBytes(rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Extractions"}, f.GetSheetList())

	cell, err := f.GetCellValue("Extractions", "A1")
	require.NoError(t, err)
	assert.Equal(t, "File", cell)

	cell, err = f.GetCellValue("Extractions", "B1")
	require.NoError(t, err)
	assert.Equal(t, record.KeyNombre, cell)

	cell, err = f.GetCellValue("Extractions", "A2")
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", cell)

	cell, err = f.GetCellValue("Extractions", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Juan", cell)

	// error lands in the last column for the failed document
	lastCol, err := excelize.ColumnNumberToName(1 + len(record.Fields) + 1)
	require.NoError(t, err)
	cell, err = f.GetCellValue("Extractions", lastCol+"3")
	require.NoError(t, err)
	assert.Equal(t, "extraction failed", cell)
}

func TestWorkbookBytes_NoRows(t *testing.T) {
	b, err := NewService(nil).WorkbookBytes(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, b)
}
