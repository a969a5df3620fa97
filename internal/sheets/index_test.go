package sheets

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bloodwork-sync/internal/common"
	"github.com/joseph-ayodele/bloodwork-sync/internal/match"
	"github.com/joseph-ayodele/bloodwork-sync/internal/record"
)

type fakeAPI struct {
	tabs      []string
	values    map[string][][]string
	valuesErr map[string]error
	batches   [][]CellWrite
	batchErr  error
	updated   int
}

func (f *fakeAPI) Tabs(_ context.Context, _ string) ([]string, error) {
	return f.tabs, nil
}

func (f *fakeAPI) Values(_ context.Context, _ string, tab string) ([][]string, error) {
	if err := f.valuesErr[tab]; err != nil {
		return nil, err
	}
	return f.values[tab], nil
}

func (f *fakeAPI) BatchUpdate(_ context.Context, _ string, writes []CellWrite) (int, error) {
	if f.batchErr != nil {
		return 0, f.batchErr
	}
	f.batches = append(f.batches, writes)
	if f.updated > 0 {
		return f.updated, nil
	}
	return len(writes), nil
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestLoadIndex_BuildsNameIndex(t *testing.T) {
	api := &fakeAPI{
		tabs: []string{"2024"},
		values: map[string][][]string{
			"2024": {
				{"Nº", "FILIACION", "Hb (g/dl) 12-18", "VIH"},
				{"1", "GARCIA JUAN", "13,2", ""},
				{"2", "Pérez   Ana", "", "0"},
			},
		},
	}

	ix, err := LoadIndex(context.Background(), api, "sheet-1", discard())
	require.NoError(t, err)

	assert.Equal(t, []string{"2024"}, ix.TabNames())

	tab, ok := ix.Tab("2024")
	require.True(t, ok)
	assert.Equal(t, 1, tab.FiliacionCol)
	assert.Equal(t, 2, tab.Rows)

	// data rows start at spreadsheet row 2
	assert.Equal(t, []match.Location{{Tab: "2024", Row: 2}}, ix.Find("garcia juan"))
	assert.Equal(t, []match.Location{{Tab: "2024", Row: 3}}, ix.Find("perez ana"))
	assert.Nil(t, ix.Find("nobody here"))
}

func TestLoadIndex_SkipsTabsWithoutFiliacion(t *testing.T) {
	api := &fakeAPI{
		tabs: []string{"Notas", "2024"},
		values: map[string][][]string{
			"Notas": {{"fecha", "comentario"}},
			"2024": {
				{"FILIACION"},
				{"GARCIA JUAN"},
			},
		},
	}

	ix, err := LoadIndex(context.Background(), api, "sheet-1", discard())
	require.NoError(t, err)
	assert.Equal(t, []string{"2024"}, ix.TabNames())
	_, ok := ix.Tab("Notas")
	assert.False(t, ok)
}

func TestLoadIndex_NoFiliacionAnywhereIsSchemaError(t *testing.T) {
	api := &fakeAPI{
		tabs: []string{"Notas"},
		values: map[string][][]string{
			"Notas": {{"fecha", "comentario"}},
		},
	}

	_, err := LoadIndex(context.Background(), api, "sheet-1", discard())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSchema)
}

func TestLoadIndex_NonFatalTabReadFailureSkipsTab(t *testing.T) {
	api := &fakeAPI{
		tabs: []string{"Broken", "2024"},
		values: map[string][][]string{
			"2024": {
				{"FILIACION"},
				{"GARCIA JUAN"},
			},
		},
		valuesErr: map[string]error{"Broken": errors.New("transient")},
	}

	ix, err := LoadIndex(context.Background(), api, "sheet-1", discard())
	require.NoError(t, err)
	assert.Equal(t, []string{"2024"}, ix.TabNames())
}

func TestLoadIndex_FatalAccessErrorAborts(t *testing.T) {
	fatal := common.NewAppError("SHEETS_AUTH", "no access", common.ErrAccess)
	api := &fakeAPI{
		tabs:      []string{"2024"},
		valuesErr: map[string]error{"2024": fatal},
	}

	_, err := LoadIndex(context.Background(), api, "sheet-1", discard())
	assert.ErrorIs(t, err, common.ErrAccess)
}

func TestLoadIndex_DuplicateNamesAcrossTabs(t *testing.T) {
	api := &fakeAPI{
		tabs: []string{"2023", "2024"},
		values: map[string][][]string{
			"2023": {
				{"FILIACION"},
				{"PEREZ JUAN"},
			},
			"2024": {
				{"FILIACION"},
				{"perez juan"},
			},
		},
	}

	ix, err := LoadIndex(context.Background(), api, "sheet-1", discard())
	require.NoError(t, err)

	locs := ix.Find("perez juan")
	require.Len(t, locs, 2)
	assert.Contains(t, locs, match.Location{Tab: "2023", Row: 2})
	assert.Contains(t, locs, match.Location{Tab: "2024", Row: 2})
}

func TestBuildColumnMap_FirstMatchWins(t *testing.T) {
	header := []string{
		"FILIACION",
		"Hb (g/dl) 12-18",
		"Hb (g/dl) 12-18 duplicada",
		"vih resultado",
	}

	cm := buildColumnMap(header)

	assert.Equal(t, 1, cm[record.KeyHemoglobina])
	assert.Equal(t, 3, cm[record.KeyVIH])
	_, ok := cm[record.KeyGlucosa]
	assert.False(t, ok)
}

func TestColumnLetter(t *testing.T) {
	assert.Equal(t, "A", ColumnLetter(0))
	assert.Equal(t, "Z", ColumnLetter(25))
	assert.Equal(t, "AA", ColumnLetter(26))
	assert.Equal(t, "AZ", ColumnLetter(51))
	assert.Equal(t, "BA", ColumnLetter(52))
}
