package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bloodwork-sync/internal/record"
)

type fakeIndex map[string][]Location

func (f fakeIndex) Find(name string) []Location { return f[name] }

func rec(nombre, apellidos string) *record.Record {
	return &record.Record{Nombre: &nombre, Apellidos: &apellidos}
}

func TestMatch_PrimaryKeyWins(t *testing.T) {
	// both name orders resolve, to different rows: the NOMBRE+APELLIDOS
	// order must win because it is tried first
	idx := fakeIndex{
		"juan garcia": {{Tab: "2024", Row: 5}},
		"garcia juan": {{Tab: "2023", Row: 9}},
	}

	res := Match(rec("Juan", "Garcia"), idx)

	require.Equal(t, StatusMatched, res.Status)
	assert.Equal(t, Location{Tab: "2024", Row: 5}, res.Location)
	assert.Equal(t, "juan garcia", res.Key)
}

func TestMatch_FallbackKey(t *testing.T) {
	// sheet stores APELLIDOS NOMBRE order
	idx := fakeIndex{
		"garcia rodriguez juan": {{Tab: "2024", Row: 10}},
	}

	res := Match(rec("Juan", "Garcia Rodriguez"), idx)

	require.Equal(t, StatusMatched, res.Status)
	assert.Equal(t, Location{Tab: "2024", Row: 10}, res.Location)
	assert.Equal(t, "garcia rodriguez juan", res.Key)
}

func TestMatch_NotFound(t *testing.T) {
	res := Match(rec("Juan", "Garcia"), fakeIndex{})

	assert.Equal(t, StatusNotFound, res.Status)
	assert.Empty(t, res.Candidates)
}

func TestMatch_AmbiguousListsAllCandidates(t *testing.T) {
	// duplicates across tabs are never picked among
	idx := fakeIndex{
		"juan perez": {{Tab: "2023", Row: 4}, {Tab: "2024", Row: 7}},
	}

	res := Match(rec("Juan", "Perez"), idx)

	require.Equal(t, StatusAmbiguous, res.Status)
	assert.Len(t, res.Candidates, 2)
	assert.Contains(t, res.Candidates, Location{Tab: "2023", Row: 4})
	assert.Contains(t, res.Candidates, Location{Tab: "2024", Row: 7})
}

func TestMatch_KeyToleratesCaseAndSpacing(t *testing.T) {
	idx := fakeIndex{
		"juan garcia": {{Tab: "2024", Row: 2}},
	}

	res := Match(rec("  JUAN ", "  garcía  "), idx)

	assert.Equal(t, StatusMatched, res.Status)
}

func TestMatch_MissingNameParts(t *testing.T) {
	empty := ""
	res := Match(&record.Record{Nombre: &empty}, fakeIndex{})
	assert.Equal(t, StatusNotFound, res.Status)
}
