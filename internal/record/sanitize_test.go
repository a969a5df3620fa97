package record

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sanitized(t *testing.T, raw string) (map[string]any, []string) {
	t.Helper()
	out, dropped, err := SanitizeRecordJSON([]byte(raw))
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	return m, dropped
}

func TestSanitize_DropsNullsAndEmpties(t *testing.T) {
	m, dropped := sanitized(t, `{"NOMBRE":"Juan","HEMOGLOBINA":null,"HOSPITAL":"  "}`)

	assert.Equal(t, "Juan", m["NOMBRE"])
	assert.NotContains(t, m, "HEMOGLOBINA")
	assert.NotContains(t, m, "HOSPITAL")
	assert.Contains(t, dropped, "HEMOGLOBINA(null)")
	assert.Contains(t, dropped, "HOSPITAL(empty)")
}

func TestSanitize_SpanishDecimalComma(t *testing.T) {
	m, _ := sanitized(t, `{"HEMOGLOBINA":"13,2","GLUCOSA":"92"}`)

	assert.Equal(t, 13.2, m["HEMOGLOBINA"])
	assert.Equal(t, 92.0, m["GLUCOSA"])
}

func TestSanitize_FlagCoercions(t *testing.T) {
	m, _ := sanitized(t, `{"VIH":true,"VHC":false,"LUES":"1","SARAMPION":0}`)

	assert.Equal(t, 1.0, m["VIH"])
	assert.Equal(t, 0.0, m["VHC"])
	assert.Equal(t, 1.0, m["LUES"])
	assert.Equal(t, 0.0, m["SARAMPION"])
}

func TestSanitize_RejectsFractionalFlag(t *testing.T) {
	m, dropped := sanitized(t, `{"VIH":0.5}`)

	assert.NotContains(t, m, "VIH")
	assert.Contains(t, dropped, "VIH(type)")
}

func TestSanitize_StringifiesIdentifierNumbers(t *testing.T) {
	m, _ := sanitized(t, `{"NRO_HISTORIA_CLINICA":123456,"NRO_MUESTRA":"A-99"}`)

	assert.Equal(t, "123456", m["NRO_HISTORIA_CLINICA"])
	assert.Equal(t, "A-99", m["NRO_MUESTRA"])
}

func TestSanitize_UppercasesHospital(t *testing.T) {
	m, _ := sanitized(t, `{"HOSPITAL":"ramon y cajal"}`)
	assert.Equal(t, "RAMON Y CAJAL", m["HOSPITAL"])
}

func TestSanitize_QuarantinesUnknownKeys(t *testing.T) {
	m, dropped := sanitized(t, `{"NOMBRE":"Juan","EDAD":34,"comentario":"n/a"}`)

	assert.NotContains(t, m, "EDAD")
	assert.NotContains(t, m, "comentario")
	assert.Contains(t, dropped, "EDAD(unknown)")
	assert.Contains(t, dropped, "comentario(unknown)")
}

func TestSanitize_InvalidJSON(t *testing.T) {
	_, _, err := SanitizeRecordJSON([]byte(`{not json`))
	assert.Error(t, err)
}
