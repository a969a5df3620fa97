package record

// Field keys as they appear in the extraction JSON and expected-data files.
const (
	KeyNombre             = "NOMBRE"
	KeyApellidos          = "APELLIDOS"
	KeyHospital           = "HOSPITAL"
	KeyNroHistoriaClinica = "NRO_HISTORIA_CLINICA"
	KeyNroMuestra         = "NRO_MUESTRA"

	KeyHemoglobina           = "HEMOGLOBINA"
	KeyHematocrito           = "HEMATOCRITO"
	KeyVCM                   = "VCM"
	KeyADE                   = "ADE"
	KeyPlaquetas             = "PLAQUETAS"
	KeyLeucocitos            = "LEUCOCITOS"
	KeyEosinofilosTotales    = "EOSINOFILOS_TOTALES"
	KeyEosinofilosPorcentaje = "EOSINOFILOS_PORCENTAJE"
	KeyGlucosa               = "GLUCOSA"
	KeyCreatinina            = "CREATININA"
	KeyALT                   = "ALT"
	KeyAST                   = "AST"
	KeyGGT                   = "GGT"
	KeyColesterol            = "COLESTEROL"
	KeyFerritina             = "FERRITINA"

	KeyVIH              = "VIH"
	KeyVHA              = "VHA"
	KeyVHC              = "VHC"
	KeyLues             = "LUES"
	KeyStrongyloides    = "STRONGYLOIDES"
	KeySarampion        = "SARAMPION"
	KeySchistosoma      = "SCHISTOSOMA"
	KeyHemoglobinopatia = "HEMOGLOBINOPATIA"
)

// Kind classifies a field for comparison and cell formatting.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindFlag
)

// FieldSpec describes one field of the record: its JSON key, its kind, and
// the spreadsheet header fragment it maps to. Header matching is
// case-insensitive substring containment against the tab's header row;
// an empty Header means the field is never written to the sheet.
type FieldSpec struct {
	Key    string
	Kind   Kind
	Header string
}

// Fields is the fixed, ordered field registry. Identity fields come first,
// then the tracked lab values in spreadsheet column order (this order is
// also the copy-paste payload order), then fields the sheet does not track.
var Fields = []FieldSpec{
	{Key: KeyNombre, Kind: KindString},
	{Key: KeyApellidos, Kind: KindString},
	{Key: KeyHospital, Kind: KindString},
	{Key: KeyNroHistoriaClinica, Kind: KindString},
	{Key: KeyNroMuestra, Kind: KindString},

	{Key: KeyHemoglobina, Kind: KindNumber, Header: "Hb (g/dl) 12-18"},
	{Key: KeyHematocrito, Kind: KindNumber, Header: "Hto (%) 36-50"},
	{Key: KeyVCM, Kind: KindNumber, Header: "VCM (fl) (70-98)"},
	{Key: KeyADE, Kind: KindNumber, Header: "ADE (>16,5)"},
	{Key: KeyPlaquetas, Kind: KindNumber, Header: "Plaquetas (x10^3/µL) 100-450"},
	{Key: KeyLeucocitos, Kind: KindNumber, Header: "Leucos (x10^3/µL) 5-12"},
	{Key: KeyEosinofilosTotales, Kind: KindNumber, Header: "Eo. Totales (mayor o = 450)"},
	{Key: KeyEosinofilosPorcentaje, Kind: KindNumber, Header: "Eo (%) (mayor o = a 5)"},
	{Key: KeyGlucosa, Kind: KindNumber, Header: "Glu. (mg/dl) 60-110"},
	{Key: KeyCreatinina, Kind: KindNumber, Header: "Creatinina (mg/dl)"},
	{Key: KeyALT, Kind: KindNumber, Header: "ALT (U/L) >45"},
	{Key: KeyAST, Kind: KindNumber, Header: "AST (U/L) >37"},
	{Key: KeyGGT, Kind: KindNumber, Header: "GGT (U/L) > 55"},
	{Key: KeyColesterol, Kind: KindNumber, Header: "Col. T (100-200)"},
	{Key: KeyFerritina, Kind: KindNumber, Header: "Ferritina (15-120)"},
	{Key: KeyVIH, Kind: KindFlag, Header: "VIH"},
	{Key: KeyVHC, Kind: KindFlag, Header: "VHC"},
	{Key: KeyVHA, Kind: KindFlag, Header: "VHA"},
	{Key: KeyLues, Kind: KindFlag, Header: "Lues"},
	{Key: KeyStrongyloides, Kind: KindFlag, Header: "STRONGYLOIDES"},
	{Key: KeySarampion, Kind: KindFlag, Header: "SARAMPIÓN"},
	{Key: KeySchistosoma, Kind: KindFlag, Header: "SEROL SCHISTOSOMA"},

	{Key: KeyHemoglobinopatia, Kind: KindFlag},
}

// SheetFields returns, in payload/column order, the specs that map to a
// spreadsheet column.
func SheetFields() []FieldSpec {
	out := make([]FieldSpec, 0, len(Fields))
	for _, f := range Fields {
		if f.Header != "" {
			out = append(out, f)
		}
	}
	return out
}

// FieldByKey looks up a spec by its JSON key.
func FieldByKey(key string) (FieldSpec, bool) {
	for _, f := range Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldSpec{}, false
}
