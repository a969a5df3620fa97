package record

import "strings"

// Record is the normalized shape we want from the model for one lab report.
// Pointer fields are absent when the value does not appear in the document.
// Serology flags are 0/1-coded; HEMOGLOBINOPATIA uses the 0..9 code table
// from the extraction instructions.
type Record struct {
	Nombre             *string `json:"NOMBRE,omitempty"`
	Apellidos          *string `json:"APELLIDOS,omitempty"`
	Hospital           *string `json:"HOSPITAL,omitempty"`
	NroHistoriaClinica *string `json:"NRO_HISTORIA_CLINICA,omitempty"`
	NroMuestra         *string `json:"NRO_MUESTRA,omitempty"`

	Hemoglobina           *float64 `json:"HEMOGLOBINA,omitempty"`
	Hematocrito           *float64 `json:"HEMATOCRITO,omitempty"`
	VCM                   *float64 `json:"VCM,omitempty"`
	ADE                   *float64 `json:"ADE,omitempty"`
	Plaquetas             *float64 `json:"PLAQUETAS,omitempty"`
	Leucocitos            *float64 `json:"LEUCOCITOS,omitempty"`
	EosinofilosTotales    *float64 `json:"EOSINOFILOS_TOTALES,omitempty"`
	EosinofilosPorcentaje *float64 `json:"EOSINOFILOS_PORCENTAJE,omitempty"`
	Glucosa               *float64 `json:"GLUCOSA,omitempty"`
	Creatinina            *float64 `json:"CREATININA,omitempty"`
	ALT                   *float64 `json:"ALT,omitempty"`
	AST                   *float64 `json:"AST,omitempty"`
	GGT                   *float64 `json:"GGT,omitempty"`
	Colesterol            *float64 `json:"COLESTEROL,omitempty"`
	Ferritina             *float64 `json:"FERRITINA,omitempty"`

	VIH              *int `json:"VIH,omitempty"`
	VHA              *int `json:"VHA,omitempty"`
	VHC              *int `json:"VHC,omitempty"`
	Lues             *int `json:"LUES,omitempty"`
	Strongyloides    *int `json:"STRONGYLOIDES,omitempty"`
	Sarampion        *int `json:"SARAMPION,omitempty"`
	Schistosoma      *int `json:"SCHISTOSOMA,omitempty"`
	Hemoglobinopatia *int `json:"HEMOGLOBINOPATIA,omitempty"`
}

// Value returns the raw value for a field key and whether it is present.
// Numbers come back as float64, flags as int, strings as string.
func (r *Record) Value(key string) (any, bool) {
	switch key {
	case KeyNombre:
		return deref(r.Nombre)
	case KeyApellidos:
		return deref(r.Apellidos)
	case KeyHospital:
		return deref(r.Hospital)
	case KeyNroHistoriaClinica:
		return deref(r.NroHistoriaClinica)
	case KeyNroMuestra:
		return deref(r.NroMuestra)
	case KeyHemoglobina:
		return deref(r.Hemoglobina)
	case KeyHematocrito:
		return deref(r.Hematocrito)
	case KeyVCM:
		return deref(r.VCM)
	case KeyADE:
		return deref(r.ADE)
	case KeyPlaquetas:
		return deref(r.Plaquetas)
	case KeyLeucocitos:
		return deref(r.Leucocitos)
	case KeyEosinofilosTotales:
		return deref(r.EosinofilosTotales)
	case KeyEosinofilosPorcentaje:
		return deref(r.EosinofilosPorcentaje)
	case KeyGlucosa:
		return deref(r.Glucosa)
	case KeyCreatinina:
		return deref(r.Creatinina)
	case KeyALT:
		return deref(r.ALT)
	case KeyAST:
		return deref(r.AST)
	case KeyGGT:
		return deref(r.GGT)
	case KeyColesterol:
		return deref(r.Colesterol)
	case KeyFerritina:
		return deref(r.Ferritina)
	case KeyVIH:
		return deref(r.VIH)
	case KeyVHA:
		return deref(r.VHA)
	case KeyVHC:
		return deref(r.VHC)
	case KeyLues:
		return deref(r.Lues)
	case KeyStrongyloides:
		return deref(r.Strongyloides)
	case KeySarampion:
		return deref(r.Sarampion)
	case KeySchistosoma:
		return deref(r.Schistosoma)
	case KeyHemoglobinopatia:
		return deref(r.Hemoglobinopatia)
	}
	return nil, false
}

func deref[T any](p *T) (any, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}

// HasPatientName reports whether both name parts needed for matching are present.
func (r *Record) HasPatientName() bool {
	return r.Nombre != nil && strings.TrimSpace(*r.Nombre) != "" &&
		r.Apellidos != nil && strings.TrimSpace(*r.Apellidos) != ""
}

// PatientName returns the NOMBRE and APELLIDOS parts ("" when absent).
func (r *Record) PatientName() (nombre, apellidos string) {
	if r.Nombre != nil {
		nombre = *r.Nombre
	}
	if r.Apellidos != nil {
		apellidos = *r.Apellidos
	}
	return nombre, apellidos
}
