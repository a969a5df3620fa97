package gemini

import "strings"

// systemInstructions builds the extraction instructions for blood-test
// reports from the Canary Islands hospital network.
func systemInstructions() string {
	parts := []string{
		"You are a clinical laboratory report parser. Return ONLY JSON that matches the provided schema.",
		"Documents are Spanish blood-test reports; field names in the schema use the lab's Spanish labels.",
		"APELLIDOS must combine first and second surname when the report lists them separately.",
		"HOSPITAL must be one of: NEGRIN, INSULAR, FUERTEVENTURA, LANZAROTE.",
		"NRO_HISTORIA_CLINICA and NRO_MUESTRA are identifiers: return them as strings, never as numbers.",
		"Numeric results use the units printed on the report (g/dl, %, fl, x10^3/µL, mg/dl, U/L, ng/mL); convert decimal commas to dots.",
		"Serology results (VIH, VHA, VHC, LUES, STRONGYLOIDES, SARAMPION, SCHISTOSOMA) are 1 for positive, 0 for negative; omit the field when the test is not in the report.",
		"HEMOGLOBINOPATIA uses the numeric code table: 0=No, 1=DREPANOCITOSIS, 2=A-TALASEMIA, 3=B-TALASEMIA MINOR, 4=RASGO HB S, 5=RASGO HB C, 6=PERSISTENCIA HB F, 7=homocigosis HbC, 8=portador Hb de HOPE, 9=Indice Metzner <13.",
		"Never output null. If a value is not present in the document, omit the field.",
	}
	return strings.Join(parts, " ")
}

func userPrompt(filename string) string {
	var b strings.Builder
	b.WriteString("Filename: ")
	b.WriteString(filename)
	b.WriteString("\n\nExtract the blood test data from the attached PDF report according to the system instructions. Return the data in the specified structured format.")
	return b.String()
}
