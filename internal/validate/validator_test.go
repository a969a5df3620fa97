package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bloodwork-sync/internal/record"
)

func strp(s string) *string { return &s }
func fp(f float64) *float64 { return &f }
func ip(i int) *int         { return &i }

func TestValidate_ExactAndTolerantNumbers(t *testing.T) {
	expected := &record.Record{Hemoglobina: fp(98), Glucosa: fp(100)}
	extracted := &record.Record{Hemoglobina: fp(98.0), Glucosa: fp(100.9)}

	rep := New(80).Validate("a.pdf", extracted, expected)

	assert.Equal(t, OutcomeMatch, rep.Fields[record.KeyHemoglobina].Outcome)
	// within the 1% relative tolerance
	assert.Equal(t, OutcomeMatch, rep.Fields[record.KeyGlucosa].Outcome)
	assert.Equal(t, 100.0, rep.Accuracy)
	assert.True(t, rep.Passed)
}

func TestValidate_NumberOutsideTolerance(t *testing.T) {
	expected := &record.Record{Glucosa: fp(100)}
	extracted := &record.Record{Glucosa: fp(103)}

	rep := New(80).Validate("a.pdf", extracted, expected)

	fr := rep.Fields[record.KeyGlucosa]
	assert.Equal(t, OutcomeMismatch, fr.Outcome)
	// graded accuracy degrades with the relative difference
	assert.InDelta(t, 97.0, fr.Accuracy, 0.001)
	assert.Equal(t, 0.0, rep.Accuracy)
	assert.False(t, rep.Passed)
}

func TestValidate_ZeroExpectedValue(t *testing.T) {
	expected := &record.Record{EosinofilosTotales: fp(0)}

	rep := New(80).Validate("a.pdf", &record.Record{EosinofilosTotales: fp(0)}, expected)
	assert.Equal(t, OutcomeMatch, rep.Fields[record.KeyEosinofilosTotales].Outcome)

	rep = New(80).Validate("a.pdf", &record.Record{EosinofilosTotales: fp(0.1)}, expected)
	assert.Equal(t, OutcomeMismatch, rep.Fields[record.KeyEosinofilosTotales].Outcome)
}

func TestValidate_StringsCompareNormalized(t *testing.T) {
	expected := &record.Record{Nombre: strp("José María")}
	extracted := &record.Record{Nombre: strp("  jose   maria ")}

	rep := New(80).Validate("a.pdf", extracted, expected)
	assert.Equal(t, OutcomeMatch, rep.Fields[record.KeyNombre].Outcome)
}

func TestValidate_FlagsCompareExactly(t *testing.T) {
	expected := &record.Record{VIH: ip(0), Lues: ip(1)}
	extracted := &record.Record{VIH: ip(0), Lues: ip(0)}

	rep := New(80).Validate("a.pdf", extracted, expected)

	assert.Equal(t, OutcomeMatch, rep.Fields[record.KeyVIH].Outcome)
	assert.Equal(t, OutcomeMismatch, rep.Fields[record.KeyLues].Outcome)
	assert.Equal(t, 50.0, rep.Accuracy)
}

func TestValidate_MissingFieldCountsAgainstScore(t *testing.T) {
	expected := &record.Record{Hemoglobina: fp(13.2), Glucosa: fp(92)}
	extracted := &record.Record{Hemoglobina: fp(13.2)}

	rep := New(80).Validate("a.pdf", extracted, expected)

	assert.Equal(t, OutcomeExtractedMissing, rep.Fields[record.KeyGlucosa].Outcome)
	assert.Equal(t, []string{record.KeyGlucosa}, rep.MissingFields)
	assert.Equal(t, 50.0, rep.Accuracy)
}

func TestValidate_ExtraFieldNeverAffectsScore(t *testing.T) {
	expected := &record.Record{Hemoglobina: fp(13.2)}
	extracted := &record.Record{Hemoglobina: fp(13.2), Ferritina: fp(80)}

	rep := New(80).Validate("a.pdf", extracted, expected)

	assert.Equal(t, OutcomeExpectedMissing, rep.Fields[record.KeyFerritina].Outcome)
	assert.Equal(t, []string{record.KeyFerritina}, rep.ExtraFields)
	assert.Equal(t, 100.0, rep.Accuracy)
}

func TestValidate_EmptyRecords(t *testing.T) {
	rep := New(80).Validate("a.pdf", &record.Record{}, &record.Record{})
	assert.Zero(t, rep.Accuracy)
	assert.Empty(t, rep.Fields)
}

func TestValidate_Deterministic(t *testing.T) {
	expected := &record.Record{
		Nombre:      strp("Juan"),
		Hemoglobina: fp(13.2),
		Glucosa:     fp(92),
		VIH:         ip(0),
	}
	extracted := &record.Record{
		Nombre:      strp("Juan"),
		Hemoglobina: fp(13.1),
		Glucosa:     fp(92),
		VIH:         ip(1),
	}

	first := New(80).Validate("a.pdf", extracted, expected)
	for i := 0; i < 5; i++ {
		again := New(80).Validate("a.pdf", extracted, expected)
		assert.Equal(t, first, again)
	}
}

func TestBuildRunReport_Aggregates(t *testing.T) {
	v := New(80)
	expected := &record.Record{Hemoglobina: fp(13.2), Glucosa: fp(92)}

	good := v.Validate("b.pdf", &record.Record{Hemoglobina: fp(13.2), Glucosa: fp(92)}, expected)
	bad := v.Validate("a.pdf", &record.Record{Hemoglobina: fp(13.2)}, expected)

	report := BuildRunReport([]*Report{good, bad}, 80)

	s := report.Summary
	assert.Equal(t, 2, s.TotalFiles)
	assert.Equal(t, 1, s.ValidFiles)
	assert.Equal(t, 1, s.InvalidFiles)
	assert.Equal(t, 50.0, s.SuccessRate)
	assert.Equal(t, 75.0, s.AverageAccuracy)

	assert.Equal(t, "b.pdf", report.BestPerformance.Filename)
	assert.Equal(t, "a.pdf", report.WorstPerformance.Filename)

	// sorted by filename for stable output
	require.Len(t, report.Results, 2)
	assert.Equal(t, "a.pdf", report.Results[0].Filename)

	hb := report.FieldStatistics[record.KeyHemoglobina]
	assert.Equal(t, 2, hb.TotalSamples)
	assert.Equal(t, 100.0, hb.AverageAccuracy)

	glu := report.FieldStatistics[record.KeyGlucosa]
	assert.Equal(t, 2, glu.TotalSamples)
	assert.Equal(t, 50.0, glu.AverageAccuracy)
}

func TestBuildRunReport_Empty(t *testing.T) {
	report := BuildRunReport(nil, 80)
	assert.Zero(t, report.Summary.TotalFiles)
	assert.NotNil(t, report.FieldStatistics)
}
