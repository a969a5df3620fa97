package validate

import (
	"math"

	"github.com/joseph-ayodele/bloodwork-sync/internal/match"
	"github.com/joseph-ayodele/bloodwork-sync/internal/record"
)

// relTolerance is the relative numeric tolerance: values within ±1% of the
// expected value count as a match, absorbing rounding in model output.
const relTolerance = 0.01

// Outcome classifies one field comparison.
type Outcome string

const (
	OutcomeMatch            Outcome = "MATCH"
	OutcomeMismatch         Outcome = "MISMATCH"
	OutcomeExtractedMissing Outcome = "EXTRACTED_MISSING"
	OutcomeExpectedMissing  Outcome = "EXPECTED_MISSING"
)

// FieldResult is the comparison result for a single field.
type FieldResult struct {
	Outcome   Outcome `json:"outcome"`
	Expected  any     `json:"expected,omitempty"`
	Extracted any     `json:"extracted,omitempty"`
	// Accuracy grades how close the values are (100 = exact; numeric fields
	// degrade with the relative difference).
	Accuracy float64 `json:"accuracy"`
}

// Report is the per-file validation result. Immutable once computed.
type Report struct {
	Filename string                 `json:"filename"`
	Fields   map[string]FieldResult `json:"fields"`
	// Accuracy is matched fields / total expected fields x 100.
	Accuracy      float64  `json:"accuracy"`
	MissingFields []string `json:"missing_fields,omitempty"`
	ExtraFields   []string `json:"extra_fields,omitempty"`
	Passed        bool     `json:"passed"`
}

// Validator compares extracted records against expected reference records.
type Validator struct {
	threshold float64
}

func New(threshold float64) *Validator {
	return &Validator{threshold: threshold}
}

func (v *Validator) Threshold() float64 { return v.threshold }

// Validate compares every field present in expected against extracted.
// Expected is the ground truth, not a schema: fields only the extraction
// produced are reported as extra but never affect the score. Iteration
// follows the fixed field registry, so the result is independent of any
// map ordering.
func (v *Validator) Validate(filename string, extracted, expected *record.Record) *Report {
	rep := &Report{
		Filename: filename,
		Fields:   make(map[string]FieldResult),
	}

	total, matched := 0, 0
	for _, f := range record.Fields {
		expVal, expOK := expected.Value(f.Key)
		extVal, extOK := extracted.Value(f.Key)

		switch {
		case !expOK && !extOK:
			continue
		case !expOK:
			rep.Fields[f.Key] = FieldResult{Outcome: OutcomeExpectedMissing, Extracted: extVal, Accuracy: 0}
			rep.ExtraFields = append(rep.ExtraFields, f.Key)
			continue
		case !extOK:
			rep.Fields[f.Key] = FieldResult{Outcome: OutcomeExtractedMissing, Expected: expVal, Accuracy: 0}
			rep.MissingFields = append(rep.MissingFields, f.Key)
			total++
			continue
		}

		total++
		acc := fieldAccuracy(f.Kind, expVal, extVal)
		fr := FieldResult{Expected: expVal, Extracted: extVal, Accuracy: acc}
		if valuesMatch(f.Kind, expVal, extVal) {
			fr.Outcome = OutcomeMatch
			matched++
		} else {
			fr.Outcome = OutcomeMismatch
		}
		rep.Fields[f.Key] = fr
	}

	if total > 0 {
		rep.Accuracy = float64(matched) / float64(total) * 100
	}
	rep.Passed = rep.Accuracy >= v.threshold
	return rep
}

// valuesMatch decides the binary outcome for one field.
func valuesMatch(kind record.Kind, expected, extracted any) bool {
	switch kind {
	case record.KindNumber:
		e, ok1 := expected.(float64)
		x, ok2 := extracted.(float64)
		if !ok1 || !ok2 {
			return false
		}
		if e == 0 {
			return x == 0
		}
		return math.Abs(e-x)/math.Abs(e) <= relTolerance
	case record.KindFlag:
		return expected == extracted
	default:
		e, ok1 := expected.(string)
		x, ok2 := extracted.(string)
		return ok1 && ok2 && match.Normalize(e) == match.Normalize(x)
	}
}

// fieldAccuracy grades closeness: exact kinds are 0 or 100, numeric fields
// degrade linearly with the relative difference.
func fieldAccuracy(kind record.Kind, expected, extracted any) float64 {
	if kind == record.KindNumber {
		e, ok1 := expected.(float64)
		x, ok2 := extracted.(float64)
		if !ok1 || !ok2 {
			return 0
		}
		if e == 0 {
			if x == 0 {
				return 100
			}
			return 0
		}
		relDiff := math.Abs(e-x) / math.Abs(e) * 100
		return math.Min(100, math.Max(0, 100-relDiff))
	}
	if valuesMatch(kind, expected, extracted) {
		return 100
	}
	return 0
}
