package record

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildRecordJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We send it to Gemini as a structured-output constraint and
// also use it locally to validate the model's reply. Every field is
// optional: the source documents legitimately omit values, and absence is
// meaningful downstream.
func BuildRecordJSONSchema() map[string]any {
	props := make(map[string]any, len(Fields))
	for _, f := range Fields {
		switch f.Kind {
		case KindString:
			props[f.Key] = map[string]any{"type": "string", "minLength": 1}
		case KindNumber:
			props[f.Key] = map[string]any{"type": "number"}
		case KindFlag:
			if f.Key == KeyHemoglobinopatia {
				// 0..9 code table (0=No ... 9=Indice Metzner <13)
				props[f.Key] = map[string]any{"type": "integer", "minimum": 0, "maximum": 9}
			} else {
				props[f.Key] = map[string]any{"type": "integer", "enum": []int{0, 1}}
			}
		}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// ParseRecord sanitizes raw model JSON, validates it against the record
// schema, and decodes it. Unknown keys have already been quarantined by the
// sanitize pass, so strict schema validation only rejects genuinely
// malformed values.
func ParseRecord(raw []byte) (*Record, []string, error) {
	cleaned, dropped, err := SanitizeRecordJSON(raw)
	if err != nil {
		return nil, dropped, err
	}
	if err := ValidateJSONAgainstSchema(BuildRecordJSONSchema(), cleaned); err != nil {
		return nil, dropped, err
	}
	var rec Record
	if err := json.Unmarshal(cleaned, &rec); err != nil {
		return nil, dropped, fmt.Errorf("unmarshal record: %w", err)
	}
	return &rec, dropped, nil
}
