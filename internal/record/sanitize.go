package record

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SanitizeRecordJSON normalizes a raw model reply so the strict record
// schema can validate it:
//   - drops null / empty-string fields (absence is the signal, never null)
//   - coerces numeric strings (including Spanish decimal commas) to numbers
//   - coerces booleans and "0"/"1" strings on serology flags to integers
//   - stringifies clinical-history and sample numbers the model returned as
//     numbers
//   - quarantines unknown keys instead of propagating them
//
// It returns the cleaned JSON plus the list of keys it dropped or rewrote.
func SanitizeRecordJSON(doc []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)
	drop := func(k, why string) {
		delete(m, k)
		dropped = append(dropped, k+"("+why+")")
	}

	for _, f := range Fields {
		v, ok := m[f.Key]
		if !ok {
			continue
		}
		if v == nil {
			drop(f.Key, "null")
			continue
		}
		switch f.Kind {
		case KindString:
			s, ok := stringify(v)
			if !ok || strings.TrimSpace(s) == "" {
				drop(f.Key, "empty")
				continue
			}
			s = strings.TrimSpace(s)
			if f.Key == KeyHospital {
				s = strings.ToUpper(s)
			}
			m[f.Key] = s
		case KindNumber:
			n, ok := numify(v)
			if !ok {
				drop(f.Key, "type")
				continue
			}
			m[f.Key] = n
		case KindFlag:
			n, ok := flagify(v)
			if !ok {
				drop(f.Key, "type")
				continue
			}
			m[f.Key] = n
		}
	}

	// quarantine anything outside the fixed field set
	for k := range m {
		if _, known := FieldByKey(k); !known {
			drop(k, "unknown")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	return out, dropped, nil
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

func numify(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		// tolerate Spanish decimal commas from the source documents
		s = strings.ReplaceAll(s, ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func flagify(v any) (int, bool) {
	switch t := v.(type) {
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
