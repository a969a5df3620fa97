package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes a person's name for comparison: lower-case, trim,
// collapse whitespace runs to a single space, strip diacritics. Total and
// idempotent; characters the transform cannot handle pass through unchanged.
func Normalize(name string) string {
	if s, _, err := transform.String(stripMarks, name); err == nil {
		name = s
	}
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.Fields(name), " ")
}
