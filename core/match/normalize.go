package match

import (
	"strings"
	"unicode"
)

// organizationalSuffixes are legal/organizational suffix tokens removed
// during normalization, matched as whole words after lower-casing.
var organizationalSuffixes = map[string]bool{
	"inc":         true,
	"llc":         true,
	"corp":        true,
	"ltd":         true,
	"co":          true,
	"foundation":  true,
	"fund":        true,
	"association": true,
	"committee":   true,
	"pac":         true,
}

// Normalize produces the canonical comparison form of an entity name:
// lower-cased, punctuation stripped, organizational suffix tokens removed,
// whitespace collapsed and trimmed. It is pure and never fails; malformed
// input reduces to the empty string.
func Normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	fields := strings.Fields(b.String())
	kept := fields[:0]
	for _, f := range fields {
		if !organizationalSuffixes[f] {
			kept = append(kept, f)
		}
	}

	return strings.Join(kept, " ")
}
