package handlers

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeName lowercases and strips diacritics so that "Trébol" matches
// "trebol". Catalog names are Spanish and accent-heavy.
func normalizeName(name string) string {
	stripped, _, err := transform.String(stripAccents, name)
	if err != nil {
		stripped = name
	}
	return strings.ToLower(stripped)
}

func containsNormalized(haystack, normalizedNeedle string) bool {
	return strings.Contains(normalizeName(haystack), normalizedNeedle)
}
