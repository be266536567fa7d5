// Package normalize turns the free-text fields of a scraped posting into
// typed values. Every function here is total: malformed input yields a safe
// default, never an error or a panic.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fold lower-cases s and strips combining marks so "Café" and "cafe" compare equal.
func fold(s string) string {
	//chain is stateful, build one per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	return strings.ToLower(result)
}
