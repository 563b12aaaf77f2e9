// Package nlu provides the keyword based understanding of caller speech:
// text normalization, yes/no sentiment, intent detection, name extraction
// and FAQ lookup. Everything in this package is pure and safe for
// concurrent use.
package nlu

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes transcribed speech for matching: German lower
// casing, diacritic folding ("ö" -> "o", "ß" -> "ss") and whitespace
// collapsing. The result is only used for matching and is never spoken back.
// Normalize is idempotent.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	// Casers and transformers are stateful, so each call builds its own.
	s := cases.Lower(language.German).String(raw)
	s = strings.ReplaceAll(s, "ß", "ss")

	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}

	return strings.Join(strings.Fields(s), " ")
}

// tokenize splits normalized text into words, dropping punctuation.
func tokenize(normalized string) []string {
	return strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
