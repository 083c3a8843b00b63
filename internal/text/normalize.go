// Package text canonicalizes free-form Arabic answers so that
// semantically identical strings compare equal: "أحمد" and "احمد" are
// the same name, "مدرسة" and "مدرسه" the same word.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes (NFD), drops all combining marks, recomposes.
// This removes harakat and also folds hamza carriers (أ إ آ ؤ ئ) to
// their base letters, since the hamza decomposes to a combining mark.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldLetter maps the remaining Arabic letter variants that do not
// decompose, plus both Arabic digit scripts, to canonical forms.
func foldLetter(r rune) rune {
	switch r {
	case 'ٱ': // alef wasla, no NFD decomposition
		return 'ا'
	case 'ة': // taa marbuta reads like haa at word end
		return 'ه'
	case 'ى': // alef maqsura
		return 'ي'
	case 'ـ': // tatweel carries no meaning
		return -1
	}
	return foldDigit(r)
}

// foldDigit maps Arabic-Indic (٠-٩) and Extended Arabic-Indic (۰-۹)
// digits to their ASCII equivalents.
func foldDigit(r rune) rune {
	switch {
	case r >= '٠' && r <= '٩':
		return '0' + (r - '٠')
	case r >= '۰' && r <= '۹':
		return '0' + (r - '۰')
	}
	return r
}

// Normalize canonicalizes an answer for equality checks. The result is
// for comparison only, never for display.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		// transform only fails on malformed UTF-8; fall back to the
		// raw string rather than dropping the answer.
		out = s
	}
	out = strings.Map(foldLetter, out)
	return strings.ToLower(out)
}

// NormalizeRoomCode folds non-Latin digit glyphs so a room stays
// reachable whatever numeral system the client keyboard produced.
func NormalizeRoomCode(s string) string {
	return strings.Map(foldDigit, strings.TrimSpace(s))
}

// Equal reports whether two strings are the same answer after
// normalization.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
