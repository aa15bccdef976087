package moderation

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes free-form text into the comparable form used by
// the matcher: lower-cased, diacritics stripped ("é" -> "e"), everything
// outside [a-z0-9 ] replaced by a space, whitespace collapsed, and common
// digit obfuscations folded back to letters (4->a, 3->e, 1->i, 0->o) so
// that "c0ca1na" compares equal to "cocaina".
//
// The function is total and pure: any string, including empty or
// all-punctuation input, yields a (possibly empty) result and never an
// error.
func Normalize(text string) string {
	lower := strings.ToLower(text)

	// NFD decomposition followed by removal of combining marks. The
	// transformer is stateful, so it is built per call rather than shared.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripMarks, lower)
	if err != nil {
		stripped = lower
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	collapsed := strings.Join(strings.Fields(b.String()), " ")

	return foldDigits(collapsed)
}

// foldDigits maps the leetspeak digits that survive normalization back to
// the letters they typically stand in for.
func foldDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '4':
			b.WriteRune('a')
		case '3':
			b.WriteRune('e')
		case '1':
			b.WriteRune('i')
		case '0':
			b.WriteRune('o')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
