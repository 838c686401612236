// Package textnorm produces canonical forms of team and league names so
// that the same fixture always maps to the same cache key regardless of
// the language, casing, or formatting the slip used.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const separator = '-'

var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Canonical lowers a raw name to its canonical ASCII form: diacritics are
// stripped, case is folded, and runs of non-alphanumeric characters collapse
// to a single '-'. It is total: anything unmappable is dropped.
func Canonical(raw string) string {
	folded, _, err := transform.String(asciiFold, raw)
	if err != nil {
		// NFD decomposition never fails on valid UTF-8; invalid bytes are
		// handled below like any other unmappable rune.
		folded = raw
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingSep := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte(separator)
			}
			pendingSep = false
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			if pendingSep && b.Len() > 0 {
				b.WriteByte(separator)
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
		case r < 128:
			pendingSep = true
		default:
			if mapped, ok := latinFallback[r]; ok {
				if pendingSep && b.Len() > 0 {
					b.WriteByte(separator)
				}
				pendingSep = false
				b.WriteString(mapped)
				continue
			}
			pendingSep = true
		}
	}

	return b.String()
}

// Equal reports whether two raw names share a canonical form.
func Equal(a, b string) bool {
	return Canonical(a) == Canonical(b)
}

// latinFallback covers letters NFD decomposition leaves intact because they
// are standalone code points rather than base+combining pairs.
var latinFallback = map[rune]string{
	'ø': "o", 'Ø': "o",
	'æ': "ae", 'Æ': "ae",
	'œ': "oe", 'Œ': "oe",
	'ß': "ss",
	'đ': "d", 'Đ': "d",
	'ð': "d", 'Ð': "d",
	'þ': "th", 'Þ': "th",
	'ł': "l", 'Ł': "l",
	'ı': "i",
}
