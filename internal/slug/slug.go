// Package slug builds URL-safe landing-page slugs from dataset titles.
package slug

import (
	"strings"
	"unicode"
)

// translit maps non-ASCII letters that appear routinely in author and title
// strings. German umlauts expand to their digraphs; everything else maps to
// the closest ASCII letter.
var translit = map[rune]string{
	'ä': "ae", 'ö': "oe", 'ü': "ue", 'ß': "ss",
	'à': "a", 'á': "a", 'â': "a", 'ã': "a", 'å': "a", 'ā': "a",
	'è': "e", 'é': "e", 'ê': "e", 'ë': "e", 'ē': "e",
	'ì': "i", 'í': "i", 'î': "i", 'ï': "i",
	'ò': "o", 'ó': "o", 'ô': "o", 'õ': "o", 'ø': "o",
	'ù': "u", 'ú': "u", 'û': "u",
	'ç': "c", 'ć': "c", 'č': "c",
	'ñ': "n", 'ń': "n",
	'š': "s", 'ś': "s",
	'ž': "z", 'ź': "z", 'ż': "z",
	'ý': "y", 'ÿ': "y",
	'đ': "d", 'ð': "d",
	'þ': "th", 'æ': "ae", 'œ': "oe",
	'ł': "l",
}

// Make lowercases s, transliterates it to ASCII and replaces every run of
// non-alphanumeric characters with a single hyphen. The result is never
// hyphen-prefixed or -suffixed; an input with no usable characters yields "".
func Make(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if t, ok := translit[r]; ok {
				b.WriteString(t)
			}
			// unmapped letters are dropped rather than guessed at
		default:
			b.WriteByte('-')
		}
	}
	// collapse hyphen runs
	parts := strings.FieldsFunc(b.String(), func(r rune) bool { return r == '-' })
	return strings.Join(parts, "-")
}
