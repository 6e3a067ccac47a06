package corpus

import (
	"strings"
	"unicode"
)

// StripPunctuation removes punctuation and ASCII symbol characters from a
// token, keeping hyphens so compounds like "well-known" survive.
func StripPunctuation(token string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' {
			return r
		}
		if unicode.IsPunct(r) || (r < unicode.MaxASCII && unicode.IsSymbol(r)) {
			return -1
		}
		return r
	}, token)
}
