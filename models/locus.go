package models

import (
	"strings"
	"unicode"
)

const locusPadding = 6

// LocusSortKey turns a locus such as "12.3-5" or "fol. 4r" into a key that
// sorts in reading order: the range suffix is dropped and every number is
// zero padded.
func LocusSortKey(locus string) string {
	locus = strings.TrimSpace(locus)
	if i := strings.Index(locus, "-"); i > 0 {
		locus = locus[:i]
	}
	tokens := strings.FieldsFunc(locus, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, tok := range tokens {
		digits := strings.IndexFunc(tok, func(r rune) bool { return !unicode.IsDigit(r) })
		switch {
		case digits == -1:
			tokens[i] = pad(tok)
		case digits > 0:
			tokens[i] = pad(tok[:digits]) + strings.ToLower(tok[digits:])
		default:
			tokens[i] = strings.ToLower(tok)
		}
	}
	return strings.Join(tokens, ".")
}

func pad(digits string) string {
	digits = strings.TrimLeft(digits, "0")
	if len(digits) >= locusPadding {
		return digits
	}
	return strings.Repeat("0", locusPadding-len(digits)) + digits
}
