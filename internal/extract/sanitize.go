package extract

import (
	"strings"
	"unicode"
)

// Sanitize drops NUL and control characters other than newline, carriage
// return and tab, then trims surrounding whitespace.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return r
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(cleaned)
}
