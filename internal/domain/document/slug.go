package document

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Slugify lowercases s and joins its words with hyphens
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		case r == '\'':
		default:
			dash = true
		}
	}
	return b.String()
}

// Humanize turns a slug such as "low-light-vision" into "Low Light Vision"
func Humanize(slug string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(slug, "-", " "))
}
