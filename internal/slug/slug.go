// Package slug derives the storage key of an author from a display name.
//
// The partition command and the search engine must agree on this rule,
// otherwise author lookups silently miss.
package slug

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Slugify lowercases name, keeps Unicode letters and numbers, collapses
// runs of spaces, underscores, dots and hyphens into a single hyphen and
// drops every other character. Leading and trailing hyphens are trimmed.
// Input is NFC-normalised first so composed and decomposed forms of the
// same name produce the same slug.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pending := false
	for _, r := range norm.NFC.String(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(unicode.ToLower(r))
		case isSeparator(r):
			pending = true
		}
	}
	return b.String()
}

func isSeparator(r rune) bool {
	return r == ' ' || r == '_' || r == '.' || r == '-' || unicode.IsSpace(r)
}

// DisplayName is the best-effort inverse of Slugify: each hyphen token is
// title-cased and the tokens are joined with spaces. Diacritics already
// folded away and unusual capitalisation ("e.e. cummings", "O'Brien")
// are not recovered.
func DisplayName(s string) string {
	parts := strings.Split(s, "-")
	out := parts[:0]
	for _, p := range parts {
		if p == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(p)
		out = append(out, string(unicode.ToTitle(r))+p[size:])
	}
	return strings.Join(out, " ")
}

// Letter returns the uppercase A-Z bucket for name. ok is false when the
// slug of name does not start with an ASCII letter.
func Letter(name string) (letter string, ok bool) {
	s := Slugify(name)
	if s == "" {
		return "", false
	}
	c := s[0]
	if c < 'a' || c > 'z' {
		return "", false
	}
	return string(c - 'a' + 'A'), true
}
