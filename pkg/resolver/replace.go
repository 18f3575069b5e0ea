package resolver

import (
	"strings"

	"github.com/walteh/renpatch/pkg/scanner"
)

// EscapeForQuote escapes occurrences of the delimiter q inside s. Already
// escaped delimiters are left alone, so replacing a literal's content with
// itself reproduces the original bytes.
func EscapeForQuote(s, q string) string {
	if len(q) != 1 {
		return s
	}
	d := q[0]
	var out strings.Builder
	out.Grow(len(s))
	backslashes := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == d && backslashes%2 == 0 {
			out.WriteByte('\\')
		}
		if c == '\\' {
			backslashes++
		} else {
			backslashes = 0
		}
		out.WriteByte(c)
	}
	return out.String()
}

// SanitizeTriple breaks every 3-character delimiter run inside s by inserting
// a backslash before its final quote, so the enclosing triple-quoted literal
// still closes where the splice put it. Replacement repeats to a fixed point:
// a single non-overlapping pass leaves an unbroken run behind when the text
// carries five or more consecutive delimiter quotes.
func SanitizeTriple(s, tripleQuote string) string {
	broken := tripleQuote[:2] + `\` + tripleQuote[2:]
	for strings.Contains(s, tripleQuote) {
		s = strings.ReplaceAll(s, tripleQuote, broken)
	}
	return s
}

// Replace splices translated into the token's inner span and returns the new
// full text. The delimiters and every other byte of text are untouched; the
// translated content is escaped to fit the token's quote style.
func Replace(text string, t scanner.Token, translated string) string {
	var safe string
	if t.IsTriple {
		safe = SanitizeTriple(translated, t.Quote)
	} else {
		safe = EscapeForQuote(translated, t.Quote)
	}
	return text[:t.InnerStart] + safe + text[t.InnerEnd:]
}
