// Package placeholder recognizes the interpolation placeholders and text
// tags that appear inside Ren'Py dialogue strings. Translations must carry
// the same placeholders as their originals; text tags are stripped when
// computing a style-insensitive semantic signature.
package placeholder

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"
)

var (
	// [name]
	squareRe = regexp.MustCompile(`\[[A-Za-z_][A-Za-z0-9_]*\]`)
	// %s, %02d, %(name)s, %.2f, %x, %o ...
	percentRe = regexp.MustCompile(`%(?:\([^)]+\))?[+#0\- ]?\d*(?:\.\d+)?[sdifeEfgGxXo]`)
	// {0}, {0:.2f}, {0!r:>8}
	braceIndexRe = regexp.MustCompile(`\{\d+(?:![rsa])?(?::[^{}]+)?\}`)
	// {name}, {name!r:>8}
	braceNameRe = regexp.MustCompile(`\{[A-Za-z_][A-Za-z0-9_]*(?:![rsa])?(?::[^{}]+)?\}`)
)

// Ren'Py text tags. Single tags stand alone ({w}, {p}); paired tags open and
// close ({i}...{/i}, {color=#fff}...{/color}).
var (
	singleTags = map[string]bool{"w": true, "nw": true, "p": true, "fast": true, "k": true}
	pairedTags = map[string]bool{
		"i": true, "b": true, "u": true, "color": true,
		"a": true, "size": true, "font": true, "alpha": true,
	}
)

// escapedBrace reports whether the span [start,end) sits inside a {{...}}
// escape, in which case the braces are literal text, not a placeholder.
func escapedBrace(s string, start, end int) bool {
	left := start-1 >= 0 && s[start-1] == '{'
	right := end < len(s) && s[end] == '}'
	return left || right
}

func iterate(s string, fn func(ph string)) {
	if s == "" {
		return
	}
	for _, re := range []*regexp.Regexp{squareRe, percentRe, braceIndexRe, braceNameRe} {
		for _, loc := range re.FindAllStringIndex(s, -1) {
			if escapedBrace(s, loc[0], loc[1]) {
				continue
			}
			fn(s[loc[0]:loc[1]])
		}
	}
}

// Set returns the unique placeholders of s, sorted.
func Set(s string) []string {
	seen := map[string]bool{}
	iterate(s, func(ph string) { seen[ph] = true })
	out := make([]string, 0, len(seen))
	for ph := range seen {
		out = append(out, ph)
	}
	sort.Strings(out)
	return out
}

// SetsEqual reports whether two texts carry the same placeholder set.
func SetsEqual(a, b string) bool {
	sa, sb := Set(a), Set(b)
	if len(sa) != len(sb) {
		return false
	}
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

// Multiset counts placeholder occurrences in s.
func Multiset(s string) map[string]int {
	counts := map[string]int{}
	iterate(s, func(ph string) { counts[ph]++ })
	return counts
}

var (
	tagOpenRe  = regexp.MustCompile(`^\{([A-Za-z_][A-Za-z0-9_]*)(?:=[^}]*)?\}`)
	tagCloseRe = regexp.MustCompile(`^\{/([A-Za-z_][A-Za-z0-9_]*)\}`)
	wsRe       = regexp.MustCompile(`\s+`)
)

// StripTags removes Ren'Py text tags (both single and paired open/close
// forms) while keeping text and placeholders. {{ escapes collapse to a
// single brace.
func StripTags(s string) string {
	var out strings.Builder
	out.Grow(len(s))
	i := 0
	n := len(s)
	for i < n {
		if s[i] != '{' {
			out.WriteByte(s[i])
			i++
			continue
		}
		if i+1 < n && s[i+1] == '{' {
			out.WriteByte('{')
			i += 2
			continue
		}
		if m := tagOpenRe.FindStringSubmatch(s[i:]); m != nil {
			if singleTags[m[1]] || pairedTags[m[1]] {
				i += len(m[0])
				continue
			}
		}
		if m := tagCloseRe.FindStringSubmatch(s[i:]); m != nil {
			if pairedTags[m[1]] {
				i += len(m[0])
				continue
			}
		}
		out.WriteByte(s[i])
		i++
	}
	return out.String()
}

// Normalize folds a phrase for signature comparison: tags stripped,
// whitespace runs collapsed, trimmed, lowercased. Placeholders survive.
func Normalize(s string) string {
	s = StripTags(s)
	s = wsRe.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// Signature computes a stable semantic signature for a phrase, used to match
// literals across minor styling and whitespace changes.
func Signature(s string) string {
	sum := sha1.Sum([]byte(Normalize(s)))
	return "sig:v2:" + hex.EncodeToString(sum[:])[:12]
}
