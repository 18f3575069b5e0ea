// Package scanner delimits string literals and coarse structural regions in
// Ren'Py script text. It is deliberately not a grammar: a small character
// automaton recovers lexical boundaries, and indentation recovers block
// extents, which is all the patch engine needs to edit safely.
package scanner

import (
	"sort"
	"strings"
)

// Quote styles recognized by the scanner.
const (
	QuoteDouble       = `"`
	QuoteSingle       = `'`
	QuoteTripleDouble = `"""`
	QuoteTripleSingle = `'''`
)

// Token is one string literal found in the text. Start/End and
// InnerStart/InnerEnd are half-open byte offsets into the exact text that was
// scanned; the inner span excludes the quote delimiters. Offsets are only
// valid against that text and must be rediscovered after any edit.
type Token struct {
	Start      int
	End        int
	InnerStart int
	InnerEnd   int
	Quote      string
	IsTriple   bool
	StartLine  int // 1-based
	EndLine    int // 1-based
}

// Inner returns the token's content without delimiters.
func (t Token) Inner(text string) string {
	return text[t.InnerStart:t.InnerEnd]
}

// MidLine returns the line halfway through the token, used for proximity
// matching of multi-line literals.
func (t Token) MidLine() int {
	return (t.StartLine + t.EndLine) / 2
}

// NormalizeNewlines converts CRLF and bare CR line endings to LF.
func NormalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// lineStarts returns the byte offset of the first character of every line.
func lineStarts(text string) []int {
	starts := []int{0}
	i := strings.IndexByte(text, '\n')
	for i != -1 {
		starts = append(starts, i+1)
		j := strings.IndexByte(text[i+1:], '\n')
		if j == -1 {
			break
		}
		i = i + 1 + j
	}
	return starts
}

// lineFromOffset maps a byte offset to its 1-based line number via binary
// search over the line start table.
func lineFromOffset(starts []int, off int) int {
	// first start strictly greater than off, minus one
	n := sort.Search(len(starts), func(i int) bool { return starts[i] > off })
	if n == 0 {
		return 1
	}
	return n
}

// Scan tokenizes text into an ordered, non-overlapping list of string
// literals. Triple-quoted literals may span lines; single/double-quoted ones
// honor backslash escapes and never cross a line break. Unterminated
// literals are tolerated: a plain one ends at its line break, a triple one
// extends to the end of the text. Scan never fails.
func Scan(text string) []Token {
	n := len(text)
	starts := lineStarts(text)
	var tokens []Token

	i := 0
	for i < n {
		ch := text[i]
		if ch != '\'' && ch != '"' {
			i++
			continue
		}

		if i+3 <= n && (text[i:i+3] == QuoteTripleDouble || text[i:i+3] == QuoteTripleSingle) {
			q := text[i : i+3]
			start := i
			i += 3
			closed := false
			for i+3 <= n {
				if text[i:i+3] == q {
					end := i + 3
					tokens = append(tokens, Token{
						Start:      start,
						End:        end,
						InnerStart: start + 3,
						InnerEnd:   end - 3,
						Quote:      q,
						IsTriple:   true,
						StartLine:  lineFromOffset(starts, start),
						EndLine:    lineFromOffset(starts, end-1),
					})
					i = end
					closed = true
					break
				}
				i++
			}
			if !closed {
				tokens = append(tokens, Token{
					Start:      start,
					End:        n,
					InnerStart: start + 3,
					InnerEnd:   n,
					Quote:      q,
					IsTriple:   true,
					StartLine:  lineFromOffset(starts, start),
					EndLine:    lineFromOffset(starts, max(start, n-1)),
				})
				i = n
			}
			continue
		}

		q := ch
		start := i
		i++
		escaped := false
		closed := false
		for i < n {
			c := text[i]
			if escaped {
				escaped = false
				i++
				continue
			}
			if c == '\\' {
				escaped = true
				i++
				continue
			}
			if c == '\n' {
				// Unterminated single-line literal ends at the line break.
				line := lineFromOffset(starts, start)
				tokens = append(tokens, Token{
					Start:      start,
					End:        i,
					InnerStart: start + 1,
					InnerEnd:   i,
					Quote:      string(q),
					StartLine:  line,
					EndLine:    line,
				})
				i++
				closed = true
				break
			}
			if c == q {
				end := i + 1
				line := lineFromOffset(starts, start)
				tokens = append(tokens, Token{
					Start:      start,
					End:        end,
					InnerStart: start + 1,
					InnerEnd:   end - 1,
					Quote:      string(q),
					StartLine:  line,
					EndLine:    line,
				})
				i = end
				closed = true
				break
			}
			i++
		}
		if !closed {
			tokens = append(tokens, Token{
				Start:      start,
				End:        n,
				InnerStart: start + 1,
				InnerEnd:   n,
				Quote:      string(q),
				StartLine:  lineFromOffset(starts, start),
				EndLine:    lineFromOffset(starts, max(start, n-1)),
			})
			i = n
		}
	}

	return tokens
}
