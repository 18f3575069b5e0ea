package scanner

import "regexp"

// Region kinds, from most to least protected. Literals inside python blocks
// are executable code and must never be patched; screen and label blocks are
// structural markup/dialogue and are safe.
const (
	RegionPython = "python"
	RegionScreen = "screen"
	RegionLabel  = "label"
	RegionRoot   = "root"
)

// Span is a 1-based inclusive line range.
type Span struct {
	StartLine int
	EndLine   int
}

// BlockSpans holds the block regions detected in one file.
type BlockSpans struct {
	Python []Span
	Label  []Span
	Screen []Span
}

var (
	pythonBlockRe = regexp.MustCompile(`^\s*(?:init\s+python|python(?:\s+early)?(?:\s+hide)?(?:\s+in\s+\w+)?)\s*:\s*$`)
	labelBlockRe  = regexp.MustCompile(`^\s*label\s+[A-Za-z_][A-Za-z0-9_]*\s*:\s*$`)
	screenBlockRe = regexp.MustCompile(`^\s*screen\s+[A-Za-z_][A-Za-z0-9_]*.*:\s*$`)
)

// indentWidth counts leading space and tab characters. Tabs and spaces both
// count as one column; files mixing the two can misclassify block extents,
// which is a known best-effort limitation of indentation scanning.
func indentWidth(s string) int {
	i := 0
	for _, ch := range s {
		if ch != ' ' && ch != '\t' {
			break
		}
		i++
	}
	return i
}

func isBlank(s string) bool {
	for _, ch := range s {
		if ch != ' ' && ch != '\t' {
			return false
		}
	}
	return true
}

// scanBlocks finds every block opened by a line matching re. A block runs
// from its opener until the next non-blank line whose indentation does not
// exceed the opener's; blank lines never close a block.
func scanBlocks(lines []string, re *regexp.Regexp) []Span {
	var spans []Span
	n := len(lines)
	i := 0
	for i < n {
		if !re.MatchString(lines[i]) {
			i++
			continue
		}
		base := indentWidth(lines[i])
		start := i + 1
		j := i + 1
		for j < n {
			if isBlank(lines[j]) {
				j++
				continue
			}
			if indentWidth(lines[j]) <= base {
				break
			}
			j++
		}
		spans = append(spans, Span{StartLine: start, EndLine: j})
		i = j
	}
	return spans
}

// DetectBlocks classifies the block regions of text. The text should be
// newline-normalized first; the same text must be handed to Scan so line
// numbers agree.
func DetectBlocks(text string) BlockSpans {
	lines := splitLines(text)
	return BlockSpans{
		Python: scanBlocks(lines, pythonBlockRe),
		Label:  scanBlocks(lines, labelBlockRe),
		Screen: scanBlocks(lines, screenBlockRe),
	}
}

func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i])
			start = i + 1
		}
	}
	lines = append(lines, text[start:])
	return lines
}

func lineInSpans(line int, spans []Span) bool {
	for _, s := range spans {
		if s.StartLine <= line && line <= s.EndLine {
			return true
		}
	}
	return false
}

// RegionOf returns the region kind of a token by its starting line. Priority
// is python over screen over label; anything else is root.
func (b BlockSpans) RegionOf(t Token) string {
	switch {
	case lineInSpans(t.StartLine, b.Python):
		return RegionPython
	case lineInSpans(t.StartLine, b.Screen):
		return RegionScreen
	case lineInSpans(t.StartLine, b.Label):
		return RegionLabel
	default:
		return RegionRoot
	}
}
