// Package resolver selects, for one translation unit, the unique string
// literal that may safely be replaced, and performs the quote-aware splice.
// Selection runs a prioritized cascade of matching tiers; every tier demands
// a unique candidate outside protected code, and the cascade prefers failing
// a unit over guessing between indistinguishable occurrences.
package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agext/levenshtein"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/renpatch/pkg/placeholder"
	"github.com/walteh/renpatch/pkg/scanner"
	"github.com/walteh/renpatch/pkg/translation"
)

// proximityWindow is the half-width, in lines, of the search window around a
// line hint used by the nearby and fuzzy tiers.
const proximityWindow = 200

// Fuzzy acceptance thresholds. The margin is a hard invariant: a top score
// that merely ties the runner-up must not resolve the unit.
const (
	fuzzyMinScore = 92
	fuzzyMargin   = 3
)

// ErrNotFound reports that no tier produced a unique, safe candidate.
var ErrNotFound = errors.New("not_found_or_ambiguous")

// ProtectedRegionError reports that a tier matched a literal inside a python
// block. The match is rejected rather than applied; Method names the tier
// that found it.
type ProtectedRegionError struct {
	Method string
}

func (e *ProtectedRegionError) Error() string {
	return "protected region match: " + e.Method
}

// Candidate is the resolver's answer: the token to replace, the tier that
// found it, and the region it sits in.
type Candidate struct {
	Token  scanner.Token
	Method string
	Region string
}

// Resolve runs the matching cascade for unit u against the current text.
// tokens and spans must have been derived from exactly this text. It returns
// ErrNotFound when nothing matches uniquely, or a ProtectedRegionError when
// the acceptable match sits inside a python block.
func Resolve(text string, tokens []scanner.Token, spans scanner.BlockSpans, u translation.Unit) (Candidate, error) {
	want := scanner.NormalizeNewlines(u.Original)

	inner := func(t scanner.Token) string {
		return scanner.NormalizeNewlines(t.Inner(text))
	}
	accept := func(t scanner.Token, method string) (Candidate, error) {
		region := spans.RegionOf(t)
		if region == scanner.RegionPython {
			return Candidate{}, &ProtectedRegionError{Method: method}
		}
		return Candidate{Token: t, Method: method, Region: region}, nil
	}

	// S1: exact line hit, by index first, then by unique text on the line.
	if u.Line != translation.NoLine {
		var onRange, onLine []scanner.Token
		for _, t := range tokens {
			if t.StartLine <= u.Line && u.Line <= t.EndLine {
				onRange = append(onRange, t)
				if t.StartLine == u.Line && t.EndLine == u.Line {
					onLine = append(onLine, t)
				}
			}
		}
		if u.Index != translation.NoIndex && u.Index >= 0 && u.Index < len(onLine) {
			t := onLine[u.Index]
			if inner(t) == want {
				return accept(t, "S1-line-idx")
			}
		}
		if t, ok := uniqueExact(onRange, inner, want); ok {
			return accept(t, "S1-line-exact")
		}
	}

	// S2: unique exact match within the proximity window.
	if u.Line != translation.NoLine {
		var nearby []scanner.Token
		for _, t := range tokens {
			if abs(t.MidLine()-u.Line) <= proximityWindow {
				nearby = append(nearby, t)
			}
		}
		if t, ok := uniqueExact(nearby, inner, want); ok {
			return accept(t, "S2-nearby")
		}
	}

	// S3: anchor-bounded interval; exact unique, then closest to the
	// interval midpoint among exact ties, then semantic signature.
	if u.AnchorPrev != "" || u.AnchorNext != "" {
		start, end := anchorInterval(text, u.AnchorPrev, u.AnchorNext)
		var bounded []scanner.Token
		for _, t := range tokens {
			if t.Start < end && t.End > start {
				bounded = append(bounded, t)
			}
		}
		var exact []scanner.Token
		for _, t := range bounded {
			if inner(t) == want {
				exact = append(exact, t)
			}
		}
		if len(exact) == 1 {
			return accept(exact[0], "S3-anchors")
		}
		if len(exact) > 1 {
			mid := (start + end) / 2
			best := exact[0]
			for _, t := range exact[1:] {
				if abs((t.InnerStart+t.InnerEnd)/2-mid) < abs((best.InnerStart+best.InnerEnd)/2-mid) {
					best = t
				}
			}
			return accept(best, "S3-anchors-closest")
		}

		// S3.5: semantic signature within the same interval.
		wantSig := placeholder.Signature(u.Original)
		var sigHits []scanner.Token
		for _, t := range bounded {
			if placeholder.Signature(inner(t)) == wantSig {
				sigHits = append(sigHits, t)
			}
		}
		if len(sigHits) == 1 {
			return accept(sigHits[0], "S3.5-semantic")
		}
	}

	// S4: whole-file unique exact match, hints dropped.
	if t, ok := uniqueExact(tokens, inner, want); ok {
		return accept(t, "S4-unique")
	}

	// S5: unique exact match restricted by quote style, python regions
	// excluded from candidacy. Triple quotes first so multi-line duplicates
	// of short phrases disambiguate before plain quotes.
	for _, style := range []struct {
		quote  string
		triple bool
	}{
		{scanner.QuoteTripleDouble, true},
		{scanner.QuoteTripleSingle, true},
		{scanner.QuoteDouble, false},
		{scanner.QuoteSingle, false},
	} {
		var hits []scanner.Token
		for _, t := range tokens {
			if t.Quote != style.quote || t.IsTriple != style.triple {
				continue
			}
			if inner(t) != want {
				continue
			}
			if spans.RegionOf(t) == scanner.RegionPython {
				continue
			}
			hits = append(hits, t)
		}
		if len(hits) == 1 {
			return Candidate{Token: hits[0], Method: "S5-replace-once", Region: spans.RegionOf(hits[0])}, nil
		}
	}

	// S6: fuzzy fallback within the proximity window. Only a clear winner is
	// accepted; ties and near-ties fail the unit.
	if u.Line != translation.NoLine {
		type scored struct {
			score int
			tok   scanner.Token
		}
		var candidates []scored
		for _, t := range tokens {
			if abs(t.MidLine()-u.Line) > proximityWindow {
				continue
			}
			if spans.RegionOf(t) == scanner.RegionPython {
				continue
			}
			score := similarityScore(want, inner(t))
			if score >= fuzzyMinScore {
				candidates = append(candidates, scored{score: score, tok: t})
			}
		}
		if len(candidates) > 0 {
			sort.Slice(candidates, func(i, j int) bool {
				if candidates[i].score != candidates[j].score {
					return candidates[i].score > candidates[j].score
				}
				return candidates[i].tok.InnerStart < candidates[j].tok.InnerStart
			})
			top := candidates[0]
			if len(candidates) == 1 || top.score-candidates[1].score >= fuzzyMargin {
				return Candidate{
					Token:  top.tok,
					Method: fmt.Sprintf("S6-fuzzy-nearby(%d)", top.score),
					Region: spans.RegionOf(top.tok),
				}, nil
			}
		}
	}

	return Candidate{}, ErrNotFound
}

// uniqueExact returns the single token whose inner text equals want, if
// exactly one exists in ts.
func uniqueExact(ts []scanner.Token, inner func(scanner.Token) string, want string) (scanner.Token, bool) {
	var hit scanner.Token
	count := 0
	for _, t := range ts {
		if inner(t) == want {
			hit = t
			count++
			if count > 1 {
				return scanner.Token{}, false
			}
		}
	}
	return hit, count == 1
}

// anchorInterval locates the byte interval bounded by the anchors. A missing
// or unlocatable anchor leaves its side of the interval open.
func anchorInterval(text, prev, next string) (int, int) {
	start, end := 0, len(text)
	if prev != "" {
		if i := strings.Index(text, prev); i != -1 {
			start = i + len(prev)
		}
	}
	if next != "" {
		if j := strings.Index(text[start:], next); j != -1 {
			end = start + j
		}
	}
	return start, end
}

// similarityScore maps Levenshtein similarity onto the 0..100 scale the
// fuzzy thresholds are expressed in.
func similarityScore(a, b string) int {
	if a == "" && b == "" {
		return 100
	}
	return int(levenshtein.Similarity(a, b, nil)*100 + 0.5)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
