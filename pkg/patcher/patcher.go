// Package patcher drives the per-file patch loop: for every translation
// unit, re-derive tokens and regions from the current text, resolve a unique
// safe match, splice, and record the outcome. The engine performs no I/O and
// keeps no state across units; each accepted edit replaces the text value
// wholesale, so offsets are never reused across edits.
package patcher

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/renpatch/pkg/placeholder"
	"github.com/walteh/renpatch/pkg/report"
	"github.com/walteh/renpatch/pkg/resolver"
	"github.com/walteh/renpatch/pkg/scanner"
	"github.com/walteh/renpatch/pkg/translation"
)

// Result is the outcome of patching one file.
type Result struct {
	File     string
	Text     string // patched full text, identical to the input if nothing applied
	Modified bool
	Applied  int
	Rows     []report.Outcome
}

// PatchText applies a file's translation units to text and returns the new
// text plus one outcome row per unit. A unit's failure never aborts the
// remaining units; a file with zero successes returns its text unmodified
// and no error.
func PatchText(logger *zerolog.Logger, text, rel string, units []translation.Unit) Result {
	res := Result{File: rel}

	text = scanner.NormalizeNewlines(text)
	sorted := make([]translation.Unit, len(units))
	copy(sorted, units)
	translation.SortUnits(sorted)

	for _, u := range sorted {
		if u.Malformed() {
			res.Rows = append(res.Rows, report.Outcome{
				ID: u.ID, File: rel, Status: report.StatusWarn,
				Method: report.MethodMalformedUnit, Message: "missing id or translated text",
			})
			continue
		}

		// Placeholder discipline is advisory: a mismatch is reported but the
		// replacement still proceeds. An empty original still warns when the
		// translation introduces placeholders.
		if !placeholder.SetsEqual(u.Original, u.Translated) {
			res.Rows = append(res.Rows, report.Outcome{
				ID: u.ID, File: rel, Status: report.StatusWarn,
				Method:  report.MethodPlaceholderMismatch,
				Message: placeholderDiff(u.Original, u.Translated),
			})
		}

		// Tokens and regions are derived fresh against the current text;
		// offsets from before an accepted edit are never trusted.
		tokens := scanner.Scan(text)
		spans := scanner.DetectBlocks(text)

		cand, err := resolver.Resolve(text, tokens, spans, u)
		if err != nil {
			var prot *resolver.ProtectedRegionError
			switch {
			case errors.As(err, &prot):
				res.Rows = append(res.Rows, report.Outcome{
					ID: u.ID, File: rel, Status: report.StatusWarn,
					Method: report.MethodProtectedRegionSkip, Message: prot.Method,
				})
			default:
				res.Rows = append(res.Rows, report.Outcome{
					ID: u.ID, File: rel, Status: report.StatusFail,
					Method: report.MethodNotFound,
				})
			}
			continue
		}

		newText := resolver.Replace(text, cand.Token, u.Translated)
		if newText == text {
			res.Rows = append(res.Rows, report.Outcome{
				ID: u.ID, File: rel, Status: report.StatusNoop,
				Method: report.MethodUnchanged, Message: "region=" + cand.Region,
			})
			continue
		}

		text = newText
		res.Modified = true
		res.Applied++
		logger.Debug().Str("id", u.ID).Str("method", cand.Method).Str("region", cand.Region).Msg("applied replacement")
		res.Rows = append(res.Rows, report.Outcome{
			ID: u.ID, File: rel, Status: report.StatusOK,
			Method: cand.Method, Message: "region=" + cand.Region,
		})
	}

	res.Text = text
	return res
}

func placeholderDiff(original, translated string) string {
	return fmt.Sprintf("%s vs %s",
		"["+strings.Join(placeholder.Set(original), " ")+"]",
		"["+strings.Join(placeholder.Set(translated), " ")+"]")
}
