// Package translation models translation units and loads them from the
// JSONL record format produced by the extraction stage.
package translation

// NoLine and NoIndex mark absent positional hints. Lines are 1-based, so 0
// is never a valid hint.
const (
	NoLine  = 0
	NoIndex = -1
)

// Unit is one (original phrase, translated phrase, hints) record to be
// patched into a source file. Units are constructed once by the loader and
// never mutated by the engine.
type Unit struct {
	ID         string
	File       string
	Original   string
	Translated string
	Line       int // hint, NoLine if absent
	Index      int // hint among same-line literals, NoIndex if absent
	AnchorPrev string
	AnchorNext string
}

// HasPosition reports whether the unit carries a usable line hint.
func (u Unit) HasPosition() bool {
	return u.Line != NoLine
}

// Malformed reports whether the unit is missing fields the engine requires.
// Malformed units are skipped, never fatal.
func (u Unit) Malformed() bool {
	return u.ID == "" || u.Translated == ""
}
