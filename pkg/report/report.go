// Package report accumulates per-unit patch outcomes and serializes them as
// a tab-separated report. It is a pure ledger; no retry or recovery logic
// lives here.
package report

import (
	"bufio"
	"io"
	"strings"
	"sync"

	"gitlab.com/tozd/go/errors"
)

// Unit statuses.
const (
	StatusOK   = "OK"
	StatusNoop = "NOOP"
	StatusWarn = "WARN"
	StatusFail = "FAIL"
)

// Method tags for non-tier outcomes.
const (
	MethodUnchanged           = "unchanged"
	MethodNotFound            = "not_found_or_ambiguous"
	MethodProtectedRegionSkip = "python_region_skip"
	MethodPlaceholderMismatch = "placeholder_mismatch"
	MethodMalformedUnit       = "malformed_unit"
)

// Outcome is one row of the ledger, immutable once appended.
type Outcome struct {
	ID      string
	File    string
	Status  string
	Method  string
	Message string
}

// Collector gathers outcomes from concurrently patched files. Rows within
// one AppendBatch stay in order; batches land in completion order.
type Collector struct {
	mu   sync.Mutex
	rows []Outcome
}

func NewCollector() *Collector {
	return &Collector{}
}

// Append records a single outcome.
func (c *Collector) Append(o Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = append(c.rows, o)
}

// AppendBatch records a file's outcomes as one contiguous run.
func (c *Collector) AppendBatch(rows []Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = append(c.rows, rows...)
}

// Rows returns a copy of the accumulated outcomes.
func (c *Collector) Rows() []Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Outcome, len(c.rows))
	copy(out, c.rows)
	return out
}

// Summary counts rows per status.
func (c *Collector) Summary() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	counts := make(map[string]int, 4)
	for _, r := range c.rows {
		counts[r.Status]++
	}
	return counts
}

// sanitize keeps field values from breaking the TSV framing.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

// WriteTSV writes the ledger with a header row, one outcome per line.
func (c *Collector) WriteTSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("id\tfile\tstatus\tmethod\tmessage\n"); err != nil {
		return errors.Errorf("writing report header: %w", err)
	}
	for _, r := range c.Rows() {
		line := strings.Join([]string{
			sanitize(r.ID), sanitize(r.File), r.Status, sanitize(r.Method), sanitize(r.Message),
		}, "\t")
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return errors.Errorf("writing report row: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Errorf("flushing report: %w", err)
	}
	return nil
}
