package translation

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// translatedKeys are the record fields accepted as the translated text, in
// priority order. Upstream translation tooling is not consistent about which
// one it emits.
var translatedKeys = []string{"zh", "cn", "zh_cn", "translation", "text_zh", "target", "tgt", "zh_final"}

// record mirrors one JSONL line. Pointer fields keep "absent" distinct from
// zero values.
type record struct {
	ID         string `json:"id"`
	IDHash     string `json:"id_hash"`
	File       string `json:"file"`
	Line       *int   `json:"line"`
	Idx        *int   `json:"idx"`
	En         string `json:"en"`
	AnchorPrev string `json:"anchor_prev"`
	AnchorNext string `json:"anchor_next"`
}

func pickTranslated(raw map[string]json.RawMessage) string {
	for _, key := range translatedKeys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			continue
		}
		if s != "" {
			return s
		}
	}
	return ""
}

// Load reads translation units from JSONL. Lines that fail to decode, carry
// no id, or carry no translated text are logged and skipped; a bad line
// never fails the load. The returned units are keyed by source file,
// relative-path style, exactly as the records name them.
func Load(logger *zerolog.Logger, r io.Reader) (map[string][]Unit, error) {
	byFile := make(map[string][]Unit)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1<<20), 1<<20)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := sc.Bytes()
		if len(raw) == 0 || allSpace(raw) {
			continue
		}

		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			logger.Warn().Int("line", lineNo).Err(err).Msg("skipping bad JSONL line")
			continue
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			logger.Warn().Int("line", lineNo).Err(err).Msg("skipping bad JSONL line")
			continue
		}

		id := rec.ID
		if id == "" {
			id = rec.IDHash
		}
		if id == "" && rec.File != "" && rec.Line != nil && rec.Idx != nil {
			id = fmt.Sprintf("%s:%d:%d", rec.File, *rec.Line, *rec.Idx)
		}
		if id == "" {
			logger.Warn().Int("line", lineNo).Msg("skipping record without id")
			continue
		}

		translated := pickTranslated(fields)
		if translated == "" {
			logger.Debug().Int("line", lineNo).Str("id", id).Msg("skipping record without translated text")
			continue
		}

		u := Unit{
			ID:         id,
			File:       rec.File,
			Original:   rec.En,
			Translated: translated,
			Line:       NoLine,
			Index:      NoIndex,
			AnchorPrev: rec.AnchorPrev,
			AnchorNext: rec.AnchorNext,
		}
		if rec.Line != nil {
			u.Line = *rec.Line
		}
		if rec.Idx != nil {
			u.Index = *rec.Idx
		}
		if u.File == "" {
			u.File = fileFromID(id)
		}
		if u.File == "" {
			logger.Warn().Str("id", id).Msg("skipping record without file")
			continue
		}
		byFile[u.File] = append(byFile[u.File], u)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Errorf("reading translations: %w", err)
	}

	for file := range byFile {
		SortUnits(byFile[file])
	}
	return byFile, nil
}

// SortUnits orders units ascending by (line, index, id) so earlier edits in
// a file are applied before later ones and search windows stay meaningful.
// Units without hints sort last.
func SortUnits(units []Unit) {
	const noHint = 1 << 30
	key := func(u Unit) (int, int) {
		line, idx := noHint, noHint
		if u.Line != NoLine {
			line = u.Line
		}
		if u.Index != NoIndex {
			idx = u.Index
		}
		return line, idx
	}
	sort.SliceStable(units, func(i, j int) bool {
		li, xi := key(units[i])
		lj, xj := key(units[j])
		if li != lj {
			return li < lj
		}
		if xi != xj {
			return xi < xj
		}
		return units[i].ID < units[j].ID
	})
}

// fileFromID recovers the source file from an id of the synthesized
// file:line:idx shape. Records from older extraction runs carry the file only
// there; they still patch.
func fileFromID(id string) string {
	j := strings.LastIndexByte(id, ':')
	if j == -1 {
		return ""
	}
	i := strings.LastIndexByte(id[:j], ':')
	if i <= 0 {
		return ""
	}
	if _, err := strconv.Atoi(id[i+1 : j]); err != nil {
		return ""
	}
	if _, err := strconv.Atoi(id[j+1:]); err != nil {
		return ""
	}
	return id[:i]
}

func allSpace(b []byte) bool {
	for _, c := range b {
		if c != ' ' && c != '\t' && c != '\r' {
			return false
		}
	}
	return true
}
