// Copyright 2026 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/sergi/go-diff/diffmatchpatch"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/renpatch/pkg/log"
	"github.com/walteh/renpatch/pkg/patcher"
	"github.com/walteh/renpatch/pkg/report"
	"github.com/walteh/renpatch/pkg/status"
	"github.com/walteh/renpatch/pkg/translation"
)

// 📦 NewPatchOperation creates a new patch operation
func NewPatchOperation(opts Options) Operation {
	return &patchOperation{
		BaseOperation: NewBaseOperation(opts),
	}
}

// 📦 patchOperation back-patches translated units into a mirror of the
// project tree. Files are independent and patched concurrently; units within
// one file are strictly sequential.
type patchOperation struct {
	BaseOperation
}

func (op *patchOperation) Name() string {
	return "patch"
}

// 🏃 Execute runs the patch operation
func (op *patchOperation) Execute(ctx context.Context) error {
	f, err := os.Open(op.Config.Translations)
	if err != nil {
		return errors.Errorf("opening translations: %w", err)
	}
	unitsByFile, err := translation.Load(op.Logger, f)
	f.Close()
	if err != nil {
		return errors.Errorf("loading translations: %w", err)
	}

	files, err := discoverFiles(op.Config.Root, op.Config.Glob, op.Config.ExcludeDirs)
	if err != nil {
		return errors.Errorf("discovering files: %w", err)
	}

	// Only files that own translation units are worth reading.
	var targets []string
	for _, rel := range files {
		if len(unitsByFile[rel]) > 0 {
			targets = append(targets, rel)
		}
	}
	op.Logger.Info().
		Int("files", len(files)).
		Int("targets", len(targets)).
		Msg("starting patch")

	op.StatusMgr.StartOperation(ctx, len(targets))
	defer op.StatusMgr.FinishOperation(ctx)

	eg, ctx := errgroup.WithContext(ctx)
	if op.Config.Workers > 0 {
		eg.SetLimit(op.Config.Workers)
	} else {
		eg.SetLimit(1)
	}

	var processed atomic.Int64
	for _, rel := range targets {
		rel := rel
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return errors.Errorf("patch cancelled: %w", err)
			}
			if err := op.patchFile(ctx, rel, unitsByFile[rel]); err != nil {
				return errors.Errorf("patching %s: %w", rel, err)
			}
			op.StatusMgr.UpdateProgress(ctx, int(processed.Add(1)))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	if err := op.writeReport(); err != nil {
		return err
	}

	op.logSummary(ctx, len(targets))
	return nil
}

// 📄 patchFile patches a single file and mirrors the result
func (op *patchOperation) patchFile(ctx context.Context, rel string, units []translation.Unit) error {
	raw, err := os.ReadFile(filepath.Join(op.Config.Root, filepath.FromSlash(rel)))
	if err != nil {
		return errors.Errorf("reading source: %w", err)
	}

	res := patcher.PatchText(op.Logger, string(raw), rel, units)
	op.Collector.AppendBatch(res.Rows)

	warnings, failures := countRows(res.Rows)
	info := status.FileInfo{
		Path:     rel,
		Applied:  res.Applied,
		Warnings: warnings,
		Failures: failures,
	}
	switch {
	case res.Applied > 0:
		info.Status = status.StatusPatched
	case failures > 0:
		info.Status = status.StatusFailed
	default:
		info.Status = status.StatusSkipped
	}
	op.StatusMgr.TrackFile(ctx, rel, info)

	op.Console.LogFileResult(log.FileResult{
		Path:     rel,
		Applied:  res.Applied,
		Warnings: warnings,
		Failures: failures,
		DryRun:   op.Config.DryRun,
	})

	if !res.Modified {
		return nil
	}

	if op.Config.DryRun {
		// Preview of what would change, debug level only.
		if op.Logger.Debug().Enabled() {
			dmp := diffmatchpatch.New()
			diffs := dmp.DiffMain(string(raw), res.Text, false)
			op.Logger.Debug().Str("file", rel).Msg(dmp.DiffPrettyText(diffs))
		}
		return nil
	}

	outRel := mirrorPath(rel, op.Config.Suffix)
	if op.Config.Backup {
		if err := op.StatusMgr.BackupFile(ctx, outRel); err != nil {
			return errors.Errorf("backing up previous output: %w", err)
		}
	}
	if err := op.StatusMgr.WriteFileAtomic(ctx, outRel, []byte(res.Text)); err != nil {
		return errors.Errorf("writing output: %w", err)
	}
	return nil
}

// 📊 writeReport persists the TSV outcome ledger
func (op *patchOperation) writeReport() error {
	f, err := os.Create(op.Config.Report)
	if err != nil {
		return errors.Errorf("creating report: %w", err)
	}
	defer f.Close()
	if err := op.Collector.WriteTSV(f); err != nil {
		return errors.Errorf("writing report: %w", err)
	}
	return nil
}

func (op *patchOperation) logSummary(ctx context.Context, files int) {
	summary := op.Collector.Summary()
	op.Console.LogSummary(files,
		summary[report.StatusOK],
		summary[report.StatusWarn],
		summary[report.StatusFail])
	if infos, err := op.StatusMgr.ListFiles(ctx); err == nil {
		for _, info := range infos {
			if info.Status == status.StatusFailed {
				op.Logger.Warn().
					Str("file", info.Path).
					Int("failures", info.Failures).
					Msg("no replacements applied")
			}
		}
	}
	op.Logger.Info().
		Int("ok", summary[report.StatusOK]).
		Int("noop", summary[report.StatusNoop]).
		Int("warn", summary[report.StatusWarn]).
		Int("fail", summary[report.StatusFail]).
		Str("report", op.Config.Report).
		Msg("patch complete")
}

// mirrorPath swaps the source extension for the configured output suffix,
// e.g. game/script.rpy -> game/script.zh.rpy.
func mirrorPath(rel, suffix string) string {
	ext := filepath.Ext(rel)
	return strings.TrimSuffix(rel, ext) + suffix
}

func countRows(rows []report.Outcome) (warnings, failures int) {
	for _, r := range rows {
		switch r.Status {
		case report.StatusWarn:
			warnings++
		case report.StatusFail:
			failures++
		}
	}
	return warnings, failures
}
