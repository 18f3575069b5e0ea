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
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/renpatch/pkg/config"
	"github.com/walteh/renpatch/pkg/log"
	"github.com/walteh/renpatch/pkg/report"
	"github.com/walteh/renpatch/pkg/status"
)

type patchFixture struct {
	op      Operation
	cfg     *config.Config
	rows    *report.Collector
	mgr     *status.Manager
	outDir  string
	rootDir string
}

func newPatchFixture(t *testing.T, sources map[string]string, jsonl string, mutate func(*config.Config)) *patchFixture {
	t.Helper()

	rootDir := t.TempDir()
	outDir := t.TempDir()
	writeTree(t, rootDir, sources)

	translations := filepath.Join(t.TempDir(), "translated.jsonl")
	require.NoError(t, os.WriteFile(translations, []byte(jsonl), 0644))

	cfg := &config.Config{
		Root:         rootDir,
		Translations: translations,
		Output:       outDir,
	}
	require.NoError(t, cfg.Validate())
	if mutate != nil {
		mutate(cfg)
	}

	logger := zerolog.Nop()
	collector := report.NewCollector()
	mgr := status.New(outDir, &logger)

	op := NewPatchOperation(Options{
		Config:    cfg,
		StatusMgr: mgr,
		Collector: collector,
		Logger:    &logger,
		Console:   log.New(io.Discard, zerolog.Disabled),
	})
	return &patchFixture{op: op, cfg: cfg, rows: collector, mgr: mgr, outDir: outDir, rootDir: rootDir}
}

func TestPatchOperationMirrorsOutput(t *testing.T) {
	fx := newPatchFixture(t, map[string]string{
		"game/day1.rpy": "label start:\n    speaker \"Hello.\"\n    speaker \"Bye.\"\n",
		"game/day2.rpy": "label day2:\n    speaker \"Untranslated.\"\n",
	}, strings.Join([]string{
		`{"id":"u1","file":"game/day1.rpy","line":2,"idx":0,"en":"Hello.","zh":"你好。"}`,
		`{"id":"u2","file":"game/day1.rpy","line":3,"idx":0,"en":"Bye.","zh":"再见。"}`,
	}, "\n"), nil)

	require.NoError(t, fx.op.Execute(context.Background()))

	patched, err := os.ReadFile(filepath.Join(fx.outDir, "game", "day1.zh.rpy"))
	require.NoError(t, err)
	assert.Equal(t, "label start:\n    speaker \"你好。\"\n    speaker \"再见。\"\n", string(patched))

	// Files without units are never mirrored.
	_, err = os.Stat(filepath.Join(fx.outDir, "game", "day2.zh.rpy"))
	assert.True(t, os.IsNotExist(err))

	summary := fx.rows.Summary()
	assert.Equal(t, 2, summary[report.StatusOK])
	assert.Equal(t, 0, summary[report.StatusFail])

	// Progress reaches the target count: only day1 owns units.
	processed, total := fx.mgr.Progress(context.Background())
	assert.Equal(t, 1, processed)
	assert.Equal(t, 1, total)

	// Report lands beside the translations file.
	data, err := os.ReadFile(fx.cfg.Report)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id\tfile\tstatus\tmethod\tmessage", lines[0])
}

func TestPatchOperationDryRunWritesNothing(t *testing.T) {
	fx := newPatchFixture(t, map[string]string{
		"script.rpy": `speaker "Hello."` + "\n",
	}, `{"id":"u1","file":"script.rpy","line":1,"idx":0,"en":"Hello.","zh":"你好。"}`,
		func(cfg *config.Config) { cfg.DryRun = true })

	require.NoError(t, fx.op.Execute(context.Background()))

	_, err := os.Stat(filepath.Join(fx.outDir, "script.zh.rpy"))
	assert.True(t, os.IsNotExist(err))
	// The ledger still records what would have happened.
	assert.Equal(t, 1, fx.rows.Summary()[report.StatusOK])
}

func TestPatchOperationTracksFailures(t *testing.T) {
	fx := newPatchFixture(t, map[string]string{
		"script.rpy": `speaker "Hello."` + "\n",
	}, `{"id":"u1","file":"script.rpy","line":1,"idx":0,"en":"Completely absent text.","zh":"缺失"}`, nil)

	require.NoError(t, fx.op.Execute(context.Background()))

	files, err := fx.mgr.ListFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, status.StatusFailed, files[0].Status)
	assert.Equal(t, 1, files[0].Failures)

	_, err = os.Stat(filepath.Join(fx.outDir, "script.zh.rpy"))
	assert.True(t, os.IsNotExist(err))
}

func TestPatchOperationConcurrentFiles(t *testing.T) {
	sources := map[string]string{}
	var lines []string
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		sources["game/"+name+".rpy"] = `speaker "Hello."` + "\n"
		lines = append(lines, `{"id":"`+name+`","file":"game/`+name+`.rpy","line":1,"idx":0,"en":"Hello.","zh":"你好。"}`)
	}
	fx := newPatchFixture(t, sources, strings.Join(lines, "\n"),
		func(cfg *config.Config) { cfg.Workers = 4 })

	require.NoError(t, fx.op.Execute(context.Background()))

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		patched, err := os.ReadFile(filepath.Join(fx.outDir, "game", name+".zh.rpy"))
		require.NoError(t, err)
		assert.Equal(t, "speaker \"你好。\"\n", string(patched))
	}
	assert.Equal(t, 5, fx.rows.Summary()[report.StatusOK])

	processed, total := fx.mgr.Progress(context.Background())
	assert.Equal(t, 5, processed)
	assert.Equal(t, 5, total)
}

func TestPatchOperationName(t *testing.T) {
	fx := newPatchFixture(t, nil, "", nil)
	assert.Equal(t, "patch", fx.op.Name())
}

func TestMirrorPath(t *testing.T) {
	assert.Equal(t, "game/script.zh.rpy", mirrorPath("game/script.rpy", ".zh.rpy"))
	assert.Equal(t, "intro.cn.rpy", mirrorPath("intro.rpy", ".cn.rpy"))
}
