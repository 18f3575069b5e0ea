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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "patch.yaml", `
root: ./game
translations: ./translated.jsonl
output: ./patched
glob: "**/*.rpy"
exclude_dirs:
  - tl
  - cache
dry_run: true
workers: 4
`)

	cfg, err := Load(testLogger(), path)
	require.NoError(t, err)

	assert.Equal(t, "game", cfg.Root)
	assert.Equal(t, "translated.jsonl", cfg.Translations)
	assert.Equal(t, "./patched", cfg.Output)
	assert.Equal(t, []string{"tl", "cache"}, cfg.ExcludeDirs)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoadHCL(t *testing.T) {
	path := writeConfig(t, "patch.hcl", `
root         = "./game"
translations = "./translated.jsonl"
suffix       = ".cn.rpy"
backup       = true
`)

	cfg, err := Load(testLogger(), path)
	require.NoError(t, err)

	assert.Equal(t, "game", cfg.Root)
	assert.Equal(t, ".cn.rpy", cfg.Suffix)
	assert.True(t, cfg.Backup)
}

func TestValidateDefaults(t *testing.T) {
	cfg := &Config{Root: "./game", Translations: "./out/translated.jsonl"}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "out_patch", cfg.Output)
	assert.Equal(t, "**/*.rpy", cfg.Glob)
	assert.Equal(t, []string{"tl"}, cfg.ExcludeDirs)
	assert.Equal(t, ".zh.rpy", cfg.Suffix)
	assert.Equal(t, filepath.Join("out", "translated.patch_report.tsv"), cfg.Report)
	assert.Equal(t, 0, cfg.Workers)
}

func TestValidateRequiredFields(t *testing.T) {
	err := (&Config{Translations: "t.jsonl"}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root is required")

	err = (&Config{Root: "."}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "translations is required")

	err = (&Config{Root: ".", Translations: "t.jsonl", Workers: -1}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers")
}

func TestLoadRejectsUnknownYAMLField(t *testing.T) {
	path := writeConfig(t, "patch.yaml", `
root: ./game
translations: ./t.jsonl
no_such_option: true
`)

	_, err := Load(testLogger(), path)
	assert.Error(t, err)
}

func TestLoadUnknownExtension(t *testing.T) {
	path := writeConfig(t, "patch.toml", `root = "./game"`)

	_, err := Load(testLogger(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no parser found")
}

func TestGetParser(t *testing.T) {
	assert.IsType(t, &YAMLParser{}, GetParser("a.yaml"))
	assert.IsType(t, &YAMLParser{}, GetParser("a.yml"))
	assert.IsType(t, &HCLParser{}, GetParser("a.hcl"))
	assert.Nil(t, GetParser("a.json"))
}
