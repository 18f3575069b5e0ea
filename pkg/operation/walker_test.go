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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestDiscoverFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"script.rpy":            "",
		"game/day1.rpy":         "",
		"game/assets/notes.txt": "",
		"tl/chinese/day1.rpy":   "",
		"cache/old.rpy":         "",
	})

	files, err := discoverFiles(root, "**/*.rpy", []string{"tl", "cache"})
	require.NoError(t, err)

	assert.Equal(t, []string{"game/day1.rpy", "script.rpy"}, files)
}

func TestDiscoverFilesGlobRestricts(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"game/day1.rpy": "",
		"game/day2.rpy": "",
		"intro.rpy":     "",
	})

	files, err := discoverFiles(root, "game/*.rpy", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"game/day1.rpy", "game/day2.rpy"}, files)
}

func TestDiscoverFilesCaseInsensitiveExtension(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"upper.RPY": "",
		"lower.rpy": "",
	})

	files, err := discoverFiles(root, "**/*", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"lower.rpy", "upper.RPY"}, files)
}

func TestDiscoverFilesEmptyTree(t *testing.T) {
	files, err := discoverFiles(t.TempDir(), "**/*.rpy", []string{"tl"})
	require.NoError(t, err)
	assert.Empty(t, files)
}
