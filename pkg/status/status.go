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

package status

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 FileStatus represents the outcome of patching one file
type FileStatus int

const (
	StatusUnknown FileStatus = iota
	StatusPatched            // At least one replacement applied
	StatusSkipped            // No units resolved for this file
	StatusFailed             // All units failed to resolve
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusPatched:
		return "patched"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 FileInfo contains the patch outcome of a file
type FileInfo struct {
	Path     string     // Relative path to the file
	Status   FileStatus // Patch outcome
	Applied  int        // Replacements applied
	Warnings int        // WARN rows emitted
	Failures int        // FAIL rows emitted
	Error    error      // Any error associated with this file
}

// 💾 FileManager handles all file system operations for mirrored output
type FileManager interface {
	WriteFileAtomic(ctx context.Context, path string, content []byte) error
	BackupFile(ctx context.Context, path string) error
}

// 📈 StatusReporter tracks file outcomes and reports progress
type StatusReporter interface {
	TrackFile(ctx context.Context, path string, info FileInfo)
	ListFiles(ctx context.Context) ([]FileInfo, error)

	StartOperation(ctx context.Context, total int)
	UpdateProgress(ctx context.Context, processed int)
	Progress(ctx context.Context) (processed, total int)
	FinishOperation(ctx context.Context)
}

// 🔧 Manager implements both FileManager and StatusReporter. Writes are
// confined to baseDir; escaping paths are rejected before touching disk.
type Manager struct {
	baseDir string
	logger  *zerolog.Logger

	mu    sync.RWMutex
	files map[string]FileInfo

	total     int
	processed int
}

// 🏭 New creates a new status manager rooted at baseDir
func New(baseDir string, logger *zerolog.Logger) *Manager {
	return &Manager{
		baseDir: filepath.Clean(baseDir),
		logger:  logger,
		files:   make(map[string]FileInfo),
	}
}

// 🔒 safeAbsPath joins path onto baseDir and rejects traversal outside it
func (m *Manager) safeAbsPath(path string) (string, error) {
	abs := filepath.Join(m.baseDir, path)
	rel, err := filepath.Rel(m.baseDir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("unsafe output path: %s", path)
	}
	return abs, nil
}

func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	abs, err := m.safeAbsPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	tempPath := abs + ".tmp"
	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tempPath, abs); err != nil {
		os.Remove(tempPath) // Clean up temp file
		return errors.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func (m *Manager) BackupFile(ctx context.Context, path string) error {
	abs, err := m.safeAbsPath(path)
	if err != nil {
		return err
	}
	backupPath := abs + ".bak"

	// Only backup if file exists
	if _, err := os.Stat(abs); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return errors.Errorf("checking file existence: %w", err)
	}

	if err := copyFile(abs, backupPath); err != nil {
		return errors.Errorf("creating backup: %w", err)
	}
	return nil
}

// StatusReporter interface implementation

func (m *Manager) TrackFile(ctx context.Context, path string, info FileInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = info

	m.logger.Debug().
		Str("path", path).
		Str("status", info.Status.String()).
		Int("applied", info.Applied).
		Msg("tracked file")
}

func (m *Manager) ListFiles(ctx context.Context) ([]FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	files := make([]FileInfo, 0, len(m.files))
	for _, info := range m.files {
		files = append(files, info)
	}
	return files, nil
}

func (m *Manager) StartOperation(ctx context.Context, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total = total
	m.processed = 0
}

// UpdateProgress is monotonic: concurrent reporters may land out of order,
// so a stale lower count never rolls the progress back.
func (m *Manager) UpdateProgress(ctx context.Context, processed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if processed > m.processed {
		m.processed = processed
	}
	m.logger.Debug().Int("processed", m.processed).Int("total", m.total).Msg("progress")
}

func (m *Manager) Progress(ctx context.Context) (processed, total int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.processed, m.total
}

func (m *Manager) FinishOperation(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger.Info().Int("processed", m.processed).Int("total", m.total).Msg("operation finished")
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Errorf("creating destination: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Errorf("copying content: %w", err)
	}
	return nil
}
