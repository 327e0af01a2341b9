// Copyright 2025 walteh LLC
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
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrInvalidEncoding is returned by Load for files that are not UTF-8 text.
	ErrInvalidEncoding = errors.Base("file is not valid UTF-8")

	// ErrConcurrentModification is returned by Commit when the file changed on
	// disk after it was loaded.
	ErrConcurrentModification = errors.Base("file changed since it was loaded")
)

// 📊 FileStatus represents what a run did to a file
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusModified             // new content was written
	StatusUnchanged            // content matched, nothing was written
	StatusFailed               // the file could not be read, patched or written
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusModified:
		return "modified"
	case StatusUnchanged:
		return "unchanged"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 Document is a loaded source file
type Document struct {
	Path     string      // path as given to Load
	AbsPath  string      // path on disk
	Content  string      // UTF-8 text
	Mode     os.FileMode // permissions, restored on commit
	Checksum string      // sha256 of Content at load time
}

// 📄 FileInfo contains what happened to one file during a run
type FileInfo struct {
	Path         string     // path as given to Load
	RuleSet      string     // rule set that ran on the file
	Status       FileStatus // final status
	Replacements int        // rewritten occurrences
	Pending      bool       // modified content was not written (dry run)
	Checksum     string     // content hash after the run
	Error        error      // any error associated with this file
}

// tempFile is the part of *os.File the atomic writer needs.
type tempFile interface {
	io.Writer
	Name() string
	Chmod(mode os.FileMode) error
	Sync() error
	Close() error
}

// 🔧 Manager loads and atomically rewrites files under a base directory and
// tracks what happened to each of them.
type Manager struct {
	baseDir   string        // base directory for relative paths
	backup    bool          // write <path>.bak before replacing a file
	formatter FileFormatter // formatter for status messages

	createTemp func(dir, pattern string) (tempFile, error)

	mu    sync.RWMutex
	files map[string]FileInfo
}

// Option configures a Manager
type Option func(*Manager)

// WithBackup keeps a .bak copy of every file before it is replaced.
func WithBackup(enabled bool) Option {
	return func(m *Manager) {
		m.backup = enabled
	}
}

// WithFormatter replaces the default status formatter.
func WithFormatter(f FileFormatter) Option {
	return func(m *Manager) {
		m.formatter = f
	}
}

// 🏭 New creates a new status manager
func New(baseDir string, opts ...Option) *Manager {
	m := &Manager{
		baseDir:   filepath.Clean(baseDir),
		formatter: NewDefaultFileFormatter(),
		createTemp: func(dir, pattern string) (tempFile, error) {
			return os.CreateTemp(dir, pattern)
		},
		files: make(map[string]FileInfo),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// 🔒 getAbsPath returns the absolute path for a given path
func (m *Manager) getAbsPath(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(m.baseDir, path)
}

// 🔍 calculateChecksum generates a SHA-256 hash of the content
func calculateChecksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// Load reads a UTF-8 text file.
func (m *Manager) Load(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Errorf("loading %s: %w", path, err)
	}

	absPath := m.getAbsPath(path)
	content, mode, err := readFile(absPath)
	if err != nil {
		return nil, errors.Errorf("loading %s: %w", path, err)
	}

	if !utf8.Valid(content) {
		return nil, errors.Errorf("loading %s: %w", path, ErrInvalidEncoding)
	}

	doc := &Document{
		Path:     path,
		AbsPath:  absPath,
		Content:  string(content),
		Mode:     mode,
		Checksum: calculateChecksum(content),
	}

	zerolog.Ctx(ctx).Debug().
		Str("path", path).
		Int("bytes", len(content)).
		Str("checksum", doc.Checksum).
		Msg("loaded file")

	return doc, nil
}

func readFile(path string) ([]byte, os.FileMode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, errors.Errorf("opening file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, 0, errors.Errorf("reading file info: %w", err)
	}
	if info.IsDir() {
		return nil, 0, errors.Errorf("%s is a directory", path)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, 0, errors.Errorf("reading file: %w", err)
	}
	return content, info.Mode().Perm(), nil
}

// Commit replaces the document's file with content. Unchanged content is not
// written. On any failure the original file is left as it was.
func (m *Manager) Commit(ctx context.Context, doc *Document, content string) (FileStatus, error) {
	if doc == nil {
		return StatusUnknown, errors.New("document is required")
	}
	if content == doc.Content {
		return StatusUnchanged, nil
	}
	if err := ctx.Err(); err != nil {
		return StatusFailed, errors.Errorf("committing %s: %w", doc.Path, err)
	}

	current, _, err := readFile(doc.AbsPath)
	if err != nil {
		return StatusFailed, errors.Errorf("committing %s: %w", doc.Path, err)
	}
	if calculateChecksum(current) != doc.Checksum {
		return StatusFailed, errors.Errorf("committing %s: %w", doc.Path, ErrConcurrentModification)
	}

	if m.backup {
		if err := m.writeAtomic(doc.AbsPath+".bak", current, doc.Mode); err != nil {
			return StatusFailed, errors.Errorf("backing up %s: %w", doc.Path, err)
		}
	}

	if err := m.writeAtomic(doc.AbsPath, []byte(content), doc.Mode); err != nil {
		return StatusFailed, errors.Errorf("committing %s: %w", doc.Path, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("path", doc.Path).
		Bool("backup", m.backup).
		Msg("committed file")

	return StatusModified, nil
}

// writeAtomic writes content to a temp file next to path and renames it over
// path. The temp file never outlives a failed write.
func (m *Manager) writeAtomic(path string, content []byte, mode os.FileMode) (err error) {
	tmp, err := m.createTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}

	closed := false
	defer func() {
		if err == nil {
			return
		}
		if !closed {
			_ = tmp.Close()
		}
		_ = os.Remove(tmp.Name())
	}()

	if _, err = tmp.Write(content); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}
	if err = tmp.Chmod(mode); err != nil {
		return errors.Errorf("setting temp file mode: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return errors.Errorf("syncing temp file: %w", err)
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// TrackFile records the result for a file and logs it.
func (m *Manager) TrackFile(ctx context.Context, info FileInfo) {
	m.mu.Lock()
	m.files[info.Path] = info
	m.mu.Unlock()

	logger := zerolog.Ctx(ctx)
	if info.Error != nil {
		logger.Debug().Str("path", info.Path).Err(info.Error).Msg(m.formatter.FormatError(info.Error))
		return
	}
	logger.Debug().
		Str("path", info.Path).
		Str("status", info.Status.String()).
		Int("replacements", info.Replacements).
		Msg(m.formatter.FormatFileOperation(info.Path, info.RuleSet, info.Status))
}

// Formatter returns the formatter used for status messages.
func (m *Manager) Formatter() FileFormatter {
	return m.formatter
}

// GetFileInfo returns the tracked result for a file.
func (m *Manager) GetFileInfo(path string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.files[path]
	if !ok {
		return FileInfo{}, errors.Errorf("file not tracked: %s", path)
	}
	return info, nil
}

// ListFiles returns every tracked result, sorted by path.
func (m *Manager) ListFiles() []FileInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]FileInfo, 0, len(m.files))
	for _, info := range m.files {
		files = append(files, info)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files
}

// Counts returns the number of tracked files per status.
func (m *Manager) Counts() map[FileStatus]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := map[FileStatus]int{}
	for _, info := range m.files {
		out[info.Status]++
	}
	return out
}
