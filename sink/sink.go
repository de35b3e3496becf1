// Package sink provides destinations for generated TypeScript files.
package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// OutputSink receives generated files.
// Implementations must be safe for concurrent calls.
type OutputSink interface {
	// WriteFile writes content to name, a clean slash-separated relative path.
	WriteFile(ctx context.Context, name string, content []byte) error
}

// FilesystemSink writes files below a directory.
// Create with NewFilesystemSink and configure with method chaining.
type FilesystemSink struct {
	root          string
	mode          os.FileMode
	overwrite     bool
	skipUnchanged bool
	logger        *slog.Logger
}

// NewFilesystemSink returns a sink writing below root with mode 0644,
// replacing existing files.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{
		root:      root,
		mode:      0o644,
		overwrite: true,
	}
}

// WithMode sets the permission bits of written files.
func (s *FilesystemSink) WithMode(mode os.FileMode) *FilesystemSink {
	s.mode = mode
	return s
}

// WithOverwrite controls whether existing files may be replaced.
// When false, writing to an existing file fails with fs.ErrExist.
func (s *FilesystemSink) WithOverwrite(overwrite bool) *FilesystemSink {
	s.overwrite = overwrite
	return s
}

// WithSkipUnchanged leaves files alone when their content would not change,
// so watchers of the output directory see no event.
func (s *FilesystemSink) WithSkipUnchanged(skip bool) *FilesystemSink {
	s.skipUnchanged = skip
	return s
}

// WithLogger sets the logger used for debug output.
// If not set, slog.Default() will be used.
func (s *FilesystemSink) WithLogger(logger *slog.Logger) *FilesystemSink {
	s.logger = logger
	return s
}

// Root returns the output directory.
func (s *FilesystemSink) Root() string {
	return s.root
}

func (s *FilesystemSink) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

// WriteFile atomically writes content to name below the root: the data is
// written to a temporary file in the target directory and then renamed
// (or hard-linked, when overwriting is disabled) into place.
func (s *FilesystemSink) WriteFile(ctx context.Context, name string, content []byte) error {
	if err := ValidatePath(name); err != nil {
		return fmt.Errorf("invalid path %q: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := s.resolve(name)
	if err != nil {
		return err
	}

	if s.skipUnchanged {
		if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, content) {
			s.log().Debug("output unchanged", slog.String("file", target))
			return nil
		}
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	tmp, err := writeTemp(dir, content, s.fileMode())
	if err != nil {
		return err
	}
	// Leftovers carry the .rpctree-*.tmp prefix; removal is best effort.
	defer os.Remove(tmp)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.commit(tmp, target); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("file already exists: %q: %w", name, fs.ErrExist)
		}
		return err
	}

	s.log().Debug("wrote output", slog.String("file", target), slog.Int("bytes", len(content)))
	return nil
}

func (s *FilesystemSink) fileMode() os.FileMode {
	if s.mode == 0 {
		return 0o644
	}
	return s.mode
}

// resolve maps name to a filesystem path and rejects anything that would
// land outside the root.
func (s *FilesystemSink) resolve(name string) (string, error) {
	absRoot, err := filepath.Abs(s.root)
	if err != nil {
		return "", fmt.Errorf("resolve output directory: %w", err)
	}
	target := filepath.Join(absRoot, filepath.FromSlash(name))
	rel, err := filepath.Rel(absRoot, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes output directory: %q", name)
	}
	return target, nil
}

func (s *FilesystemSink) commit(tmp, target string) error {
	if s.overwrite {
		if err := os.Rename(tmp, target); err != nil {
			return fmt.Errorf("rename temp file: %w", err)
		}
		return nil
	}
	// Link fails with EEXIST instead of racing a stat.
	if err := os.Link(tmp, target); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fs.ErrExist
		}
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

func writeTemp(dir string, content []byte, mode os.FileMode) (string, error) {
	f, err := os.CreateTemp(dir, ".rpctree-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	name := f.Name()

	_, err = f.Write(content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(name, mode)
	}
	if err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	return name, nil
}

// MemorySink keeps generated files in memory. It is safe for concurrent use.
type MemorySink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// WriteFile stores a copy of content under name.
func (s *MemorySink) WriteFile(ctx context.Context, name string, content []byte) error {
	if err := ValidatePath(name); err != nil {
		return fmt.Errorf("invalid path %q: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = bytes.Clone(content)
	return nil
}

// Get returns a copy of the named file, or nil.
func (s *MemorySink) Get(name string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return bytes.Clone(s.files[name])
}

// Paths returns the names of all stored files, sorted.
func (s *MemorySink) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset removes all stored files.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.files)
}

// ValidatePath reports whether name is a clean, relative, slash-separated
// path that stays within the output directory.
func ValidatePath(name string) error {
	switch {
	case name == "" || name == ".":
		return errors.New("path is empty")
	case strings.HasPrefix(name, "/") || filepath.IsAbs(name) || hasDriveLetter(name):
		return errors.New("absolute paths not allowed")
	case strings.Contains(name, `\`):
		return errors.New("backslashes not allowed")
	}
	for _, elem := range strings.Split(name, "/") {
		if elem == ".." {
			return errors.New("path traversal not allowed")
		}
	}
	if cleaned := path.Clean(name); cleaned != name {
		return fmt.Errorf("path is not clean (expected %q)", cleaned)
	}
	return nil
}

func hasDriveLetter(name string) bool {
	if len(name) < 2 || name[1] != ':' {
		return false
	}
	c := name[0] | 0x20
	return c >= 'a' && c <= 'z'
}
