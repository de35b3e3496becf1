package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "simple", path: "handlers.ts"},
		{name: "nested", path: "api/v1/methods.ts"},
		{name: "dots in name", path: "type-helpers.d.ts"},
		{name: "double dots in name", path: "a..b.ts"},
		{name: "empty", path: "", wantErr: "empty"},
		{name: "dot", path: ".", wantErr: "empty"},
		{name: "absolute", path: "/etc/passwd", wantErr: "absolute paths not allowed"},
		{name: "drive letter", path: "C:/out.ts", wantErr: "absolute paths not allowed"},
		{name: "backslash", path: `a\b.ts`, wantErr: "backslashes"},
		{name: "parent", path: "..", wantErr: "path traversal"},
		{name: "leading parent", path: "../out.ts", wantErr: "path traversal"},
		{name: "inner parent", path: "a/../b.ts", wantErr: "path traversal"},
		{name: "current dir", path: "./a.ts", wantErr: "not clean"},
		{name: "double slash", path: "a//b.ts", wantErr: "not clean"},
		{name: "trailing slash", path: "a/", wantErr: "not clean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidatePath(%q) = %v", tt.path, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidatePath(%q) = %v, want error containing %q", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestMemorySink(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySink()

	content := []byte("export type A = string;\n")
	if err := s.WriteFile(ctx, "b/a.ts", content); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := s.WriteFile(ctx, "a.ts", []byte("x")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	// Stored content is a copy.
	content[0] = 'X'
	got := s.Get("b/a.ts")
	if string(got) != "export type A = string;\n" {
		t.Errorf("Get = %q", got)
	}
	got[0] = 'Y'
	if s.Get("b/a.ts")[0] != 'e' {
		t.Error("Get should return a copy")
	}

	if s.Get("missing.ts") != nil {
		t.Error("Get of a missing file should be nil")
	}
	if diff := cmp.Diff([]string{"a.ts", "b/a.ts"}, s.Paths()); diff != "" {
		t.Errorf("Paths mismatch (-want +got):\n%s", diff)
	}

	if err := s.WriteFile(ctx, "../x.ts", nil); err == nil {
		t.Error("expected invalid path error")
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if err := s.WriteFile(canceled, "c.ts", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	s.Reset()
	if len(s.Paths()) != 0 {
		t.Error("Reset should remove all files")
	}
}

func TestMemorySink_Concurrent(t *testing.T) {
	s := NewMemorySink()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("f%d.ts", i)
			if err := s.WriteFile(context.Background(), name, []byte(name)); err != nil {
				t.Errorf("WriteFile: %v", err)
			}
			_ = s.Paths()
		}()
	}
	wg.Wait()
	if len(s.Paths()) != 50 {
		t.Errorf("expected 50 files, got %d", len(s.Paths()))
	}
}

func TestFilesystemSink(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewFilesystemSink(root)

	if s.Root() != root {
		t.Errorf("Root() = %q", s.Root())
	}
	if err := s.WriteFile(ctx, "api/methods.ts", []byte("one")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := s.WriteFile(ctx, "api/methods.ts", []byte("two")); err != nil {
		t.Fatalf("WriteFile overwrite: %v", err)
	}

	full := filepath.Join(root, "api", "methods.ts")
	got, err := os.ReadFile(full)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "two" {
		t.Errorf("content = %q, want %q", got, "two")
	}

	info, err := os.Stat(full)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Errorf("mode = %v, want 0644", info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Join(root, "api"))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFilesystemSink_Mode(t *testing.T) {
	root := t.TempDir()
	s := NewFilesystemSink(root).WithMode(0o600)
	if err := s.WriteFile(context.Background(), "a.ts", []byte("x")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	info, err := os.Stat(filepath.Join(root, "a.ts"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestFilesystemSink_NoOverwrite(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewFilesystemSink(root).WithOverwrite(false)

	if err := s.WriteFile(ctx, "a.ts", []byte("first")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	err := s.WriteFile(ctx, "a.ts", []byte("second"))
	if !errors.Is(err, fs.ErrExist) {
		t.Fatalf("expected fs.ErrExist, got %v", err)
	}
	got, _ := os.ReadFile(filepath.Join(root, "a.ts"))
	if string(got) != "first" {
		t.Errorf("content = %q, want %q", got, "first")
	}

	entries, _ := os.ReadDir(root)
	if len(entries) != 1 {
		t.Errorf("expected only a.ts in output directory, got %d entries", len(entries))
	}
}

func TestFilesystemSink_SkipUnchanged(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := NewFilesystemSink(root).WithSkipUnchanged(true).WithLogger(logger)

	if err := s.WriteFile(ctx, "a.ts", []byte("same")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	full := filepath.Join(root, "a.ts")
	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	if err := os.Chtimes(full, past, past); err != nil {
		t.Fatal(err)
	}

	if err := s.WriteFile(ctx, "a.ts", []byte("same")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	info, err := os.Stat(full)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(past) {
		t.Error("unchanged file should not be rewritten")
	}
	if !strings.Contains(logs.String(), "output unchanged") {
		t.Errorf("expected debug log, got %s", logs.String())
	}

	if err := s.WriteFile(ctx, "a.ts", []byte("different")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, _ := os.ReadFile(full)
	if string(got) != "different" {
		t.Errorf("content = %q", got)
	}
}

func TestFilesystemSink_Errors(t *testing.T) {
	root := t.TempDir()
	s := NewFilesystemSink(root)

	for _, name := range []string{"", "/abs.ts", "../escape.ts", "a/../../b.ts"} {
		if err := s.WriteFile(context.Background(), name, nil); err == nil {
			t.Errorf("WriteFile(%q): expected error", name)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.WriteFile(ctx, "a.ts", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "a.ts")); !os.IsNotExist(err) {
		t.Error("canceled write should not create the file")
	}
}

func TestFilesystemSink_Concurrent(t *testing.T) {
	root := t.TempDir()
	s := NewFilesystemSink(root)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			content := []byte(fmt.Sprintf("writer %d", i))
			if err := s.WriteFile(context.Background(), "shared.ts", content); err != nil {
				t.Errorf("WriteFile: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := os.ReadFile(filepath.Join(root, "shared.ts"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(got), "writer ") {
		t.Errorf("torn write: %q", got)
	}
}
