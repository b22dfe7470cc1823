package localfs

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

func TestSaveAndOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "storage")
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := s.Save(context.Background(), "doc-1_report.txt", strings.NewReader("hello")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	rc, err := s.Open(context.Background(), "doc-1_report.txt")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(raw) != "hello" {
		t.Fatalf("expected hello, got %q", raw)
	}
	if _, err := os.Stat(filepath.Join(dir, "doc-1_report.txt.part")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected temp file to be gone, got %v", err)
	}
}

func TestRejectsKeysOutsideBase(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for _, key := range []string{"", "../escape.txt", "a/b.txt", ".hidden"} {
		if err := s.Save(context.Background(), key, strings.NewReader("x")); !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("Save(%q) expected invalid input, got %v", key, err)
		}
		if _, err := s.Open(context.Background(), key); !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("Open(%q) expected invalid input, got %v", key, err)
		}
	}
}

func TestOpenMissingFile(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := s.Open(context.Background(), "missing.pdf"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}
