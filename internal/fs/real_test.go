package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestReal_Exists_ReturnsFalseForNonExistent(t *testing.T) {
	t.Parallel()

	exists, err := NewReal().Exists(filepath.Join(t.TempDir(), "missing.go"))

	if got, want := err, error(nil); !errors.Is(got, want) {
		t.Fatalf("err=%v, want=%v", got, want)
	}

	if got, want := exists, false; got != want {
		t.Fatalf("exists=%v, want=%v", got, want)
	}
}

func TestReal_Exists_ReturnsTrueForFileAndDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")

	if err := os.WriteFile(path, []byte("package main\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	for _, p := range []string{dir, path} {
		exists, err := NewReal().Exists(p)
		if err != nil {
			t.Fatalf("Exists(%s): %v", p, err)
		}

		if !exists {
			t.Errorf("Exists(%s)=false, want=true", p)
		}
	}
}

func TestReal_WriteFileAtomic_Replaces_Content_And_Applies_Mode(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "todos.csv")
	fsys := NewReal()

	if err := fsys.WriteFileAtomic(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}

	if err := fsys.WriteFileAtomic(path, []byte("new"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if got, want := string(data), "new"; got != want {
		t.Errorf("content=%q, want=%q", got, want)
	}

	info, err := fsys.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	if got, want := info.Mode().Perm(), os.FileMode(0o644); got != want {
		t.Errorf("mode=%v, want=%v", got, want)
	}
}

func TestReal_WriteFileAtomic_Fails_When_Dir_Missing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nope", "todos.csv")

	if err := NewReal().WriteFileAtomic(path, []byte("x"), 0o644); err == nil {
		t.Fatal("expected error writing into a missing directory")
	}
}
