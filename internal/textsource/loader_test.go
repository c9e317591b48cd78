package textsource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadFlattensLineBreaks(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "first line\nsecond\r\nthird\rend\n")

	got, err := New(0).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := "first line second third end "
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	got, err := New(0).Load(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, apperrors.ErrIOFailure) {
		t.Fatalf("expected io failure, got %v", err)
	}
	if got != "" {
		t.Errorf("expected empty text, got %q", got)
	}
}

func TestLoadRespectsLimit(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "big.txt", "0123456789")

	if _, err := New(5).Load(context.Background(), path); !errors.Is(err, apperrors.ErrIOFailure) {
		t.Errorf("expected io failure for oversized file, got %v", err)
	}
	if got, err := New(10).Load(context.Background(), path); err != nil || got != "0123456789" {
		t.Errorf("expected file at the limit to load, got %q, %v", got, err)
	}
}

func TestLoadCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(0).Load(ctx, "whatever.txt"); !errors.Is(err, apperrors.ErrIOFailure) {
		t.Errorf("expected io failure, got %v", err)
	}
}

func TestListDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", "b")
	writeFile(t, dir, "a.TXT", "a")
	writeFile(t, dir, "notes.md", "m")
	if err := os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := ListDir(dir, ".txt")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{filepath.Join(dir, "a.TXT"), filepath.Join(dir, "b.txt")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	all, _ := ListDir(dir)
	if len(all) != 3 {
		t.Errorf("expected 3 files, got %v", all)
	}
}
