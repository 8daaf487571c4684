package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleBook = `book alice "Alice" {
  chapter ch1 "Down the Rabbit-Hole" {
    "Alice was beginning to get very tired."
  }
}
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadSkipsBrokenAndUnsupported(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "alice.book", sampleBook)
	writeFile(t, dir, "broken.book", "book {")
	writeFile(t, dir, "notes.txt", "ignored")
	writeFile(t, dir, "fake.epub", "not a zip")
	if err := os.Mkdir(filepath.Join(dir, "nested.book"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	reg, err := Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected 1 book, got %v", reg.IDs())
	}
	b, ok := reg.Get("alice")
	if !ok || b.Title != "Alice" || len(b.Chapters) != 1 {
		t.Fatalf("unexpected book: %+v", b)
	}
}

func TestLoadMissingDir(t *testing.T) {
	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}

func TestLoadCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "alice.book", sampleBook)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Load(ctx, dir); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSupported(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"a.book", true},
		{"B.EPUB", true},
		{"c.txt", false},
		{"book", false},
	}
	for _, c := range cases {
		if got := Supported(c.name); got != c.want {
			t.Fatalf("Supported(%q) = %v, want %v", c.name, got, c.want)
		}
	}
	if _, err := LoadBook("x.pdf"); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}
