package dsl_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/quire/dsl"
)

const sampleDSL = `
// Lewis Carroll, 1865
book alice "Alice's Adventures in Wonderland" {
  meta {
    author: "Lewis Carroll"
    year: 1865
    language: en
  }

  chapter ch1 "Down the Rabbit-Hole" {
    "Alice was beginning to get very tired of sitting by her sister on the bank."
    "So she was considering in her own mind " +
      "(as well as she could, for the hot day made her feel very sleepy and stupid)."
    "Published ${year} by ${author}."
  }

  /* 空章节也会保留 */
  chapter ch2 "The Pool of Tears" {
  }

  chapter ch3 "${publisher|Macmillan} edition" {
    "Reader: ${reader|anonymous}"; "Unknown: ${missing}"
  }
}
`

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if doc.ID != "alice" {
		t.Fatalf("expected book id alice, got %s", doc.ID)
	}
	if doc.Title == nil || string(*doc.Title) != "Alice's Adventures in Wonderland" {
		t.Fatalf("unexpected title %v", doc.Title)
	}
	if len(doc.Sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(doc.Sections))
	}
	kinds := []string{"meta", "chapter", "chapter", "chapter"}
	for i, want := range kinds {
		if got := doc.Sections[i].Kind(); got != want {
			t.Fatalf("section %d kind = %s, want %s", i, got, want)
		}
	}
	meta := doc.Sections[0].Meta
	if len(meta.Entries) != 3 || meta.Entries[1].Value.Text() != "1865" || meta.Entries[2].Value.Text() != "en" {
		t.Fatalf("unexpected meta entries")
	}
	ch1 := doc.Sections[1].Chapter
	if len(ch1.Paragraphs) != 3 {
		t.Fatalf("expected 3 paragraphs in ch1, got %d", len(ch1.Paragraphs))
	}
	if got := ch1.Paragraphs[1].Text(); !strings.HasPrefix(got, "So she was considering in her own mind (as well") {
		t.Fatalf("joined paragraph = %q", got)
	}
}

func TestToBook(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	b, err := dsl.ToBook(doc)
	if err != nil {
		t.Fatalf("ToBook: %v", err)
	}
	if b.ID != "alice" || b.Author != "Lewis Carroll" || b.Meta["year"] != "1865" {
		t.Fatalf("unexpected book header: %+v", b)
	}
	if len(b.Chapters) != 3 {
		t.Fatalf("expected 3 chapters, got %d", len(b.Chapters))
	}
	if got := b.Chapters[0].Paragraphs[2]; got != "Published 1865 by Lewis Carroll." {
		t.Fatalf("interpolated paragraph = %q", got)
	}
	if len(b.Chapters[1].Paragraphs) != 0 {
		t.Fatalf("empty chapter should have no paragraphs")
	}
	ch3 := b.Chapters[2]
	if ch3.Title != "Macmillan edition" {
		t.Fatalf("chapter title fallback = %q", ch3.Title)
	}
	if ch3.Paragraphs[0] != "Reader: anonymous" || ch3.Paragraphs[1] != "Unknown: ${missing}" {
		t.Fatalf("unexpected ch3 paragraphs %q", ch3.Paragraphs)
	}
	if b.ParagraphCount() != 5 {
		t.Fatalf("paragraph count = %d", b.ParagraphCount())
	}
}

func TestToBookRejectsDuplicateChapters(t *testing.T) {
	doc, err := dsl.ParseString(`book dup {
  chapter a "One" { "x" }
  chapter a "Again" { "y" }
}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if _, err := dsl.ToBook(doc); !errors.Is(err, dsl.ErrDuplicateChapter) {
		t.Fatalf("expected ErrDuplicateChapter, got %v", err)
	}
}

func TestChapterTitleDefaultsToID(t *testing.T) {
	doc, err := dsl.ParseString(`book t { chapter intro { "hi" } }`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	b, err := dsl.ToBook(doc)
	if err != nil {
		t.Fatalf("ToBook: %v", err)
	}
	if b.Title != "" || b.Chapters[0].Title != "intro" {
		t.Fatalf("unexpected titles: book=%q chapter=%q", b.Title, b.Chapters[0].Title)
	}
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		`book { }`,
		`book x "t" { chapter c { "unterminated } }`,
		`novel x { }`,
	} {
		if _, err := dsl.ParseString(src); err == nil {
			t.Fatalf("expected parse error for %q", src)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alice"+dsl.FileExt)
	if err := os.WriteFile(path, []byte(sampleDSL), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := dsl.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if b.ID != "alice" {
		t.Fatalf("unexpected id %q", b.ID)
	}
	if _, err := dsl.LoadFile(filepath.Join(t.TempDir(), "absent.book")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
