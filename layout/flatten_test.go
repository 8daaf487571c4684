package layout

import (
	"reflect"
	"testing"

	"github.com/ByLCY/quire/book"
)

func twoChapterBook() *book.Book {
	return &book.Book{
		ID:    "b1",
		Title: "Two Chapters",
		Chapters: []book.Chapter{
			{ID: "a", Title: "Alpha", Paragraphs: []string{"a1", "a2"}},
			{ID: "b", Title: "Beta", Paragraphs: []string{"b1", "b2"}},
		},
	}
}

func TestFlattenOrderAndCount(t *testing.T) {
	b := &book.Book{Chapters: []book.Chapter{
		{ID: "c1", Title: "One", Paragraphs: []string{"p1", "p2", "p3"}},
		{ID: "c2", Title: "Two", Paragraphs: nil},
		{ID: "c3", Title: "Three", Paragraphs: []string{"q1"}},
	}}
	units := Flatten(b)
	// C + P = 3 + 4
	if len(units) != 7 {
		t.Fatalf("expected 7 units, got %d", len(units))
	}
	want := []ContentUnit{
		{Text: "One", ChapterID: "c1", ChapterTitle: "One", Kind: KindChapterHeading},
		{Text: "p1", ChapterID: "c1", ChapterTitle: "One", Kind: KindParagraph},
		{Text: "p2", ChapterID: "c1", ChapterTitle: "One", Kind: KindParagraph},
		{Text: "p3", ChapterID: "c1", ChapterTitle: "One", Kind: KindParagraph},
		{Text: "Two", ChapterID: "c2", ChapterTitle: "Two", Kind: KindChapterHeading},
		{Text: "Three", ChapterID: "c3", ChapterTitle: "Three", Kind: KindChapterHeading},
		{Text: "q1", ChapterID: "c3", ChapterTitle: "Three", Kind: KindParagraph},
	}
	if !reflect.DeepEqual(units, want) {
		t.Fatalf("unexpected flatten result:\n got=%+v\nwant=%+v", units, want)
	}
}

func TestFlattenIsDeterministic(t *testing.T) {
	b := twoChapterBook()
	first := Flatten(b)
	second := Flatten(b)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("flatten must be idempotent")
	}
	// 修改结果不应影响原书。
	first[1].Text = "changed"
	if b.Chapters[0].Paragraphs[0] != "a1" {
		t.Fatalf("flatten must not alias book content")
	}
}

func TestFlattenNilAndEmpty(t *testing.T) {
	if got := Flatten(nil); got == nil || len(got) != 0 {
		t.Fatalf("nil book must flatten to an empty, non-nil slice")
	}
	if got := Flatten(&book.Book{}); len(got) != 0 {
		t.Fatalf("book without chapters must flatten to nothing, got %d", len(got))
	}
}
