package canvasmeasure

import (
	"testing"
	"unicode/utf8"
)

// monoFace 每个字符宽 1mm。
type monoFace struct{}

func (monoFace) TextWidth(s string) float64 { return float64(utf8.RuneCountInString(s)) }

func TestWrapLinesBreaksAtSpaces(t *testing.T) {
	lines := wrapLines("hello world again", 11, monoFace{})
	want := []string{"hello world", "again"}
	if len(lines) != len(want) {
		t.Fatalf("got %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestWrapLinesHonorsNewlines(t *testing.T) {
	lines := wrapLines("foo\n\nbar", 100, monoFace{})
	if len(lines) != 3 || lines[1] != "" {
		t.Fatalf("expected 3 lines including blank, got %q", lines)
	}
}

// 当第一行宽度与容器宽度恰好相等且后面紧跟一个显式换行时，不应产生额外的空行。
func TestWrapLinesNoBlankLineWhenEqualWidthThenNewline(t *testing.T) {
	lines := wrapLines("SAMPLE-A\nSAMPLE-B", 8, monoFace{})
	if len(lines) != 2 || lines[0] != "SAMPLE-A" || lines[1] != "SAMPLE-B" {
		t.Fatalf("unexpected lines %q", lines)
	}
}

func TestWrapLinesSplitsLongWords(t *testing.T) {
	lines := wrapLines("abcdefghij", 4, monoFace{})
	want := []string{"abcd", "efgh", "ij"}
	if len(lines) != len(want) {
		t.Fatalf("got %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestWrapLinesDropsLeadingSpaceOnContinuation(t *testing.T) {
	lines := wrapLines("aaaa bbbb", 4, monoFace{})
	if len(lines) != 2 || lines[1] != "bbbb" {
		t.Fatalf("unexpected lines %q", lines)
	}
}

func TestCountLinesBlankText(t *testing.T) {
	if n := countLines("   ", 10, monoFace{}); n != 0 {
		t.Fatalf("blank text lines = %d, want 0", n)
	}
	if n := countLines("", 10, monoFace{}); n != 0 {
		t.Fatalf("empty text lines = %d, want 0", n)
	}
}
