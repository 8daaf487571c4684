package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `\d+(?:\.\d+)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[:;+]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document is the root AST node for a .book file.
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	ID       string         `parser:"Newline* 'book' @(Ident | Number)"`
	Title    *StringLiteral `parser:"@String?"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section is either the meta block or a chapter.
type Section struct {
	Meta    *MetaSection    `parser:"  @@"`
	Chapter *ChapterSection `parser:"| @@"`
}

// Kind returns the human-readable section type.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Meta != nil:
		return "meta"
	case s.Chapter != nil:
		return "chapter"
	default:
		return "unknown"
	}
}

// MetaSection captures metadata assignments.
type MetaSection struct {
	Entries []*Assignment `parser:"'meta' '{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Assignment uses colon syntax (key: value).
type Assignment struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident"`
	Value *Value         `parser:"':' Newline* @@"`
}

// Value is a scalar meta value; numbers and bare words are kept verbatim.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Word   *string        `parser:"| @Ident"`
}

// Text returns the value as plain text.
func (v *Value) Text() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Word != nil:
		return *v.Word
	default:
		return ""
	}
}

// ChapterSection holds a chapter header and its paragraphs.
type ChapterSection struct {
	Pos        lexer.Position `parser:"" json:"-"`
	ID         string         `parser:"'chapter' @(Ident | Number)"`
	Title      *StringLiteral `parser:"@String?"`
	Paragraphs []*Paragraph   `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Paragraph is one string literal, or several joined with a trailing '+'.
type Paragraph struct {
	Parts []*TextLiteral `parser:"@@ ( '+' Newline* @@ )*"`
}

// Text concatenates the paragraph parts.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, part := range p.Parts {
		sb.WriteString(string(part.Value))
	}
	return sb.String()
}

// TextLiteral encapsulates a raw string statement.
type TextLiteral struct {
	Value StringLiteral `parser:"@String"`
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses DSL content from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses DSL content from a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}

// ParseNamed parses content and reports positions relative to filename.
func ParseNamed(filename string, r io.Reader) (*Document, error) {
	return documentParser.Parse(filename, r)
}
