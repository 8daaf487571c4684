// Package epub 将 ePub 文件导入为 book.Book。
//
// 按 container.xml → OPF → spine 的顺序读取 XHTML 文档，每个文档的 <p> 文本成为一个章节的段落。
package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ByLCY/quire/book"
)

// FileExt 是 ePub 文件扩展名。
const FileExt = ".epub"

// Open 读取磁盘上的 ePub；书籍 id 取文件名（不含扩展名）。
func Open(path string) (*book.Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("epub: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("epub: stat %s: %w", path, err)
	}
	b, err := Read(f, info.Size())
	if err != nil {
		return nil, err
	}
	if id := slug(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))); id != "" {
		b.ID = id
	}
	return b, nil
}

// Read 从 ReaderAt 解析 ePub。书籍 id 取 dc:identifier，缺失时为 "book"。
func Read(r io.ReaderAt, size int64) (*book.Book, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("epub: open zip: %w: %w", ErrInvalidEPub, err)
	}
	opfPath, err := locateOPF(zr)
	if err != nil {
		return nil, err
	}
	pkg, docs, err := parseOPF(zr, opfPath)
	if err != nil {
		return nil, err
	}

	b := &book.Book{Meta: map[string]string{}}
	md := pkg.Metadata
	b.Title = first(md.Titles)
	b.Author = first(md.Creators)
	setMeta(b.Meta, "title", b.Title)
	setMeta(b.Meta, "author", b.Author)
	setMeta(b.Meta, "language", first(md.Languages))
	setMeta(b.Meta, "identifier", first(md.Identifiers))
	setMeta(b.Meta, "publisher", first(md.Publishers))
	setMeta(b.Meta, "date", first(md.Dates))
	b.ID = slug(first(md.Identifiers))
	if b.ID == "" {
		b.ID = "book"
	}

	for _, sd := range docs {
		f := findFile(zr, sd.Path)
		if f == nil {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, err
		}
		doc, err := extractDocument(data)
		if err != nil {
			return nil, fmt.Errorf("epub: parse %s: %w", sd.Path, err)
		}
		// 没有正文段落的文档（封面、目录页等）跳过。
		if len(doc.Paragraphs) == 0 {
			continue
		}
		title := doc.Heading
		if title == "" {
			title = doc.Title
		}
		if title == "" {
			title = sd.ID
		}
		b.Chapters = append(b.Chapters, book.Chapter{
			ID:         sd.ID,
			Title:      title,
			Paragraphs: doc.Paragraphs,
		})
	}
	if len(b.Chapters) == 0 {
		return nil, ErrNoContent
	}
	return b, nil
}

func first(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func setMeta(meta map[string]string, key, value string) {
	if value != "" {
		meta[key] = value
	}
}

// slug 将任意字符串转为可用作 URL 路径段的 id。
func slug(s string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			dash = false
			continue
		}
		if sb.Len() > 0 && !dash {
			sb.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
