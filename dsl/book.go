package dsl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/quire/binding"
	"github.com/ByLCY/quire/book"
	"github.com/ByLCY/quire/logger"
)

// FileExt 是 .book 文本格式的扩展名。
const FileExt = ".book"

// ErrDuplicateChapter 表示同一本书内出现重复的章节 id。
var ErrDuplicateChapter = errors.New("dsl: duplicate chapter id")

// ToBook 将语法树转换为 book.Book。
// 段落与章节标题中的 ${key} / ${key|fallback} 按 meta 插值，meta 额外提供 id 与 title。
func ToBook(doc *Document) (*book.Book, error) {
	if doc == nil {
		return nil, errors.New("dsl: nil document")
	}
	b := &book.Book{ID: doc.ID, Meta: map[string]string{}}
	if doc.Title != nil {
		b.Title = string(*doc.Title)
	}

	var chapters []*ChapterSection
	for _, sec := range doc.Sections {
		switch {
		case sec.Meta != nil:
			// 多个 meta 块按出现顺序合并，后者覆盖前者。
			for _, entry := range sec.Meta.Entries {
				b.Meta[entry.Key] = entry.Value.Text()
			}
		case sec.Chapter != nil:
			chapters = append(chapters, sec.Chapter)
		}
	}
	if b.Title == "" {
		b.Title = b.Meta["title"]
	}
	b.Author = b.Meta["author"]

	scope := make(map[string]string, len(b.Meta)+2)
	for k, v := range b.Meta {
		scope[k] = v
	}
	scope["id"] = b.ID
	scope["title"] = b.Title

	seen := make(map[string]struct{}, len(chapters))
	b.Chapters = make([]book.Chapter, 0, len(chapters))
	for _, ch := range chapters {
		if _, dup := seen[ch.ID]; dup {
			return nil, fmt.Errorf("%w %q at %s", ErrDuplicateChapter, ch.ID, ch.Pos)
		}
		seen[ch.ID] = struct{}{}

		title := ch.ID
		if ch.Title != nil {
			title = binding.Interpolate(string(*ch.Title), scope)
		}
		paragraphs := make([]string, 0, len(ch.Paragraphs))
		for _, p := range ch.Paragraphs {
			paragraphs = append(paragraphs, binding.Interpolate(p.Text(), scope))
		}
		b.Chapters = append(b.Chapters, book.Chapter{ID: ch.ID, Title: title, Paragraphs: paragraphs})
	}
	warnUnresolved(b, scope)
	return b, nil
}

// warnUnresolved 对 meta 中不存在的插值键输出告警，不影响结果。
func warnUnresolved(b *book.Book, scope map[string]string) {
	missing := map[string]struct{}{}
	check := func(text string) {
		for _, key := range binding.Keys(text) {
			if _, ok := scope[key]; !ok {
				missing[key] = struct{}{}
			}
		}
	}
	for _, ch := range b.Chapters {
		check(ch.Title)
		for _, p := range ch.Paragraphs {
			check(p)
		}
	}
	if len(missing) == 0 {
		return
	}
	keys := make([]string, 0, len(missing))
	for k := range missing {
		keys = append(keys, k)
	}
	logger.Warn(context.Background(), "book references undefined meta keys",
		"book_id", b.ID, "keys", strings.Join(keys, ","))
}

// LoadFile 读取并转换一个 .book 文件。
func LoadFile(path string) (*book.Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开 %s 失败: %w", path, err)
	}
	defer f.Close()

	doc, err := ParseNamed(filepath.Base(path), f)
	if err != nil {
		return nil, fmt.Errorf("解析 %s 失败: %w", path, err)
	}
	return ToBook(doc)
}
