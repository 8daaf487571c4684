package layout

import "github.com/ByLCY/quire/book"

// Flatten 将书籍的章节/段落树展平为有序的内容单元：
// 每章先输出标题单元，再依次输出其段落。纯函数，结果只取决于输入。
func Flatten(b *book.Book) []ContentUnit {
	if b == nil {
		return []ContentUnit{}
	}
	out := make([]ContentUnit, 0, len(b.Chapters)+b.ParagraphCount())
	for _, ch := range b.Chapters {
		out = append(out, ContentUnit{
			Text:         ch.Title,
			ChapterID:    ch.ID,
			ChapterTitle: ch.Title,
			Kind:         KindChapterHeading,
		})
		for _, p := range ch.Paragraphs {
			out = append(out, ContentUnit{
				Text:         p,
				ChapterID:    ch.ID,
				ChapterTitle: ch.Title,
				Kind:         KindParagraph,
			})
		}
	}
	return out
}
