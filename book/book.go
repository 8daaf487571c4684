// Package book 定义分页引擎读取的书籍结构以及只读书库。
package book

// Book 是外部提供的只读书籍内容：按顺序排列的章节。
type Book struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Author   string            `json:"author,omitempty"`
	Meta     map[string]string `json:"meta,omitempty"`
	Chapters []Chapter         `json:"chapters"`
}

// Chapter 表示一个章节，Paragraphs 可以为空。
type Chapter struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}

// ParagraphCount 返回全书段落总数（不含章节标题）。
func (b *Book) ParagraphCount() int {
	if b == nil {
		return 0
	}
	n := 0
	for _, ch := range b.Chapters {
		n += len(ch.Paragraphs)
	}
	return n
}

// Chapter 按 id 查找章节。
func (b *Book) Chapter(id string) (Chapter, bool) {
	if b == nil {
		return Chapter{}, false
	}
	for _, ch := range b.Chapters {
		if ch.ID == id {
			return ch, true
		}
	}
	return Chapter{}, false
}
