package book

import (
	"strings"
	"unicode/utf8"
)

// DefaultExcerptRunes 是章节摘录的默认长度上限。
const DefaultExcerptRunes = 480

// Excerpt 依次取每个段落的首句拼接成章节摘录，超过 maxRunes 前停止；
// 第一句本身超长时按字符截断并加省略号。
func Excerpt(ch Chapter, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = DefaultExcerptRunes
	}
	var sb strings.Builder
	n := 0
	for _, p := range ch.Paragraphs {
		s := firstSentence(p)
		if s == "" {
			continue
		}
		l := utf8.RuneCountInString(s)
		sep := 0
		if n > 0 {
			sep = 1
		}
		if n+sep+l > maxRunes {
			if n == 0 {
				return string([]rune(s)[:maxRunes-1]) + "…"
			}
			break
		}
		if sep == 1 {
			sb.WriteByte(' ')
		}
		sb.WriteString(s)
		n += sep + l
	}
	return sb.String()
}

// firstSentence 返回到第一个句末标点（其后为空白或结尾）为止的文本。
func firstSentence(p string) string {
	p = strings.Join(strings.Fields(p), " ")
	for i, r := range p {
		switch r {
		case '.', '!', '?', '。', '！', '？':
			end := i + utf8.RuneLen(r)
			if end == len(p) || p[end] == ' ' || r >= 0x3000 {
				return p[:end]
			}
		}
	}
	return p
}
