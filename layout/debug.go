package layout

import (
	"encoding/json"
	"os"
)

// chapterStart 记录章节在布局中首次出现的页。
type chapterStart struct {
	ChapterID    string `json:"chapterId"`
	ChapterTitle string `json:"chapterTitle"`
	FirstPage    int    `json:"firstPage"`
}

// debugDump 在布局结果之外附带页数与章节起始页，便于核对章节定位。
type debugDump struct {
	*BookLayout
	PageCount int            `json:"pageCount"`
	Chapters  []chapterStart `json:"chapters"`
}

// chapterStarts 按页序列出章节切换点；同一章节在不相邻的页重新出现时会再次列出。
func chapterStarts(l *BookLayout) []chapterStart {
	out := []chapterStart{}
	for i, p := range l.Pages {
		if i > 0 && l.Pages[i-1].ChapterID == p.ChapterID {
			continue
		}
		out = append(out, chapterStart{ChapterID: p.ChapterID, ChapterTitle: p.ChapterTitle, FirstPage: p.PageNumber})
	}
	return out
}

// WriteDebugJSON 将布局结果输出为 JSON，便于调试或可视化。
func WriteDebugJSON(l *BookLayout, path string) error {
	if l == nil {
		return ErrNilLayout
	}
	data, err := json.MarshalIndent(debugDump{
		BookLayout: l,
		PageCount:  l.PageCount(),
		Chapters:   chapterStarts(l),
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
