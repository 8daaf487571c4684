package epub

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

var skipTags = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
}

var headingTags = map[atom.Atom]bool{
	atom.H1: true,
	atom.H2: true,
	atom.H3: true,
}

// document 是单个 XHTML 文档提取出的标题候选与段落。
type document struct {
	Heading    string
	Title      string
	Paragraphs []string
}

// extractDocument 收集每个 <p> 的文本（片段以空格连接并折叠空白），
// 以及首个 h1..h3 与 <title> 文本。
func extractDocument(data []byte) (*document, error) {
	z := html.NewTokenizer(bytes.NewReader(data))
	doc := &document{}

	var (
		skipDepth int
		pDepth    int
		capture   atom.Atom // 正在收集的标题标签；未知标签的 atom 同样为 0
		para      []string
		heading   []string
	)

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, err
			}
			if pDepth > 0 {
				doc.addParagraph(para)
			}
			return doc, nil

		case html.StartTagToken:
			tn, _ := z.TagName()
			a := atom.Lookup(tn)
			switch {
			case skipTags[a]:
				skipDepth++
			case a == atom.P:
				if pDepth == 0 {
					para = para[:0]
				}
				pDepth++
			case a == atom.Title && doc.Title == "":
				capture = atom.Title
				heading = heading[:0]
			case headingTags[a] && doc.Heading == "" && capture == 0:
				capture = a
				heading = heading[:0]
			}

		case html.EndTagToken:
			tn, _ := z.TagName()
			a := atom.Lookup(tn)
			switch {
			case skipTags[a]:
				if skipDepth > 0 {
					skipDepth--
				}
			case a == atom.P && pDepth > 0:
				pDepth--
				if pDepth == 0 {
					doc.addParagraph(para)
				}
			case capture != 0 && a == capture:
				text := clean(heading)
				if capture == atom.Title {
					doc.Title = text
				} else {
					doc.Heading = text
				}
				capture = 0
			}

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			text := string(z.Text())
			if pDepth > 0 {
				para = append(para, text)
			}
			if capture != 0 {
				heading = append(heading, text)
			}
		}
	}
}

func (d *document) addParagraph(parts []string) {
	if text := clean(parts); text != "" {
		d.Paragraphs = append(d.Paragraphs, text)
	}
}

// clean 连接文本片段、折叠空白并做 NFC 规范化。
func clean(parts []string) string {
	return norm.NFC.String(strings.Join(strings.Fields(strings.Join(parts, " ")), " "))
}
