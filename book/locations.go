package book

import (
	"strings"
	"unicode/utf8"
)

// DefaultCharsPerLocation 与阅读器设置保持一致。
const DefaultCharsPerLocation = 1600

// Location 是按固定字符数切分的一段全文。
type Location struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// LocationIndex 是整本书的 location 列表及其统计信息。
type LocationIndex struct {
	CharsPerLocation int        `json:"charsPerLocation"`
	TotalChars       int        `json:"totalChars"`
	TotalLocations   int        `json:"totalLocations"`
	Locations        []Location `json:"locations"`
}

// FullText 将全书段落按阅读顺序以空行拼接；章节之间同样以空行分隔，空段落被跳过。
func FullText(b *Book) string {
	if b == nil {
		return ""
	}
	var parts []string
	for _, ch := range b.Chapters {
		var paras []string
		for _, p := range ch.Paragraphs {
			if p = strings.TrimSpace(p); p != "" {
				paras = append(paras, p)
			}
		}
		if len(paras) > 0 {
			parts = append(parts, strings.Join(paras, "\n\n"))
		}
	}
	return strings.Join(parts, "\n\n")
}

// Locations 将全文按 charsPerLocation 个字符（rune）切块。charsPerLocation <= 0 时使用默认值。
func Locations(b *Book, charsPerLocation int) LocationIndex {
	if charsPerLocation <= 0 {
		charsPerLocation = DefaultCharsPerLocation
	}
	text := FullText(b)
	idx := LocationIndex{
		CharsPerLocation: charsPerLocation,
		TotalChars:       utf8.RuneCountInString(text),
		Locations:        []Location{},
	}
	runes := []rune(text)
	for start := 0; start < len(runes); start += charsPerLocation {
		end := start + charsPerLocation
		if end > len(runes) {
			end = len(runes)
		}
		idx.Locations = append(idx.Locations, Location{
			Index: len(idx.Locations),
			Text:  string(runes[start:end]),
		})
	}
	idx.TotalLocations = len(idx.Locations)
	return idx
}
