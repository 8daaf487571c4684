package layout

// 该文件定义展平内容、布局配置与分页结果，供布局计算、查询与调试 JSON 共用。

// UnitKind 区分章节标题与正文段落。
type UnitKind string

const (
	KindChapterHeading UnitKind = "chapter-heading"
	KindParagraph      UnitKind = "paragraph"
)

// ContentUnit 是展平后的一个内容单元（ParagraphWithMeta）。
// 在序列中的下标即其身份，生成后不可修改。
type ContentUnit struct {
	Text         string   `json:"text"`
	ChapterID    string   `json:"chapterId"`
	ChapterTitle string   `json:"chapterTitle"`
	Kind         UnitKind `json:"type"`
}

// Config 由调用方提供的布局参数，单位均为像素；LineHeight 为倍数。
type Config struct {
	ScreenHeight     float64 `json:"screenHeight" mapstructure:"screen_height"`
	ScreenWidth      float64 `json:"screenWidth" mapstructure:"screen_width"`
	FontSize         float64 `json:"fontSize" mapstructure:"font_size"`
	LineHeight       float64 `json:"lineHeight" mapstructure:"line_height"`
	MarginTop        float64 `json:"marginTop" mapstructure:"margin_top"`
	MarginBottom     float64 `json:"marginBottom" mapstructure:"margin_bottom"`
	ParagraphSpacing float64 `json:"paragraphSpacing" mapstructure:"paragraph_spacing"`
}

// ContentHeight 返回每页可用高度：屏幕高度减去上下边距。
func (c Config) ContentHeight() float64 {
	return c.ScreenHeight - c.MarginTop - c.MarginBottom
}

// LinePitch 返回正文单行占用的高度（字号 × 行高倍数）。
func (c Config) LinePitch() float64 {
	return c.FontSize * c.LineHeight
}

// Page 描述一页：起始滚动偏移、该处所属章节以及覆盖的内容单元区间（闭区间）。
type Page struct {
	PageNumber        int     `json:"pageNumber"`
	ScrollOffset      float64 `json:"scrollOffset"`
	ChapterID         string  `json:"chapterId"`
	ChapterTitle      string  `json:"chapterTitle"`
	StartParagraphIdx int     `json:"startParagraphIdx"`
	EndParagraphIdx   int     `json:"endParagraphIdx"`
}

// BookLayout 是一次布局计算的完整、不可变结果。
type BookLayout struct {
	Pages         []Page  `json:"pages"`
	TotalHeight   float64 `json:"totalHeight"`
	ContentHeight float64 `json:"contentHeight"`
}

// PageCount 返回页数。
func (l *BookLayout) PageCount() int {
	if l == nil {
		return 0
	}
	return len(l.Pages)
}
