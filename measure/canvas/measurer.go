// Package canvasmeasure 使用 github.com/tdewolff/canvas 的字体度量测量排版高度。
//
// 输入与输出均为 CSS 像素；与字体系统交互时换算为 pt（字号）与 mm（宽度）。
package canvasmeasure

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/quire/fonts"
	"github.com/ByLCY/quire/layout"
	"github.com/ByLCY/quire/tracer"
)

const (
	// DefaultHeadingScale 章节标题相对正文的行高倍数。
	DefaultHeadingScale = 1.5
	// DefaultHorizontalPadding 阅读区域左右内边距（像素）。
	DefaultHorizontalPadding = 12
)

// Options 配置测量器。
type Options struct {
	// Font 为 builtin:<name> 或字体文件路径，空值使用 fonts.Default。
	Font              string
	BaseDir           string
	HeadingScale      float64
	HorizontalPadding float64
}

// Measurer 通过贪心换行统计每个内容单元的行数并换算为像素高度。
type Measurer struct {
	opts Options

	fontMu   sync.Mutex
	families map[string]*familyEntry
}

type familyEntry struct {
	family  *canvas.FontFamily
	hasBold bool
}

var _ layout.UnitMeasurer = (*Measurer)(nil)

// New 创建测量器，未设置的选项取默认值。
func New(opts Options) *Measurer {
	if opts.Font == "" {
		opts.Font = fonts.Default
	}
	if opts.HeadingScale <= 0 {
		opts.HeadingScale = DefaultHeadingScale
	}
	if opts.HorizontalPadding < 0 {
		opts.HorizontalPadding = 0
	}
	return &Measurer{opts: opts, families: map[string]*familyEntry{}}
}

// Measure 实现 layout.Measurer：返回所有单元高度之和。
func (m *Measurer) Measure(ctx context.Context, units []layout.ContentUnit, cfg layout.Config) (float64, error) {
	heights, err := m.MeasureUnits(ctx, units, cfg)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, h := range heights {
		total += h
	}
	return total, nil
}

// MeasureUnits 实现 layout.UnitMeasurer。每个单元之间检查 ctx 是否已取消。
func (m *Measurer) MeasureUnits(ctx context.Context, units []layout.ContentUnit, cfg layout.Config) ([]float64, error) {
	_, span := tracer.Start(ctx, "canvasmeasure.MeasureUnits")
	defer span.End()

	body, heading, err := m.faces(cfg.FontSize)
	if err != nil {
		return nil, err
	}
	width := m.textWidthMM(cfg.ScreenWidth)
	linePx := cfg.LinePitch()

	heights := make([]float64, len(units))
	for i, u := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		face, pitch := body, linePx
		if u.Kind == layout.KindChapterHeading {
			face, pitch = heading, linePx*m.opts.HeadingScale
		}
		heights[i] = float64(countLines(u.Text, width, face))*pitch + cfg.ParagraphSpacing
	}
	return heights, nil
}

// Lines 返回 text 在给定屏幕宽度与字号（像素）下的换行结果，便于调试。
func (m *Measurer) Lines(text string, screenWidth, fontSize float64) ([]string, error) {
	body, _, err := m.faces(fontSize)
	if err != nil {
		return nil, err
	}
	return wrapLines(text, m.textWidthMM(screenWidth), body), nil
}

// textWidthMM 返回可用于排版的文本宽度（mm）。
func (m *Measurer) textWidthMM(screenWidth float64) float64 {
	return (screenWidth - 2*m.opts.HorizontalPadding) * layout.PxToMm
}

// faces 返回正文与标题字体面；标题字号按 HeadingScale 放大。
func (m *Measurer) faces(fontSize float64) (*canvas.FontFace, *canvas.FontFace, error) {
	entry, err := m.ensureFamily()
	if err != nil {
		return nil, nil, err
	}
	sizePt := fontSize * layout.PxToPt
	headingStyle := canvas.FontRegular
	if entry.hasBold {
		headingStyle = canvas.FontBold
	}
	body := entry.family.Face(sizePt, canvas.Black, canvas.FontRegular, canvas.FontNormal)
	heading := entry.family.Face(sizePt*m.opts.HeadingScale, canvas.Black, headingStyle, canvas.FontNormal)
	return body, heading, nil
}

func (m *Measurer) ensureFamily() (*familyEntry, error) {
	key := m.opts.Font
	m.fontMu.Lock()
	defer m.fontMu.Unlock()

	if entry, ok := m.families[key]; ok {
		return entry, nil
	}
	data, err := fonts.Load(key, m.opts.BaseDir)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("quire-body")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", key, err)
	}
	entry := &familyEntry{family: family}
	if boldSrc, ok := fonts.Bold(key); ok {
		if boldData, err := fonts.Load(boldSrc, m.opts.BaseDir); err == nil {
			entry.hasBold = family.LoadFont(boldData, 0, canvas.FontBold) == nil
		}
	}
	m.families[key] = entry
	return entry, nil
}

// countLines 统计换行后的行数；空白文本不占行。
func countLines(text string, width float64, face textWidther) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return len(wrapLines(text, width, face))
}
