package canvasmeasure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/quire/book"
	"github.com/ByLCY/quire/layout"
	"github.com/ByLCY/quire/tracer"
)

// ErrEmptyLayout 表示没有可输出的页面。
var ErrEmptyLayout = errors.New("canvasmeasure: layout has no pages")

// scrollLine 是连续滚动坐标（像素）中的一行。
type scrollLine struct {
	top     float64
	text    string
	heading bool
}

// RenderProof 把布局按页输出为 PDF 校样：每页大小等于屏幕尺寸，
// 内容为滚动区间 [ScrollOffset, ScrollOffset+ContentHeight) 内起始的行，
// 便于肉眼核对分页。行位置与 MeasureUnits 使用同一套换行与行距。
func (m *Measurer) RenderProof(ctx context.Context, w io.Writer, b *book.Book, l *layout.BookLayout, cfg layout.Config) error {
	if l == nil || len(l.Pages) == 0 {
		return ErrEmptyLayout
	}
	ctx, span := tracer.Start(ctx, "canvasmeasure.RenderProof")
	defer span.End()

	body, heading, err := m.faces(cfg.FontSize)
	if err != nil {
		return err
	}
	lines, err := m.scrollLines(ctx, layout.Flatten(b), cfg, body, heading)
	if err != nil {
		return err
	}

	pageW := cfg.ScreenWidth * layout.PxToMm
	pageH := cfg.ScreenHeight * layout.PxToMm
	left := m.opts.HorizontalPadding * layout.PxToMm

	writer := pdf.New(w, pageW, pageH, nil)
	writer.SetInfo(b.Title, "", "", b.Author, "quire")

	next := 0
	for i, page := range l.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 {
			writer.NewPage(pageW, pageH)
		}
		c := canvas.New(pageW, pageH)
		cc := canvas.NewContext(c)
		cc.SetCoordSystem(canvas.CartesianIV) // 左上角为原点，与滚动方向一致

		end := page.ScrollOffset + l.ContentHeight
		for next < len(lines) && lines[next].top < end {
			ln := lines[next]
			next++
			face := body
			if ln.heading {
				face = heading
			}
			y := (cfg.MarginTop + ln.top - page.ScrollOffset) * layout.PxToMm
			cc.DrawText(left, y+face.Metrics().Ascent, canvas.NewTextLine(face, ln.text, canvas.Left))
		}

		if cfg.MarginBottom > 0 {
			folio := fmt.Sprintf("%d / %d", page.PageNumber, len(l.Pages))
			y := (cfg.ScreenHeight - cfg.MarginBottom/2) * layout.PxToMm
			cc.DrawText(pageW/2, y, canvas.NewTextLine(body, folio, canvas.Center))
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return nil
}

// scrollLines 展开所有单元的换行结果并计算每行在滚动坐标中的顶部位置。
func (m *Measurer) scrollLines(ctx context.Context, units []layout.ContentUnit, cfg layout.Config, body, heading *canvas.FontFace) ([]scrollLine, error) {
	width := m.textWidthMM(cfg.ScreenWidth)
	linePx := cfg.LinePitch()

	var out []scrollLine
	y := 0.0
	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		isHeading := u.Kind == layout.KindChapterHeading
		face, pitch := body, linePx
		if isHeading {
			face, pitch = heading, linePx*m.opts.HeadingScale
		}
		if strings.TrimSpace(u.Text) != "" {
			wrapped := wrapLines(u.Text, width, face)
			for j, text := range wrapped {
				out = append(out, scrollLine{top: y + float64(j)*pitch, text: text, heading: isHeading})
			}
			y += float64(len(wrapped)) * pitch
		}
		y += cfg.ParagraphSpacing
	}
	return out, nil
}
