package layout

import (
	"fmt"
	"math"
)

// Validate 在进入分页循环之前拒绝无法分页的配置。
func (c Config) Validate() error {
	ch := c.ContentHeight()
	if math.IsNaN(ch) || math.IsInf(ch, 0) || ch <= 0 {
		return fmt.Errorf("%w: 每页可用高度必须为正数 (screenHeight=%g marginTop=%g marginBottom=%g)",
			ErrInvalidConfig, c.ScreenHeight, c.MarginTop, c.MarginBottom)
	}
	if !positiveFinite(c.FontSize) {
		return fmt.Errorf("%w: fontSize 必须为正数，实际 %g", ErrInvalidConfig, c.FontSize)
	}
	if !positiveFinite(c.LineHeight) {
		return fmt.Errorf("%w: lineHeight 必须为正数，实际 %g", ErrInvalidConfig, c.LineHeight)
	}
	if math.IsNaN(c.ParagraphSpacing) || math.IsInf(c.ParagraphSpacing, 0) || c.ParagraphSpacing < 0 {
		return fmt.Errorf("%w: paragraphSpacing 不能为负数，实际 %g", ErrInvalidConfig, c.ParagraphSpacing)
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// validHeight 判断测量结果是否可用：有限且非负。
func validHeight(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
