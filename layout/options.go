package layout

import "context"

// LocatorMode 选择“偏移 → 内容单元”的定位策略。
type LocatorMode string

const (
	// LocatorLinear 按均匀单元高度线性插值估算（默认）。
	LocatorLinear LocatorMode = "linear"
	// LocatorPrecise 使用逐单元测量高度累加后二分查找，需要 UnitMeasurer。
	LocatorPrecise LocatorMode = "precise"
)

// ParseLocatorMode 解析配置中的定位策略，未知值回退到 linear。
func ParseLocatorMode(v string) LocatorMode {
	if LocatorMode(v) == LocatorPrecise {
		return LocatorPrecise
	}
	return LocatorLinear
}

// BuildOptions 配置布局阶段所需的依赖，例如测量后端。
type BuildOptions struct {
	Measurer Measurer
	Locator  LocatorMode
}

// Measurer 负责测量整本展平内容在当前配置下的渲染总高度（像素）。
// 每次布局计算只调用一次。
type Measurer interface {
	Measure(ctx context.Context, units []ContentUnit, cfg Config) (float64, error)
}

// UnitMeasurer 额外提供逐单元高度，用于精确的章节定位。
type UnitMeasurer interface {
	Measurer
	MeasureUnits(ctx context.Context, units []ContentUnit, cfg Config) ([]float64, error)
}

// MeasureFunc 让普通函数满足 Measurer。
type MeasureFunc func(ctx context.Context, units []ContentUnit, cfg Config) (float64, error)

// Measure 实现 Measurer。
func (f MeasureFunc) Measure(ctx context.Context, units []ContentUnit, cfg Config) (float64, error) {
	return f(ctx, units, cfg)
}
