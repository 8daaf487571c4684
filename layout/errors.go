package layout

import "errors"

var (
	// ErrInvalidConfig 表示布局参数无法分页（例如每页可用高度 <= 0）。
	ErrInvalidConfig = errors.New("layout: invalid configuration")

	// ErrMeasurement 表示测量后端失败或返回了不可用的高度。
	ErrMeasurement = errors.New("layout: measurement failed")

	// ErrNoMeasurer 表示未注入测量后端。
	ErrNoMeasurer = errors.New("layout: missing measurer")

	// ErrNilLayout 表示没有可输出的布局。
	ErrNilLayout = errors.New("layout: nil layout")
)
