package layout

import (
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ByLCY/quire/book"
	"github.com/ByLCY/quire/logger"
)

const (
	// MaxPages 是一次布局允许产生的最大页数。超出时配置被视为无法分页。
	MaxPages = 200_000

	// maxPreallocPages 限制预分配的页切片容量，超出后按需增长。
	maxPreallocPages = 1 << 16

	// paginateCheckEvery 分页循环每隔多少页检查一次 ctx。
	paginateCheckEvery = 1024
)

var tracer = otel.Tracer("quire/layout")

// Build 展平书籍、测量总高度，并以每页可用高度为固定步长切分出页面。
// 测量是整个流程中唯一的阻塞点；测量完成前不会产生任何页面。
func Build(ctx context.Context, b *book.Book, cfg Config, opts BuildOptions) (*BookLayout, error) {
	if opts.Measurer == nil {
		return nil, ErrNoMeasurer
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "layout.Build")
	defer span.End()

	units := Flatten(b)
	contentHeight := cfg.ContentHeight()
	span.SetAttributes(
		attribute.Int("layout.units", len(units)),
		attribute.Float64("layout.content_height", contentHeight),
	)

	// 空书：不测量，直接返回空页列表。
	if len(units) == 0 {
		return &BookLayout{Pages: []Page{}, TotalHeight: 0, ContentHeight: contentHeight}, nil
	}

	total, locator, err := measure(ctx, units, cfg, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if n := math.Ceil(total / contentHeight); n > MaxPages {
		err := fmt.Errorf("%w: 需要 %g 页，超过上限 %d (totalHeight=%g contentHeight=%g)",
			ErrInvalidConfig, n, MaxPages, total, contentHeight)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	pages, err := paginate(ctx, units, total, contentHeight, locator)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Float64("layout.total_height", total),
		attribute.Int("layout.pages", len(pages)),
	)
	return &BookLayout{
		Pages:         pages,
		TotalHeight:   total,
		ContentHeight: contentHeight,
	}, nil
}

// measure 调用一次测量后端，返回总高度与对应的章节定位器。
func measure(ctx context.Context, units []ContentUnit, cfg Config, opts BuildOptions) (float64, ChapterLocator, error) {
	if opts.Locator == LocatorPrecise {
		if um, ok := opts.Measurer.(UnitMeasurer); ok {
			heights, err := um.MeasureUnits(ctx, units, cfg)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: %w", ErrMeasurement, err)
			}
			if len(heights) != len(units) {
				return 0, nil, fmt.Errorf("%w: 期望 %d 个单元高度，实际 %d", ErrMeasurement, len(units), len(heights))
			}
			for i, h := range heights {
				if !validHeight(h) {
					return 0, nil, fmt.Errorf("%w: 单元 %d 高度无效 (%g)", ErrMeasurement, i, h)
				}
			}
			loc, total := NewHeightLocator(heights)
			return total, loc, nil
		}
		logger.Debug(ctx, "measurer has no per-unit heights, using linear locator")
	}

	total, err := opts.Measurer.Measure(ctx, units, cfg)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrMeasurement, err)
	}
	if !validHeight(total) {
		return 0, nil, fmt.Errorf("%w: 总高度无效 (%g)", ErrMeasurement, total)
	}
	return total, LinearLocator{Units: len(units), FontSize: cfg.FontSize, LineHeight: cfg.LineHeight}, nil
}

// paginate 从偏移 0 开始按 contentHeight 步进，直到覆盖 total。
// 偏移按 i × contentHeight 计算而不是累加，保证第 i 页的偏移严格等于步长倍数。
// 调用方保证页数不超过 MaxPages。
func paginate(ctx context.Context, units []ContentUnit, total, contentHeight float64, loc ChapterLocator) ([]Page, error) {
	capHint := 0
	if est := math.Ceil(total / contentHeight); est > 0 && est <= maxPreallocPages {
		capHint = int(est)
	}
	pages := make([]Page, 0, capHint)

	for i := 0; ; i++ {
		offset := float64(i) * contentHeight
		if !(offset < total) {
			break
		}
		if i%paginateCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		start := loc.IndexAt(offset)
		// 本页最后一行像素所在的单元。
		bottom := math.Max(offset, math.Min(offset+contentHeight, total)-1)
		end := loc.IndexAt(bottom)
		if end < start {
			end = start
		}
		unit := units[start]
		pages = append(pages, Page{
			PageNumber:        i + 1,
			ScrollOffset:      offset,
			ChapterID:         unit.ChapterID,
			ChapterTitle:      unit.ChapterTitle,
			StartParagraphIdx: start,
			EndParagraphIdx:   end,
		})
	}
	return pages, nil
}
