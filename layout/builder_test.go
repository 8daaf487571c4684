package layout

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/ByLCY/quire/book"
)

// fixedMeasurer 是测试用的最小实现：返回固定总高度并记录调用次数。
type fixedMeasurer struct {
	total float64
	err   error
	calls int
}

func (m *fixedMeasurer) Measure(ctx context.Context, units []ContentUnit, cfg Config) (float64, error) {
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	return m.total, nil
}

// unitMeasurer 额外提供逐单元高度。
type unitMeasurer struct {
	heights    []float64
	unitCalls  int
	totalCalls int
}

func (m *unitMeasurer) Measure(ctx context.Context, units []ContentUnit, cfg Config) (float64, error) {
	m.totalCalls++
	sum := 0.0
	for _, h := range m.heights {
		sum += h
	}
	return sum, nil
}

func (m *unitMeasurer) MeasureUnits(ctx context.Context, units []ContentUnit, cfg Config) ([]float64, error) {
	m.unitCalls++
	return m.heights, nil
}

func readerConfig() Config {
	return Config{
		ScreenHeight:     900,
		ScreenWidth:      400,
		FontSize:         16,
		LineHeight:       1.5,
		MarginTop:        50,
		MarginBottom:     50,
		ParagraphSpacing: 8,
	}
}

func oneChapterBook() *book.Book {
	return &book.Book{
		ID: "solo",
		Chapters: []book.Chapter{
			{ID: "ch1", Title: "Only", Paragraphs: []string{"first", "second", "third"}},
		},
	}
}

func TestBuildScenarioFourPages(t *testing.T) {
	m := &fixedMeasurer{total: 2500}
	l, err := Build(context.Background(), oneChapterBook(), readerConfig(), BuildOptions{Measurer: m})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if m.calls != 1 {
		t.Fatalf("measurer must be invoked exactly once, got %d", m.calls)
	}
	if l.ContentHeight != 800 {
		t.Fatalf("expected content height 800, got %g", l.ContentHeight)
	}
	if l.TotalHeight != 2500 {
		t.Fatalf("expected total height 2500, got %g", l.TotalHeight)
	}
	wantOffsets := []float64{0, 800, 1600, 2400}
	if len(l.Pages) != len(wantOffsets) {
		t.Fatalf("expected %d pages, got %d", len(wantOffsets), len(l.Pages))
	}
	for i, p := range l.Pages {
		if p.PageNumber != i+1 {
			t.Fatalf("page %d has number %d", i, p.PageNumber)
		}
		if p.ScrollOffset != wantOffsets[i] {
			t.Fatalf("page %d offset: got %g want %g", i+1, p.ScrollOffset, wantOffsets[i])
		}
		if p.ChapterID != "ch1" || p.ChapterTitle != "Only" {
			t.Fatalf("page %d chapter: got %s/%s", i+1, p.ChapterID, p.ChapterTitle)
		}
		if p.StartParagraphIdx < 0 || p.EndParagraphIdx < p.StartParagraphIdx || p.EndParagraphIdx > 3 {
			t.Fatalf("page %d has invalid unit range [%d,%d]", i+1, p.StartParagraphIdx, p.EndParagraphIdx)
		}
	}
}

// TestBuildStrideInvariant 断言：page[i].ScrollOffset == i × contentHeight，页码连续。
func TestBuildStrideInvariant(t *testing.T) {
	cfg := Config{ScreenHeight: 733.3, FontSize: 17, LineHeight: 1.3, MarginTop: 21.1, MarginBottom: 12.7}
	ch := cfg.ContentHeight()
	m := &fixedMeasurer{total: 123456.789}
	l, err := Build(context.Background(), twoChapterBook(), cfg, BuildOptions{Measurer: m})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	want := int(math.Ceil(m.total / ch))
	if len(l.Pages) != want {
		t.Fatalf("expected %d pages, got %d", want, len(l.Pages))
	}
	for i, p := range l.Pages {
		if p.PageNumber != i+1 {
			t.Fatalf("page numbers must be contiguous: index %d has %d", i, p.PageNumber)
		}
		if p.ScrollOffset != float64(i)*ch {
			t.Fatalf("page %d offset %g != %d × %g", p.PageNumber, p.ScrollOffset, i, ch)
		}
		if p.ScrollOffset >= l.TotalHeight {
			t.Fatalf("page %d starts beyond the content", p.PageNumber)
		}
	}
	if l.ContentHeight != ch {
		t.Fatalf("content height mismatch: %g vs %g", l.ContentHeight, ch)
	}
}

func TestBuildExactMultipleHasNoTrailingPage(t *testing.T) {
	l, err := Build(context.Background(), oneChapterBook(), readerConfig(), BuildOptions{Measurer: &fixedMeasurer{total: 1600}})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(l.Pages) != 2 {
		t.Fatalf("expected 2 pages for 1600/800, got %d", len(l.Pages))
	}
}

func TestBuildLinearChapterEstimation(t *testing.T) {
	// 6 个单元，行距 24px，每页 50px，总高 150px。
	cfg := Config{ScreenHeight: 60, FontSize: 16, LineHeight: 1.5, MarginTop: 5, MarginBottom: 5}
	l, err := Build(context.Background(), twoChapterBook(), cfg, BuildOptions{Measurer: &fixedMeasurer{total: 150}})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	want := []Page{
		{PageNumber: 1, ScrollOffset: 0, ChapterID: "a", ChapterTitle: "Alpha", StartParagraphIdx: 0, EndParagraphIdx: 2},
		{PageNumber: 2, ScrollOffset: 50, ChapterID: "a", ChapterTitle: "Alpha", StartParagraphIdx: 2, EndParagraphIdx: 4},
		{PageNumber: 3, ScrollOffset: 100, ChapterID: "b", ChapterTitle: "Beta", StartParagraphIdx: 4, EndParagraphIdx: 5},
	}
	if len(l.Pages) != len(want) {
		t.Fatalf("expected %d pages, got %d", len(want), len(l.Pages))
	}
	for i := range want {
		if l.Pages[i] != want[i] {
			t.Fatalf("page %d mismatch:\n got=%+v\nwant=%+v", i+1, l.Pages[i], want[i])
		}
	}
}

func TestBuildPreciseLocator(t *testing.T) {
	m := &unitMeasurer{heights: []float64{30, 60, 60, 30, 60, 60}}
	cfg := Config{ScreenHeight: 100, FontSize: 16, LineHeight: 1.5}
	l, err := Build(context.Background(), twoChapterBook(), cfg, BuildOptions{Measurer: m, Locator: LocatorPrecise})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if m.unitCalls != 1 || m.totalCalls != 0 {
		t.Fatalf("precise mode must call MeasureUnits once only, got units=%d total=%d", m.unitCalls, m.totalCalls)
	}
	if l.TotalHeight != 300 {
		t.Fatalf("expected total 300, got %g", l.TotalHeight)
	}
	want := []Page{
		{PageNumber: 1, ScrollOffset: 0, ChapterID: "a", ChapterTitle: "Alpha", StartParagraphIdx: 0, EndParagraphIdx: 2},
		{PageNumber: 2, ScrollOffset: 100, ChapterID: "a", ChapterTitle: "Alpha", StartParagraphIdx: 2, EndParagraphIdx: 4},
		{PageNumber: 3, ScrollOffset: 200, ChapterID: "b", ChapterTitle: "Beta", StartParagraphIdx: 4, EndParagraphIdx: 5},
	}
	for i := range want {
		if l.Pages[i] != want[i] {
			t.Fatalf("page %d mismatch:\n got=%+v\nwant=%+v", i+1, l.Pages[i], want[i])
		}
	}
}

func TestBuildPreciseFallsBackToLinear(t *testing.T) {
	calls := 0
	m := MeasureFunc(func(ctx context.Context, units []ContentUnit, cfg Config) (float64, error) {
		calls++
		return 150, nil
	})
	cfg := Config{ScreenHeight: 60, FontSize: 16, LineHeight: 1.5, MarginTop: 5, MarginBottom: 5}
	l, err := Build(context.Background(), twoChapterBook(), cfg, BuildOptions{Measurer: m, Locator: LocatorPrecise})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one measure call, got %d", calls)
	}
	if l.Pages[2].ChapterID != "b" || l.Pages[2].StartParagraphIdx != 4 {
		t.Fatalf("expected linear estimation on fallback, got %+v", l.Pages[2])
	}
}

func TestBuildEmptyBook(t *testing.T) {
	m := &fixedMeasurer{total: 999}
	for _, b := range []*book.Book{nil, {ID: "empty"}} {
		l, err := Build(context.Background(), b, readerConfig(), BuildOptions{Measurer: m})
		if err != nil {
			t.Fatalf("Build error: %v", err)
		}
		if l.TotalHeight != 0 || len(l.Pages) != 0 || l.Pages == nil {
			t.Fatalf("empty book must yield empty pages and zero height, got %+v", l)
		}
		if l.ContentHeight != 800 {
			t.Fatalf("content height must still be reported, got %g", l.ContentHeight)
		}
	}
	if m.calls != 0 {
		t.Fatalf("empty book must not be measured, got %d calls", m.calls)
	}
}

func TestBuildZeroHeightContent(t *testing.T) {
	l, err := Build(context.Background(), oneChapterBook(), readerConfig(), BuildOptions{Measurer: &fixedMeasurer{total: 0}})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(l.Pages) != 0 {
		t.Fatalf("zero total height must yield no pages, got %d", len(l.Pages))
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cases := map[string]Config{
		"zero content height":     {ScreenHeight: 100, MarginTop: 50, MarginBottom: 50, FontSize: 16, LineHeight: 1.5},
		"negative content height": {ScreenHeight: 100, MarginTop: 80, MarginBottom: 50, FontSize: 16, LineHeight: 1.5},
		"nan screen height":       {ScreenHeight: math.NaN(), FontSize: 16, LineHeight: 1.5},
		"infinite screen height":  {ScreenHeight: math.Inf(1), FontSize: 16, LineHeight: 1.5},
		"zero font size":          {ScreenHeight: 800, FontSize: 0, LineHeight: 1.5},
		"zero line height":        {ScreenHeight: 800, FontSize: 16, LineHeight: 0},
		"negative spacing":        {ScreenHeight: 800, FontSize: 16, LineHeight: 1.5, ParagraphSpacing: -1},
	}
	for name, cfg := range cases {
		m := &fixedMeasurer{total: 1000}
		_, err := Build(context.Background(), oneChapterBook(), cfg, BuildOptions{Measurer: m})
		if !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
		if m.calls != 0 {
			t.Fatalf("%s: config must be rejected before measuring", name)
		}
	}
}

func TestBuildRequiresMeasurer(t *testing.T) {
	if _, err := Build(context.Background(), oneChapterBook(), readerConfig(), BuildOptions{}); !errors.Is(err, ErrNoMeasurer) {
		t.Fatalf("expected ErrNoMeasurer, got %v", err)
	}
}

func TestBuildPropagatesMeasurementFailure(t *testing.T) {
	boom := errors.New("boom")
	_, err := Build(context.Background(), oneChapterBook(), readerConfig(), BuildOptions{Measurer: &fixedMeasurer{err: boom}})
	if !errors.Is(err, ErrMeasurement) || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped measurement error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := MeasureFunc(func(ctx context.Context, units []ContentUnit, cfg Config) (float64, error) {
		return 0, ctx.Err()
	})
	if _, err := Build(ctx, oneChapterBook(), readerConfig(), BuildOptions{Measurer: m}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation to propagate, got %v", err)
	}
}

func TestBuildRejectsInvalidMeasurements(t *testing.T) {
	for _, total := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := Build(context.Background(), oneChapterBook(), readerConfig(), BuildOptions{Measurer: &fixedMeasurer{total: total}})
		if !errors.Is(err, ErrMeasurement) {
			t.Fatalf("total %g: expected ErrMeasurement, got %v", total, err)
		}
	}
	short := &unitMeasurer{heights: []float64{10}}
	if _, err := Build(context.Background(), oneChapterBook(), readerConfig(), BuildOptions{Measurer: short, Locator: LocatorPrecise}); !errors.Is(err, ErrMeasurement) {
		t.Fatalf("expected ErrMeasurement for height count mismatch, got %v", err)
	}
	negative := &unitMeasurer{heights: []float64{10, -5, 10, 10}}
	if _, err := Build(context.Background(), oneChapterBook(), readerConfig(), BuildOptions{Measurer: negative, Locator: LocatorPrecise}); !errors.Is(err, ErrMeasurement) {
		t.Fatalf("expected ErrMeasurement for negative unit height, got %v", err)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	b := twoChapterBook()
	cfg := readerConfig()
	first, err := Build(context.Background(), b, cfg, BuildOptions{Measurer: &fixedMeasurer{total: 5321}})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	second, err := Build(context.Background(), b, cfg, BuildOptions{Measurer: &fixedMeasurer{total: 5321}})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	a, _ := json.Marshal(first)
	c, _ := json.Marshal(second)
	if string(a) != string(c) {
		t.Fatalf("layouts differ:\n%s\n%s", a, c)
	}
}

func TestBuildRejectsExcessivePageCount(t *testing.T) {
	// 每页可用高度约 1e-6px，会产生数十亿页
	tiny := readerConfig()
	tiny.ScreenHeight = 800.000001
	tiny.MarginTop = 400
	tiny.MarginBottom = 400
	m := &fixedMeasurer{total: 2500}
	_, err := Build(context.Background(), oneChapterBook(), tiny, BuildOptions{Measurer: m})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if m.calls != 1 {
		t.Fatalf("measurer should run once, got %d", m.calls)
	}

	cfg := readerConfig()
	huge := &fixedMeasurer{total: cfg.ContentHeight()*MaxPages + 1}
	if _, err := Build(context.Background(), oneChapterBook(), cfg, BuildOptions{Measurer: huge}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("one page over the limit: expected ErrInvalidConfig, got %v", err)
	}
}

func TestBuildStopsPaginatingWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := &fixedMeasurer{total: 3200}
	if _, err := Build(ctx, oneChapterBook(), readerConfig(), BuildOptions{Measurer: m}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
