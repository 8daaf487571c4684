// Package reader 管理单本书的阅读会话：排版、重排、查页与阅读位置。
package reader

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ByLCY/quire/book"
	"github.com/ByLCY/quire/layout"
	"github.com/ByLCY/quire/logger"
	"github.com/ByLCY/quire/metrics"
	"github.com/ByLCY/quire/storage"
)

// snapshot 是一次已发布的布局结果，发布后只读。
type snapshot struct {
	id     uint64
	cfg    layout.Config
	layout *layout.BookLayout
}

// Session 持有一本书及其当前布局。
//
// 每次 Relayout 分配递增的请求 id；计算完成时若已有更新的请求发出，结果被丢弃并返回
// ErrStaleLayout。检查与发布在同一把锁内完成，旧结果不会覆盖新结果。
// 查询方法读取原子快照，重排进行中也可并发调用。
type Session struct {
	book  *book.Book
	opts  layout.BuildOptions
	store *storage.BestEffort

	seq     atomic.Uint64
	mu      sync.Mutex
	current atomic.Pointer[snapshot]
}

// NewSession 创建会话；store 可以为 nil，此时阅读位置不持久化。
func NewSession(b *book.Book, opts layout.BuildOptions, store *storage.BestEffort) *Session {
	return &Session{book: b, opts: opts, store: store}
}

// Book 返回会话中的书。
func (s *Session) Book() *book.Book {
	return s.book
}

// Relayout 以新的配置重新计算布局并发布。
func (s *Session) Relayout(ctx context.Context, cfg layout.Config) (*layout.BookLayout, error) {
	id := s.seq.Add(1)
	ctx = logger.WithContext(ctx, logger.BookIDKey, s.book.ID)
	ctx = logger.WithContext(ctx, logger.LayoutIDKey, id)

	start := time.Now()
	out, err := layout.Build(ctx, s.book, cfg, s.opts)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		metrics.ObserveBuild(metrics.StatusError, elapsed, 0)
		logger.Error(ctx, "layout failed", err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if latest := s.seq.Load(); id != latest {
		metrics.ObserveBuild(metrics.StatusStale, elapsed, 0)
		metrics.LayoutStaleDiscards.Inc()
		logger.Debug(ctx, "discarding stale layout", "latest_id", latest)
		return nil, ErrStaleLayout
	}
	s.current.Store(&snapshot{id: id, cfg: cfg, layout: out})
	metrics.ObserveBuild(metrics.StatusOK, elapsed, out.PageCount())
	logger.Info(ctx, "layout published",
		"pages", out.PageCount(),
		"total_height", out.TotalHeight,
		"elapsed_ms", time.Duration(elapsed*float64(time.Second)).Milliseconds())
	return out, nil
}

// Layout 返回当前发布的布局；尚未完成首次排版时为 nil。
func (s *Session) Layout() *layout.BookLayout {
	if snap := s.current.Load(); snap != nil {
		return snap.layout
	}
	return nil
}

// Config 返回当前布局使用的配置。
func (s *Session) Config() (layout.Config, bool) {
	if snap := s.current.Load(); snap != nil {
		return snap.cfg, true
	}
	return layout.Config{}, false
}

// PageAtOffset 在当前布局中查找 offset 所在页。
func (s *Session) PageAtOffset(offset float64) (layout.Page, bool) {
	return layout.PageAtOffset(s.Layout(), offset)
}

// PageByNumber 在当前布局中按页码查找。
func (s *Session) PageByNumber(n int) (layout.Page, bool) {
	return layout.PageByNumber(s.Layout(), n)
}

// SavePosition 记录 offset 所在页为阅读位置，返回该页。没有布局时返回 false。
func (s *Session) SavePosition(ctx context.Context, offset float64) (layout.Page, bool) {
	l := s.Layout()
	page, ok := layout.PageAtOffset(l, offset)
	if !ok {
		return layout.Page{}, false
	}
	if s.store != nil {
		s.store.SaveReadingState(ctx, storage.ReadingState{
			BookID:       s.book.ID,
			PageNumber:   page.PageNumber,
			ScrollOffset: offset,
			TotalHeight:  l.TotalHeight,
			ChapterID:    page.ChapterID,
			ChapterTitle: page.ChapterTitle,
		})
	}
	return page, true
}

// Resume 读取保存的阅读位置并映射到当前布局。
// 保存时的总高度与当前不同（排版参数变化）时，按比例换算偏移。
func (s *Session) Resume(ctx context.Context) (layout.Page, float64, bool) {
	l := s.Layout()
	if s.store == nil || l == nil {
		return layout.Page{}, 0, false
	}
	st := s.store.GetReadingState(ctx, s.book.ID)
	if st == nil {
		return layout.Page{}, 0, false
	}
	offset := ScaleOffset(st.ScrollOffset, st.TotalHeight, l.TotalHeight)
	page, ok := layout.PageAtOffset(l, offset)
	return page, offset, ok
}

// ScaleOffset 将旧布局中的偏移按总高度比例换算到新布局。
func ScaleOffset(offset, oldTotal, newTotal float64) float64 {
	if oldTotal <= 0 || newTotal <= 0 || oldTotal == newTotal {
		return offset
	}
	return offset * newTotal / oldTotal
}
