package storage

import (
	"context"

	"github.com/ByLCY/quire/logger"
	"github.com/ByLCY/quire/metrics"
)

// BestEffort 包装 Store：写失败记录日志后吞掉，读失败记录日志后返回零值。
// 阅读流程不会因为存储故障而中断。
type BestEffort struct {
	store *Store
}

// NewBestEffort 创建 BestEffort。
func NewBestEffort(store *Store) *BestEffort {
	return &BestEffort{store: store}
}

// Store 返回底层 Store。
func (b *BestEffort) Store() *Store {
	return b.store
}

func (b *BestEffort) fail(ctx context.Context, op string, err error, args ...any) {
	metrics.StorageFailuresTotal.WithLabelValues(op).Inc()
	logger.Error(ctx, "storage "+op+" failed", err, args...)
}

// SaveReadingState 保存阅读位置，失败时仅记录。
func (b *BestEffort) SaveReadingState(ctx context.Context, st ReadingState) {
	if err := b.store.SaveReadingState(ctx, st); err != nil {
		b.fail(ctx, "save_reading_state", err, "book_id", st.BookID)
	}
}

// GetReadingState 读取阅读位置，失败或不存在时返回 nil。
func (b *BestEffort) GetReadingState(ctx context.Context, bookID string) *ReadingState {
	st, err := b.store.GetReadingState(ctx, bookID)
	if err != nil {
		b.fail(ctx, "get_reading_state", err, "book_id", bookID)
		return nil
	}
	return st
}

// GetHighlights 读取高亮，失败时返回空列表。
func (b *BestEffort) GetHighlights(ctx context.Context, bookID string) []Highlight {
	list, err := b.store.GetHighlights(ctx, bookID)
	if err != nil {
		b.fail(ctx, "get_highlights", err, "book_id", bookID)
		return []Highlight{}
	}
	return list
}

// AddHighlight 追加高亮，返回补全后的高亮与是否保存成功。
func (b *BestEffort) AddHighlight(ctx context.Context, bookID string, h Highlight) (Highlight, bool) {
	saved, err := b.store.AddHighlight(ctx, bookID, h)
	if err != nil {
		b.fail(ctx, "add_highlight", err, "book_id", bookID)
		return h, false
	}
	return saved, true
}

// DeleteHighlight 删除高亮，返回是否删除了条目；失败视为未删除。
func (b *BestEffort) DeleteHighlight(ctx context.Context, bookID, highlightID string) bool {
	removed, err := b.store.DeleteHighlight(ctx, bookID, highlightID)
	if err != nil {
		b.fail(ctx, "delete_highlight", err, "book_id", bookID, "highlight_id", highlightID)
		return false
	}
	return removed
}

// SaveSummary 保存摘要，失败时仅记录。
func (b *BestEffort) SaveSummary(ctx context.Context, key, summary string) {
	if err := b.store.SaveSummary(ctx, key, summary); err != nil {
		b.fail(ctx, "save_summary", err, "summary_key", key)
	}
}

// GetSummary 读取摘要，失败或不存在时返回 ""。
func (b *BestEffort) GetSummary(ctx context.Context, key string) string {
	s, _, err := b.store.GetSummary(ctx, key)
	if err != nil {
		b.fail(ctx, "get_summary", err, "summary_key", key)
		return ""
	}
	return s
}
