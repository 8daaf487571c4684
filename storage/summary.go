package storage

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// SummaryLoader 在缓存未命中时生成摘要。
type SummaryLoader func(ctx context.Context) (string, error)

// SummaryCache 是摘要的读穿缓存，同一 key 的并发加载只执行一次。
type SummaryCache struct {
	store *BestEffort
	group singleflight.Group
}

// NewSummaryCache 创建摘要缓存。
func NewSummaryCache(store *BestEffort) *SummaryCache {
	return &SummaryCache{store: store}
}

// SummaryKey 组合书籍与章节得到摘要键。
func SummaryKey(bookID, chapterID string) string {
	return bookID + "_" + chapterID
}

// GetOrLoad 先读缓存，未命中时调用 loader 并回写；回写失败不影响返回值。
func (c *SummaryCache) GetOrLoad(ctx context.Context, key string, loader SummaryLoader) (string, error) {
	if s := c.store.GetSummary(ctx, key); s != "" {
		return s, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		// 再次检查，可能已被并发请求填充
		if s := c.store.GetSummary(ctx, key); s != "" {
			return s, nil
		}
		s, err := loader(ctx)
		if err != nil {
			return "", err
		}
		c.store.SaveSummary(ctx, key, s)
		return s, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
