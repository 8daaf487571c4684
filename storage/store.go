package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	keyReadingState = "reading_state_"
	keyHighlights   = "highlights_"
	keySummaries    = "summaries_"
)

// ReadingState 是某本书最后一次阅读的位置。
// TotalHeight 记录保存时的布局总高度，排版参数变化后据此按比例换算偏移。
type ReadingState struct {
	BookID       string    `json:"bookId"`
	PageNumber   int       `json:"pageNumber"`
	ScrollOffset float64   `json:"scrollOffset"`
	TotalHeight  float64   `json:"totalHeight"`
	ChapterID    string    `json:"chapterId"`
	ChapterTitle string    `json:"chapterTitle"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Highlight 是用户标注的一段文本。
type Highlight struct {
	ID           string    `json:"id"`
	ChapterID    string    `json:"chapterId"`
	ParagraphIdx int       `json:"paragraphIdx"`
	Text         string    `json:"text"`
	Color        string    `json:"color,omitempty"`
	Note         string    `json:"note,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Store 在 KV 之上提供类型化的读写，失败原样返回。
type Store struct {
	kv  KV
	now func() time.Time

	// 串行化同一进程内高亮列表的读-改-写
	hlMu sync.Mutex
}

// NewStore 创建 Store。
func NewStore(kv KV) *Store {
	return &Store{kv: kv, now: time.Now}
}

// SaveReadingState 覆盖保存阅读位置；UpdatedAt 为空时填当前时间。
func (s *Store) SaveReadingState(ctx context.Context, st ReadingState) error {
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = s.now().UTC()
	}
	return s.putJSON(ctx, keyReadingState+st.BookID, st)
}

// GetReadingState 返回保存的阅读位置；从未保存时返回 nil, nil。
func (s *Store) GetReadingState(ctx context.Context, bookID string) (*ReadingState, error) {
	var st ReadingState
	ok, err := s.getJSON(ctx, keyReadingState+bookID, &st)
	if err != nil || !ok {
		return nil, err
	}
	return &st, nil
}

// GetHighlights 返回某本书的全部高亮，按添加顺序；没有时返回空切片。
func (s *Store) GetHighlights(ctx context.Context, bookID string) ([]Highlight, error) {
	list := []Highlight{}
	if _, err := s.getJSON(ctx, keyHighlights+bookID, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []Highlight{}
	}
	return list, nil
}

// AddHighlight 追加一条高亮，ID 为空时生成 UUID，返回最终保存的高亮。
func (s *Store) AddHighlight(ctx context.Context, bookID string, h Highlight) (Highlight, error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = s.now().UTC()
	}

	s.hlMu.Lock()
	defer s.hlMu.Unlock()
	list, err := s.GetHighlights(ctx, bookID)
	if err != nil {
		return Highlight{}, err
	}
	list = append(list, h)
	if err := s.putJSON(ctx, keyHighlights+bookID, list); err != nil {
		return Highlight{}, err
	}
	return h, nil
}

// DeleteHighlight 按 ID 删除高亮，返回是否确实删除了条目。
func (s *Store) DeleteHighlight(ctx context.Context, bookID, highlightID string) (bool, error) {
	s.hlMu.Lock()
	defer s.hlMu.Unlock()
	list, err := s.GetHighlights(ctx, bookID)
	if err != nil {
		return false, err
	}
	kept := list[:0]
	for _, h := range list {
		if h.ID != highlightID {
			kept = append(kept, h)
		}
	}
	if len(kept) == len(list) {
		return false, nil
	}
	if err := s.putJSON(ctx, keyHighlights+bookID, kept); err != nil {
		return false, err
	}
	return true, nil
}

// SaveSummary 保存摘要原文（不做 JSON 编码）。
func (s *Store) SaveSummary(ctx context.Context, key, summary string) error {
	return s.kv.Set(ctx, keySummaries+key, []byte(summary))
}

// GetSummary 返回摘要；不存在时 ok 为 false。
func (s *Store) GetSummary(ctx context.Context, key string) (string, bool, error) {
	val, ok, err := s.kv.Get(ctx, keySummaries+key)
	if err != nil || !ok {
		return "", false, err
	}
	return string(val), true, nil
}

func (s *Store) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, data)
}

func (s *Store) getJSON(ctx context.Context, key string, v any) (bool, error) {
	data, ok, err := s.kv.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("storage: decode %s: %w", key, err)
	}
	return true, nil
}
