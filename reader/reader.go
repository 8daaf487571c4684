package reader

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ByLCY/quire/book"
	"github.com/ByLCY/quire/layout"
	"github.com/ByLCY/quire/storage"
)

// Reader 同一时间只打开一本书。
// Open 与 Close 共用递增序号：完成时已有更新的 Open 或 Close 发出的 Open 被丢弃。
type Reader struct {
	registry *book.Registry
	opts     layout.BuildOptions
	store    *storage.BestEffort

	seq     atomic.Uint64
	mu      sync.RWMutex
	session *Session
}

// New 创建 Reader；store 可以为 nil。
func New(registry *book.Registry, opts layout.BuildOptions, store *storage.BestEffort) *Reader {
	return &Reader{registry: registry, opts: opts, store: store}
}

// Registry 返回书库。
func (r *Reader) Registry() *book.Registry {
	return r.registry
}

// Open 打开一本书并完成首次排版，成功后替换当前会话。
func (r *Reader) Open(ctx context.Context, bookID string, cfg layout.Config) (*Session, error) {
	b, ok := r.registry.Get(bookID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBookNotFound, bookID)
	}
	id := r.seq.Add(1)
	s := NewSession(b, r.opts, r.store)
	if _, err := s.Relayout(ctx, cfg); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id != r.seq.Load() {
		return nil, fmt.Errorf("open %s: %w", bookID, ErrStaleLayout)
	}
	r.session = s
	return s, nil
}

// Session 返回当前会话。
func (r *Reader) Session() (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.session == nil {
		return nil, ErrNoSession
	}
	return r.session, nil
}

// Close 关闭当前会话。
func (r *Reader) Close() {
	r.seq.Add(1)
	r.mu.Lock()
	r.session = nil
	r.mu.Unlock()
}
