// Package storage 持久化阅读状态、高亮与摘要。
//
// 键名沿用客户端的约定：reading_state_<bookID>、highlights_<bookID>、summaries_<key>。
package storage

import (
	"context"
	"sync"
)

// KV 是最小的键值存储接口，Store 只依赖它。
type KV interface {
	// Get 返回键对应的值；键不存在时 ok 为 false 且 err 为 nil。
	Get(ctx context.Context, key string) (val []byte, ok bool, err error)
	Set(ctx context.Context, key string, val []byte) error
	Delete(ctx context.Context, key string) error
}

// Memory 是进程内 KV，适用于单机与测试。
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ KV = (*Memory)(nil)

// NewMemory 创建空的内存存储。
func NewMemory() *Memory {
	return &Memory{data: map[string][]byte{}}
}

// Get 实现 KV。
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set 实现 KV。
func (m *Memory) Set(_ context.Context, key string, val []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), val...)
	return nil
}

// Delete 实现 KV。
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Len 返回键数量。
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
