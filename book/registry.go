package book

import "sort"

// Registry 是注入式的只读书库，替代进程级的全局书单。
// 构造后不再修改，可被多个 goroutine 并发读取。
type Registry struct {
	byID  map[string]*Book
	order []*Book
}

// NewRegistry 以给定顺序构建书库；id 重复时后者覆盖前者，但保留首次出现的位置。
func NewRegistry(books ...*Book) *Registry {
	r := &Registry{byID: make(map[string]*Book, len(books))}
	for _, b := range books {
		if b == nil {
			continue
		}
		if _, ok := r.byID[b.ID]; ok {
			for i, existing := range r.order {
				if existing.ID == b.ID {
					r.order[i] = b
				}
			}
		} else {
			r.order = append(r.order, b)
		}
		r.byID[b.ID] = b
	}
	return r
}

// Get 返回指定 id 的书籍。
func (r *Registry) Get(id string) (*Book, bool) {
	if r == nil {
		return nil, false
	}
	b, ok := r.byID[id]
	return b, ok
}

// All 返回全部书籍（按注册顺序）。返回的切片是副本。
func (r *Registry) All() []*Book {
	if r == nil {
		return nil
	}
	out := make([]*Book, len(r.order))
	copy(out, r.order)
	return out
}

// IDs 返回按字典序排列的书籍 id。
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len 返回书籍数量。
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}
