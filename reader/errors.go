package reader

import "errors"

var (
	// ErrStaleLayout 表示布局计算完成时已有更新的请求发出，结果被丢弃。
	ErrStaleLayout = errors.New("reader: layout superseded by a newer request")

	// ErrNoSession 表示当前没有打开的书。
	ErrNoSession = errors.New("reader: no book is open")

	// ErrBookNotFound 表示书库中没有该 id。
	ErrBookNotFound = errors.New("reader: book not found")
)
