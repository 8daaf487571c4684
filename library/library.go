// Package library 从目录加载书库：.book 源文件与 .epub 文件。
package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/quire/book"
	"github.com/ByLCY/quire/dsl"
	"github.com/ByLCY/quire/epub"
	"github.com/ByLCY/quire/logger"
)

// LoadBook 按扩展名选择解析器读取一本书。
func LoadBook(path string) (*book.Book, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case dsl.FileExt:
		return dsl.LoadFile(path)
	case ".epub":
		return epub.Open(path)
	default:
		return nil, fmt.Errorf("unsupported book format: %s", path)
	}
}

// Supported 判断文件是否能被 LoadBook 读取。
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case dsl.FileExt, ".epub":
		return true
	}
	return false
}

// Load 并发解析 dir 下（不递归）的所有书籍，按文件名排序注册。
// 单个文件解析失败只记录警告并跳过；目录不可读时返回错误。
func Load(ctx context.Context, dir string) (*book.Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read library dir %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !Supported(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	books := make([]*book.Book, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := LoadBook(p)
			if err != nil {
				logger.Warn(gctx, "skipping unreadable book", "path", p, "error", err.Error())
				return nil
			}
			books[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reg := book.NewRegistry(books...)
	logger.Info(ctx, "library loaded", "dir", dir, "files", len(paths), "books", reg.Len())
	return reg, nil
}
