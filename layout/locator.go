package layout

import (
	"math"
	"sort"
)

// ChapterLocator 将像素偏移映射到展平序列中的内容单元下标。
// 分页逻辑只依赖此接口，便于替换估算策略。
type ChapterLocator interface {
	IndexAt(offset float64) int
}

// LinearLocator 假设每个单元高度一致，按
// floor((offset / (n × fontSize × lineHeight)) × n) 线性估算下标，并截断到最后一个单元。
// 标题与长段落的真实高度并不一致，这只是粗略近似；章节边界的展示依赖该行为，不要“修正”。
type LinearLocator struct {
	Units      int
	FontSize   float64
	LineHeight float64
}

// IndexAt 实现 ChapterLocator。没有内容单元时返回 -1。
func (l LinearLocator) IndexAt(offset float64) int {
	if l.Units <= 0 {
		return -1
	}
	n := float64(l.Units)
	est := math.Floor((offset / (n * l.FontSize * l.LineHeight)) * n)
	return clampIndex(est, l.Units)
}

// HeightLocator 基于逐单元测量高度的累加值做二分查找，返回包含该偏移的单元。
type HeightLocator struct {
	ends []float64 // ends[i] = 单元 0..i 的累计高度
}

// NewHeightLocator 由逐单元高度构建定位器，同时返回高度总和。
func NewHeightLocator(heights []float64) (HeightLocator, float64) {
	ends := make([]float64, len(heights))
	total := 0.0
	for i, h := range heights {
		total += h
		ends[i] = total
	}
	return HeightLocator{ends: ends}, total
}

// IndexAt 实现 ChapterLocator。没有内容单元时返回 -1。
func (h HeightLocator) IndexAt(offset float64) int {
	n := len(h.ends)
	if n == 0 {
		return -1
	}
	if math.IsNaN(offset) {
		return 0
	}
	i := sort.Search(n, func(i int) bool { return h.ends[i] > offset })
	if i >= n {
		return n - 1
	}
	return i
}

func clampIndex(est float64, n int) int {
	if math.IsNaN(est) || est < 0 {
		return 0
	}
	if est >= float64(n-1) {
		return n - 1
	}
	return int(est)
}
