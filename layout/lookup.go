package layout

import (
	"math"
	"sort"
)

// PageAtOffset 返回起始偏移不超过 offset 的最后一页。
// 若没有页面满足条件（offset 在第一页之前或为 NaN），回退到第一页；布局为空时返回 false。
func PageAtOffset(l *BookLayout, offset float64) (Page, bool) {
	if l == nil || len(l.Pages) == 0 {
		return Page{}, false
	}
	if math.IsNaN(offset) {
		return l.Pages[0], true
	}
	// 页偏移严格递增：找到第一个起点大于 offset 的页，它的前一页即为所求。
	i := sort.Search(len(l.Pages), func(i int) bool { return l.Pages[i].ScrollOffset > offset })
	if i == 0 {
		return l.Pages[0], true
	}
	return l.Pages[i-1], true
}

// PageByNumber 返回页码完全匹配的页面，不做截断或就近匹配。
func PageByNumber(l *BookLayout, pageNumber int) (Page, bool) {
	if l == nil || pageNumber < 1 || pageNumber > len(l.Pages) {
		return Page{}, false
	}
	if p := l.Pages[pageNumber-1]; p.PageNumber == pageNumber {
		return p, true
	}
	for _, p := range l.Pages {
		if p.PageNumber == pageNumber {
			return p, true
		}
	}
	return Page{}, false
}

// PageAtOffset 是 PageAtOffset(l, offset) 的方法形式。
func (l *BookLayout) PageAtOffset(offset float64) (Page, bool) { return PageAtOffset(l, offset) }

// PageByNumber 是 PageByNumber(l, n) 的方法形式。
func (l *BookLayout) PageByNumber(pageNumber int) (Page, bool) { return PageByNumber(l, pageNumber) }
