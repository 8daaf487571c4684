package layout

import (
	"math"
	"testing"
)

func TestLinearLocator(t *testing.T) {
	// 10 个单元，行距 24px。
	loc := LinearLocator{Units: 10, FontSize: 16, LineHeight: 1.5}
	cases := []struct {
		offset float64
		want   int
	}{
		{0, 0},
		{23.9, 0},
		{30, 1},
		{50, 2},
		{215, 8},
		{10000, 9},
		{math.Inf(1), 9},
		{-5, 0},
		{math.NaN(), 0},
	}
	for _, tc := range cases {
		if got := loc.IndexAt(tc.offset); got != tc.want {
			t.Fatalf("IndexAt(%g) = %d, want %d", tc.offset, got, tc.want)
		}
	}
	if got := (LinearLocator{}).IndexAt(10); got != -1 {
		t.Fatalf("empty locator must return -1, got %d", got)
	}
}

func TestHeightLocator(t *testing.T) {
	loc, total := NewHeightLocator([]float64{10, 0, 20, 5})
	if total != 35 {
		t.Fatalf("expected total 35, got %g", total)
	}
	cases := []struct {
		offset float64
		want   int
	}{
		{0, 0},
		{9.99, 0},
		{10, 2}, // 零高度单元被跳过
		{29.9, 2},
		{30, 3},
		{34, 3},
		{35, 3},
		{1000, 3},
		{-1, 0},
		{math.NaN(), 0},
	}
	for _, tc := range cases {
		if got := loc.IndexAt(tc.offset); got != tc.want {
			t.Fatalf("IndexAt(%g) = %d, want %d", tc.offset, got, tc.want)
		}
	}
	empty, _ := NewHeightLocator(nil)
	if got := empty.IndexAt(0); got != -1 {
		t.Fatalf("empty locator must return -1, got %d", got)
	}
}

func TestParseLocatorMode(t *testing.T) {
	if ParseLocatorMode("precise") != LocatorPrecise {
		t.Fatalf("expected precise")
	}
	for _, v := range []string{"", "linear", "bogus"} {
		if ParseLocatorMode(v) != LocatorLinear {
			t.Fatalf("%q must fall back to linear", v)
		}
	}
}
