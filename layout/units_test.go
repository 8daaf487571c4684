package layout

import (
	"math"
	"testing"
)

// TestPxPtRoundTrip 验证 px↔pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPxPtRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 16, 14.4, 72, 96, 1000}
	for _, px := range samples {
		back := px * PxToPt * PtToPx
		if diff := math.Abs(back - px); diff > 1e-9 {
			t.Fatalf("px→pt→px 往返误差过大: in=%gpx back=%g diff=%g", px, back, diff)
		}
		back = px * PxToMm * MmToPx
		if diff := math.Abs(back - px); diff > 1e-9 {
			t.Fatalf("px→mm→px 往返误差过大: in=%gpx back=%g diff=%g", px, back, diff)
		}
	}
}

func TestLengthToPX(t *testing.T) {
	cases := []struct {
		in   Length
		want float64
	}{
		{Length{Value: 16, Unit: UnitPX}, 16},
		{Length{Value: 12, Unit: UnitPT}, 16},
		{Length{Value: 1, Unit: UnitIN}, 96},
		{Length{Value: 25.4, Unit: UnitMM}, 25.4 * MmToPx},
		{Length{Value: 7, Unit: UnitNone}, 7},
	}
	for _, tc := range cases {
		if got := tc.in.ToPX(); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("%v%s 转 px 期望 %g，实际 %g", tc.in.Value, UnitToString(tc.in.Unit), tc.want, got)
		}
	}
	if got := (Length{Value: 16, Unit: UnitPX}).ToPT(); math.Abs(got-12) > 1e-9 {
		t.Fatalf("16px 转 pt 期望 12，实际 %g", got)
	}
}

func TestParseLength(t *testing.T) {
	cases := []struct {
		in     string
		want   Length
		wantOK bool
	}{
		{"16px", Length{16, UnitPX}, true},
		{" 12PT ", Length{12, UnitPT}, true},
		{"4.5mm", Length{4.5, UnitMM}, true},
		{"1in", Length{1, UnitIN}, true},
		{"800", Length{800, UnitNone}, true},
		{"", Length{}, false},
		{"abc", Length{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseLength(tc.in)
		if ok != tc.wantOK || got != tc.want {
			t.Fatalf("ParseLength(%q) = %+v,%v; want %+v,%v", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}
