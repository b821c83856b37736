package classify

import (
	"testing"

	"github.com/shopspring/decimal"
)

var std = decimal.RequireFromString("0.110")

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestClassifyBands_BandMatches(t *testing.T) {
	tests := []struct {
		value string
		code  int
	}{
		{"0.118", 1},
		{"0.125", 1},
		{"0.113", 2},
		{"0.117", 2},
		{"0.110", 3},
		{"0.108", 3},
		{"0.112", 3},
		{"0.105", 4},
		{"0.100", 5},
		{"0.097", 6},
		{"0.050", 6},
	}

	for _, tc := range tests {
		got := ClassifyBands(dec(tc.value), std)
		if got.Category.Code != tc.code {
			t.Errorf("ClassifyBands(%s) = category %d, want %d (reason %q)",
				tc.value, got.Category.Code, tc.code, got.Reason)
		}
	}

	// reasons record the matched inequality at 3dp
	if got := ClassifyBands(dec("0.118"), std); got.Reason != "0.118 >= 0.118" {
		t.Errorf("band 1 reason = %q", got.Reason)
	}
	if got := ClassifyBands(dec("0.110"), std); got.Reason != "0.108 <= 0.110 <= 0.112" {
		t.Errorf("band 3 reason = %q", got.Reason)
	}
}

func TestClassifyBands_GapResolution(t *testing.T) {
	tests := []struct {
		value  string
		code   int
		reason string
	}{
		// upper gap between bands 1 and 2: nearest center is 0.115
		{"0.1175", 2, "closest to 0.115"},
		// gap between bands 2 and 3
		{"0.1128", 2, "closest to 0.115"},
		{"0.1122", 3, "closest to 0.110"},
		// low-side gaps
		{"0.1078", 3, "closest to 0.110"},
		{"0.1072", 4, "closest to 0.105"},
		// sliver between bands 5 and 6
		{"0.0975", 5, "closest to 0.100"},
	}

	for _, tc := range tests {
		got := ClassifyBands(dec(tc.value), std)
		if got.Category.Code != tc.code || got.Reason != tc.reason {
			t.Errorf("ClassifyBands(%s) = (%d, %q), want (%d, %q)",
				tc.value, got.Category.Code, got.Reason, tc.code, tc.reason)
		}
	}
}

func TestClassifyBands_TieBreak(t *testing.T) {
	// exact midpoints between adjacent centers: the earlier band in the
	// fixed order (2, 3, 4, 5) must win
	tests := []struct {
		value string
		code  int
	}{
		{"0.1125", 2}, // midway between 0.115 (cat2) and 0.110 (cat3)
		{"0.1075", 3}, // midway between 0.110 (cat3) and 0.105 (cat4)
	}

	for _, tc := range tests {
		got := ClassifyBands(dec(tc.value), std)
		if got.Category.Code != tc.code {
			t.Errorf("ClassifyBands(%s) = category %d, want %d", tc.value, got.Category.Code, tc.code)
		}
	}
}

func TestClassifyBands_Exhaustive(t *testing.T) {
	// sweep a wide window around the standard in 0.0001 steps; every value
	// must land in exactly one category
	step := decimal.New(1, -4)
	v := std.Sub(decimal.New(200, -4))
	end := std.Add(decimal.New(200, -4))

	for v.LessThanOrEqual(end) {
		got := ClassifyBands(v, std)
		if got.Category.Code < 1 || got.Category.Code > 6 {
			t.Fatalf("ClassifyBands(%s) = category %d", v, got.Category.Code)
		}
		if got.Reason == "" {
			t.Fatalf("ClassifyBands(%s) produced empty reason", v)
		}
		v = v.Add(step)
	}
}

func TestCategoryByCode(t *testing.T) {
	for code := 1; code <= 6; code++ {
		cat, ok := CategoryByCode(code)
		if !ok || cat.Code != code {
			t.Errorf("CategoryByCode(%d) = (%+v, %v)", code, cat, ok)
		}
	}
	for _, code := range []int{0, 7, -1} {
		if _, ok := CategoryByCode(code); ok {
			t.Errorf("CategoryByCode(%d) unexpectedly ok", code)
		}
	}
}
