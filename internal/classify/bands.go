// Package classify maps processed gauge readings to outcomes: the fixed
// six-band sort relative to a standard value, and the generic threshold
// rule evaluation.
package classify

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Category is one of the six fixed sorting bins. Codes are 1-indexed and
// stable for the lifetime of the process; labels and colors are display
// data only.
type Category struct {
	Code  int
	Label string
	Color string
}

// Categories is the fixed band table, ordered by code. Band 1 is over the
// upper tolerance, band 6 under the lower tolerance, bands 2-5 sit at fixed
// offsets from the standard value.
var Categories = [6]Category{
	{1, "超過上限公差", "#d32f2f"},
	{2, "標準+0.005", "#ef6c00"},
	{3, "標準±0.002", "#388e3c"},
	{4, "標準-0.005", "#1976d2"},
	{5, "標準-0.010", "#7b1fa2"},
	{6, "超過下限公差", "#5d4037"},
}

// CategoryByCode returns the category with the given 1-indexed code.
func CategoryByCode(code int) (Category, bool) {
	if code < 1 || code > len(Categories) {
		return Category{}, false
	}
	return Categories[code-1], true
}

// BandResult is a band classification outcome. Reason records the matched
// inequality, or the nearest band center for values that fell in a gap
// between bands, at three-decimal precision.
type BandResult struct {
	Category Category
	Reason   string
}

// Band offsets from the standard value, in the gauge unit.
var (
	offUpper   = decimal.New(8, -3)  // 0.008
	offBand2Lo = decimal.New(3, -3)  // 0.003
	offBand2Hi = decimal.New(7, -3)  // 0.007
	offBand3   = decimal.New(2, -3)  // 0.002
	offLower   = decimal.New(13, -3) // 0.013
	offBand5Lo = decimal.New(12, -3) // 0.012
	offCenter  = decimal.New(5, -3)  // 0.005
	offCenter5 = decimal.New(10, -3) // 0.010
)

// ClassifyBands sorts a 3-decimal value into one of the six bands relative
// to the standard. Bands are checked in fixed priority order, first match
// wins. The band edges leave small uncovered gaps; a value landing in a gap
// resolves to the interior band with the nearest center, ties going to the
// lower-numbered category. Total: every value maps to exactly one category.
func ClassifyBands(v, standard decimal.Decimal) BandResult {
	hiLimit := standard.Add(offUpper)
	band2Lo, band2Hi := standard.Add(offBand2Lo), standard.Add(offBand2Hi)
	band3Lo, band3Hi := standard.Sub(offBand3), standard.Add(offBand3)
	band4Lo, band4Hi := standard.Sub(offBand2Hi), standard.Sub(offBand2Lo)
	band5Lo, band5Hi := standard.Sub(offBand5Lo), standard.Sub(offUpper)
	loLimit := standard.Sub(offLower)

	switch {
	case v.GreaterThanOrEqual(hiLimit):
		return BandResult{Categories[0], fmt.Sprintf("%s >= %s", fixed3(v), fixed3(hiLimit))}
	case between(v, band2Lo, band2Hi):
		return BandResult{Categories[1], rangeReason(band2Lo, v, band2Hi)}
	case between(v, band3Lo, band3Hi):
		return BandResult{Categories[2], rangeReason(band3Lo, v, band3Hi)}
	case between(v, band4Lo, band4Hi):
		return BandResult{Categories[3], rangeReason(band4Lo, v, band4Hi)}
	case between(v, band5Lo, band5Hi):
		return BandResult{Categories[4], rangeReason(band5Lo, v, band5Hi)}
	case v.LessThanOrEqual(loLimit):
		return BandResult{Categories[5], fmt.Sprintf("%s <= %s", fixed3(v), fixed3(loLimit))}
	}

	// Gap between bands: pick the interior band with the nearest center.
	// The scan order and the strict less-than comparison fix the tie
	// winner: on an exact tie the earlier entry keeps the slot.
	centers := []struct {
		cat    Category
		center decimal.Decimal
	}{
		{Categories[1], standard.Add(offCenter)},
		{Categories[2], standard},
		{Categories[3], standard.Sub(offCenter)},
		{Categories[4], standard.Sub(offCenter5)},
	}

	best := centers[0]
	bestDist := v.Sub(best.center).Abs()
	for _, c := range centers[1:] {
		dist := v.Sub(c.center).Abs()
		if dist.LessThan(bestDist) {
			best = c
			bestDist = dist
		}
	}
	return BandResult{best.cat, fmt.Sprintf("closest to %s", fixed3(best.center))}
}

func between(v, lo, hi decimal.Decimal) bool {
	return v.GreaterThanOrEqual(lo) && v.LessThanOrEqual(hi)
}

func rangeReason(lo, v, hi decimal.Decimal) string {
	return fmt.Sprintf("%s <= %s <= %s", fixed3(lo), fixed3(v), fixed3(hi))
}

func fixed3(d decimal.Decimal) string {
	return d.StringFixed(3)
}
