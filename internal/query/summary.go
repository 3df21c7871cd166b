package query

import (
	"math"

	"parceldash/internal/types"
)

// Bounds returns the integer min and max of a numeric field over rs,
// ignoring nulls and values outside the int range. It returns (0, 0) when no record has a value.
func Bounds(rs *types.RecordSet, f types.Field) (lo, hi int) {
	minV, maxV := math.Inf(1), math.Inf(-1)
	for _, r := range rs.Records {
		v, ok := r.Number(f)
		if !ok || !(v >= math.MinInt && v < -math.MinInt) {
			continue
		}
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	if math.IsInf(minV, 1) {
		return 0, 0
	}
	return int(minV), int(maxV)
}

// YearSpan is the earliest and latest year over last sale, prior sale and
// year built, used for the year slider. ok is false when no year is known.
func YearSpan(rs *types.RecordSet) (lo, hi int, ok bool) {
	lo, hi = math.MaxInt, math.MinInt
	for _, r := range rs.Records {
		for _, y := range []*int{r.LastSaleYear, r.PriorSaleYear, r.YearBuilt} {
			if y == nil {
				continue
			}
			lo, hi, ok = min(lo, *y), max(hi, *y), true
		}
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

// Distinct lists the non-empty values of a text field in first-appearance
// order.
func Distinct(rs *types.RecordSet, f types.Field) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rs.Records {
		v, ok := r.Text(f)
		if !ok || v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// DistinctColumn is Distinct over a passthrough column.
func DistinctColumn(rs *types.RecordSet, column string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rs.Records {
		v := r.Fields[column]
		if v == "" {
			continue
		}
		if _, dup := seen[v]; !dup {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
