package rollup

import (
	"math"
	"sort"
)

// round rounds to specified decimal places
func round(value float64, places int) float64 {
	mult := math.Pow(10, float64(places))
	return math.Round(value*mult) / mult
}

func ptr[T any](v T) *T {
	return &v
}

// ratio returns num/den rounded, or nil when the denominator is zero
func ratio(num, den float64, places int) *float64 {
	if den == 0 {
		return nil
	}
	return ptr(round(num/den, places))
}

// pct returns num/den*100 rounded, or nil when the denominator is zero
func pct(num, den float64, places int) *float64 {
	if den == 0 {
		return nil
	}
	return ptr(round(num/den*100, places))
}

// median of a non-empty sample; nil for an empty one
func median(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return ptr(sorted[mid])
	}
	return ptr((sorted[mid-1] + sorted[mid]) / 2)
}

func floatOf(v int64) *float64 {
	f := float64(v)
	return &f
}
