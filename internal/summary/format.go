// Package summary turns explorer history rows into parallel chart series.
//
// Every function here is pure: inputs are never mutated and each call returns
// freshly allocated slices.
package summary

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

var lovelacePerADA = decimal.NewFromInt(1_000_000)

// fixed2 renders v with two decimals, rounding half away from zero on the
// shortest decimal representation of v (so 1.005 becomes "1.01").
func fixed2(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

func lovelaceToADA(v decimal.Decimal) string {
	return v.Div(lovelacePerADA).StringFixed(2)
}
