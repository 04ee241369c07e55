package money

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round rounds v to the given number of decimals, half away from zero.
// Going through decimal keeps values such as 1.005 from being rounded down
// by their binary representation. NaN and ±Inf round to 0.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// Cents rounds a currency amount to two decimals.
func Cents(v float64) float64 { return Round(v, 2) }

// Sum adds amounts in decimal and returns the cent-rounded total.
func Sum(vs ...float64) float64 {
	total := decimal.Zero
	for _, v := range vs {
		total = total.Add(decimal.NewFromFloat(v))
	}
	f, _ := total.Round(2).Float64()
	return f
}

// Cmp compares a and b at cent precision: -1 if a < b, 0 if equal, +1 if a > b.
func Cmp(a, b float64) int {
	return decimal.NewFromFloat(a).Round(2).Cmp(decimal.NewFromFloat(b).Round(2))
}
