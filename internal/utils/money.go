package utils

import "math"

// RoundMoney rounds an amount to two decimal places.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// ToMinorUnits converts an amount to the smallest currency unit.
func ToMinorUnits(v float64) int64 {
	return int64(math.Round(v * 100))
}
