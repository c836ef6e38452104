package domain

import "math"

// Entries store PokeAPI-native units: height in decimeters and weight in
// hectograms. Forms and CLI flags use centimeters and kilograms. Convert only
// at that boundary; nothing inside the service layer calls these.

// CentimetersToDecimeters divides by 10, rounding to the nearest decimeter
func CentimetersToDecimeters(cm float64) int {
	return nonNegative(int(math.Round(cm / 10)))
}

// DecimetersToCentimeters multiplies by 10
func DecimetersToCentimeters(dm int) float64 {
	return float64(dm) * 10
}

// KilogramsToHectograms multiplies by 10, rounding to the nearest hectogram
func KilogramsToHectograms(kg float64) int {
	return nonNegative(int(math.Round(kg * 10)))
}

// HectogramsToKilograms divides by 10
func HectogramsToKilograms(hg int) float64 {
	return float64(hg) / 10
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
