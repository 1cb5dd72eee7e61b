package utils

// Clamp restricts v to [lo, hi]. Infinite bounds leave v unrestricted on that side.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
