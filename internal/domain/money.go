package domain

import "math"

// Prices move through the simulator as int64 ticks (cents). Floats only
// appear at the edges: derived quantities (mid, drift) and the JSON
// surface.

// TicksToPrice converts ticks to a float64 price. It takes a float so
// derived tick quantities (mids, drifts, slippages) pass through
// without rounding.
func TicksToPrice(t float64) float64 {
	return t / 100.0
}

// PriceToTicks converts a float64 price to the nearest int64 tick.
// Rounds to avoid floating-point artifacts (e.g. 1.10 * 100 = 109.999...).
func PriceToTicks(p float64) int64 {
	return int64(math.Round(p * 100))
}
