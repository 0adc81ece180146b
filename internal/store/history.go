package store

import (
	"math"
	"sync"
)

// PricePoint is one entry of the rolling price history: everything a
// downstream chart or detector needs per step, in price units.
type PricePoint struct {
	Time       float64
	Mid        float64
	BestBid    float64
	BestAsk    float64
	Intensity  float64
	RegimeProb float64
}

// PriceHistory is a thread-safe rolling window of PricePoints.
type PriceHistory struct {
	mu     sync.RWMutex
	limit  int
	points []PricePoint
}

// NewPriceHistory creates an empty history holding at most limit points.
func NewPriceHistory(limit int) *PriceHistory {
	return &PriceHistory{limit: limit}
}

// Append records a point, evicting the oldest when over the limit.
func (h *PriceHistory) Append(p PricePoint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.points = append(h.points, p)
	if over := len(h.points) - h.limit; over > 0 {
		h.points = append(h.points[:0:0], h.points[over:]...)
	}
}

// Points returns a copy of the window, oldest first.
func (h *PriceHistory) Points() []PricePoint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]PricePoint, len(h.points))
	copy(out, h.points)
	return out
}

// Len returns the number of retained points.
func (h *PriceHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.points)
}

// RealizedVol estimates realized volatility as the sample standard
// deviation of log mid returns over the window. Returns 0 with fewer
// than three points.
func (h *PriceHistory) RealizedVol() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var returns []float64
	for i := 1; i < len(h.points); i++ {
		prev, cur := h.points[i-1].Mid, h.points[i].Mid
		if prev <= 0 || cur <= 0 {
			continue
		}
		returns = append(returns, math.Log(cur/prev))
	}
	if len(returns) < 2 {
		return 0
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	return math.Sqrt(variance)
}

// Reset discards the window.
func (h *PriceHistory) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.points = nil
}
