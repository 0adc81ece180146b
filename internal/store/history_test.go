package store

import (
	"math"
	"testing"
)

func TestPriceHistory_BoundedWindow(t *testing.T) {
	h := NewPriceHistory(3)
	for i := 0; i < 5; i++ {
		h.Append(PricePoint{Time: float64(i), Mid: 100})
	}

	points := h.Points()
	if len(points) != 3 {
		t.Fatalf("window = %d points, want 3", len(points))
	}
	if points[0].Time != 2 || points[2].Time != 4 {
		t.Errorf("window = [%v..%v], want [2..4]", points[0].Time, points[2].Time)
	}
}

func TestPriceHistory_PointsReturnsCopy(t *testing.T) {
	h := NewPriceHistory(10)
	h.Append(PricePoint{Mid: 100})

	points := h.Points()
	points[0].Mid = 1

	if got := h.Points()[0].Mid; got != 100 {
		t.Errorf("caller mutation leaked into the window: mid = %v", got)
	}
}

func TestRealizedVol_ConstantMidIsZero(t *testing.T) {
	h := NewPriceHistory(10)
	for i := 0; i < 5; i++ {
		h.Append(PricePoint{Mid: 100})
	}
	if got := h.RealizedVol(); got != 0 {
		t.Errorf("vol of a constant series = %v, want 0", got)
	}
}

func TestRealizedVol_TooFewPointsIsZero(t *testing.T) {
	h := NewPriceHistory(10)
	h.Append(PricePoint{Mid: 100})
	h.Append(PricePoint{Mid: 101})
	if got := h.RealizedVol(); got != 0 {
		t.Errorf("vol with a single return = %v, want 0", got)
	}
}

func TestRealizedVol_MatchesSampleStd(t *testing.T) {
	h := NewPriceHistory(10)
	mids := []float64{100, 102, 101, 103}
	for _, m := range mids {
		h.Append(PricePoint{Mid: m})
	}

	var returns []float64
	for i := 1; i < len(mids); i++ {
		returns = append(returns, math.Log(mids[i]/mids[i-1]))
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
	want := math.Sqrt(variance / float64(len(returns)-1))

	if got := h.RealizedVol(); math.Abs(got-want) > 1e-12 {
		t.Errorf("vol = %v, want %v", got, want)
	}
}

func TestPriceHistory_Reset(t *testing.T) {
	h := NewPriceHistory(10)
	h.Append(PricePoint{Mid: 100})
	h.Reset()
	if h.Len() != 0 {
		t.Errorf("len after reset = %d, want 0", h.Len())
	}
}
