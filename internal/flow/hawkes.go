package flow

import (
	"math"
	"math/rand"
)

// HawkesParams are the (μ, α, β) triple of an exponential-kernel Hawkes
// process: λ(t) = μ + Σ_{tᵢ<t} α·e^(−β·(t−tᵢ)).
type HawkesParams struct {
	Mu    float64 // baseline rate
	Alpha float64 // excitation weight per event
	Beta  float64 // kernel decay rate
}

// IntensityState is the self-exciting intensity kept as explicit state:
// the kernel sum is an exponentially decayed scalar updated in O(1) per
// event instead of a replayed event history.
type IntensityState struct {
	params     HawkesParams
	excitation float64 // α-weighted decayed kernel sum at lastEvent
	lastEvent  float64
	hasEvents  bool
}

// NewIntensityState creates an intensity state with no event history.
func NewIntensityState(p HawkesParams) *IntensityState {
	return &IntensityState{params: p}
}

// Params returns the active parameter triple.
func (s *IntensityState) Params() HawkesParams {
	return s.params
}

// SetParams swaps the parameter triple, e.g. on a regime change. The
// accumulated excitation is left untouched: the swap affects the
// baseline floor and future excitation weight for subsequent draws
// only, never history already compounded.
func (s *IntensityState) SetParams(p HawkesParams) {
	s.params = p
}

// IntensityAt evaluates λ(t) for t at or after the last event. The
// excitation term is non-negative, so λ(t) ≥ μ always.
func (s *IntensityState) IntensityAt(t float64) float64 {
	if !s.hasEvents {
		return s.params.Mu
	}
	return s.params.Mu + s.excitation*math.Exp(-s.params.Beta*(t-s.lastEvent))
}

// Record folds an accepted event at time t into the running kernel sum:
// S ← S·e^(−β·Δt) + α. Every accepted event must be recorded, including
// self-generated ones, so clustering compounds correctly.
func (s *IntensityState) Record(t float64) {
	if s.hasEvents {
		s.excitation *= math.Exp(-s.params.Beta * (t - s.lastEvent))
	}
	s.excitation += s.params.Alpha
	s.lastEvent = t
	s.hasEvents = true
}

// NextArrival draws the next event time after `from` with Ogata's
// thinning algorithm. The kernel decays monotonically between events,
// so λ evaluated at the current proposal point is a valid local upper
// bound: propose an exponential waiting time at the bound rate, accept
// with probability λ(t)/bound, otherwise tighten the bound and retry.
// The draw does not mutate the state; callers Record accepted events.
func (s *IntensityState) NextArrival(rng *rand.Rand, from float64) float64 {
	t := from
	for {
		bound := s.IntensityAt(t)
		t += rng.ExpFloat64() / bound
		if rng.Float64()*bound <= s.IntensityAt(t) {
			return t
		}
	}
}

// Reset discards the accumulated event history.
func (s *IntensityState) Reset() {
	s.excitation = 0
	s.lastEvent = 0
	s.hasEvents = false
}
