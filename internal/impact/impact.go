// Package impact implements an Almgren-Chriss style market impact
// model: executed volume costs a temporary square-root slippage on the
// execution itself and leaves a linear permanent drift in the reference
// mid-price.
package impact

import (
	"math"

	"github.com/suvomx1999/Adaptive-Market-Microstructure-Simulator-Execution-Optimizer/internal/domain"
)

// Result is the outcome of applying one execution's volume.
type Result struct {
	// TemporarySlippage, in ticks, applies only to this execution's
	// fill price. It is signed in the direction of the aggressor: buys
	// pay up, sells concede down. It does not persist.
	TemporarySlippage float64
	// PermanentDrift is the updated cumulative drift, in ticks, after
	// this execution.
	PermanentDrift float64
}

// Model holds the impact coefficients and the permanent drift
// accumulator. The exponents are fixed by the modeled theory — 0.5
// temporary, 1.0 permanent — while the coefficients are configuration.
type Model struct {
	eta   float64 // temporary-impact coefficient
	gamma float64 // permanent-impact coefficient

	drift     float64 // cumulative permanent drift, ticks
	cumVolume int64   // signed executed volume since last reset
}

// New creates a Model with the given coefficients.
func New(eta, gamma float64) *Model {
	return &Model{eta: eta, gamma: gamma}
}

// Apply folds one execution into the model. volume is the unsigned
// executed quantity; side is the aggressor side. Zero or negative
// volume is a no-op returning zero slippage and the unchanged drift.
//
// Temporary: η·sign·sqrt(|v|). Permanent: drift += γ·sign·v. The drift
// never reverses spontaneously — only further executions or Reset move
// it.
func (m *Model) Apply(volume int64, side domain.Side) Result {
	if volume <= 0 {
		return Result{PermanentDrift: m.drift}
	}
	sign := float64(side.Sign())
	slippage := m.eta * sign * math.Sqrt(float64(volume))
	m.drift += m.gamma * sign * float64(volume)
	m.cumVolume += side.Sign() * volume
	return Result{
		TemporarySlippage: slippage,
		PermanentDrift:    m.drift,
	}
}

// Drift returns the cumulative permanent drift in ticks.
func (m *Model) Drift() float64 {
	return m.drift
}

// CumulativeVolume returns the signed executed volume since the last
// reset.
func (m *Model) CumulativeVolume() int64 {
	return m.cumVolume
}

// Reset zeroes the drift accumulator and cumulative volume.
func (m *Model) Reset() {
	m.drift = 0
	m.cumVolume = 0
}
