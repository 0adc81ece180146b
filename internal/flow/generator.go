package flow

import (
	"math"
	"math/rand"

	"github.com/suvomx1999/Adaptive-Market-Microstructure-Simulator-Execution-Optimizer/internal/domain"
)

// RegimeParams bundle everything a regime controls: the Hawkes triple
// plus the order-composition distributions. The families are
// configuration to be calibrated, not hardcoded constants.
type RegimeParams struct {
	Hawkes HawkesParams

	// BuyBias is the probability an order event is a buy.
	BuyBias float64
	// MarketProb is the probability an order event is a market
	// (aggressive) order rather than a limit order.
	MarketProb float64
	// CancelProb is the probability an event cancels a random resting
	// order instead of submitting a new one.
	CancelProb float64
	// PriceStdTicks is the standard deviation, in ticks, of the signed
	// normal offset limit prices are drawn at around the reference
	// price. Offsets through the reference price produce marketable
	// limit orders.
	PriceStdTicks float64
	// MeanOrderSize is the Poisson mean of the order size; sizes are
	// drawn as 1 + Poisson(mean) so they are always positive.
	MeanOrderSize float64
}

// DefaultRegimes builds the two-regime parameter table around a base
// arrival rate. The high-volatility regime triples the baseline rate,
// raises the excitation weight, widens quoting, and is more aggressive.
func DefaultRegimes(baseLambda float64) map[domain.Regime]RegimeParams {
	return map[domain.Regime]RegimeParams{
		domain.RegimeLowVol: {
			Hawkes:        HawkesParams{Mu: baseLambda, Alpha: 0.6, Beta: 1.2},
			BuyBias:       0.5,
			MarketProb:    0.1,
			CancelProb:    0.2,
			PriceStdTicks: 50,
			MeanOrderSize: 10,
		},
		domain.RegimeHighVol: {
			Hawkes:        HawkesParams{Mu: baseLambda * 3.0, Alpha: 0.8, Beta: 1.2},
			BuyBias:       0.45,
			MarketProb:    0.2,
			CancelProb:    0.2,
			PriceStdTicks: 125,
			MeanOrderSize: 10,
		},
	}
}

// EventKind discriminates generated events.
type EventKind int

const (
	// EventOrder carries a new limit or market order.
	EventOrder EventKind = iota
	// EventCancel asks the simulation to cancel a random resting order.
	EventCancel
)

// Event is one generated arrival: its absolute simulated time, the
// waiting time since the previous event, and what arrived.
type Event struct {
	Time float64
	Dt   float64
	Kind EventKind
	// Order is populated for EventOrder and nil for EventCancel.
	Order *domain.Order
}

// Generator produces the synthetic order stream: arrival times from the
// self-exciting intensity, event bodies from the active regime's
// composition distributions. Timing and body draws are independent.
type Generator struct {
	seed      int64
	rng       *rand.Rand
	regimes   map[domain.Regime]RegimeParams
	regime    domain.Regime
	intensity *IntensityState

	clock  float64
	nextID uint64
}

// NewGenerator creates a generator in the given starting regime with a
// deterministic seed. The regime table must contain the starting
// regime.
func NewGenerator(seed int64, regimes map[domain.Regime]RegimeParams, start domain.Regime) (*Generator, error) {
	p, ok := regimes[start]
	if !ok {
		return nil, domain.ErrInvalidRegime
	}
	return &Generator{
		seed:      seed,
		rng:       rand.New(rand.NewSource(seed)),
		regimes:   regimes,
		regime:    start,
		intensity: NewIntensityState(p.Hawkes),
		nextID:    1,
	}, nil
}

// Regime returns the active regime label.
func (g *Generator) Regime() domain.Regime {
	return g.regime
}

// SetRegime swaps the active parameter triple for subsequent draws
// only. Unknown labels return domain.ErrInvalidRegime and the prior
// regime is retained.
func (g *Generator) SetRegime(r domain.Regime) error {
	p, ok := g.regimes[r]
	if !ok {
		return domain.ErrInvalidRegime
	}
	g.regime = r
	g.intensity.SetParams(p.Hawkes)
	return nil
}

// Clock returns the generator's current simulated time.
func (g *Generator) Clock() float64 {
	return g.clock
}

// Intensity evaluates the current arrival intensity λ(t).
func (g *Generator) Intensity(t float64) float64 {
	return g.intensity.IntensityAt(t)
}

// Next draws the next event. refPrice (ticks) anchors limit-order
// quoting; it is the simulation's current reference mid. The intensity
// state is updated for every accepted arrival, cancels included, so
// clustering compounds across all event types.
func (g *Generator) Next(refPrice int64) Event {
	p := g.regimes[g.regime]

	t := g.intensity.NextArrival(g.rng, g.clock)
	g.intensity.Record(t)
	dt := t - g.clock
	g.clock = t

	ev := Event{Time: t, Dt: dt}

	if g.rng.Float64() < p.CancelProb {
		ev.Kind = EventCancel
		return ev
	}

	side := domain.SideSell
	if g.rng.Float64() < p.BuyBias {
		side = domain.SideBuy
	}
	qty := 1 + poisson(g.rng, p.MeanOrderSize)

	order := &domain.Order{
		ID:          g.nextID,
		Side:        side,
		Quantity:    qty,
		Remaining:   qty,
		ArrivalTime: t,
	}
	g.nextID++

	if g.rng.Float64() < p.MarketProb {
		order.Type = domain.OrderTypeMarket
	} else {
		order.Type = domain.OrderTypeLimit
		order.Price = quotePrice(g.rng, side, refPrice, p.PriceStdTicks)
	}

	ev.Kind = EventOrder
	ev.Order = order
	return ev
}

// Reset discards the event history and clock and reseeds the stream,
// so the same seed replays the same flow. keepRegime controls whether
// the active regime survives the reset or reverts to the given initial
// regime.
func (g *Generator) Reset(keepRegime bool, initial domain.Regime) {
	g.clock = 0
	g.nextID = 1
	g.rng = rand.New(rand.NewSource(g.seed))
	g.intensity.Reset()
	if !keepRegime {
		g.regime = initial
	}
	g.intensity.SetParams(g.regimes[g.regime].Hawkes)
}

// quotePrice draws a limit price around the reference: buys below it,
// sells above it, by a signed normal tick offset. Negative offsets land
// through the reference and produce marketable limit orders, which is
// what keeps the synthetic flow trading. Clamped to one tick minimum.
func quotePrice(rng *rand.Rand, side domain.Side, refPrice int64, stdTicks float64) int64 {
	offset := rng.NormFloat64() * stdTicks
	var price float64
	if side == domain.SideBuy {
		price = float64(refPrice) - offset
	} else {
		price = float64(refPrice) + offset
	}
	ticks := int64(math.Round(price))
	if ticks < 1 {
		ticks = 1
	}
	return ticks
}

// poisson draws from Poisson(mean) with Knuth's product method, fine
// for the small means used for order sizes.
func poisson(rng *rand.Rand, mean float64) int64 {
	if mean <= 0 {
		return 0
	}
	limit := math.Exp(-mean)
	var k int64
	prod := rng.Float64()
	for prod > limit {
		k++
		prod *= rng.Float64()
	}
	return k
}
