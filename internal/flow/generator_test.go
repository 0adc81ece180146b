package flow

import (
	"errors"
	"testing"

	"github.com/suvomx1999/Adaptive-Market-Microstructure-Simulator-Execution-Optimizer/internal/domain"
)

const refPrice = int64(10000)

func newTestGenerator(t *testing.T, seed int64) *Generator {
	t.Helper()
	g, err := NewGenerator(seed, DefaultRegimes(5.0), domain.RegimeLowVol)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return g
}

func TestGenerator_EventsAreWellFormed(t *testing.T) {
	g := newTestGenerator(t, 1)

	prev := 0.0
	for i := 0; i < 2000; i++ {
		ev := g.Next(refPrice)
		if ev.Time <= prev {
			t.Fatalf("event %d time %v did not advance past %v", i, ev.Time, prev)
		}
		if ev.Dt <= 0 {
			t.Fatalf("event %d waiting time %v not positive", i, ev.Dt)
		}
		prev = ev.Time

		switch ev.Kind {
		case EventCancel:
			if ev.Order != nil {
				t.Fatal("cancel event carried an order")
			}
		case EventOrder:
			o := ev.Order
			if o == nil {
				t.Fatal("order event carried no order")
			}
			if !o.Side.Valid() {
				t.Fatalf("invalid side %q", o.Side)
			}
			if o.Quantity <= 0 || o.Remaining != o.Quantity {
				t.Fatalf("bad quantity %d/%d", o.Quantity, o.Remaining)
			}
			if o.Type == domain.OrderTypeLimit && o.Price <= 0 {
				t.Fatalf("limit order with price %d", o.Price)
			}
			if o.Type == domain.OrderTypeMarket && o.Price != 0 {
				t.Fatalf("market order with price %d", o.Price)
			}
			if o.ArrivalTime != ev.Time {
				t.Fatalf("arrival time %v != event time %v", o.ArrivalTime, ev.Time)
			}
		}
	}
}

func TestGenerator_OrderIDsAreMonotonic(t *testing.T) {
	g := newTestGenerator(t, 2)

	var last uint64
	for i := 0; i < 500; i++ {
		ev := g.Next(refPrice)
		if ev.Kind != EventOrder {
			continue
		}
		if ev.Order.ID <= last {
			t.Fatalf("order ID %d not strictly increasing after %d", ev.Order.ID, last)
		}
		last = ev.Order.ID
	}
}

func TestGenerator_DeterministicForSeed(t *testing.T) {
	a := newTestGenerator(t, 99)
	b := newTestGenerator(t, 99)

	for i := 0; i < 200; i++ {
		ea := a.Next(refPrice)
		eb := b.Next(refPrice)
		if ea.Time != eb.Time || ea.Kind != eb.Kind {
			t.Fatalf("streams diverged at event %d", i)
		}
		if ea.Kind == EventOrder && *ea.Order != *eb.Order {
			t.Fatalf("orders diverged at event %d: %+v vs %+v", i, ea.Order, eb.Order)
		}
	}
}

func TestGenerator_SetRegimeSwapsParameters(t *testing.T) {
	g := newTestGenerator(t, 3)
	regimes := DefaultRegimes(5.0)

	// Accumulate some excitation in the low regime.
	for i := 0; i < 20; i++ {
		g.Next(refPrice)
	}
	now := g.Clock()
	excitation := g.Intensity(now) - regimes[domain.RegimeLowVol].Hawkes.Mu
	if excitation < 0 {
		t.Fatalf("negative excitation %v", excitation)
	}

	if err := g.SetRegime(domain.RegimeHighVol); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Regime() != domain.RegimeHighVol {
		t.Errorf("regime = %s, want HIGH", g.Regime())
	}

	// The floor moved to the high-regime μ; accumulated excitation is
	// carried over unchanged.
	got := g.Intensity(now) - regimes[domain.RegimeHighVol].Hawkes.Mu
	if diff := got - excitation; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("excitation changed across regime switch: %v → %v", excitation, got)
	}
}

func TestGenerator_SetRegimeRejectsUnknown(t *testing.T) {
	g := newTestGenerator(t, 4)

	if err := g.SetRegime(domain.Regime("SIDEWAYS")); !errors.Is(err, domain.ErrInvalidRegime) {
		t.Errorf("SetRegime = %v, want ErrInvalidRegime", err)
	}
	if g.Regime() != domain.RegimeLowVol {
		t.Errorf("prior regime not retained, got %s", g.Regime())
	}
}

func TestGenerator_ProducesAllEventShapes(t *testing.T) {
	g := newTestGenerator(t, 5)

	var limits, markets, cancels, buys, sells int
	for i := 0; i < 3000; i++ {
		ev := g.Next(refPrice)
		switch {
		case ev.Kind == EventCancel:
			cancels++
		case ev.Order.Type == domain.OrderTypeLimit:
			limits++
		default:
			markets++
		}
		if ev.Kind == EventOrder {
			if ev.Order.Side == domain.SideBuy {
				buys++
			} else {
				sells++
			}
		}
	}
	if limits == 0 || markets == 0 || cancels == 0 {
		t.Errorf("composition degenerate: limits=%d markets=%d cancels=%d", limits, markets, cancels)
	}
	if buys == 0 || sells == 0 {
		t.Errorf("one-sided flow: buys=%d sells=%d", buys, sells)
	}
}

func TestGenerator_ResetClearsClockAndHistory(t *testing.T) {
	g := newTestGenerator(t, 6)
	for i := 0; i < 50; i++ {
		g.Next(refPrice)
	}
	_ = g.SetRegime(domain.RegimeHighVol)

	g.Reset(false, domain.RegimeLowVol)

	if g.Clock() != 0 {
		t.Errorf("clock = %v, want 0", g.Clock())
	}
	if g.Regime() != domain.RegimeLowVol {
		t.Errorf("regime = %s, want LOW after reset", g.Regime())
	}
	mu := DefaultRegimes(5.0)[domain.RegimeLowVol].Hawkes.Mu
	if got := g.Intensity(0); got != mu {
		t.Errorf("λ after reset = %v, want baseline %v", got, mu)
	}

	// keepRegime preserves the active regime across reset.
	_ = g.SetRegime(domain.RegimeHighVol)
	g.Reset(true, domain.RegimeLowVol)
	if g.Regime() != domain.RegimeHighVol {
		t.Errorf("regime = %s, want HIGH preserved", g.Regime())
	}
}
