package sim

import (
	"errors"
	"testing"

	"github.com/suvomx1999/Adaptive-Market-Microstructure-Simulator-Execution-Optimizer/internal/domain"
)

func newTestSimulator(t *testing.T, warmup int) *Simulator {
	t.Helper()
	s, err := New(Options{
		Seed:         42,
		WarmupEvents: warmup,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func TestNew_WarmupPopulatesBook(t *testing.T) {
	s := newTestSimulator(t, 200)

	snap := s.CurrentState()
	if snap.Step != 200 {
		t.Errorf("step = %d, want 200 after warmup", snap.Step)
	}
	if snap.Time <= 0 {
		t.Errorf("time = %v, want > 0 after warmup", snap.Time)
	}
	if len(snap.Bids) == 0 || len(snap.Asks) == 0 {
		t.Errorf("warmup left a one-sided book: %d bids, %d asks", len(snap.Bids), len(snap.Asks))
	}
}

func TestStep_AdvancesTimeAndCount(t *testing.T) {
	s := newTestSimulator(t, 10)

	before := s.CurrentState()
	snap, err := s.Step()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Step != before.Step+1 {
		t.Errorf("step = %d, want %d", snap.Step, before.Step+1)
	}
	if snap.Time <= before.Time {
		t.Errorf("time did not advance: %v → %v", before.Time, snap.Time)
	}
}

func TestStep_BookNeverCrossed(t *testing.T) {
	s := newTestSimulator(t, 0)

	for i := 0; i < 2000; i++ {
		snap, err := s.Step()
		if err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
		if len(snap.Bids) > 0 && len(snap.Asks) > 0 {
			if snap.Bids[0].Price >= snap.Asks[0].Price {
				t.Fatalf("step %d: crossed snapshot, bid %v >= ask %v", i, snap.Bids[0].Price, snap.Asks[0].Price)
			}
		}
	}
}

func TestStep_DepthIsPriceOrdered(t *testing.T) {
	s := newTestSimulator(t, 500)

	snap := s.CurrentState()
	for i := 1; i < len(snap.Bids); i++ {
		if snap.Bids[i].Price >= snap.Bids[i-1].Price {
			t.Fatalf("bids not descending at %d: %v", i, snap.Bids)
		}
	}
	for i := 1; i < len(snap.Asks); i++ {
		if snap.Asks[i].Price <= snap.Asks[i-1].Price {
			t.Fatalf("asks not ascending at %d: %v", i, snap.Asks)
		}
	}
}

func TestCurrentState_MatchesLastStep(t *testing.T) {
	s := newTestSimulator(t, 5)

	snap, err := s.Step()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cur := s.CurrentState()
	if cur.Step != snap.Step || cur.Time != snap.Time || cur.MidPrice != snap.MidPrice {
		t.Errorf("CurrentState diverged from last step: %+v vs %+v", cur, snap)
	}
}

func TestSnapshot_ValueSemantics(t *testing.T) {
	s := newTestSimulator(t, 100)

	snap := s.CurrentState()
	if len(snap.Bids) == 0 {
		t.Skip("no bid depth to mutate")
	}
	snap.Bids[0].Price = -1
	if len(snap.History) > 0 {
		snap.History[0].Mid = -1
	}

	fresh := s.CurrentState()
	if fresh.Bids[0].Price == -1 {
		t.Error("mutating a snapshot leaked into later reads")
	}
	if len(fresh.History) > 0 && fresh.History[0].Mid == -1 {
		t.Error("mutating snapshot history leaked into later reads")
	}
}

func TestReset_RestoresInitialConditions(t *testing.T) {
	s := newTestSimulator(t, 50)

	first := s.CurrentState()
	for i := 0; i < 300; i++ {
		if _, err := s.Step(); err != nil {
			t.Fatalf("step failed: %v", err)
		}
	}

	snap, err := s.Reset()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Step != 50 {
		t.Errorf("step after reset = %d, want warmup count 50", snap.Step)
	}
	if snap.SessionID == first.SessionID {
		t.Error("reset did not start a new session")
	}

	// Same seed, same warmup: the re-warmed market replays exactly.
	if snap.Time != first.Time || snap.MidPrice != first.MidPrice || snap.PermanentDrift != first.PermanentDrift {
		t.Errorf("reset state diverged: %+v vs %+v", snap, first)
	}
}

func TestSetRegime_TakesEffectForSubsequentDraws(t *testing.T) {
	s := newTestSimulator(t, 10)

	if err := s.SetRegime("high", 0.9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Regime() != domain.RegimeHighVol {
		t.Errorf("regime = %s, want HIGH", s.Regime())
	}

	snap, err := s.Step()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Regime != domain.RegimeHighVol {
		t.Errorf("snapshot regime = %s, want HIGH", snap.Regime)
	}
	if snap.RegimeConfidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9 forwarded", snap.RegimeConfidence)
	}
}

func TestSetRegime_RejectsUnknownLabel(t *testing.T) {
	s := newTestSimulator(t, 10)

	err := s.SetRegime("sideways", 1)
	if !errors.Is(err, domain.ErrInvalidRegime) {
		t.Errorf("SetRegime = %v, want ErrInvalidRegime", err)
	}
	if s.Regime() != domain.RegimeLowVol {
		t.Errorf("prior regime not retained, got %s", s.Regime())
	}
}

func TestStep_DeterministicForSeed(t *testing.T) {
	a := newTestSimulator(t, 20)
	b := newTestSimulator(t, 20)

	for i := 0; i < 100; i++ {
		sa, err := a.Step()
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}
		sb, err := b.Step()
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}
		if sa.Time != sb.Time || sa.MidPrice != sb.MidPrice || sa.PermanentDrift != sb.PermanentDrift {
			t.Fatalf("runs diverged at step %d", i)
		}
	}
}

func TestStep_ImpactDriftTracksExecutions(t *testing.T) {
	s := newTestSimulator(t, 0)

	var sawExecution bool
	for i := 0; i < 2000; i++ {
		snap, err := s.Step()
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}
		if snap.LastExecution.ExecutedQty > 0 {
			sawExecution = true
			if snap.LastExecution.AvgFillPrice <= 0 {
				t.Fatalf("execution with avg fill price %v", snap.LastExecution.AvgFillPrice)
			}
			slip := snap.LastExecution.TemporarySlippage
			if snap.LastExecution.AggressorSide == domain.SideBuy && slip < 0 {
				t.Fatalf("buy execution with negative slippage %v", slip)
			}
			if snap.LastExecution.AggressorSide == domain.SideSell && slip > 0 {
				t.Fatalf("sell execution with positive slippage %v", slip)
			}
		}
	}
	if !sawExecution {
		t.Error("2000 steps produced no executions")
	}
}
