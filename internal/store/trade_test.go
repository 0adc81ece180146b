package store

import (
	"testing"

	"github.com/suvomx1999/Adaptive-Market-Microstructure-Simulator-Execution-Optimizer/internal/domain"
)

func makeTrade(id string, price int64) domain.Trade {
	return domain.Trade{TradeID: id, Price: price, Quantity: 1}
}

func TestTradeLog_AppendAndRecent(t *testing.T) {
	l := NewTradeLog(10)
	l.Append(makeTrade("a", 100), makeTrade("b", 101))
	l.Append(makeTrade("c", 102))

	recent := l.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("recent = %d trades, want 2", len(recent))
	}
	if recent[0].TradeID != "b" || recent[1].TradeID != "c" {
		t.Errorf("recent = [%s %s], want [b c]", recent[0].TradeID, recent[1].TradeID)
	}

	// Asking for more than retained returns everything.
	if got := len(l.Recent(50)); got != 3 {
		t.Errorf("Recent(50) = %d trades, want 3", got)
	}
}

func TestTradeLog_BoundedEviction(t *testing.T) {
	l := NewTradeLog(3)
	l.Append(makeTrade("a", 1), makeTrade("b", 2), makeTrade("c", 3), makeTrade("d", 4))

	if l.Len() != 3 {
		t.Fatalf("len = %d, want 3", l.Len())
	}
	recent := l.Recent(3)
	if recent[0].TradeID != "b" || recent[2].TradeID != "d" {
		t.Errorf("oldest trade was not evicted: %+v", recent)
	}
}

func TestTradeLog_RecentReturnsCopy(t *testing.T) {
	l := NewTradeLog(10)
	l.Append(makeTrade("a", 100))

	recent := l.Recent(1)
	recent[0].Price = 999

	if got := l.Recent(1)[0].Price; got != 100 {
		t.Errorf("caller mutation leaked into the log: price = %d", got)
	}
}

func TestTradeLog_Reset(t *testing.T) {
	l := NewTradeLog(10)
	l.Append(makeTrade("a", 100))
	l.Reset()

	if l.Len() != 0 {
		t.Errorf("len after reset = %d, want 0", l.Len())
	}
}
