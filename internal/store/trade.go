package store

import (
	"sync"

	"github.com/suvomx1999/Adaptive-Market-Microstructure-Simulator-Execution-Optimizer/internal/domain"
)

// TradeLog is a thread-safe, bounded, append-only trade history. Once
// the limit is reached the oldest trades are dropped.
type TradeLog struct {
	mu     sync.RWMutex
	limit  int
	trades []domain.Trade
}

// NewTradeLog creates an empty TradeLog holding at most limit trades.
func NewTradeLog(limit int) *TradeLog {
	return &TradeLog{limit: limit}
}

// Append adds trades in chronological order, evicting from the front
// when over the limit.
func (l *TradeLog) Append(trades ...domain.Trade) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.trades = append(l.trades, trades...)
	if over := len(l.trades) - l.limit; over > 0 {
		l.trades = append(l.trades[:0:0], l.trades[over:]...)
	}
}

// Recent returns up to n of the most recent trades, oldest first.
// Returns a copy so callers cannot mutate the log.
func (l *TradeLog) Recent(n int) []domain.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n > len(l.trades) {
		n = len(l.trades)
	}
	out := make([]domain.Trade, n)
	copy(out, l.trades[len(l.trades)-n:])
	return out
}

// Len returns the number of retained trades.
func (l *TradeLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.trades)
}

// Reset discards all retained trades.
func (l *TradeLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trades = nil
}
