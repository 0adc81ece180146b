package sim

import (
	"github.com/suvomx1999/Adaptive-Market-Microstructure-Simulator-Execution-Optimizer/internal/domain"
	"github.com/suvomx1999/Adaptive-Market-Microstructure-Simulator-Execution-Optimizer/internal/store"
)

// BookLevel is one aggregated price level in a snapshot, in price units.
type BookLevel struct {
	Price      float64
	Quantity   int64
	OrderCount int
}

// TradeView is one recent trade in a snapshot, in price units.
type TradeView struct {
	Price         float64
	Quantity      int64
	Time          float64
	AggressorSide domain.Side
}

// ExecutionReport describes what the last step's event executed. The
// temporary slippage applies only to this execution's fill price: the
// effective price is the book VWAP plus the slippage. It is never
// folded back into the standing mid.
type ExecutionReport struct {
	Trades            int
	ExecutedQty       int64
	AvgFillPrice      float64
	TemporarySlippage float64
	EffectivePrice    float64
	Unfilled          int64
	Rested            bool
	AggressorSide     domain.Side
}

// Snapshot is an immutable, point-in-time readout of the simulation for
// external consumption. Every slice it carries is a copy; producing the
// next snapshot never mutates a prior one.
type Snapshot struct {
	SessionID string
	Step      uint64
	Time      float64

	MidPrice float64
	Spread   float64
	BestBid  float64
	BestAsk  float64

	Bids []BookLevel
	Asks []BookLevel

	RecentTrades []TradeView
	History      []store.PricePoint

	Intensity        float64
	Regime           domain.Regime
	RegimeConfidence float64
	PermanentDrift   float64
	RealizedVol      float64

	LastExecution ExecutionReport
}
