package domain

// Trade is a matched execution between a resting (maker) order and an
// incoming (taker) order. The price is always the maker's price.
// Immutable once created.
type Trade struct {
	TradeID       string
	Price         int64 // ticks
	Quantity      int64
	Timestamp     float64 // simulated seconds
	AggressorSide Side
	MakerOrderID  uint64
	TakerOrderID  uint64
}
