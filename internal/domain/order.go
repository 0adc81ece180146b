package domain

// OrderType distinguishes limit orders from market orders.
type OrderType string

const (
	OrderTypeLimit  OrderType = "limit"
	OrderTypeMarket OrderType = "market"
)

// Side indicates whether an order buys or sells.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Sign returns +1 for buys and -1 for sells.
func (s Side) Sign() int64 {
	if s == SideBuy {
		return 1
	}
	return -1
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Valid reports whether the side is one of the two known values.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Order is a synthetic participant's instruction. Price is in ticks
// (cents) and is zero for market orders. ArrivalTime is simulated
// seconds since the start of the run.
type Order struct {
	ID          uint64
	Side        Side
	Type        OrderType
	Price       int64
	Quantity    int64
	Remaining   int64
	ArrivalTime float64
}

// Validate checks the fields an order must carry before it touches the
// book. Market orders are allowed a zero price; everything else must be
// strictly positive.
func (o *Order) Validate() error {
	if !o.Side.Valid() {
		return ErrInvalidOrder
	}
	if o.Quantity <= 0 {
		return ErrInvalidOrder
	}
	if o.Type == OrderTypeLimit && o.Price <= 0 {
		return ErrInvalidOrder
	}
	if o.Type != OrderTypeLimit && o.Type != OrderTypeMarket {
		return ErrInvalidOrder
	}
	return nil
}
