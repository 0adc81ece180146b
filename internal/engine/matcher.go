package engine

import (
	"github.com/google/uuid"

	"github.com/suvomx1999/Adaptive-Market-Microstructure-Simulator-Execution-Optimizer/internal/domain"
)

// ExecResult summarizes one matching pass.
type ExecResult struct {
	Trades      []domain.Trade
	ExecutedQty int64
	// Unfilled is the quantity of a market order that found no
	// liquidity. It is discarded, not an error.
	Unfilled int64
	// Rested is true when a limit order's remainder was placed on the
	// book.
	Rested bool
}

// Matcher applies price-time priority: an incoming marketable order is
// paired against the opposite side's best level's head order, earliest
// arrival first, each pairing trading at the resting (maker) order's
// price. It is the sole mutator of the book's best-price pointers.
type Matcher struct {
	book *Book
}

// NewMatcher creates a Matcher over the given book.
func NewMatcher(book *Book) *Matcher {
	return &Matcher{book: book}
}

// Submit runs an incoming order through the matching engine. Limit
// remainders rest on the book; market remainders are discarded and
// reported in ExecResult.Unfilled. Invalid orders are rejected with
// domain.ErrInvalidOrder before any state changes.
//
// After the pass the book must be uncrossed; a violation panics.
func (m *Matcher) Submit(o *domain.Order) (ExecResult, error) {
	if err := o.Validate(); err != nil {
		return ExecResult{}, err
	}
	if o.Remaining <= 0 {
		o.Remaining = o.Quantity
	}

	var res ExecResult
	for o.Remaining > 0 {
		lvl, ok := m.book.Best(o.Side.Opposite())
		if !ok {
			break
		}
		if o.Type == domain.OrderTypeLimit && !marketable(o, lvl.Price) {
			break
		}

		maker := lvl.Head()
		qty := o.Remaining
		if maker.Remaining < qty {
			qty = maker.Remaining
		}

		// Price improvement always benefits the resting side: the
		// maker's price is the trade price, never the taker's.
		trade := domain.Trade{
			TradeID:       uuid.New().String(),
			Price:         lvl.Price,
			Quantity:      qty,
			Timestamp:     o.ArrivalTime,
			AggressorSide: o.Side,
			MakerOrderID:  maker.ID,
			TakerOrderID:  o.ID,
		}

		o.Remaining -= qty
		if maker.Remaining == qty {
			// Full fill: the maker leaves its level (and may destroy it).
			m.book.removeOrder(maker)
			maker.Remaining = 0
		} else {
			m.book.reduce(maker, qty)
		}

		res.Trades = append(res.Trades, trade)
		res.ExecutedQty += qty
	}

	if o.Remaining > 0 {
		if o.Type == domain.OrderTypeLimit {
			if err := m.book.Insert(o); err != nil {
				return res, err
			}
			res.Rested = true
		} else {
			res.Unfilled = o.Remaining
			o.Remaining = 0
		}
	}

	m.book.assertUncrossed()
	return res, nil
}

// Cancel removes a resting order by ID. Unknown IDs are a reported
// no-op (domain.ErrOrderNotFound).
func (m *Matcher) Cancel(id uint64) (*domain.Order, error) {
	return m.book.Cancel(id)
}

// marketable reports whether a limit order's price crosses or equals
// the opposite best.
func marketable(o *domain.Order, oppositeBest int64) bool {
	if o.Side == domain.SideBuy {
		return o.Price >= oppositeBest
	}
	return o.Price <= oppositeBest
}
