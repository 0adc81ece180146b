package engine

import (
	"container/list"
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/btree"

	"github.com/suvomx1999/Adaptive-Market-Microstructure-Simulator-Execution-Optimizer/internal/domain"
)

// ErrWouldCross is returned when a resting insert would cross the
// opposite best price. Such orders must go through the Matcher instead.
var ErrWouldCross = errors.New("resting order would cross the opposite best")

// PriceLevel is a FIFO queue of resting orders sharing one price.
// Insertion order is priority order. AggregateQty always equals the sum
// of the constituent orders' Remaining.
type PriceLevel struct {
	Price        int64
	AggregateQty int64
	queue        *list.List               // of *domain.Order
	elems        map[uint64]*list.Element // order ID → queue element
}

func newPriceLevel(price int64) *PriceLevel {
	return &PriceLevel{
		Price: price,
		queue: list.New(),
		elems: make(map[uint64]*list.Element),
	}
}

// Head returns the earliest-arriving order at this level, or nil if the
// level is empty.
func (l *PriceLevel) Head() *domain.Order {
	front := l.queue.Front()
	if front == nil {
		return nil
	}
	return front.Value.(*domain.Order)
}

// Len returns the number of orders queued at this level.
func (l *PriceLevel) Len() int {
	return l.queue.Len()
}

// Orders returns the level's queue in priority order.
func (l *PriceLevel) Orders() []*domain.Order {
	out := make([]*domain.Order, 0, l.queue.Len())
	for e := l.queue.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*domain.Order))
	}
	return out
}

func (l *PriceLevel) push(o *domain.Order) {
	l.elems[o.ID] = l.queue.PushBack(o)
	l.AggregateQty += o.Remaining
}

func (l *PriceLevel) remove(o *domain.Order) {
	elem, ok := l.elems[o.ID]
	if !ok {
		return
	}
	l.queue.Remove(elem)
	delete(l.elems, o.ID)
	l.AggregateQty -= o.Remaining
	if l.AggregateQty < 0 {
		panic(fmt.Sprintf("order book: negative aggregate quantity %d at level %d", l.AggregateQty, l.Price))
	}
}

// bidLevelLess orders bid levels price descending so Min() is the best bid.
func bidLevelLess(a, b *PriceLevel) bool {
	return a.Price > b.Price
}

// askLevelLess orders ask levels price ascending so Min() is the best ask.
func askLevelLess(a, b *PriceLevel) bool {
	return a.Price < b.Price
}

// LevelSnapshot is an aggregated view of one price level for depth
// snapshots.
type LevelSnapshot struct {
	Price      int64
	Quantity   int64
	OrderCount int
}

// Book maintains the bid and ask sides as B-trees of price levels with
// cached best-level pointers and a secondary index for O(1) cancel
// lookup by order ID. A price level exists only while it holds at least
// one order.
type Book struct {
	bids *btree.BTreeG[*PriceLevel]
	asks *btree.BTreeG[*PriceLevel]

	bestBid *PriceLevel // nil when the bid side is empty
	bestAsk *PriceLevel // nil when the ask side is empty

	index map[uint64]*domain.Order

	// Reservoir of live order IDs for O(1) uniform sampling, used by
	// the flow generator's cancel events.
	liveIDs []uint64
	livePos map[uint64]int
}

// NewBook creates an empty order book.
func NewBook() *Book {
	const degree = 32
	return &Book{
		bids:    btree.NewG(degree, bidLevelLess),
		asks:    btree.NewG(degree, askLevelLess),
		index:   make(map[uint64]*domain.Order),
		livePos: make(map[uint64]int),
	}
}

func (b *Book) tree(side domain.Side) *btree.BTreeG[*PriceLevel] {
	if side == domain.SideBuy {
		return b.bids
	}
	return b.asks
}

// Best returns the best price level on the given side, or false when
// the side is empty. O(1) via the cached pointers.
func (b *Book) Best(side domain.Side) (*PriceLevel, bool) {
	var lvl *PriceLevel
	if side == domain.SideBuy {
		lvl = b.bestBid
	} else {
		lvl = b.bestAsk
	}
	return lvl, lvl != nil
}

// BestBid returns the best bid price, or false when the bid side is empty.
func (b *Book) BestBid() (int64, bool) {
	if b.bestBid == nil {
		return 0, false
	}
	return b.bestBid.Price, true
}

// BestAsk returns the best ask price, or false when the ask side is empty.
func (b *Book) BestAsk() (int64, bool) {
	if b.bestAsk == nil {
		return 0, false
	}
	return b.bestAsk.Price, true
}

// crosses reports whether a resting order at the given price on the
// given side would cross the opposite best.
func (b *Book) crosses(side domain.Side, price int64) bool {
	if side == domain.SideBuy {
		ask, ok := b.BestAsk()
		return ok && price >= ask
	}
	bid, ok := b.BestBid()
	return ok && price <= bid
}

// Insert rests a limit order on the book. O(log P) when the order's
// price level does not yet exist, O(1) when it does. Orders whose price
// crosses the opposite best are refused with ErrWouldCross — marketable
// orders are the Matcher's job. Invalid orders are rejected without
// mutating state.
func (b *Book) Insert(o *domain.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if o.Type != domain.OrderTypeLimit {
		return domain.ErrInvalidOrder
	}
	if _, exists := b.index[o.ID]; exists {
		return domain.ErrInvalidOrder
	}
	if o.Remaining <= 0 {
		o.Remaining = o.Quantity
	}
	if b.crosses(o.Side, o.Price) {
		return ErrWouldCross
	}

	tree := b.tree(o.Side)
	probe := &PriceLevel{Price: o.Price}
	lvl, ok := tree.Get(probe)
	if !ok {
		lvl = newPriceLevel(o.Price)
		tree.ReplaceOrInsert(lvl)
		b.refreshBest(o.Side)
	}
	lvl.push(o)
	b.index[o.ID] = o
	b.trackLive(o.ID)
	return nil
}

// Cancel removes a resting order by ID. O(1) within its level plus
// O(log P) if removing the last order destroys the level. Unknown IDs
// return ErrOrderNotFound and leave the book untouched.
func (b *Book) Cancel(id uint64) (*domain.Order, error) {
	o, ok := b.index[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	b.removeOrder(o)
	return o, nil
}

// removeOrder takes a resting order off the book, destroying its level
// if it was the last one.
func (b *Book) removeOrder(o *domain.Order) {
	tree := b.tree(o.Side)
	probe := &PriceLevel{Price: o.Price}
	lvl, ok := tree.Get(probe)
	if !ok {
		panic(fmt.Sprintf("order book: order %d indexed but level %d missing", o.ID, o.Price))
	}
	lvl.remove(o)
	delete(b.index, o.ID)
	b.untrackLive(o.ID)
	if lvl.Len() == 0 {
		tree.Delete(lvl)
		b.refreshBest(o.Side)
	}
}

// reduce shrinks a resting order's remaining quantity in place after a
// partial fill, keeping the level aggregate consistent.
func (b *Book) reduce(o *domain.Order, qty int64) {
	tree := b.tree(o.Side)
	lvl, ok := tree.Get(&PriceLevel{Price: o.Price})
	if !ok {
		panic(fmt.Sprintf("order book: order %d indexed but level %d missing", o.ID, o.Price))
	}
	o.Remaining -= qty
	lvl.AggregateQty -= qty
	if o.Remaining < 0 || lvl.AggregateQty < 0 {
		panic(fmt.Sprintf("order book: fill of %d overran order %d", qty, o.ID))
	}
}

// refreshBest re-derives a side's cached best-level pointer after a
// structural change (level created or destroyed).
func (b *Book) refreshBest(side domain.Side) {
	lvl, ok := b.tree(side).Min()
	if !ok {
		lvl = nil
	}
	if side == domain.SideBuy {
		b.bestBid = lvl
	} else {
		b.bestAsk = lvl
	}
}

// Contains reports whether an order with the given ID rests on the book.
func (b *Book) Contains(id uint64) bool {
	_, ok := b.index[id]
	return ok
}

// OrderCount returns the number of resting orders across both sides.
func (b *Book) OrderCount() int {
	return len(b.index)
}

// LevelCount returns the number of active price levels on the given side.
func (b *Book) LevelCount(side domain.Side) int {
	return b.tree(side).Len()
}

// TopBids returns up to n aggregated bid levels, best (highest) first.
func (b *Book) TopBids(n int) []LevelSnapshot {
	return topLevels(b.bids, n)
}

// TopAsks returns up to n aggregated ask levels, best (lowest) first.
func (b *Book) TopAsks(n int) []LevelSnapshot {
	return topLevels(b.asks, n)
}

func topLevels(tree *btree.BTreeG[*PriceLevel], n int) []LevelSnapshot {
	if n <= 0 {
		return nil
	}
	capHint := n
	if l := tree.Len(); l < capHint {
		capHint = l
	}
	levels := make([]LevelSnapshot, 0, capHint)
	tree.Ascend(func(lvl *PriceLevel) bool {
		levels = append(levels, LevelSnapshot{
			Price:      lvl.Price,
			Quantity:   lvl.AggregateQty,
			OrderCount: lvl.Len(),
		})
		return len(levels) < n
	})
	return levels
}

// SampleOrderID draws a uniformly random live order ID, for synthetic
// cancel events. Returns false when the book is empty.
func (b *Book) SampleOrderID(rng *rand.Rand) (uint64, bool) {
	if len(b.liveIDs) == 0 {
		return 0, false
	}
	return b.liveIDs[rng.Intn(len(b.liveIDs))], true
}

func (b *Book) trackLive(id uint64) {
	b.livePos[id] = len(b.liveIDs)
	b.liveIDs = append(b.liveIDs, id)
}

// untrackLive removes an ID from the sampling reservoir with a
// swap-remove, keeping sampling O(1).
func (b *Book) untrackLive(id uint64) {
	pos, ok := b.livePos[id]
	if !ok {
		return
	}
	last := len(b.liveIDs) - 1
	moved := b.liveIDs[last]
	b.liveIDs[pos] = moved
	b.livePos[moved] = pos
	b.liveIDs = b.liveIDs[:last]
	delete(b.livePos, id)
}

// assertUncrossed panics if both sides are non-empty and the best bid
// meets or crosses the best ask. A crossed book after a matching pass
// means price-time priority is broken and every later result would be
// invalid.
func (b *Book) assertUncrossed() {
	bid, okB := b.BestBid()
	ask, okA := b.BestAsk()
	if okB && okA && bid >= ask {
		panic(fmt.Sprintf("order book: crossed after matching, best bid %d >= best ask %d", bid, ask))
	}
}
