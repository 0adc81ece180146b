// Package sim drives the discrete-event loop: generator → matcher →
// impact → snapshot. One Simulator owns all mutable simulation state
// and serializes every advancing operation behind a single lock, so
// multiple independent simulations can run side by side.
package sim

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/suvomx1999/Adaptive-Market-Microstructure-Simulator-Execution-Optimizer/internal/domain"
	"github.com/suvomx1999/Adaptive-Market-Microstructure-Simulator-Execution-Optimizer/internal/engine"
	"github.com/suvomx1999/Adaptive-Market-Microstructure-Simulator-Execution-Optimizer/internal/flow"
	"github.com/suvomx1999/Adaptive-Market-Microstructure-Simulator-Execution-Optimizer/internal/impact"
	"github.com/suvomx1999/Adaptive-Market-Microstructure-Simulator-Execution-Optimizer/internal/store"
)

// Options configure a Simulator. Zero values fall back to defaults.
type Options struct {
	Seed            int64
	InitialMid      int64 // ticks
	DepthLevels     int
	HistoryLimit    int
	TradeLogLimit   int
	WarmupEvents    int
	BaseLambda      float64
	TempImpactEta   float64
	PermImpactGamma float64
	// Regimes overrides the default two-regime parameter table.
	Regimes map[domain.Regime]flow.RegimeParams
	// InitialRegime is the regime the simulation starts in and, unless
	// ResetKeepsRegime is set, returns to on Reset.
	InitialRegime    domain.Regime
	ResetKeepsRegime bool
}

func (o *Options) applyDefaults() {
	if o.InitialMid == 0 {
		o.InitialMid = 10000 // 100.00
	}
	if o.DepthLevels == 0 {
		o.DepthLevels = 10
	}
	if o.HistoryLimit == 0 {
		o.HistoryLimit = 100
	}
	if o.TradeLogLimit == 0 {
		o.TradeLogLimit = 1000
	}
	if o.BaseLambda == 0 {
		o.BaseLambda = 5.0
	}
	if o.TempImpactEta == 0 {
		o.TempImpactEta = 0.1
	}
	if o.PermImpactGamma == 0 {
		o.PermImpactGamma = 0.01
	}
	if o.InitialRegime == "" {
		o.InitialRegime = domain.RegimeLowVol
	}
	if o.Regimes == nil {
		o.Regimes = flow.DefaultRegimes(o.BaseLambda)
	}
}

// Simulator is the simulation clock and step driver.
type Simulator struct {
	mu sync.Mutex

	opts    Options
	rng     *rand.Rand // cancel sampling; independent of the flow stream
	book    *engine.Book
	matcher *engine.Matcher
	gen     *flow.Generator
	impact  *impact.Model
	trades  *store.TradeLog
	history *store.PriceHistory

	sessionID string
	stepCount uint64
	now       float64

	// Last known quotes, in ticks, for mid/spread reporting while a
	// side of the book is empty.
	lastBid int64
	lastAsk int64

	regimeConfidence float64
	last             Snapshot
}

// New builds a Simulator, warms the book up with the configured number
// of generated events, and leaves it Idle with a first snapshot ready.
func New(opts Options) (*Simulator, error) {
	opts.applyDefaults()

	gen, err := flow.NewGenerator(opts.Seed, opts.Regimes, opts.InitialRegime)
	if err != nil {
		return nil, fmt.Errorf("flow generator: %w", err)
	}

	s := &Simulator{
		opts:      opts,
		rng:       rand.New(rand.NewSource(opts.Seed + 1)),
		book:      engine.NewBook(),
		gen:       gen,
		impact:    impact.New(opts.TempImpactEta, opts.PermImpactGamma),
		trades:    store.NewTradeLog(opts.TradeLogLimit),
		history:   store.NewPriceHistory(opts.HistoryLimit),
		sessionID: uuid.New().String(),
		lastBid:   opts.InitialMid,
		lastAsk:   opts.InitialMid,
	}
	s.matcher = engine.NewMatcher(s.book)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.warmupLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

// Step advances simulated time by one generator-drawn event, feeds it
// through the matching engine and impact model, and returns the fresh
// snapshot. Exactly one step is in flight at a time.
func (s *Simulator) Step() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepLocked()
}

// Reset discards the book, trade history, intensity history, and
// impact drift, restores configured initial conditions, re-warms the
// book, and returns the first snapshot of the new session. Whether the
// active regime survives is configured by ResetKeepsRegime.
func (s *Simulator) Reset() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.book = engine.NewBook()
	s.matcher = engine.NewMatcher(s.book)
	s.gen.Reset(s.opts.ResetKeepsRegime, s.opts.InitialRegime)
	s.impact.Reset()
	s.trades.Reset()
	s.history.Reset()
	s.rng = rand.New(rand.NewSource(s.opts.Seed + 1))
	s.sessionID = uuid.New().String()
	s.stepCount = 0
	s.now = 0
	s.lastBid = s.opts.InitialMid
	s.lastAsk = s.opts.InitialMid
	s.last = Snapshot{}

	if err := s.warmupLocked(); err != nil {
		return Snapshot{}, err
	}
	return s.last, nil
}

// SetRegime swaps the generator's active regime for subsequent draws
// only; history-accumulated excitation is untouched. An unrecognized
// label returns domain.ErrInvalidRegime and the prior regime is
// retained. The confidence score is not used by the core, only
// forwarded in snapshots.
func (s *Simulator) SetRegime(label string, confidence float64) error {
	regime, err := domain.ParseRegime(label)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.gen.SetRegime(regime); err != nil {
		return err
	}
	s.regimeConfidence = confidence
	return nil
}

// CurrentState returns the last completed snapshot without advancing
// the simulation.
func (s *Simulator) CurrentState() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Regime returns the generator's active regime label.
func (s *Simulator) Regime() domain.Regime {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen.Regime()
}

func (s *Simulator) warmupLocked() error {
	for i := 0; i < s.opts.WarmupEvents; i++ {
		if _, err := s.stepLocked(); err != nil {
			return fmt.Errorf("warmup event %d: %w", i, err)
		}
	}
	if s.opts.WarmupEvents == 0 {
		s.last = s.buildSnapshot(ExecutionReport{})
	}
	return nil
}

func (s *Simulator) stepLocked() (Snapshot, error) {
	ev := s.gen.Next(s.refTicks())
	s.now = ev.Time
	s.stepCount++

	var report ExecutionReport
	switch ev.Kind {
	case flow.EventCancel:
		if id, ok := s.book.SampleOrderID(s.rng); ok {
			// The sampled ID is live by construction; a miss here
			// would mean the reservoir and index diverged.
			if _, err := s.book.Cancel(id); err != nil {
				return Snapshot{}, fmt.Errorf("cancel order %d: %w", id, err)
			}
		}
	case flow.EventOrder:
		res, err := s.matcher.Submit(ev.Order)
		if err != nil {
			return Snapshot{}, fmt.Errorf("submit order %d: %w", ev.Order.ID, err)
		}
		report = s.applyExecution(ev.Order, res)
	}

	s.observeQuotes()
	s.history.Append(store.PricePoint{
		Time:       s.now,
		Mid:        domain.TicksToPrice(s.midTicks()),
		BestBid:    domain.TicksToPrice(float64(s.lastBid)),
		BestAsk:    domain.TicksToPrice(float64(s.lastAsk)),
		Intensity:  s.gen.Intensity(s.now),
		RegimeProb: s.regimeConfidence,
	})

	snap := s.buildSnapshot(report)
	s.last = snap
	return snap, nil
}

// applyExecution records trades and runs the impact model over the
// step's executed volume. The temporary slippage shifts only this
// execution's effective price; the permanent drift shifts the
// reference mid for every subsequent quote and match.
func (s *Simulator) applyExecution(taker *domain.Order, res engine.ExecResult) ExecutionReport {
	report := ExecutionReport{
		Trades:        len(res.Trades),
		ExecutedQty:   res.ExecutedQty,
		Unfilled:      res.Unfilled,
		Rested:        res.Rested,
		AggressorSide: taker.Side,
	}
	if res.ExecutedQty == 0 {
		return report
	}

	s.trades.Append(res.Trades...)

	var notional int64
	for _, t := range res.Trades {
		notional += t.Price * t.Quantity
	}
	vwapTicks := float64(notional) / float64(res.ExecutedQty)

	ir := s.impact.Apply(res.ExecutedQty, taker.Side)
	report.AvgFillPrice = domain.TicksToPrice(vwapTicks)
	report.TemporarySlippage = domain.TicksToPrice(ir.TemporarySlippage)
	report.EffectivePrice = domain.TicksToPrice(vwapTicks + ir.TemporarySlippage)
	return report
}

// observeQuotes refreshes the last-known best quotes from whichever
// book sides are populated.
func (s *Simulator) observeQuotes() {
	if bid, ok := s.book.BestBid(); ok {
		s.lastBid = bid
	}
	if ask, ok := s.book.BestAsk(); ok {
		s.lastAsk = ask
	}
}

// midTicks is the reference mid: the book mid from the last known
// quotes, shifted by the permanent impact drift.
func (s *Simulator) midTicks() float64 {
	return float64(s.lastBid+s.lastAsk)/2.0 + s.impact.Drift()
}

// refTicks is the integer reference price limit quoting anchors on.
func (s *Simulator) refTicks() int64 {
	return int64(math.Round(s.midTicks()))
}

func (s *Simulator) buildSnapshot(report ExecutionReport) Snapshot {
	bids := make([]BookLevel, 0, s.opts.DepthLevels)
	for _, lvl := range s.book.TopBids(s.opts.DepthLevels) {
		bids = append(bids, BookLevel{
			Price:      domain.TicksToPrice(float64(lvl.Price)),
			Quantity:   lvl.Quantity,
			OrderCount: lvl.OrderCount,
		})
	}
	asks := make([]BookLevel, 0, s.opts.DepthLevels)
	for _, lvl := range s.book.TopAsks(s.opts.DepthLevels) {
		asks = append(asks, BookLevel{
			Price:      domain.TicksToPrice(float64(lvl.Price)),
			Quantity:   lvl.Quantity,
			OrderCount: lvl.OrderCount,
		})
	}

	recent := s.trades.Recent(20)
	views := make([]TradeView, 0, len(recent))
	for _, t := range recent {
		views = append(views, TradeView{
			Price:         domain.TicksToPrice(float64(t.Price)),
			Quantity:      t.Quantity,
			Time:          t.Timestamp,
			AggressorSide: t.AggressorSide,
		})
	}

	return Snapshot{
		SessionID:        s.sessionID,
		Step:             s.stepCount,
		Time:             s.now,
		MidPrice:         domain.TicksToPrice(s.midTicks()),
		Spread:           domain.TicksToPrice(float64(s.lastAsk - s.lastBid)),
		BestBid:          domain.TicksToPrice(float64(s.lastBid)),
		BestAsk:          domain.TicksToPrice(float64(s.lastAsk)),
		Bids:             bids,
		Asks:             asks,
		RecentTrades:     views,
		History:          s.history.Points(),
		Intensity:        s.gen.Intensity(s.now),
		Regime:           s.gen.Regime(),
		RegimeConfidence: s.regimeConfidence,
		PermanentDrift:   domain.TicksToPrice(s.impact.Drift()),
		RealizedVol:      s.history.RealizedVol(),
		LastExecution:    report,
	}
}
