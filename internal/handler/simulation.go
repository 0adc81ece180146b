package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/suvomx1999/Adaptive-Market-Microstructure-Simulator-Execution-Optimizer/internal/domain"
	"github.com/suvomx1999/Adaptive-Market-Microstructure-Simulator-Execution-Optimizer/internal/sim"
)

// SimulationHandler exposes the simulation's four operations over HTTP:
// read state, step, reset, set regime. It holds no simulation logic.
type SimulationHandler struct {
	sim *sim.Simulator
	hub *Hub
}

// NewSimulationHandler creates a SimulationHandler. hub may be nil when
// streaming is disabled.
func NewSimulationHandler(s *sim.Simulator, hub *Hub) *SimulationHandler {
	return &SimulationHandler{sim: s, hub: hub}
}

// bookLevelResponse is one aggregated price level in the snapshot.
type bookLevelResponse struct {
	Price      float64 `json:"price"`
	Quantity   int64   `json:"qty"`
	OrderCount int     `json:"order_count"`
}

// tradeViewResponse is one recent trade in the snapshot.
type tradeViewResponse struct {
	Price    float64 `json:"price"`
	Quantity int64   `json:"qty"`
	Time     float64 `json:"time"`
	Side     string  `json:"side"`
}

// historyPointResponse is one rolling price-history entry.
type historyPointResponse struct {
	Time       float64 `json:"time"`
	Mid        float64 `json:"mid"`
	BestBid    float64 `json:"bid"`
	BestAsk    float64 `json:"ask"`
	Intensity  float64 `json:"intensity"`
	RegimeProb float64 `json:"regime_prob"`
}

// executionResponse reports what the last step executed.
type executionResponse struct {
	Trades            int     `json:"trades"`
	ExecutedQty       int64   `json:"executed_qty"`
	AvgFillPrice      float64 `json:"avg_fill_price"`
	TemporarySlippage float64 `json:"temporary_slippage"`
	EffectivePrice    float64 `json:"effective_price"`
	Unfilled          int64   `json:"unfilled"`
	Rested            bool    `json:"rested"`
	AggressorSide     string  `json:"aggressor_side"`
}

// snapshotResponse is the JSON shape of a simulation snapshot.
type snapshotResponse struct {
	SessionID        string                 `json:"session_id"`
	Step             uint64                 `json:"step"`
	Time             float64                `json:"time"`
	Mid              float64                `json:"mid"`
	Spread           float64                `json:"spread"`
	BestBid          float64                `json:"best_bid"`
	BestAsk          float64                `json:"best_ask"`
	Bids             []bookLevelResponse    `json:"bids"`
	Asks             []bookLevelResponse    `json:"asks"`
	Trades           []tradeViewResponse    `json:"trades"`
	History          []historyPointResponse `json:"history"`
	Intensity        float64                `json:"intensity"`
	Regime           string                 `json:"regime"`
	RegimeConfidence float64                `json:"regime_confidence"`
	PermanentDrift   float64                `json:"permanent_drift"`
	RealizedVol      float64                `json:"realized_vol"`
	LastExecution    executionResponse      `json:"last_execution"`
}

func buildSnapshotResponse(s sim.Snapshot) snapshotResponse {
	bids := make([]bookLevelResponse, 0, len(s.Bids))
	for _, l := range s.Bids {
		bids = append(bids, bookLevelResponse{Price: l.Price, Quantity: l.Quantity, OrderCount: l.OrderCount})
	}
	asks := make([]bookLevelResponse, 0, len(s.Asks))
	for _, l := range s.Asks {
		asks = append(asks, bookLevelResponse{Price: l.Price, Quantity: l.Quantity, OrderCount: l.OrderCount})
	}
	trades := make([]tradeViewResponse, 0, len(s.RecentTrades))
	for _, t := range s.RecentTrades {
		trades = append(trades, tradeViewResponse{
			Price:    t.Price,
			Quantity: t.Quantity,
			Time:     t.Time,
			Side:     string(t.AggressorSide),
		})
	}
	history := make([]historyPointResponse, 0, len(s.History))
	for _, p := range s.History {
		history = append(history, historyPointResponse{
			Time:       p.Time,
			Mid:        p.Mid,
			BestBid:    p.BestBid,
			BestAsk:    p.BestAsk,
			Intensity:  p.Intensity,
			RegimeProb: p.RegimeProb,
		})
	}

	return snapshotResponse{
		SessionID:        s.SessionID,
		Step:             s.Step,
		Time:             s.Time,
		Mid:              s.MidPrice,
		Spread:           s.Spread,
		BestBid:          s.BestBid,
		BestAsk:          s.BestAsk,
		Bids:             bids,
		Asks:             asks,
		Trades:           trades,
		History:          history,
		Intensity:        s.Intensity,
		Regime:           string(s.Regime),
		RegimeConfidence: s.RegimeConfidence,
		PermanentDrift:   s.PermanentDrift,
		RealizedVol:      s.RealizedVol,
		LastExecution: executionResponse{
			Trades:            s.LastExecution.Trades,
			ExecutedQty:       s.LastExecution.ExecutedQty,
			AvgFillPrice:      s.LastExecution.AvgFillPrice,
			TemporarySlippage: s.LastExecution.TemporarySlippage,
			EffectivePrice:    s.LastExecution.EffectivePrice,
			Unfilled:          s.LastExecution.Unfilled,
			Rested:            s.LastExecution.Rested,
			AggressorSide:     string(s.LastExecution.AggressorSide),
		},
	}
}

// GetState handles GET /state.
func (h *SimulationHandler) GetState(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, buildSnapshotResponse(h.sim.CurrentState()))
}

// Step handles POST /step: advance one event and return the snapshot.
func (h *SimulationHandler) Step(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sim.Step()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "step_failed", err.Error())
		return
	}
	h.publish(snap)
	WriteJSON(w, http.StatusOK, buildSnapshotResponse(snap))
}

// Reset handles POST /reset: restore initial conditions and return the
// first snapshot of the new session.
func (h *SimulationHandler) Reset(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sim.Reset()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "reset_failed", err.Error())
		return
	}
	h.publish(snap)
	WriteJSON(w, http.StatusOK, buildSnapshotResponse(snap))
}

// setRegimeRequest is the optional JSON body for POST /regime/{name}.
type setRegimeRequest struct {
	Confidence *float64 `json:"confidence"`
}

// setRegimeResponse confirms the active regime after the change.
type setRegimeResponse struct {
	Status     string  `json:"status"`
	Regime     string  `json:"regime"`
	Confidence float64 `json:"confidence"`
}

// SetRegime handles POST /regime/{name}. The body is optional; when
// present it may carry a detector-confidence score which is forwarded
// into snapshots unchanged.
func (h *SimulationHandler) SetRegime(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	confidence := 1.0
	if r.ContentLength > 0 {
		var req setRegimeRequest
		if err := ParseJSON(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		if req.Confidence != nil {
			if *req.Confidence < 0 || *req.Confidence > 1 {
				WriteError(w, http.StatusBadRequest, "validation_error", "confidence must be between 0 and 1")
				return
			}
			confidence = *req.Confidence
		}
	}

	if err := h.sim.SetRegime(name, confidence); err != nil {
		if errors.Is(err, domain.ErrInvalidRegime) {
			WriteError(w, http.StatusUnprocessableEntity, "invalid_regime",
				"regime must be one of: LOW, HIGH")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, setRegimeResponse{
		Status:     "ok",
		Regime:     string(h.sim.Regime()),
		Confidence: confidence,
	})
}

func (h *SimulationHandler) publish(snap sim.Snapshot) {
	if h.hub != nil {
		h.hub.Publish(snap)
	}
}
