package portfolio

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/domain"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleGetPortfolio returns current holdings with the aggregate summary.
// GET /api/portfolio
func (h *Handler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	valuation, err := h.service.Valuate(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	// Monetary figures are rounded here, at the presentation boundary, so
	// rounding error never compounds across holdings during aggregation.
	h.writeJSON(w, http.StatusOK, roundValuation(valuation))
}

type createLotRequest struct {
	Symbol       string  `json:"symbol"`
	Quantity     float64 `json:"quantity"`
	BuyPrice     float64 `json:"buy_price"`
	PurchaseDate string  `json:"purchase_date"`
}

// HandleCreateLot adds a purchase lot.
// POST /api/portfolio
func (h *Handler) HandleCreateLot(w http.ResponseWriter, r *http.Request) {
	var req createLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, &domain.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	lot, err := h.service.CreateLot(req.Symbol, req.Quantity, req.BuyPrice, req.PurchaseDate)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, lot)
}

// HandleUpdateLot applies a partial update to a lot.
// PUT /api/portfolio/{id}
func (h *Handler) HandleUpdateLot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var upd LotUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		h.writeError(w, &domain.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	lot, err := h.service.UpdateLot(id, upd)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, lot)
}

// HandleDeleteLot removes a lot.
// DELETE /api/portfolio/{id}
func (h *Handler) HandleDeleteLot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteLot(id); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleGetHistory returns the reconstructed portfolio value series.
// GET /api/portfolio/history/{period}
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	period := chi.URLParam(r, "period")

	history, err := h.service.History(r.Context(), period)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, roundHistory(history))
}

// HandleGetSymbolHistory returns one symbol's OHLC series with indicators.
// GET /api/portfolio/history/symbol/{symbol}/{period}
func (h *Handler) HandleGetSymbolHistory(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	period := chi.URLParam(r, "period")

	history, err := h.service.SymbolHistoryFor(r.Context(), symbol, period)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, history)
}

// round2 rounds to 2 decimal places for presentation.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round2Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round2(*v)
	return &r
}

func roundValuation(v Valuation) Valuation {
	for i := range v.Holdings {
		holding := &v.Holdings[i]
		holding.Cost = round2(holding.Cost)
		holding.CurrentPrice = round2Ptr(holding.CurrentPrice)
		holding.CurrentValue = round2Ptr(holding.CurrentValue)
		holding.GainLoss = round2Ptr(holding.GainLoss)
		holding.GainLossPercent = round2Ptr(holding.GainLossPercent)
	}
	v.Summary.TotalValue = round2(v.Summary.TotalValue)
	v.Summary.TotalCost = round2(v.Summary.TotalCost)
	v.Summary.TotalGainLoss = round2(v.Summary.TotalGainLoss)
	v.Summary.TotalGainLossPercent = round2(v.Summary.TotalGainLossPercent)
	return v
}

func roundHistory(h History) History {
	for i := range h.Points {
		h.Points[i].Value = round2(h.Points[i].Value)
	}
	if h.Stats != nil {
		h.Stats.Min = round2(h.Stats.Min)
		h.Stats.Max = round2(h.Stats.Max)
		h.Stats.Mean = round2(h.Stats.Mean)
		h.Stats.StdDev = round2(h.Stats.StdDev)
		h.Stats.First = round2(h.Stats.First)
		h.Stats.Last = round2(h.Stats.Last)
		h.Stats.ChangePercent = round2(h.Stats.ChangePercent)
	}
	return h
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := domain.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("Request failed")
	}
	h.writeJSON(w, status, map[string]string{
		"error":   domain.ErrorKind(err),
		"message": err.Error(),
	})
}
