package market

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/domain"
)

// Handler handles market data HTTP requests
type Handler struct {
	gateway Gateway
	log     zerolog.Logger
}

// NewHandler creates a new market handler
func NewHandler(gateway Gateway, log zerolog.Logger) *Handler {
	return &Handler{
		gateway: gateway,
		log:     log.With().Str("handler", "market").Logger(),
	}
}

// HandleSearch returns the current quote for a symbol.
// GET /api/search?q=SYMBOL
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("q")))
	if symbol == "" {
		h.writeError(w, &domain.ValidationError{Field: "q", Reason: "query parameter is required"})
		return
	}
	if len(symbol) > 10 {
		h.writeError(w, &domain.ValidationError{Field: "q", Reason: "symbol must be at most 10 characters"})
		return
	}

	quote, err := h.gateway.GetQuote(r.Context(), symbol)
	if err != nil {
		h.log.Warn().Err(err).Str("symbol", symbol).Msg("Quote lookup failed")
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, quote)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	h.writeJSON(w, domain.HTTPStatus(err), map[string]string{
		"error":   domain.ErrorKind(err),
		"message": err.Error(),
	})
}
