package settings

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/events"
)

// Handler handles settings HTTP requests
type Handler struct {
	repo   *Repository
	events *events.Manager
	log    zerolog.Logger
}

// NewHandler creates a new settings handler
func NewHandler(repo *Repository, eventManager *events.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		events: eventManager,
		log:    log.With().Str("handler", "settings").Logger(),
	}
}

// HandleGetSettings returns the typed settings object.
// GET /api/settings
func (h *Handler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	stored, err := h.repo.All()
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, ToTyped(stored))
}

// HandleUpdateSettings applies a batch of typed settings atomically.
// PUT /api/settings
func (h *Handler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var typed map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&typed); err != nil {
		h.writeError(w, &domain.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}
	if len(typed) == 0 {
		h.writeError(w, &domain.ValidationError{Field: "body", Reason: "settings object is required"})
		return
	}

	stored, err := ToStored(typed)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.repo.SetMany(stored); err != nil {
		h.writeError(w, err)
		return
	}

	h.events.Emit(events.SettingsUpdated, "settings", map[string]interface{}{
		"keys": len(stored),
	})
	h.writeJSON(w, http.StatusOK, typed)
}

// HandleResetSettings restores the default settings.
// POST /api/settings/reset
func (h *Handler) HandleResetSettings(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Reset(); err != nil {
		h.writeError(w, err)
		return
	}

	h.events.Emit(events.SettingsReset, "settings", nil)
	h.writeJSON(w, http.StatusOK, ToTyped(Defaults))
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
