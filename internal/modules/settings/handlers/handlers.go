// Package handlers provides HTTP handlers for settings management.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aristath/riskalloc/internal/modules/allocation"
	"github.com/aristath/riskalloc/internal/modules/settings"
	"github.com/aristath/riskalloc/internal/modules/slider"
	"github.com/aristath/riskalloc/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler provides HTTP handlers for settings endpoints
type Handler struct {
	service *settings.Service
	market  allocation.MarketParameters
	log     zerolog.Logger
}

// NewHandler creates a new settings handler. market is the parameter set in
// effect, used to validate overrides before they are stored.
func NewHandler(service *settings.Service, market allocation.MarketParameters, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		market:  market,
		log:     log.With().Str("handler", "settings").Logger(),
	}
}

// RegisterRoutes registers all settings routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		r.Get("/", h.HandleGetAll)
		r.Get("/risk-aversion", h.HandleGetRiskAversion)
		r.Put("/risk-aversion", h.HandleUpdateRiskAversion)
		r.Put("/market/{key}", h.HandleUpdateMarketParameter)
	})
}

type valueRequest struct {
	Value *float64 `json:"value"`
}

// MarketUpdateResponse reports a stored market override. Overrides are
// applied to the allocator on the next start.
type MarketUpdateResponse struct {
	Key             string  `json:"key" msgpack:"key"`
	Value           float64 `json:"value" msgpack:"value"`
	RestartRequired bool    `json:"restart_required" msgpack:"restart_required"`
}

// HandleGetAll handles GET /api/settings
func (h *Handler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.GetAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get settings")
		utils.WriteError(w, r, http.StatusInternalServerError, "Failed to get settings", h.log)
		return
	}
	utils.WriteData(w, r, http.StatusOK, all, h.log)
}

// HandleGetRiskAversion handles GET /api/settings/risk-aversion
func (h *Handler) HandleGetRiskAversion(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.GetRiskAversionState()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get risk aversion")
		utils.WriteError(w, r, http.StatusInternalServerError, "Failed to get risk aversion", h.log)
		return
	}
	utils.WriteData(w, r, http.StatusOK, state, h.log)
}

// HandleUpdateRiskAversion handles PUT /api/settings/risk-aversion
func (h *Handler) HandleUpdateRiskAversion(w http.ResponseWriter, r *http.Request) {
	value, ok := h.decodeValue(w, r)
	if !ok {
		return
	}

	if _, err := h.service.SetRiskAversion(value); err != nil {
		if errors.Is(err, slider.ErrOutOfRange) {
			utils.WriteError(w, r, http.StatusBadRequest, err.Error(), h.log)
			return
		}
		h.log.Error().Err(err).Msg("Failed to store risk aversion")
		utils.WriteError(w, r, http.StatusInternalServerError, "Failed to store risk aversion", h.log)
		return
	}

	h.HandleGetRiskAversion(w, r)
}

// HandleUpdateMarketParameter handles PUT /api/settings/market/{key}
func (h *Handler) HandleUpdateMarketParameter(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	candidate := h.market
	var target *float64
	switch key {
	case settings.KeyExpectedReturn:
		target = &candidate.ExpectedReturn
	case settings.KeyVolatility:
		target = &candidate.Volatility
	case settings.KeyRiskFreeRate:
		target = &candidate.RiskFreeRate
	default:
		utils.WriteError(w, r, http.StatusNotFound, "unknown market parameter "+key, h.log)
		return
	}

	value, ok := h.decodeValue(w, r)
	if !ok {
		return
	}
	*target = value
	if err := candidate.Validate(); err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	if err := h.service.SetMarketOverride(key, value); err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("Failed to store market parameter")
		utils.WriteError(w, r, http.StatusInternalServerError, "Failed to store market parameter", h.log)
		return
	}

	h.log.Info().Str("key", key).Float64("value", value).Msg("Market parameter override stored")
	utils.WriteData(w, r, http.StatusOK, MarketUpdateResponse{Key: key, Value: value, RestartRequired: true}, h.log)
}

func (h *Handler) decodeValue(w http.ResponseWriter, r *http.Request) (float64, bool) {
	var req valueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, "Invalid request body", h.log)
		return 0, false
	}
	if req.Value == nil {
		utils.WriteError(w, r, http.StatusBadRequest, "value is required", h.log)
		return 0, false
	}
	return *req.Value, true
}
