// Package handlers provides HTTP handlers for chart models.
package handlers

import (
	"errors"
	"net/http"

	"github.com/aristath/riskalloc/internal/modules/allocation"
	"github.com/aristath/riskalloc/internal/services"
	"github.com/aristath/riskalloc/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// RiskAversionReader supplies the marker position when the request has none.
type RiskAversionReader interface {
	GetRiskAversion() (float64, error)
}

// Handler handles chart HTTP requests
type Handler struct {
	views        *services.AllocationViewService
	riskAversion RiskAversionReader
	log          zerolog.Logger
}

// NewHandler creates a new charts handler
func NewHandler(views *services.AllocationViewService, riskAversion RiskAversionReader, log zerolog.Logger) *Handler {
	return &Handler{
		views:        views,
		riskAversion: riskAversion,
		log:          log.With().Str("handler", "charts").Logger(),
	}
}

// RegisterRoutes registers all chart routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/charts", func(r chi.Router) {
		r.Get("/weight", h.HandleGetWeightChart)
	})
}

// HandleGetWeightChart handles GET /api/charts/weight
func (h *Handler) HandleGetWeightChart(w http.ResponseWriter, r *http.Request) {
	var lambda float64
	var err error

	if utils.HasQuery(r, "lambda") {
		if lambda, err = utils.QueryFloat(r, "lambda", 0); err != nil {
			utils.WriteError(w, r, http.StatusBadRequest, err.Error(), h.log)
			return
		}
	} else if lambda, err = h.riskAversion.GetRiskAversion(); err != nil {
		h.log.Error().Err(err).Msg("Failed to read stored risk aversion")
		utils.WriteError(w, r, http.StatusInternalServerError, "Failed to read risk aversion", h.log)
		return
	}

	view, err := h.views.Build(lambda)
	if err != nil {
		if errors.Is(err, allocation.ErrInvalidParameter) {
			utils.WriteError(w, r, http.StatusBadRequest, err.Error(), h.log)
			return
		}
		h.log.Error().Err(err).Float64("lambda", lambda).Msg("Failed to build weight chart")
		utils.WriteError(w, r, http.StatusInternalServerError, "Failed to build chart", h.log)
		return
	}

	utils.WriteData(w, r, http.StatusOK, view.Chart, h.log)
}
