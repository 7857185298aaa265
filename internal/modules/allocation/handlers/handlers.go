// Package handlers provides HTTP handlers for allocation operations.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/aristath/riskalloc/internal/modules/allocation"
	"github.com/aristath/riskalloc/internal/modules/display"
	"github.com/aristath/riskalloc/internal/utils"
	"github.com/rs/zerolog"
)

// RiskAversionReader supplies the stored risk aversion used when a request
// does not name one.
type RiskAversionReader interface {
	GetRiskAversion() (float64, error)
}

// Handler handles allocation HTTP requests
type Handler struct {
	service      *allocation.Service
	riskAversion RiskAversionReader
	defaultSweep allocation.SweepRange
	log          zerolog.Logger
}

// NewHandler creates a new allocation handler
func NewHandler(
	service *allocation.Service,
	riskAversion RiskAversionReader,
	defaultSweep allocation.SweepRange,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		service:      service,
		riskAversion: riskAversion,
		defaultSweep: defaultSweep,
		log:          log.With().Str("handler", "allocation").Logger(),
	}
}

// AllocationResponse is one allocation with its rendered lines.
type AllocationResponse struct {
	Lambda     float64                     `json:"lambda" msgpack:"lambda"`
	Market     allocation.MarketParameters `json:"market" msgpack:"market"`
	Allocation allocation.AllocationResult `json:"allocation" msgpack:"allocation"`
	Lines      []display.Line              `json:"lines" msgpack:"lines"`
}

// BatchResponse holds allocations in request order.
type BatchResponse struct {
	Lambdas     []float64                     `json:"lambdas" msgpack:"lambdas"`
	Allocations []allocation.AllocationResult `json:"allocations" msgpack:"allocations"`
}

// SweepResponse is the weight curve over a range.
type SweepResponse struct {
	Range  allocation.SweepRange   `json:"range" msgpack:"range"`
	Points []allocation.SweepPoint `json:"points" msgpack:"points"`
}

// MultiSweepResponse holds one weight curve per requested range, in request order.
type MultiSweepResponse struct {
	Sweeps []SweepResponse `json:"sweeps" msgpack:"sweeps"`
}

// maxSweepRanges caps the ranges accepted by one multi-range request.
const maxSweepRanges = 16

// HandleGetAllocation handles GET /api/allocation
func (h *Handler) HandleGetAllocation(w http.ResponseWriter, r *http.Request) {
	lambda, ok := h.lambdaFromRequest(w, r)
	if !ok {
		return
	}

	result, err := h.service.Allocate(lambda)
	if err != nil {
		h.writeAllocationError(w, r, err)
		return
	}

	utils.WriteData(w, r, http.StatusOK, AllocationResponse{
		Lambda:     lambda,
		Market:     h.service.Params(),
		Allocation: result,
		Lines:      display.Lines(result),
	}, h.log)
}

// HandleGetBatch handles GET /api/allocation/batch
func (h *Handler) HandleGetBatch(w http.ResponseWriter, r *http.Request) {
	lambdas, err := utils.ParseFloatCSV(r.URL.Query().Get("lambdas"))
	if err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, "lambdas: "+err.Error(), h.log)
		return
	}
	if len(lambdas) == 0 {
		utils.WriteError(w, r, http.StatusBadRequest, "lambdas is required", h.log)
		return
	}

	results, err := h.service.AllocateBatch(lambdas)
	if err != nil {
		h.writeAllocationError(w, r, err)
		return
	}

	utils.WriteData(w, r, http.StatusOK, BatchResponse{Lambdas: lambdas, Allocations: results}, h.log)
}

// HandleGetSweep handles GET /api/allocation/sweep
func (h *Handler) HandleGetSweep(w http.ResponseWriter, r *http.Request) {
	rng := h.defaultSweep
	var err error

	if rng.Min, err = utils.QueryFloat(r, "min", rng.Min); err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, err.Error(), h.log)
		return
	}
	if rng.Max, err = utils.QueryFloat(r, "max", rng.Max); err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, err.Error(), h.log)
		return
	}
	if rng.Count, err = utils.QueryInt(r, "count", rng.Count); err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	points, err := h.service.Sweep(rng)
	if err != nil {
		h.writeAllocationError(w, r, err)
		return
	}

	utils.WriteData(w, r, http.StatusOK, SweepResponse{Range: rng, Points: points}, h.log)
}

// HandleGetSweeps handles GET /api/allocation/sweeps?ranges=min:max:count,...
// The ranges are computed concurrently; any invalid range fails the request.
func (h *Handler) HandleGetSweeps(w http.ResponseWriter, r *http.Request) {
	ranges, err := parseSweepRanges(r.URL.Query().Get("ranges"))
	if err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, "ranges: "+err.Error(), h.log)
		return
	}

	curves, err := h.service.SweepMany(r.Context(), ranges)
	if err != nil {
		if r.Context().Err() != nil {
			h.log.Debug().Err(err).Msg("Sweep request cancelled")
			return
		}
		h.writeAllocationError(w, r, err)
		return
	}

	resp := MultiSweepResponse{Sweeps: make([]SweepResponse, len(ranges))}
	for i, rng := range ranges {
		resp.Sweeps[i] = SweepResponse{Range: rng, Points: curves[i]}
	}
	utils.WriteData(w, r, http.StatusOK, resp, h.log)
}

// parseSweepRanges reads comma-separated min:max:count triples.
func parseSweepRanges(raw string) ([]allocation.SweepRange, error) {
	parts := utils.ParseCSV(raw)
	if len(parts) == 0 {
		return nil, errors.New("at least one range is required")
	}
	if len(parts) > maxSweepRanges {
		return nil, fmt.Errorf("at most %d ranges are allowed", maxSweepRanges)
	}

	ranges := make([]allocation.SweepRange, 0, len(parts))
	for _, part := range parts {
		fields := strings.Split(part, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("%q is not min:max:count", part)
		}
		lo, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%q: invalid min", part)
		}
		hi, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%q: invalid max", part)
		}
		count, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("%q: invalid count", part)
		}
		ranges = append(ranges, allocation.SweepRange{Min: lo, Max: hi, Count: count})
	}
	return ranges, nil
}

// lambdaFromRequest reads ?lambda=, falling back to the stored risk aversion.
// It writes the error response itself and reports false on failure.
func (h *Handler) lambdaFromRequest(w http.ResponseWriter, r *http.Request) (float64, bool) {
	if utils.HasQuery(r, "lambda") {
		lambda, err := utils.QueryFloat(r, "lambda", 0)
		if err != nil {
			utils.WriteError(w, r, http.StatusBadRequest, err.Error(), h.log)
			return 0, false
		}
		return lambda, true
	}

	lambda, err := h.riskAversion.GetRiskAversion()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read stored risk aversion")
		utils.WriteError(w, r, http.StatusInternalServerError, "Failed to read risk aversion", h.log)
		return 0, false
	}
	return lambda, true
}

func (h *Handler) writeAllocationError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, allocation.ErrInvalidParameter) {
		utils.WriteError(w, r, http.StatusBadRequest, err.Error(), h.log)
		return
	}
	h.log.Error().Err(err).Msg("Allocation request failed")
	utils.WriteError(w, r, http.StatusInternalServerError, "Allocation failed", h.log)
}
