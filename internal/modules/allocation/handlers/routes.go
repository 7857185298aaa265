package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all allocation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/allocation", func(r chi.Router) {
		r.Get("/", h.HandleGetAllocation)
		r.Get("/batch", h.HandleGetBatch)
		r.Get("/sweep", h.HandleGetSweep)
		r.Get("/sweeps", h.HandleGetSweeps)
	})
}
