package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all journal routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/trades", func(r chi.Router) {
		r.Get("/", h.HandleListTrades)
		r.Post("/", h.HandleCreateTrade)
		r.Post("/import", h.HandleImportCSV)
		r.Get("/{id}", h.HandleGetTrade)
		r.Put("/{id}", h.HandleUpdateTrade)
		r.Delete("/{id}", h.HandleDeleteTrade)
	})

	r.Get("/metrics", h.HandleGetMetrics)
	r.Get("/performance", h.HandleGetPerformance)
}
