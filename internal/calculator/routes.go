package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts all calculator endpoints onto the given router
// under the /calculator prefix.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/calculator", func(r chi.Router) {
		r.Get("/operations", h.Operations)

		r.Get("/history", h.History)
		r.Delete("/history", h.ClearHistory)
		r.Post("/history/save", h.SaveHistory)
		r.Post("/history/load", h.LoadHistory)

		r.Post("/undo", h.Undo)
		r.Post("/redo", h.Redo)

		r.Post("/{op}", h.Perform)
	})
}
