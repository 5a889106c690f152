package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the keypad and evaluation endpoints of h onto the
// given router under the /calculator prefix.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/calculator", func(r chi.Router) {
		r.Get("/display", h.Display)
		r.Post("/digit/{digit}", h.Digit)
		r.Post("/operator/{op}", h.Operator)
		r.Post("/dot", h.Dot)
		r.Post("/clear", h.Clear)
		r.Post("/equal", h.Equal)
		r.Post("/press", h.Press)
		r.Post("/evaluate", h.Evaluate)
	})
}
