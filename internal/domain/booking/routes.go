package booking

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hostelhub/hostelhub-api/internal/middleware"
)

// Routes returns the /bookings router. history may be nil.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler, history http.HandlerFunc) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	// Students
	r.With(middleware.RequireStudent()).Get("/me", h.ListMine)
	r.With(middleware.RequireStudent()).Post("/{id}/review", h.WriteReview)

	// Any authenticated role; students see only their own bookings
	r.Get("/{id}", h.Get)
	r.Get("/{id}/actions", h.Actions)

	// Back office
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin())
		r.Post("/{id}/confirm", h.Confirm)
		r.Post("/{id}/cancel", h.Cancel)
		r.Post("/{id}/check-in", h.CheckIn)
		r.Post("/{id}/check-out", h.CheckOut)
		r.Post("/{id}/payments", h.RecordPayment)
		if history != nil {
			r.Get("/{id}/history", history)
		}
	})

	return r
}
