package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hostelhub/hostelhub-api/internal/middleware"
)

// Routes returns the /hostels router. bookings serves GET /{id}/bookings for
// admins and may be nil.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler, bookings http.HandlerFunc) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Get("/{id}/rooms", h.ListRooms)
	r.Get("/{id}/reviews", h.ListReviews)

	if bookings != nil {
		r.With(middleware.RequireAdmin()).Get("/{id}/bookings", bookings)
	}

	return r
}
