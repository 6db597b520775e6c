package audit

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hostelhub/hostelhub-api/internal/pkg/errorhandler"
	"github.com/hostelhub/hostelhub-api/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

// NewHandler accepts a nil service; History then answers 503.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// History handles GET /bookings/{id}/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		response.ServiceUnavailable(w, "Audit log is not configured")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	page, limit := response.PageParams(r, 20, 100)
	entries, total, err := h.svc.History(r.Context(), bookingID, page, limit)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load booking history", err)
		return
	}

	response.WithMeta(w, entries, response.NewMeta(total, page, limit))
}
