package dashboard

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hostelhub/hostelhub-api/internal/middleware"
	"github.com/hostelhub/hostelhub-api/internal/pkg/errorhandler"
	"github.com/hostelhub/hostelhub-api/internal/pkg/response"
)

// Handler handles dashboard HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates new dashboard handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetSummary returns aggregated back-office stats
// GET /api/v1/dashboard/summary?refresh=true
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	summary, err := h.service.Summary(r.Context(), userID, refresh)
	if err != nil {
		errorhandler.HandleUpstreamError(r.Context(), w, err)
		return
	}

	response.OK(w, summary)
}

// Routes returns dashboard routes
func Routes(h *Handler, authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(middleware.RequireAdmin())

	r.Get("/summary", h.GetSummary)

	return r
}
