package catalog

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hostelhub/hostelhub-api/internal/pkg/errorhandler"
	"github.com/hostelhub/hostelhub-api/internal/pkg/hostelapi"
	"github.com/hostelhub/hostelhub-api/internal/pkg/response"
)

// Backend is the read-only catalog surface of the hostel backend.
type Backend interface {
	ListHostels(ctx context.Context) ([]hostelapi.Hostel, error)
	GetHostel(ctx context.Context, id string) (*hostelapi.Hostel, error)
	ListHostelRooms(ctx context.Context, hostelID string) ([]hostelapi.Room, error)
	ListHostelReviews(ctx context.Context, hostelID string, opts hostelapi.ListOptions) (*hostelapi.Page[hostelapi.Review], error)
}

// Handler serves hostel listings straight from the backend.
type Handler struct {
	api Backend
}

func NewHandler(api Backend) *Handler {
	return &Handler{api: api}
}

// List handles GET /hostels
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	hostels, err := h.api.ListHostels(r.Context())
	if err != nil {
		errorhandler.HandleUpstreamError(r.Context(), w, err)
		return
	}

	items := make([]HostelResponse, 0, len(hostels))
	for _, hs := range hostels {
		items = append(items, HostelResponseFrom(hs))
	}
	response.OK(w, items)
}

// GetByID handles GET /hostels/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	hostel, err := h.api.GetHostel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		errorhandler.HandleUpstreamError(r.Context(), w, err)
		return
	}
	response.OK(w, HostelResponseFrom(*hostel))
}

// ListRooms handles GET /hostels/{id}/rooms
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.api.ListHostelRooms(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		errorhandler.HandleUpstreamError(r.Context(), w, err)
		return
	}

	items := make([]RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		items = append(items, RoomResponseFrom(room))
	}
	response.OK(w, items)
}

// ListReviews handles GET /hostels/{id}/reviews
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	page, limit := response.PageParams(r, 20, 100)

	res, err := h.api.ListHostelReviews(r.Context(), chi.URLParam(r, "id"), hostelapi.ListOptions{Page: page, Limit: limit})
	if err != nil {
		errorhandler.HandleUpstreamError(r.Context(), w, err)
		return
	}

	items := make([]ReviewResponse, 0, len(res.Data))
	for _, rv := range res.Data {
		items = append(items, ReviewResponseFrom(rv))
	}
	response.WithMeta(w, items, response.NewMeta(res.Pagination.Total, page, limit))
}
